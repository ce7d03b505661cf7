package gatedbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingStore(t *testing.T) {
	s := newPendingStore()
	assert.Equal(t, 1, s.push("e", "a"))
	assert.Equal(t, 2, s.push("e", "b"))
	assert.Equal(t, 1, s.push("f", "x"))

	snap := s.snapshot("e")
	snap[0] = "mutated"
	assert.Equal(t, []any{"a", "b"}, s.snapshot("e"))

	assert.Equal(t, []any{"a", "b"}, s.drain("e"))
	assert.Zero(t, s.size("e"))
	assert.Nil(t, s.drain("e"))

	s.push("e", "c")
	assert.Equal(t, 3, s.pushAll("e", []any{"d", "e"}))
	assert.Equal(t, 3, s.pushAll("e", nil))
	assert.Equal(t, []any{"c", "d", "e"}, s.snapshot("e"))

	s.discard("e")
	assert.Zero(t, s.size("e"))
	assert.Equal(t, 1, s.size("f"))
}

func TestPendingRemoveIfEmptyBlocksPush(t *testing.T) {
	s := newPendingStore()
	pushed := make(chan struct{})
	removed := false
	left, dropped := s.removeIfEmpty("e", false, func() {
		go func() {
			s.push("e", "late")
			close(pushed)
		}()
		select {
		case <-pushed:
			t.Error("push completed while the removal held the queue")
		case <-time.After(20 * time.Millisecond):
		}
		removed = true
	})
	assert.True(t, removed)
	assert.Zero(t, left)
	assert.Zero(t, dropped)
	<-pushed
	assert.Equal(t, 1, s.size("e"))

	left, _ = s.removeIfEmpty("e", false, func() { t.Error("removal ran with a queued payload") })
	assert.Equal(t, 1, left)

	s.push("e", "more")
	removed = false
	left, dropped = s.removeIfEmpty("e", true, func() { removed = true })
	assert.True(t, removed)
	assert.Zero(t, left)
	assert.Equal(t, 2, dropped)
}
