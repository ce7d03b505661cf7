package predicates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gatedbus/core/factory"
	"github.com/kilianp07/gatedbus/core/gatedbus"
)

func eval(t *testing.T, p gatedbus.Predicate, payload any) bool {
	t.Helper()
	ok, err := p.Evaluate(context.Background(), payload)
	require.NoError(t, err)
	return ok
}

func TestNotEqual(t *testing.T) {
	p := NotEqual(0)
	assert.False(t, eval(t, p, 0))
	assert.False(t, eval(t, p, 0.0))
	assert.True(t, eval(t, p, 5))
	assert.True(t, eval(t, p, "0"))

	s := NotEqual("blocked")
	assert.False(t, eval(t, s, "blocked"))
	assert.True(t, eval(t, s, "alice"))
	assert.True(t, eval(t, s, nil))
}

func TestNonEmpty(t *testing.T) {
	p := NonEmpty()
	assert.False(t, eval(t, p, nil))
	assert.False(t, eval(t, p, ""))
	assert.False(t, eval(t, p, []any{}))
	assert.False(t, eval(t, p, map[string]any{}))
	assert.True(t, eval(t, p, "x"))
	assert.True(t, eval(t, p, 0))
}

func TestMinLength(t *testing.T) {
	p := MinLength(3)
	assert.True(t, eval(t, p, "héé"))
	assert.False(t, eval(t, p, "hi"))
	_, err := p.Evaluate(context.Background(), 42)
	assert.Error(t, err)
}

func TestSwitch(t *testing.T) {
	sw := NewSwitches(map[string]bool{"maintenance": false})
	p := Switch(sw, "maintenance")
	assert.False(t, eval(t, p, "x"))
	sw.Set("maintenance", true)
	assert.True(t, eval(t, p, "x"))
	assert.False(t, eval(t, Switch(sw, "unknown"), "x"))
	assert.Equal(t, []string{"maintenance"}, sw.Names())
}

func TestRegistryBuild(t *testing.T) {
	sw := NewSwitches(nil)
	reg := NewRegistry(sw)
	assert.Equal(t, []string{"min_length", "non_empty", "not_equal", "switch"}, reg.Types())

	table, err := Build(reg, map[string][]factory.ModuleConfig{
		"login": {
			{Type: "not_equal", Conf: map[string]any{"value": "blocked"}},
			{Type: "not_equal", Conf: map[string]any{"value": 0}},
		},
		"message": {
			{Type: "non_empty"},
			{Type: "min_length", Conf: map[string]any{"min": "2"}},
			{Type: "switch", Conf: map[string]any{"name": "chat"}},
		},
	})
	require.NoError(t, err)
	assert.Len(t, table["login"], 2)
	assert.Len(t, table["message"], 3)

	_, err = Build(reg, map[string][]factory.ModuleConfig{"bad": {{Type: "switch"}}})
	assert.ErrorContains(t, err, `event "bad"`)
	_, err = Build(reg, map[string][]factory.ModuleConfig{"bad": {{Type: "min_length", Conf: map[string]any{"min": -1}}}})
	assert.Error(t, err)
	_, err = Build(reg, map[string][]factory.ModuleConfig{"bad": {{Type: "non_empty", Conf: map[string]any{"x": 1}}}})
	assert.Error(t, err)
}

func TestBuiltTableGatesBus(t *testing.T) {
	ctx := context.Background()
	sw := NewSwitches(map[string]bool{"chat": false})
	table, err := Build(NewRegistry(sw), map[string][]factory.ModuleConfig{
		"message": {{Type: "switch", Conf: map[string]any{"name": "chat"}}},
	})
	require.NoError(t, err)
	bus := gatedbus.New(table)
	var got []any
	bus.On("message", func(_ context.Context, p any) error { got = append(got, p); return nil })

	require.NoError(t, bus.Emit(ctx, "message", "hello"))
	assert.Empty(t, got)
	sw.Set("chat", true)
	require.NoError(t, bus.ReEval(ctx, "message"))
	assert.Equal(t, []any{"hello"}, got)
}
