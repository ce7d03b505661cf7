package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/gatedbus/core/logger"
)

// Listener receives payloads published for an event.
type Listener func(ctx context.Context, payload any) error

// Subscription identifies a registered listener. Listeners are removed through
// their subscription since functions are not comparable.
type Subscription struct {
	ID    uuid.UUID
	Event string
}

type entry struct {
	id uuid.UUID
	fn Listener
}

// Registry maps event names to the listeners subscribed to them.
type Registry struct {
	mu     sync.RWMutex
	events map[string][]entry
	log    logger.Logger
}

// New creates an empty Registry. A nil logger discards output.
func New(log logger.Logger) *Registry {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Registry{events: make(map[string][]entry), log: log}
}

// Subscribe registers fn for event and returns its subscription.
func (r *Registry) Subscribe(event string, fn Listener) Subscription {
	sub := Subscription{ID: uuid.New(), Event: event}
	r.mu.Lock()
	r.events[event] = append(r.events[event], entry{id: sub.ID, fn: fn})
	r.mu.Unlock()
	return sub
}

// Unsubscribe removes the listener behind sub. It reports whether a listener was removed.
func (r *Registry) Unsubscribe(sub Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.events[sub.Event]
	for i, e := range list {
		if e.id != sub.ID {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(r.events, sub.Event)
		} else {
			r.events[sub.Event] = list
		}
		return true
	}
	return false
}

// UnsubscribeAll removes every listener of event.
func (r *Registry) UnsubscribeAll(event string) {
	r.mu.Lock()
	delete(r.events, event)
	r.mu.Unlock()
}

// HasSubscribers reports whether event has at least one listener.
func (r *Registry) HasSubscribers(event string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events[event]) > 0
}

func (r *Registry) listeners(event string) []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entry(nil), r.events[event]...)
}

// call runs the listener and reports a panic as an error.
func (e entry) call(ctx context.Context, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener %s panicked: %v", e.id, r)
		}
	}()
	return e.fn(ctx, payload)
}

// Publish calls every listener of event in registration order. Listener errors
// and panics are logged and otherwise ignored, so a failing listener never
// keeps the next ones from seeing the payload.
func (r *Registry) Publish(ctx context.Context, event string, payload any) {
	for _, e := range r.listeners(event) {
		if err := e.call(ctx, payload); err != nil {
			r.log.Warnf("listener %s for %q: %v", e.id, event, err)
		}
	}
}

// PublishSerial calls the listeners one after another and stops at the first
// error. A panicking listener counts as a failed one.
func (r *Registry) PublishSerial(ctx context.Context, event string, payload any) error {
	for _, e := range r.listeners(event) {
		if err := e.call(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// PublishParallel runs all listeners concurrently and waits for them to finish.
// The first error is returned.
func (r *Registry) PublishParallel(ctx context.Context, event string, payload any) error {
	subs := r.listeners(event)
	if len(subs) == 0 {
		return nil
	}
	var g errgroup.Group
	for _, e := range subs {
		g.Go(func() error { return e.call(ctx, payload) })
	}
	return g.Wait()
}
