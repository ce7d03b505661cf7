package gatedbus

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kilianp07/gatedbus/internal/eventbus"
)

// Guard is a predicate over a typed payload.
type Guard[T any] func(ctx context.Context, payload T) (bool, error)

// CheckOf wraps a plain synchronous check over T.
func CheckOf[T any](fn func(payload T) bool) Guard[T] {
	return func(_ context.Context, payload T) (bool, error) { return fn(payload), nil }
}

// Event names an event whose payloads are of type T. It carries the event's
// middleware and can be passed to NewTable.
type Event[T any] struct {
	name   string
	guards []Guard[T]
}

// Define declares an event and its middleware chain. An event defined
// without guards is still part of the table and always passes.
func Define[T any](name string, guards ...Guard[T]) Event[T] {
	return Event[T]{name: name, guards: append([]Guard[T](nil), guards...)}
}

// Name returns the event name.
func (e Event[T]) Name() string { return e.name }

// Predicates converts the guards to untyped predicates. A payload that is not
// a T makes the predicate fail with an error.
func (e Event[T]) Predicates() []Predicate {
	preds := make([]Predicate, len(e.guards))
	for i, g := range e.guards {
		preds[i] = PredicateFunc(func(ctx context.Context, payload any) (bool, error) {
			v, ok := payload.(T)
			if !ok {
				return false, fmt.Errorf("payload %T is not %s", payload, typeName[T]())
			}
			return g(ctx, v)
		})
	}
	return preds
}

// Subscribe registers a typed listener for e. Payloads of another type,
// which can only arrive through the untyped API, are rejected with an error.
func Subscribe[T any](b *Bus, e Event[T], fn func(ctx context.Context, payload T) error) eventbus.Subscription {
	return b.On(e.name, func(ctx context.Context, payload any) error {
		v, ok := payload.(T)
		if !ok {
			return fmt.Errorf("event %q: payload %T is not %s", e.name, payload, typeName[T]())
		}
		return fn(ctx, v)
	})
}

// Publish emits a typed payload for e.
func Publish[T any](ctx context.Context, b *Bus, e Event[T], payload T) error {
	return b.Emit(ctx, e.name, payload)
}

// PendingOf returns e's pending payloads in retry order. Payloads that are
// not a T, which only the untyped API can queue, are left out of the result
// and counted in skipped.
func PendingOf[T any](b *Bus, e Event[T]) (out []T, skipped int) {
	raw := b.Pending(e.name)
	out = make([]T, 0, len(raw))
	for _, p := range raw {
		v, ok := p.(T)
		if !ok {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}

// typeName names T, including interface types that a zero value cannot show.
func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
