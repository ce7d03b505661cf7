package gatedbus

import "context"

// Predicate decides whether a payload may be delivered. Evaluate may block;
// the bus runs every predicate of a chain in its own goroutine.
type Predicate interface {
	Evaluate(ctx context.Context, payload any) (bool, error)
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(ctx context.Context, payload any) (bool, error)

// Evaluate calls f.
func (f PredicateFunc) Evaluate(ctx context.Context, payload any) (bool, error) {
	return f(ctx, payload)
}

// Check wraps a plain synchronous check.
func Check(fn func(payload any) bool) Predicate {
	return PredicateFunc(func(_ context.Context, payload any) (bool, error) {
		return fn(payload), nil
	})
}

// Table maps event names to their predicate chains. Events missing from the
// table are delivered without gating.
type Table map[string][]Predicate

// Entry is anything that contributes one chain to a Table, such as Event[T].
type Entry interface {
	Name() string
	Predicates() []Predicate
}

// NewTable builds a Table from entries. A later entry for the same name
// replaces an earlier one.
func NewTable(entries ...Entry) Table {
	t := make(Table, len(entries))
	for _, e := range entries {
		t[e.Name()] = e.Predicates()
	}
	return t
}

func (t Table) clone() Table {
	c := make(Table, len(t))
	for name, chain := range t {
		c[name] = append([]Predicate(nil), chain...)
	}
	return c
}
