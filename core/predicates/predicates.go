// Package predicates provides middleware that can be declared in configuration.
//
// Available types:
//   - not_equal: payload differs from conf.value
//   - non_empty: payload is not nil, an empty string or an empty collection
//   - min_length: string payload has at least conf.min characters
//   - switch: the named switch in the shared Switches set is open
package predicates

import (
	"context"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/kilianp07/gatedbus/core/factory"
	"github.com/kilianp07/gatedbus/core/gatedbus"
)

// NewRegistry returns a predicate registry holding the built-in types. The
// switch type reads from sw.
func NewRegistry(sw *Switches) *factory.Registry[gatedbus.Predicate] {
	reg := factory.NewRegistry[gatedbus.Predicate]()
	_ = reg.Register("not_equal", func(conf map[string]any) (gatedbus.Predicate, error) {
		var c struct {
			Value any `json:"value"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NotEqual(c.Value), nil
	})
	_ = reg.Register("non_empty", func(conf map[string]any) (gatedbus.Predicate, error) {
		return NonEmpty(), factory.Decode(conf, &struct{}{})
	})
	_ = reg.Register("min_length", func(conf map[string]any) (gatedbus.Predicate, error) {
		var c struct {
			Min int `json:"min"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Min < 0 {
			return nil, fmt.Errorf("min must not be negative")
		}
		return MinLength(c.Min), nil
	})
	_ = reg.Register("switch", func(conf map[string]any) (gatedbus.Predicate, error) {
		var c struct {
			Name string `json:"name"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		return Switch(sw, c.Name), nil
	})
	return reg
}

// Build creates the middleware table for the configured events.
func Build(reg *factory.Registry[gatedbus.Predicate], events map[string][]factory.ModuleConfig) (gatedbus.Table, error) {
	table := make(gatedbus.Table, len(events))
	for name, cfgs := range events {
		chain, err := reg.CreateAll(cfgs)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", name, err)
		}
		table[name] = chain
	}
	return table, nil
}

// NotEqual passes payloads that differ from value. Numbers compare by value
// whatever their Go type, so 0 from YAML matches 0.0 from JSON.
func NotEqual(value any) gatedbus.Predicate {
	return gatedbus.Check(func(p any) bool { return !equal(p, value) })
}

// NonEmpty rejects nil, empty strings and empty slices or maps.
func NonEmpty() gatedbus.Predicate {
	return gatedbus.Check(func(p any) bool {
		if p == nil {
			return false
		}
		v := reflect.ValueOf(p)
		switch v.Kind() {
		case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
			return v.Len() > 0
		}
		return true
	})
}

// MinLength passes strings with at least n runes. Non-string payloads fail
// with an error.
func MinLength(n int) gatedbus.Predicate {
	return gatedbus.PredicateFunc(func(_ context.Context, p any) (bool, error) {
		s, ok := p.(string)
		if !ok {
			return false, fmt.Errorf("min_length: payload %T is not a string", p)
		}
		return utf8.RuneCountInString(s) >= n, nil
	})
}

// Switch passes while the named switch is open.
func Switch(sw *Switches, name string) gatedbus.Predicate {
	return gatedbus.Check(func(any) bool { return sw.Open(name) })
}

func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
