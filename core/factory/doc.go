// Package factory provides a small generic registry used to instantiate modules
// from configuration. A module is a type string plus a map of raw settings;
// its factory decodes the settings into a typed struct.
//
//	reg := factory.NewRegistry[gatedbus.Predicate]()
//	reg.Register("min_length", func(conf map[string]any) (gatedbus.Predicate, error) {
//	    var c struct{ Min int `json:"min"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return minLength(c.Min), nil
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "min_length", Conf: map[string]any{"min": 3}})
package factory
