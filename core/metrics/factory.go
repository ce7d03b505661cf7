package metrics

import "github.com/kilianp07/gatedbus/core/factory"

var recorderRegistry = factory.NewRegistry[Recorder]()

// RegisterRecorder adds a recorder factory identified by name.
func RegisterRecorder(name string, f factory.Factory[Recorder]) error {
	return recorderRegistry.Register(name, f)
}

// NewRecorders creates one Recorder per configuration entry.
func NewRecorders(cfgs []factory.ModuleConfig) ([]Recorder, error) {
	recs := make([]Recorder, 0, len(cfgs))
	for _, c := range cfgs {
		r, err := recorderRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, nil
}
