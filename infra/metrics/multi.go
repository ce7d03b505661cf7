package metrics

import (
	"time"

	coremetrics "github.com/kilianp07/gatedbus/core/metrics"
)

// MultiRecorder fans out every record to several recorders.
type MultiRecorder struct {
	Recorders []coremetrics.Recorder
}

// NewMultiRecorder combines recs. Zero recorders yield a NopRecorder and a
// single one is returned as is.
func NewMultiRecorder(recs ...coremetrics.Recorder) coremetrics.Recorder {
	switch len(recs) {
	case 0:
		return coremetrics.NopRecorder{}
	case 1:
		return recs[0]
	}
	return &MultiRecorder{Recorders: recs}
}

func (m *MultiRecorder) RecordEmit(event string, outcome coremetrics.Outcome) {
	for _, r := range m.Recorders {
		r.RecordEmit(event, outcome)
	}
}

func (m *MultiRecorder) RecordPending(event string, size int) {
	for _, r := range m.Recorders {
		r.RecordPending(event, size)
	}
}

func (m *MultiRecorder) RecordEvaluation(event string, d time.Duration) {
	for _, r := range m.Recorders {
		r.RecordEvaluation(event, d)
	}
}

func (m *MultiRecorder) RecordReplay(event string, replayed, delivered int) {
	for _, r := range m.Recorders {
		r.RecordReplay(event, replayed, delivered)
	}
}
