package metrics

import "time"

// Outcome is the result of a single emit attempt.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeQueued    Outcome = "queued"
	OutcomeError     Outcome = "error"
)

// Recorder receives gated bus activity for observability purposes.
type Recorder interface {
	// RecordEmit counts one emit attempt for event.
	RecordEmit(event string, outcome Outcome)
	// RecordPending reports the current pending queue length of event.
	RecordPending(event string, size int)
	// RecordEvaluation observes how long the middleware chain took.
	RecordEvaluation(event string, d time.Duration)
	// RecordReplay reports one re-evaluation pass.
	RecordReplay(event string, replayed, delivered int)
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordEmit(string, Outcome)             {}
func (NopRecorder) RecordPending(string, int)              {}
func (NopRecorder) RecordEvaluation(string, time.Duration) {}
func (NopRecorder) RecordReplay(string, int, int)          {}
