package gatedbus

import (
	"errors"
	"fmt"
)

// ErrEventInQueue is returned by Off and OffAll while the event has pending payloads.
var ErrEventInQueue = errors.New("event has pending payloads")

// ErrMiddlewareEvaluation matches every EvaluationError through errors.Is.
var ErrMiddlewareEvaluation = errors.New("middleware evaluation failed")

// EvaluationError reports a predicate that failed to produce a result.
type EvaluationError struct {
	Event string
	// Index is the position of the predicate in the event's chain.
	Index int
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("event %q: predicate %d: %v", e.Event, e.Index, e.Err)
}

func (e *EvaluationError) Unwrap() []error { return []error{ErrMiddlewareEvaluation, e.Err} }
