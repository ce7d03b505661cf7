package gatedbus

import (
	"fmt"
	"strings"

	"github.com/kilianp07/gatedbus/core/logger"
	"github.com/kilianp07/gatedbus/core/metrics"
)

// DeliveryMode selects how a passing payload reaches the listeners.
type DeliveryMode int

const (
	// DeliverSync calls listeners in order; listener errors are logged only.
	DeliverSync DeliveryMode = iota
	// DeliverSerial awaits listeners in order and stops at the first error.
	DeliverSerial
	// DeliverParallel runs listeners concurrently and waits for all of them.
	DeliverParallel
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliverSerial:
		return "serial"
	case DeliverParallel:
		return "parallel"
	default:
		return "sync"
	}
}

// ParseDeliveryMode converts "sync", "serial" or "parallel".
func ParseDeliveryMode(s string) (DeliveryMode, error) {
	switch strings.ToLower(s) {
	case "", "sync":
		return DeliverSync, nil
	case "serial":
		return DeliverSerial, nil
	case "parallel":
		return DeliverParallel, nil
	}
	return DeliverSync, fmt.Errorf("unknown delivery mode %q", s)
}

// ErrorPolicy decides what happens to a payload whose predicate returned an error.
type ErrorPolicy int

const (
	// ErrorPolicyPropagate returns the error from Emit; the payload is dropped.
	ErrorPolicyPropagate ErrorPolicy = iota
	// ErrorPolicyQueue treats the error as a failed gate and queues the payload.
	ErrorPolicyQueue
)

func (p ErrorPolicy) String() string {
	if p == ErrorPolicyQueue {
		return "queue"
	}
	return "propagate"
}

// ParseErrorPolicy converts "propagate" or "queue".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(s) {
	case "", "propagate":
		return ErrorPolicyPropagate, nil
	case "queue":
		return ErrorPolicyQueue, nil
	}
	return ErrorPolicyPropagate, fmt.Errorf("unknown error policy %q", s)
}

// Option configures a Bus.
type Option func(*options)

type options struct {
	log      logger.Logger
	recorder metrics.Recorder
	mode     DeliveryMode
	policy   ErrorPolicy
}

func defaultOptions() options {
	return options{
		log:      logger.NopLogger{},
		recorder: metrics.NopRecorder{},
	}
}

// WithLogger sets the logger used for queue and delivery traces.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRecorder reports bus activity to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithDeliveryMode sets the listener fan-out strategy.
func WithDeliveryMode(m DeliveryMode) Option {
	return func(o *options) { o.mode = m }
}

// WithErrorPolicy sets how predicate errors are handled.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(o *options) { o.policy = p }
}
