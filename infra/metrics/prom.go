package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gatedbus/core/metrics"
)

// PromRecorder exports gated bus activity as Prometheus metrics.
type PromRecorder struct {
	emits       *prometheus.CounterVec
	pending     *prometheus.GaugeVec
	evaluation  *prometheus.HistogramVec
	replayed    *prometheus.CounterVec
	redelivered *prometheus.CounterVec
}

// NewPromRecorder registers the bus metrics on the default Prometheus registerer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on reg. A nil registerer
// defaults to the global Prometheus registerer. Collectors already present on
// reg are reused.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{
		emits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatedbus_emits_total",
			Help: "Emit attempts by event and outcome",
		}, []string{"event", "outcome"}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gatedbus_pending_payloads",
			Help: "Payloads waiting in the pending queue",
		}, []string{"event"}),
		evaluation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatedbus_evaluation_seconds",
			Help:    "Time spent evaluating an event's middleware chain",
			Buckets: prometheus.DefBuckets,
		}, []string{"event"}),
		replayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatedbus_replayed_total",
			Help: "Payloads replayed by re-evaluation",
		}, []string{"event"}),
		redelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatedbus_replay_delivered_total",
			Help: "Replayed payloads that were delivered",
		}, []string{"event"}),
	}
	var err error
	if r.emits, err = register(reg, r.emits); err != nil {
		return nil, err
	}
	if r.pending, err = register(reg, r.pending); err != nil {
		return nil, err
	}
	if r.evaluation, err = register(reg, r.evaluation); err != nil {
		return nil, err
	}
	if r.replayed, err = register(reg, r.replayed); err != nil {
		return nil, err
	}
	if r.redelivered, err = register(reg, r.redelivered); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEmit increments the emit counter.
func (r *PromRecorder) RecordEmit(event string, outcome coremetrics.Outcome) {
	r.emits.WithLabelValues(event, string(outcome)).Inc()
}

// RecordPending sets the pending gauge.
func (r *PromRecorder) RecordPending(event string, size int) {
	r.pending.WithLabelValues(event).Set(float64(size))
}

// RecordEvaluation observes the middleware latency.
func (r *PromRecorder) RecordEvaluation(event string, d time.Duration) {
	r.evaluation.WithLabelValues(event).Observe(d.Seconds())
}

// RecordReplay counts replayed and delivered payloads.
func (r *PromRecorder) RecordReplay(event string, replayed, delivered int) {
	r.replayed.WithLabelValues(event).Add(float64(replayed))
	r.redelivered.WithLabelValues(event).Add(float64(delivered))
}
