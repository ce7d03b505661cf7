package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/kilianp07/gatedbus/config"
	"github.com/kilianp07/gatedbus/core/gatedbus"
	coremetrics "github.com/kilianp07/gatedbus/core/metrics"
	"github.com/kilianp07/gatedbus/core/predicates"
	"github.com/kilianp07/gatedbus/infra/logger"
	"github.com/kilianp07/gatedbus/infra/metrics"
)

// Service wires a gated bus from configuration and replays scripts against it.
type Service struct {
	Bus      *gatedbus.Bus
	Switches *predicates.Switches
	log      logger.Logger
	promAddr string
	events   []string

	mu        sync.Mutex
	delivered map[string][]any
}

// StepError records a failed script step.
type StepError struct {
	Step  int    `json:"step"`
	Op    Op     `json:"op"`
	Event string `json:"event,omitempty"`
	Err   string `json:"error"`
}

// Report summarizes a script run.
type Report struct {
	Delivered map[string][]any `json:"delivered"`
	Pending   map[string][]any `json:"pending"`
	Errors    []StepError      `json:"errors,omitempty"`
}

// New creates a Service from the configuration. A nil logger logs to stdout.
func New(cfg *config.Config, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.New("service")
	}
	sw := predicates.NewSwitches(cfg.Switches)
	table, err := predicates.Build(predicates.NewRegistry(sw), cfg.Events)
	if err != nil {
		return nil, fmt.Errorf("middleware: %w", err)
	}
	recs, err := coremetrics.NewRecorders(cfg.Metrics.Recorders)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	opts, err := cfg.Bus.Options()
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	opts = append(opts, gatedbus.WithLogger(log), gatedbus.WithRecorder(metrics.NewMultiRecorder(recs...)))

	s := &Service{
		Bus:       gatedbus.New(table, opts...),
		Switches:  sw,
		log:       log,
		promAddr:  cfg.Metrics.PrometheusAddr,
		delivered: make(map[string][]any),
	}
	for name := range cfg.Events {
		s.events = append(s.events, name)
	}
	sort.Strings(s.events)
	for _, name := range s.events {
		s.subscribe(name)
	}
	return s, nil
}

func (s *Service) subscribe(event string) {
	s.Bus.On(event, func(_ context.Context, payload any) error {
		s.mu.Lock()
		s.delivered[event] = append(s.delivered[event], payload)
		s.mu.Unlock()
		s.log.Infof("delivered %q: %v", event, payload)
		return nil
	})
}

// ServeMetrics exposes Prometheus metrics until ctx is canceled. It returns
// immediately when no address is configured.
func (s *Service) ServeMetrics(ctx context.Context) error {
	if s.promAddr == "" {
		return nil
	}
	return metrics.StartPromServer(ctx, s.promAddr, s.log)
}

// Run executes the script read from r. Failing steps are reported and do not
// stop the run; only an unreadable script returns an error.
func (s *Service) Run(ctx context.Context, r io.Reader) (*Report, error) {
	steps, err := ParseScript(r)
	if err != nil {
		return nil, err
	}
	var errs []StepError
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.apply(ctx, st); err != nil {
			s.log.Warnf("step %d %s %q: %v", i, st.Op, st.Event, err)
			errs = append(errs, StepError{Step: i, Op: st.Op, Event: st.Event, Err: err.Error()})
		}
	}
	rep := s.report()
	rep.Errors = errs
	return rep, nil
}

func (s *Service) apply(ctx context.Context, st Step) error {
	switch st.Op {
	case OpEmit:
		if !s.known(st.Event) {
			s.subscribe(st.Event)
			s.events = append(s.events, st.Event)
		}
		return s.Bus.Emit(ctx, st.Event, st.Payload)
	case OpReEval:
		return s.Bus.ReEval(ctx, st.Event)
	case OpClear:
		s.Bus.ClearQueue(st.Event)
	case OpOpen, OpClose:
		s.Switches.Set(st.Switch, st.Op == OpOpen)
	case OpOffAll:
		return s.Bus.OffAll(st.Event, st.Clear)
	}
	return nil
}

func (s *Service) known(event string) bool {
	for _, e := range s.events {
		if e == event {
			return true
		}
	}
	return false
}

func (s *Service) report() *Report {
	rep := &Report{Delivered: map[string][]any{}, Pending: map[string][]any{}}
	s.mu.Lock()
	for e, p := range s.delivered {
		rep.Delivered[e] = append([]any(nil), p...)
	}
	s.mu.Unlock()
	for _, e := range s.events {
		if q := s.Bus.Pending(e); len(q) > 0 {
			rep.Pending[e] = q
		}
	}
	return rep
}
