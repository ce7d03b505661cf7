package gatedbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/gatedbus/core/logger"
	"github.com/kilianp07/gatedbus/core/metrics"
	"github.com/kilianp07/gatedbus/internal/eventbus"
)

// Bus delivers payloads to listeners once the event's middleware passes and
// parks the others in a per-event pending queue.
type Bus struct {
	table     Table
	listeners *eventbus.Registry
	pending   *pendingStore

	replayMu sync.Mutex
	replays  map[string]*sync.Mutex

	log    logger.Logger
	rec    metrics.Recorder
	mode   DeliveryMode
	policy ErrorPolicy
}

// New creates a Bus gated by table. The table is copied and cannot be changed afterwards.
func New(table Table, opts ...Option) *Bus {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Bus{
		table:     table.clone(),
		listeners: eventbus.New(o.log),
		pending:   newPendingStore(),
		replays:   make(map[string]*sync.Mutex),
		log:       o.log,
		rec:       o.recorder,
		mode:      o.mode,
		policy:    o.policy,
	}
}

// Gated reports whether event has a middleware chain.
func (b *Bus) Gated(event string) bool {
	_, ok := b.table[event]
	return ok
}

// On subscribes fn to event.
func (b *Bus) On(event string, fn eventbus.Listener) eventbus.Subscription {
	return b.listeners.Subscribe(event, fn)
}

// Off removes the listener behind sub. When clearQueue is set the event's
// pending queue is discarded first. The listener stays registered and
// ErrEventInQueue is returned while the queue is not empty.
func (b *Bus) Off(sub eventbus.Subscription, clearQueue bool) error {
	return b.removeListeners(sub.Event, clearQueue, func() { b.listeners.Unsubscribe(sub) })
}

// OffAll removes every listener of event under the same rules as Off.
func (b *Bus) OffAll(event string, clearQueue bool) error {
	return b.removeListeners(event, clearQueue, func() { b.listeners.UnsubscribeAll(event) })
}

// removeListeners checks the queue and removes under the pending store lock,
// so no Emit can queue a payload between the two. The emptiness check
// applies whether or not a clear was requested.
func (b *Bus) removeListeners(event string, clearQueue bool, remove func()) error {
	left, dropped := b.pending.removeIfEmpty(event, clearQueue, remove)
	if dropped > 0 {
		b.log.Debugw("queue cleared", map[string]any{"event": event, "discarded": dropped})
	}
	if clearQueue {
		b.rec.RecordPending(event, left)
	}
	if left > 0 {
		return fmt.Errorf("remove listeners of %q with %d pending: %w", event, left, ErrEventInQueue)
	}
	return nil
}

// Emit runs event's middleware against payload. The payload is delivered when
// every predicate passes and queued when any of them fails. A predicate error
// is returned as an *EvaluationError unless the bus uses ErrorPolicyQueue.
func (b *Bus) Emit(ctx context.Context, event string, payload any) error {
	_, err := b.emit(ctx, event, payload)
	return err
}

func (b *Bus) emit(ctx context.Context, event string, payload any) (metrics.Outcome, error) {
	chain, gated := b.table[event]
	if !gated {
		return b.deliver(ctx, event, payload)
	}
	pass, err := b.evaluate(ctx, event, chain, payload)
	if err != nil {
		if b.policy != ErrorPolicyQueue {
			b.rec.RecordEmit(event, metrics.OutcomeError)
			return metrics.OutcomeError, err
		}
		b.log.Warnf("queueing %q payload after predicate error: %v", event, err)
	}
	if !pass {
		n := b.pending.push(event, payload)
		b.log.Debugw("payload queued", map[string]any{"event": event, "pending": n})
		b.rec.RecordEmit(event, metrics.OutcomeQueued)
		b.rec.RecordPending(event, n)
		return metrics.OutcomeQueued, nil
	}
	return b.deliver(ctx, event, payload)
}

// evaluate runs the chain concurrently and waits for every predicate. The
// first error cancels the context handed to the others.
func (b *Bus) evaluate(ctx context.Context, event string, chain []Predicate, payload any) (bool, error) {
	start := time.Now()
	defer func() { b.rec.RecordEvaluation(event, time.Since(start)) }()

	results := make([]bool, len(chain))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range chain {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &EvaluationError{Event: event, Index: i, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			ok, err := p.Evaluate(gctx, payload)
			if err != nil {
				return &EvaluationError{Event: event, Index: i, Err: err}
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for _, ok := range results {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (b *Bus) deliver(ctx context.Context, event string, payload any) (metrics.Outcome, error) {
	var err error
	switch b.mode {
	case DeliverSerial:
		err = b.listeners.PublishSerial(ctx, event, payload)
	case DeliverParallel:
		err = b.listeners.PublishParallel(ctx, event, payload)
	default:
		b.listeners.Publish(ctx, event, payload)
	}
	b.rec.RecordEmit(event, metrics.OutcomeDelivered)
	if err != nil {
		return metrics.OutcomeDelivered, fmt.Errorf("deliver %q: %w", event, err)
	}
	b.log.Debugw("payload delivered", map[string]any{"event": event})
	return metrics.OutcomeDelivered, nil
}

// ReEval replays the pending queue of event in FIFO order. The queue is
// emptied first; payloads that fail again are queued anew through Emit.
// When a replay step returns an error the remaining payloads are queued
// again in order and the error is returned. A panic during a step is
// returned as an error after the step's payload and the ones behind it
// are queued again. Calls for the same event are serialized.
func (b *Bus) ReEval(ctx context.Context, event string) (err error) {
	mu := b.replayLock(event)
	mu.Lock()
	defer mu.Unlock()

	queued := b.pending.drain(event)
	if len(queued) == 0 {
		return nil
	}
	b.rec.RecordPending(event, b.pending.size(event))

	step := 0
	defer func() {
		if r := recover(); r != nil {
			n := b.pending.pushAll(event, queued[step:])
			b.rec.RecordPending(event, n)
			err = fmt.Errorf("re-evaluate %q: panic: %v", event, r)
		}
	}()

	delivered := 0
	for i, payload := range queued {
		step = i
		outcome, err := b.emit(ctx, event, payload)
		if outcome == metrics.OutcomeDelivered {
			delivered++
		}
		if err == nil {
			continue
		}
		rest := queued[i+1:]
		if outcome == metrics.OutcomeError {
			rest = queued[i:]
		}
		n := b.pending.pushAll(event, rest)
		b.rec.RecordPending(event, n)
		b.rec.RecordReplay(event, i+1, delivered)
		return fmt.Errorf("re-evaluate %q: %w", event, err)
	}
	step = len(queued)
	b.rec.RecordReplay(event, len(queued), delivered)
	b.log.Debugw("queue replayed", map[string]any{
		"event":     event,
		"replayed":  len(queued),
		"delivered": delivered,
		"pending":   b.pending.size(event),
	})
	return nil
}

func (b *Bus) replayLock(event string) *sync.Mutex {
	b.replayMu.Lock()
	defer b.replayMu.Unlock()
	mu, ok := b.replays[event]
	if !ok {
		mu = &sync.Mutex{}
		b.replays[event] = mu
	}
	return mu
}

// ClearQueue discards the pending payloads of event without delivering them.
func (b *Bus) ClearQueue(event string) {
	n := b.pending.size(event)
	b.pending.discard(event)
	if n > 0 {
		b.log.Debugw("queue cleared", map[string]any{"event": event, "discarded": n})
	}
	b.rec.RecordPending(event, 0)
}

// QueueLen returns the number of pending payloads of event.
func (b *Bus) QueueLen(event string) int { return b.pending.size(event) }

// Pending returns a copy of event's pending payloads in retry order.
func (b *Bus) Pending(event string) []any { return b.pending.snapshot(event) }
