package gatedbus

import "sync"

// pendingStore keeps, per event, the payloads that failed their gate in
// arrival order. Every method is atomic.
type pendingStore struct {
	mu     sync.Mutex
	queues map[string][]any
}

func newPendingStore() *pendingStore {
	return &pendingStore{queues: make(map[string][]any)}
}

// push adds payload to the tail of event's queue and returns the new length.
func (s *pendingStore) push(event string, payload any) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[event] = append(s.queues[event], payload)
	return len(s.queues[event])
}

// drain removes and returns the whole queue of event.
func (s *pendingStore) drain(event string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[event]
	delete(s.queues, event)
	return q
}

// pushAll appends payloads to the tail of event's queue in order.
func (s *pendingStore) pushAll(event string, payloads []any) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(payloads) > 0 {
		s.queues[event] = append(s.queues[event], payloads...)
	}
	return len(s.queues[event])
}

// removeIfEmpty runs remove while holding the store lock, provided event's
// queue is empty, optionally after discarding it. It returns the number of
// payloads left in the queue and the number discarded. A push for event
// waits until remove returns.
func (s *pendingStore) removeIfEmpty(event string, discard bool, remove func()) (left, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if discard {
		dropped = len(s.queues[event])
		delete(s.queues, event)
	}
	if left = len(s.queues[event]); left == 0 {
		remove()
	}
	return left, dropped
}

func (s *pendingStore) discard(event string) {
	s.mu.Lock()
	delete(s.queues, event)
	s.mu.Unlock()
}

func (s *pendingStore) size(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[event])
}

func (s *pendingStore) snapshot(event string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.queues[event]...)
}
