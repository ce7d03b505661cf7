package predicates

import (
	"sort"
	"sync"
)

// Switches is a set of named on/off gates shared by switch predicates.
// Unknown switches are closed.
type Switches struct {
	mu    sync.RWMutex
	state map[string]bool
}

// NewSwitches creates a switch set with the given initial states.
func NewSwitches(initial map[string]bool) *Switches {
	s := &Switches{state: make(map[string]bool, len(initial))}
	for name, open := range initial {
		s.state[name] = open
	}
	return s
}

// Set opens or closes name.
func (s *Switches) Set(name string, open bool) {
	s.mu.Lock()
	s.state[name] = open
	s.mu.Unlock()
}

// Open reports whether name is open.
func (s *Switches) Open(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[name]
}

// Names lists the known switches.
func (s *Switches) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.state))
	for n := range s.state {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
