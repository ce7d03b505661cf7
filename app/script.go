package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Op is a script operation.
type Op string

const (
	OpEmit   Op = "emit"
	OpReEval Op = "reeval"
	OpClear  Op = "clear"
	OpOpen   Op = "open"
	OpClose  Op = "close"
	OpOffAll Op = "off_all"
)

// Step is one line of a replay script.
type Step struct {
	Op      Op     `json:"op"`
	Event   string `json:"event,omitempty"`
	Payload any    `json:"payload,omitempty"`
	// Switch names the gate toggled by open and close.
	Switch string `json:"switch,omitempty"`
	// Clear asks off_all to discard the pending queue first.
	Clear bool `json:"clear,omitempty"`
}

func (s Step) validate() error {
	switch s.Op {
	case OpEmit, OpReEval, OpClear, OpOffAll:
		if s.Event == "" {
			return fmt.Errorf("%s: event is required", s.Op)
		}
	case OpOpen, OpClose:
		if s.Switch == "" {
			return fmt.Errorf("%s: switch is required", s.Op)
		}
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

// ParseScript reads a stream of JSON step objects, typically one per line.
func ParseScript(r io.Reader) ([]Step, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var steps []Step
	for {
		var s Step
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return steps, nil
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", len(steps), err)
		}
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", len(steps), err)
		}
		steps = append(steps, s)
	}
}
