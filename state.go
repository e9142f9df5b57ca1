package statechartx

import (
	"github.com/comalice/statechartx/internal/algebra"
	"github.com/comalice/statechartx/internal/macrostep"
	"github.com/comalice/statechartx/internal/microstep"
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// State is the immutable snapshot produced by every machine transition
// (§3). Constructing a new State never mutates the one it was derived
// from — assign updaters run against a cloned Context, and Configuration
// is a freshly built slice.
type State struct {
	Value         primitives.StateValue
	Context       *primitives.Context
	Event         primitives.Event
	Done          bool
	Changed       bool

	machine       *Machine
	configuration []*nodetree.StateNode
	history       microstep.HistoryValue
}

// Matches reports whether the state value satisfies the partial value
// `partial` (§3, recursive containment).
func (s *State) Matches(partial primitives.StateValue) bool {
	return s.Value.Matches(partial)
}

// Can reports whether sending eventType would enable at least one
// transition from this state, without actually transitioning. Guards are
// evaluated, so a guarded-off candidate does not count.
func (s *State) Can(eventType string) bool {
	if s.machine == nil {
		return false
	}
	stateValue := s.Value
	stateForGuards := s
	enabled, err := algebra.SelectTransitions(s.configuration, eventType, s.Context, primitives.NewEvent(eventType, nil), stateValue, stateForGuards, s.machine.registries)
	if err != nil {
		return false
	}
	return len(algebra.RemoveConflicts(enabled, s.configuration)) > 0
}

// HasTag reports whether any currently active state node carries tag.
func (s *State) HasTag(tag string) bool {
	for _, n := range s.configuration {
		if n.HasTag(tag) {
			return true
		}
	}
	return false
}

// StateIDs returns the ids of every currently active node, for diagnostics
// and persistence (§8 Rehydration scenario).
func (s *State) StateIDs() []string {
	ordered := nodetree.ByDocumentOrder(s.configuration)
	ids := make([]string, len(ordered))
	for i, n := range ordered {
		ids[i] = n.ID
	}
	return ids
}

// TransitionEffects collects every deferred side effect a macrostep
// produced: sends (immediate or delayed), cancels, actor invocations/stops,
// and log entries. The interpreter applies these; a caller using Machine
// directly (no Interpreter) may ignore them or apply its own policy.
type TransitionEffects struct {
	Sends   []SendEffect
	Cancels []CancelEffect
	Invokes []InvokeEffect
	Stops   []StopEffect
	Logs    []LogEffect
}

func newTransitionEffects(o *macrostep.Outcome) *TransitionEffects {
	return &TransitionEffects{
		Sends:   o.Sends,
		Cancels: o.Cancels,
		Invokes: o.Invokes,
		Stops:   o.Stops,
		Logs:    o.Logs,
	}
}
