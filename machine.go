// Package statechartx implements a hierarchical statechart interpreter
// faithful to the microstep/macrostep semantics of SCXML and the actor
// model it is embedded in: compound, parallel, final, and history nodes,
// guarded and conflict-resolved transitions, an internal/external event
// queue split, delayed sends, and invoked child actors.
package statechartx

import (
	"fmt"

	"github.com/comalice/statechartx/internal/macrostep"
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// Machine is the compiled, immutable description of a statechart: the node
// tree plus its registries. It is safe for concurrent use — Transition
// never mutates the Machine, only produces a new State from an old one,
// the same way CreateMachine(config).transition(state, event) is pure in
// the system this package is modeled on.
type Machine struct {
	id         string
	root       *nodetree.StateNode
	ids        *nodetree.IDMap
	delimiter  string
	initialCtx map[string]any
	registries *Registries
}

// CreateMachine compiles cfg into a Machine. Options attach registries;
// an unconfigured Machine still compiles and runs, it simply fails at
// guard/action/delay/actor resolution time if the config references a name
// with nothing registered for it.
func CreateMachine(cfg *primitives.MachineConfig, opts ...MachineOption) (*Machine, error) {
	root, ids, err := nodetree.Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("compile machine %q: %w", cfg.ID, err)
	}
	m := &Machine{
		id:         cfg.ID,
		root:       root,
		ids:        ids,
		delimiter:  cfg.Delimiter,
		initialCtx: cfg.Context,
		registries: NewRegistries(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ID returns the machine's id.
func (m *Machine) ID() string { return m.id }

// Root exposes the compiled root node, for diagnostics/visualization.
func (m *Machine) Root() *nodetree.StateNode { return m.root }

// StateNode looks up a compiled node by id.
func (m *Machine) StateNode(id string) (*nodetree.StateNode, bool) {
	return m.ids.Get(id)
}

// InitialState computes the machine's starting State: the initial
// configuration (root's nested initial-transition closure), entered exactly
// as any other microstep's entry set, against cfg.Context seeded at
// CreateMachine time.
func (m *Machine) InitialState() (*State, *TransitionEffects, error) {
	ctx := primitives.NewContext()
	ctx.Update(m.initialCtx)

	event := primitives.NewEvent(primitives.EventInit, nil)
	outcome, err := macrostep.RunInitial(m.root, ctx, m.buildState, m.registries, m.registries)
	if err != nil {
		return nil, nil, fmt.Errorf("machine %q: initial state: %w", m.id, err)
	}
	return m.toState(outcome, event, true), newTransitionEffects(outcome), nil
}

// Transition computes the next State by running one macrostep against the
// given prior state and incoming event. The prior state's Context is never
// mutated; Transition always returns a freshly built State even when no
// transition was enabled (in which case Changed is false).
func (m *Machine) Transition(prior *State, event primitives.Event) (*State, *TransitionEffects, error) {
	if prior == nil {
		return nil, nil, fmt.Errorf("machine %q: Transition requires a non-nil prior state", m.id)
	}
	outcome, err := macrostep.Run(m.root, prior.configuration, prior.history, prior.Context, &event, m.buildState, m.registries, m.registries)
	if err != nil {
		return nil, nil, fmt.Errorf("machine %q: transition on %q: %w", m.id, event.Type, err)
	}
	state := m.toState(outcome, event, false)
	state.Changed = !sameConfiguration(prior.configuration, state.configuration) || prior.Context != state.Context
	return state, newTransitionEffects(outcome), nil
}

func (m *Machine) buildState(value primitives.StateValue, ctx *primitives.Context, cfg []*nodetree.StateNode) any {
	return &State{Value: value, Context: ctx, machine: m, configuration: cfg}
}

func (m *Machine) toState(outcome *macrostep.Outcome, event primitives.Event, changed bool) *State {
	return &State{
		Value:         outcome.StateValue,
		Context:       outcome.Context,
		Event:         event,
		Done:          outcome.Done,
		Changed:       changed,
		machine:       m,
		configuration: outcome.Configuration,
		history:       outcome.History,
	}
}

func sameConfiguration(a, b []*nodetree.StateNode) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[*nodetree.StateNode]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}
