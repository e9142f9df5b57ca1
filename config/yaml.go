// Package config loads declarative machine configurations from YAML,
// mirroring the shape of primitives.MachineConfig/StateConfig/TransitionConfig
// closely enough that a machine authored in YAML and one built with
// MachineBuilder produce identical compiled trees (§4.1).
//
// Actions and guards cannot cross the YAML boundary as Go function values,
// so this package carries them as bare name strings and defers resolution to
// the machine's Registries at resolve/select time: an action name becomes a
// primitives.ExecAction{Name: name} (Exec left nil) and a guard name becomes
// primitives.NamedGuard(name), exactly the registry-lookup path
// internal/actions and internal/algebra already implement for
// Go-authored configs that reference actions/guards by name instead of
// inline closures.
package config

import (
	"fmt"

	"github.com/comalice/statechartx/internal/primitives"
	"gopkg.in/yaml.v3"
)

// MachineSpec is the YAML-facing mirror of primitives.MachineConfig.
type MachineSpec struct {
	ID        string         `yaml:"id"`
	Delimiter string         `yaml:"delimiter,omitempty"`
	Context   map[string]any `yaml:"context,omitempty"`
	Root      StateSpec      `yaml:"root"`
}

// StateSpec is the YAML-facing mirror of primitives.StateConfig. Entry/Exit
// actions and transition actions are plain name strings, resolved against a
// Registries value the caller builds in Go (see Registries.WithAction).
type StateSpec struct {
	Key     string `yaml:"key,omitempty"`
	ID      string `yaml:"id,omitempty"`
	Type    string `yaml:"type,omitempty"` // atomic | compound | parallel | final | history; default atomic
	Initial string `yaml:"initial,omitempty"`
	History string `yaml:"history,omitempty"` // shallow | deep; meaningful only on type: history
	Target  string `yaml:"target,omitempty"`  // default-entry target; meaningful only on type: history

	States []StateSpec `yaml:"states,omitempty"`

	On     map[string][]TransitionSpec `yaml:"on,omitempty"`
	Always []TransitionSpec            `yaml:"always,omitempty"`
	After  map[string]TransitionSpec   `yaml:"after,omitempty"`
	OnDone []TransitionSpec            `yaml:"onDone,omitempty"`

	Entry []string `yaml:"entry,omitempty"`
	Exit  []string `yaml:"exit,omitempty"`

	Tags []string `yaml:"tags,omitempty"`
}

// TransitionSpec is the YAML-facing mirror of primitives.TransitionConfig.
type TransitionSpec struct {
	Target   []string  `yaml:"target,omitempty"`
	Guard    *GuardSpec `yaml:"guard,omitempty"`
	Actions  []string  `yaml:"actions,omitempty"`
	Internal bool      `yaml:"internal,omitempty"`
}

// GuardSpec is the YAML-facing mirror of primitives.GuardDescriptor. Exactly
// one of Name, StateIn, or the boolean-combinator fields should be set; Name
// resolves against the machine's guard registry at selection time.
type GuardSpec struct {
	Name    string      `yaml:"name,omitempty"`
	StateIn *StateValueSpec `yaml:"stateIn,omitempty"`
	And     []GuardSpec `yaml:"and,omitempty"`
	Or      []GuardSpec `yaml:"or,omitempty"`
	Not     *GuardSpec  `yaml:"not,omitempty"`
}

// StateValueSpec is the YAML-facing mirror of primitives.StateValue: either a
// bare leaf string, or a nested key->value mapping. YAML can't distinguish a
// tagged union cleanly, so this type implements custom unmarshaling: a
// scalar node becomes a leaf, a mapping node becomes a compound value.
type StateValueSpec struct {
	Leaf string
	Map  map[string]StateValueSpec
}

func (s *StateValueSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&s.Leaf)
	case yaml.MappingNode:
		s.Map = map[string]StateValueSpec{}
		return node.Decode(&s.Map)
	default:
		return fmt.Errorf("config: stateIn value must be a scalar or a mapping, got kind %d", node.Kind)
	}
}

func (s StateValueSpec) toStateValue() primitives.StateValue {
	if s.Map == nil {
		return primitives.Atomic(s.Leaf)
	}
	m := make(map[string]primitives.StateValue, len(s.Map))
	for k, v := range s.Map {
		m[k] = v.toStateValue()
	}
	return primitives.Compound(m)
}

// LoadMachineConfig parses YAML-encoded machine configuration data into a
// compiler-ready primitives.MachineConfig. Guard and action names are left
// unresolved (Name/ExecAction.Name populated, Ref/Exec nil) for the
// interpreter's registries to resolve at runtime.
func LoadMachineConfig(data []byte) (*primitives.MachineConfig, error) {
	var spec MachineSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("config: parsing machine YAML: %w", err)
	}
	return spec.toMachineConfig()
}

func (m MachineSpec) toMachineConfig() (*primitives.MachineConfig, error) {
	root, err := m.Root.toStateConfig()
	if err != nil {
		return nil, err
	}
	cfg := &primitives.MachineConfig{
		ID:        m.ID,
		Delimiter: m.Delimiter,
		Context:   m.Context,
		Root:      root,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (s StateSpec) toStateConfig() (*primitives.StateConfig, error) {
	stateType, err := parseStateType(s.Type)
	if err != nil {
		return nil, fmt.Errorf("config: state %q: %w", s.Key, err)
	}
	history, err := parseHistoryKind(s.History)
	if err != nil {
		return nil, fmt.Errorf("config: state %q: %w", s.Key, err)
	}

	cfg := &primitives.StateConfig{
		Key:     s.Key,
		ID:      s.ID,
		Type:    stateType,
		Initial: s.Initial,
		History: history,
		Target:  s.Target,
		Tags:    s.Tags,
		Entry:   namesToActions(s.Entry),
		Exit:    namesToActions(s.Exit),
	}

	for _, child := range s.States {
		childCfg, err := child.toStateConfig()
		if err != nil {
			return nil, err
		}
		cfg.States = append(cfg.States, childCfg)
	}

	if len(s.On) > 0 {
		cfg.On = make(map[string][]primitives.TransitionConfig, len(s.On))
		for event, transitions := range s.On {
			for _, t := range transitions {
				tc, err := t.toTransitionConfig(event)
				if err != nil {
					return nil, fmt.Errorf("config: state %q event %q: %w", s.Key, event, err)
				}
				cfg.On[event] = append(cfg.On[event], tc)
			}
		}
	}

	for _, t := range s.Always {
		tc, err := t.toTransitionConfig("")
		if err != nil {
			return nil, fmt.Errorf("config: state %q always: %w", s.Key, err)
		}
		cfg.Always = append(cfg.Always, tc)
	}

	if len(s.After) > 0 {
		cfg.After = make(map[string]primitives.TransitionConfig, len(s.After))
		for delayRef, t := range s.After {
			tc, err := t.toTransitionConfig("")
			if err != nil {
				return nil, fmt.Errorf("config: state %q after %q: %w", s.Key, delayRef, err)
			}
			cfg.After[delayRef] = tc
		}
	}

	for _, t := range s.OnDone {
		tc, err := t.toTransitionConfig("done")
		if err != nil {
			return nil, fmt.Errorf("config: state %q onDone: %w", s.Key, err)
		}
		cfg.OnDone = append(cfg.OnDone, tc)
	}

	return cfg, nil
}

func (t TransitionSpec) toTransitionConfig(event string) (primitives.TransitionConfig, error) {
	guard, err := t.Guard.toGuardDescriptor()
	if err != nil {
		return primitives.TransitionConfig{}, err
	}
	return primitives.TransitionConfig{
		Event:    event,
		Target:   t.Target,
		Guard:    guard,
		Actions:  namesToActions(t.Actions),
		Internal: t.Internal,
	}, nil
}

func (g *GuardSpec) toGuardDescriptor() (*primitives.GuardDescriptor, error) {
	if g == nil {
		return nil, nil
	}
	set := 0
	if g.Name != "" {
		set++
	}
	if g.StateIn != nil {
		set++
	}
	if len(g.And) > 0 {
		set++
	}
	if len(g.Or) > 0 {
		set++
	}
	if g.Not != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("guard must set exactly one of name/stateIn/and/or/not, got %d", set)
	}

	switch {
	case g.Name != "":
		return primitives.NamedGuard(g.Name), nil
	case g.StateIn != nil:
		return primitives.StateIn(g.StateIn.toStateValue()), nil
	case len(g.And) > 0:
		children, err := toGuardChildren(g.And)
		if err != nil {
			return nil, err
		}
		return primitives.And(children...), nil
	case len(g.Or) > 0:
		children, err := toGuardChildren(g.Or)
		if err != nil {
			return nil, err
		}
		return primitives.Or(children...), nil
	default: // g.Not != nil
		child, err := g.Not.toGuardDescriptor()
		if err != nil {
			return nil, err
		}
		return primitives.Not(*child), nil
	}
}

func toGuardChildren(specs []GuardSpec) ([]primitives.GuardDescriptor, error) {
	children := make([]primitives.GuardDescriptor, 0, len(specs))
	for i := range specs {
		d, err := specs[i].toGuardDescriptor()
		if err != nil {
			return nil, err
		}
		children = append(children, *d)
	}
	return children, nil
}

// namesToActions converts bare action names into ExecAction descriptors with
// Exec left nil, deferring resolution to internal/actions.Resolve's
// registry-lookup fallback.
func namesToActions(names []string) []primitives.ActionDescriptor {
	if len(names) == 0 {
		return nil
	}
	actions := make([]primitives.ActionDescriptor, 0, len(names))
	for _, name := range names {
		actions = append(actions, primitives.ExecAction{Name: name})
	}
	return actions
}

func parseStateType(s string) (primitives.StateType, error) {
	switch s {
	case "", "atomic":
		return primitives.Atomic, nil
	case "compound":
		return primitives.Compound, nil
	case "parallel":
		return primitives.Parallel, nil
	case "final":
		return primitives.Final, nil
	case "history":
		return primitives.History, nil
	default:
		return "", fmt.Errorf("unknown state type %q", s)
	}
}

func parseHistoryKind(s string) (primitives.HistoryKind, error) {
	switch s {
	case "":
		return primitives.NoHistory, nil
	case "shallow":
		return primitives.ShallowHistory, nil
	case "deep":
		return primitives.DeepHistory, nil
	default:
		return "", fmt.Errorf("unknown history kind %q", s)
	}
}
