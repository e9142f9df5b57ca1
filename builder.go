package statechartx

import (
	"fmt"
	"strings"

	"github.com/comalice/statechartx/internal/primitives"
)

// MachineBuilder provides a fluent API for constructing a MachineConfig
// using dot-notation state names instead of hand-built StateConfig trees,
// generalizing the teacher's name-based MachineBuilder from its old
// integer-StateID Machine to the new declarative primitives.StateConfig
// tree (§4.1).
type MachineBuilder struct {
	id        string
	delimiter string
	context   map[string]any
	root      *primitives.StateConfig
	byName    map[string]*primitives.StateConfig
}

// StateBuilder provides fluent methods for configuring one named state.
type StateBuilder struct {
	b     *MachineBuilder
	state *primitives.StateConfig
}

// NewMachineBuilder starts a builder for a machine named id. rootInitial
// names the top-level state entered by default.
func NewMachineBuilder(id, rootInitial string) *MachineBuilder {
	root := &primitives.StateConfig{Key: "", Type: primitives.Compound, Initial: rootInitial}
	return &MachineBuilder{
		id:     id,
		root:   root,
		byName: map[string]*primitives.StateConfig{"": root},
	}
}

// WithDelimiter overrides the default "." id delimiter.
func (b *MachineBuilder) WithDelimiter(d string) *MachineBuilder {
	b.delimiter = d
	return b
}

// WithContext seeds the machine's initial extended state.
func (b *MachineBuilder) WithContext(ctx map[string]any) *MachineBuilder {
	b.context = ctx
	return b
}

// State returns a StateBuilder for the state at the dotted path name,
// auto-creating any missing ancestor as a bare compound node the way the
// teacher's builder auto-created parents on first reference.
func (b *MachineBuilder) State(name string) *StateBuilder {
	return &StateBuilder{b: b, state: b.resolve(name)}
}

func (b *MachineBuilder) resolve(name string) *primitives.StateConfig {
	if s, ok := b.byName[name]; ok {
		return s
	}
	parentPath, key := splitPath(name)
	parent := b.resolve(parentPath)
	s := &primitives.StateConfig{Key: key, Type: primitives.Atomic}
	parent.States = append(parent.States, s)
	b.byName[name] = s
	return s
}

func splitPath(path string) (parent, key string) {
	idx := strings.LastIndex(path, ".")
	if idx == -1 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// Build validates and returns the assembled MachineConfig.
func (b *MachineBuilder) Build() (*primitives.MachineConfig, error) {
	cfg := &primitives.MachineConfig{
		ID:        b.id,
		Delimiter: b.delimiter,
		Root:      b.root,
		Context:   b.context,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("build machine %q: %w", b.id, err)
	}
	return cfg, nil
}

// BuildMachine builds the config and compiles it into a Machine in one
// call, for callers who don't need the intermediate MachineConfig.
func (b *MachineBuilder) BuildMachine(opts ...MachineOption) (*Machine, error) {
	cfg, err := b.Build()
	if err != nil {
		return nil, err
	}
	return CreateMachine(cfg, opts...)
}

// Compound marks this state compound with the given initial child key.
func (sb *StateBuilder) Compound(initialKey string) *StateBuilder {
	sb.state.Type = primitives.Compound
	sb.state.Initial = initialKey
	return sb
}

// Parallel marks this state as a parallel region container.
func (sb *StateBuilder) Parallel() *StateBuilder {
	sb.state.Type = primitives.Parallel
	return sb
}

// Final marks this state final, with doneData computed at entry time.
func (sb *StateBuilder) Final(doneData func(ctx *primitives.Context, event primitives.Event) any) *StateBuilder {
	sb.state.Type = primitives.Final
	sb.state.DoneData = doneData
	return sb
}

// History marks this state a history pseudo-state of the given kind,
// defaulting to defaultTarget (a path relative to this state's parent)
// when no history has been recorded yet.
func (sb *StateBuilder) History(kind primitives.HistoryKind, defaultTarget string) *StateBuilder {
	sb.state.Type = primitives.History
	sb.state.History = kind
	sb.state.Target = defaultTarget
	return sb
}

// ID overrides the compiler-derived id for this state.
func (sb *StateBuilder) ID(id string) *StateBuilder {
	sb.state.ID = id
	return sb
}

// Tag attaches one or more tags (§3).
func (sb *StateBuilder) Tag(tags ...string) *StateBuilder {
	sb.state.Tags = append(sb.state.Tags, tags...)
	return sb
}

// Entry appends entry actions, run in order when this state is entered.
func (sb *StateBuilder) Entry(actions ...primitives.ActionDescriptor) *StateBuilder {
	sb.state.Entry = append(sb.state.Entry, actions...)
	return sb
}

// Exit appends exit actions, run in order when this state is exited.
func (sb *StateBuilder) Exit(actions ...primitives.ActionDescriptor) *StateBuilder {
	sb.state.Exit = append(sb.state.Exit, actions...)
	return sb
}

// On registers a transition on eventType to target (a dotted path, "#id",
// or "" for an internal actions-only transition).
func (sb *StateBuilder) On(eventType, target string, guard *primitives.GuardDescriptor, actions ...primitives.ActionDescriptor) *StateBuilder {
	t := primitives.TransitionConfig{Event: eventType, Guard: guard, Actions: actions}
	if target != "" {
		t.Target = []string{target}
	} else {
		t.Internal = true
	}
	return sb.addOn(eventType, t)
}

func (sb *StateBuilder) addOn(eventType string, t primitives.TransitionConfig) *StateBuilder {
	if sb.state.On == nil {
		sb.state.On = map[string][]primitives.TransitionConfig{}
	}
	sb.state.On[eventType] = append(sb.state.On[eventType], t)
	return sb
}

// Always registers an eventless transition, checked before any external or
// internal event (§4.2).
func (sb *StateBuilder) Always(target string, guard *primitives.GuardDescriptor, actions ...primitives.ActionDescriptor) *StateBuilder {
	sb.state.Always = append(sb.state.Always, primitives.TransitionConfig{
		Target: []string{target}, Guard: guard, Actions: actions,
	})
	return sb
}

// After registers a delayed transition firing delayRef (a literal
// millisecond string or a named delay) after this state is entered (§4.5).
func (sb *StateBuilder) After(delayRef, target string, guard *primitives.GuardDescriptor, actions ...primitives.ActionDescriptor) *StateBuilder {
	if sb.state.After == nil {
		sb.state.After = map[string]primitives.TransitionConfig{}
	}
	sb.state.After[delayRef] = primitives.TransitionConfig{
		Target: []string{target}, Guard: guard, Actions: actions,
	}
	return sb
}

// OnDone registers the transition taken when this compound/parallel
// state's region reaches its own final configuration (§4.3).
func (sb *StateBuilder) OnDone(target string, guard *primitives.GuardDescriptor, actions ...primitives.ActionDescriptor) *StateBuilder {
	sb.state.OnDone = append(sb.state.OnDone, primitives.TransitionConfig{
		Target: []string{target}, Guard: guard, Actions: actions,
	})
	return sb
}

// Invoke attaches a child-actor invocation, started on entry and stopped
// on exit (§4.7).
func (sb *StateBuilder) Invoke(desc primitives.InvokeDescriptor) *StateBuilder {
	sb.state.Invoke = append(sb.state.Invoke, desc)
	return sb
}
