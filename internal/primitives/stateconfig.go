// StateConfig is the declarative, pre-compilation state-node shape accepted
// by the compiler: atomic, compound, parallel, final, and history nodes
// (§3, §4.1).
package primitives

// StateType is one of the five node kinds described in §3.
type StateType string

const (
	Atomic   StateType = "atomic"
	Compound StateType = "compound"
	Parallel StateType = "parallel"
	Final    StateType = "final"
	History  StateType = "history"
)

// HistoryKind distinguishes shallow from deep history, meaningful only on
// Type == History nodes.
type HistoryKind string

const (
	NoHistory      HistoryKind = ""
	ShallowHistory HistoryKind = "shallow"
	DeepHistory    HistoryKind = "deep"
)

// StateConfig is one node of the declarative config tree. Children are held
// as an ordered slice (not a map) so that document order — a depth-first
// pre-order enumeration per §3 — falls directly out of declaration order
// without a second bookkeeping pass.
type StateConfig struct {
	Key     string // local key within the parent; root's key is conventionally "" or the machine key
	ID      string // explicit id override; if empty the compiler derives one
	Type    StateType

	Initial string      // initial child key; required for Compound
	History HistoryKind // meaningful only when Type == History
	Target  string      // default-entry target key; meaningful only when Type == History

	States []*StateConfig

	On     map[string][]TransitionConfig
	Always []TransitionConfig
	After  map[string]TransitionConfig // key: delay ref ("100" or a named delay expression)
	OnDone []TransitionConfig          // compound/parallel node reaching a final configuration

	Entry []ActionDescriptor
	Exit  []ActionDescriptor

	Invoke []InvokeDescriptor

	Tags []string

	// DoneData maps (context, event) to the done.state.<id> event's payload.
	// Meaningful only on Final nodes.
	DoneData func(ctx *Context, event Event) any
}

// State is a convenience constructor for an atomic child.
func State(key string) *StateConfig {
	return &StateConfig{Key: key, Type: Atomic}
}

// WithType sets s.Type in place and returns s (builder-style).
func (s *StateConfig) WithType(t StateType) *StateConfig {
	s.Type = t
	return s
}

// AddChild appends a child state config, preserving document order.
func (s *StateConfig) AddChild(child *StateConfig) *StateConfig {
	s.States = append(s.States, child)
	return s
}

// AddTransition appends a transition for the given event.
func (s *StateConfig) AddTransition(event string, t TransitionConfig) *StateConfig {
	if s.On == nil {
		s.On = make(map[string][]TransitionConfig)
	}
	t.Event = event
	s.On[event] = append(s.On[event], t)
	return s
}

// AddAlways appends an eventless transition.
func (s *StateConfig) AddAlways(t TransitionConfig) *StateConfig {
	t.Event = ""
	s.Always = append(s.Always, t)
	return s
}

// AddAfter registers a delayed transition under delayRef.
func (s *StateConfig) AddAfter(delayRef string, t TransitionConfig) *StateConfig {
	if s.After == nil {
		s.After = make(map[string]TransitionConfig)
	}
	s.After[delayRef] = t
	return s
}
