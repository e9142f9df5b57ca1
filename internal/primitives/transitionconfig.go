// TransitionConfig is the declarative, pre-normalization transition shape
// accepted by the compiler (§3, §4.1).
package primitives

// TransitionConfig defines a single transition. Event is filled in by the
// compiler from the `On` map key for regular transitions, left empty for
// `Always` entries (the NULL/eventless event), and synthesized for `After`
// entries. Target is a list of target path strings (see §4.1 resolution
// rules); a nil/empty Target denotes an internal no-target transition
// (actions only).
type TransitionConfig struct {
	Event    string
	Target   []string
	Guard    *GuardDescriptor
	Actions  []ActionDescriptor
	Internal bool
}

// On builds a transition targeting a single state path.
func On(event, target string) TransitionConfig {
	return TransitionConfig{Event: event, Target: []string{target}}
}

// WithGuard attaches a guard to a transition (builder-style, returns a copy).
func (t TransitionConfig) WithGuard(g *GuardDescriptor) TransitionConfig {
	t.Guard = g
	return t
}

// WithActions attaches actions to a transition (builder-style, returns a copy).
func (t TransitionConfig) WithActions(actions ...ActionDescriptor) TransitionConfig {
	t.Actions = actions
	return t
}
