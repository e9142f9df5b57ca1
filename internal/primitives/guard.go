// GuardDescriptor and the built-in combinators (§4.5).
package primitives

// GuardFunc is the inline-function form of a guard: pure with respect to
// (context, event, state) per §3's invariant.
type GuardFunc func(ctx *Context, event Event, state any) bool

// GuardKind names a built-in guard shape; any other string is a name looked
// up in the machine's guard registry (§4.5, §4.6).
type GuardKind string

const (
	GuardCustom   GuardKind = ""       // Ref names/implements a registered or inline guard
	GuardStateIn  GuardKind = "stateIn"
	GuardAnd      GuardKind = "and"
	GuardOr       GuardKind = "or"
	GuardNot      GuardKind = "not"
)

// GuardDescriptor is the tagged-variant guard condition carried by a
// TransitionConfig. Exactly one of Ref (inline func or registry name) or
// Children (for and/or/not) plus Params (for stateIn) is populated,
// depending on Kind.
type GuardDescriptor struct {
	Kind     GuardKind
	Name     string          // registered guard name, when Kind == GuardCustom and Ref == nil
	Ref      GuardFunc       // inline guard function, when Kind == GuardCustom
	Params   StateValue      // partial state value, when Kind == GuardStateIn
	Children []GuardDescriptor // sub-guards, when Kind is And/Or/Not
}

// Guard builds an inline-function guard descriptor.
func Guard(fn GuardFunc) *GuardDescriptor {
	return &GuardDescriptor{Kind: GuardCustom, Ref: fn}
}

// NamedGuard builds a guard descriptor resolved by name against the
// machine's guard registry at selection time.
func NamedGuard(name string) *GuardDescriptor {
	return &GuardDescriptor{Kind: GuardCustom, Name: name}
}

// StateIn builds the built-in `stateIn(value)` guard.
func StateIn(value StateValue) *GuardDescriptor {
	return &GuardDescriptor{Kind: GuardStateIn, Params: value}
}

// And, Or, Not build the built-in boolean combinators.
func And(children ...GuardDescriptor) *GuardDescriptor {
	return &GuardDescriptor{Kind: GuardAnd, Children: children}
}

func Or(children ...GuardDescriptor) *GuardDescriptor {
	return &GuardDescriptor{Kind: GuardOr, Children: children}
}

func Not(child GuardDescriptor) *GuardDescriptor {
	return &GuardDescriptor{Kind: GuardNot, Children: []GuardDescriptor{child}}
}
