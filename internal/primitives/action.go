// ActionDescriptor is the tagged-variant action carried by transitions and
// entry/exit lists (§3, §4.6).
package primitives

// ActionDescriptor is implemented by every concrete action kind below. The
// marker method keeps the set closed to this package's variants plus the
// user-defined opaque Exec action.
type ActionDescriptor interface {
	isAction()
}

// EventMeta is passed to assign updaters and log expressions so they can
// read the in-flight State without importing the root package (avoided to
// prevent an import cycle); callers type-assert to their own State type.
type EventMeta struct {
	State any
}

// AssignUpdater computes a partial context update from the current context,
// triggering event, and meta. Returning nil means "no change".
type AssignUpdater func(ctx *Context, event Event, meta EventMeta) map[string]any

// FieldUpdater computes a single field's new value (the per-field object
// form of `assign`).
type FieldUpdater func(ctx *Context, event Event, meta EventMeta) any

type AssignAction struct {
	Updater AssignUpdater
	Fields  map[string]FieldUpdater
}

func (AssignAction) isAction() {}

// Assign builds an assign action from a whole-context updater.
func Assign(updater AssignUpdater) AssignAction {
	return AssignAction{Updater: updater}
}

// AssignFields builds an assign action from per-field updaters.
func AssignFields(fields map[string]FieldUpdater) AssignAction {
	return AssignAction{Fields: fields}
}

type RaiseAction struct {
	EventType string
	Factory   func(ctx *Context, event Event) Event
}

func (RaiseAction) isAction() {}

func Raise(eventType string) RaiseAction { return RaiseAction{EventType: eventType} }

// SendTarget names the destination of a send action: self, the invoking
// parent, a named child actor, or a literal actor reference resolved at
// send time by the interpreter.
type SendTarget struct {
	Self    bool
	Parent  bool
	Child   string
	Literal any
}

// SendTo helpers.
func ToSelf() SendTarget       { return SendTarget{Self: true} }
func ToParent() SendTarget     { return SendTarget{Parent: true} }
func ToChild(id string) SendTarget { return SendTarget{Child: id} }

type SendAction struct {
	EventType string
	Factory   func(ctx *Context, event Event) Event
	To        SendTarget
	Delay     any // nil | time.Duration | string (named delay expression)
	ID        string
}

func (SendAction) isAction() {}

func Send(eventType string, to SendTarget) SendAction {
	return SendAction{EventType: eventType, To: to}
}

type CancelAction struct{ SendID string }

func (CancelAction) isAction() {}

func Cancel(sendID string) CancelAction { return CancelAction{SendID: sendID} }

type LogAction struct {
	Label string
	Expr  func(ctx *Context, event Event) any
}

func (LogAction) isAction() {}

func Log(label string, expr func(ctx *Context, event Event) any) LogAction {
	return LogAction{Label: label, Expr: expr}
}

type ChooseBranch struct {
	Guard   *GuardDescriptor
	Actions []ActionDescriptor
}

type ChooseAction struct{ Branches []ChooseBranch }

func (ChooseAction) isAction() {}

func Choose(branches ...ChooseBranch) ChooseAction {
	return ChooseAction{Branches: branches}
}

type PureAction struct {
	Factory func(ctx *Context, event Event) []ActionDescriptor
}

func (PureAction) isAction() {}

func Pure(factory func(ctx *Context, event Event) []ActionDescriptor) PureAction {
	return PureAction{Factory: factory}
}

type InvokeAction struct{ Descriptor InvokeDescriptor }

func (InvokeAction) isAction() {}

type StopAction struct{ Ref any }

func (StopAction) isAction() {}

func Stop(ref any) StopAction { return StopAction{Ref: ref} }

// EscalateAction is sugar over raise + send({to: parent}): the resolver
// turns it into a send targeting the invoking parent, and the interpreter's
// parent-ref retags it as error.platform.<id> on delivery, letting the
// parent's invoke carry an onError transition that reacts to it (§4.7, §8
// Scenario 6).
type EscalateAction struct {
	Data any
	Expr func(ctx *Context, event Event) any
}

func (EscalateAction) isAction() {}

// Escalate builds an escalate action carrying a literal data value.
func Escalate(data any) EscalateAction { return EscalateAction{Data: data} }

// EscalateExpr builds an escalate action whose data is computed from the
// context and triggering event.
func EscalateExpr(expr func(ctx *Context, event Event) any) EscalateAction {
	return EscalateAction{Expr: expr}
}

// ExecAction is the escape hatch for user-defined opaque actions: a named
// or inline side effect. The resolver runs it inline when it reaches it in
// the action list, against the working context of the current microstep;
// it is not deferred to the interpreter.
type ExecAction struct {
	Name string
	Exec func(ctx *Context, event Event) error
}

func (ExecAction) isAction() {}

func Exec(name string, fn func(ctx *Context, event Event) error) ExecAction {
	return ExecAction{Name: name, Exec: fn}
}
