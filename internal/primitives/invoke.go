// InvokeDescriptor describes a child-actor invocation (§3, §4.7).
package primitives

// InvokeSrcKind names one of the built-in actor adapter shapes, or a custom
// name resolved against the machine's actor registry.
type InvokeSrcKind string

const (
	InvokeMachine    InvokeSrcKind = "machine"
	InvokePromise    InvokeSrcKind = "promise"
	InvokeCallback   InvokeSrcKind = "callback"
	InvokeObservable InvokeSrcKind = "observable"
	InvokeReducer    InvokeSrcKind = "reducer"
)

// InvokeSrc is the typed-tag + parameters source descriptor. Type names the
// adapter kind (one of the InvokeSrcKind constants, or a custom registry
// name); Params is the adapter-specific configuration (e.g. the child
// machine, the promise factory, the callback factory).
type InvokeSrc struct {
	Type   string
	Params any
}

// InvokeDescriptor is `{ id, src, data?, onDone?, onError?, autoForward?, sync? }`.
type InvokeDescriptor struct {
	ID          string
	Src         InvokeSrc
	Data        func(ctx *Context, event Event) any
	OnDone      *TransitionConfig
	OnError     *TransitionConfig
	AutoForward bool
	Sync        bool
}
