package actors

import "github.com/comalice/statechartx/internal/primitives"

// ActorRegistry resolves a custom (non-built-in) invoke source name to a
// behavior factory, for machines that register their own actor kinds
// beyond the five built-ins.
type ActorRegistry interface {
	Actor(name string) (func() Behavior, bool)
}

// Build constructs the Behavior for an invoke descriptor, dispatching on
// its source kind (§4.7). Src.Params must hold the shape each kind
// expects: func() MachineRunner for InvokeMachine, PromiseFunc for
// InvokePromise, CallbackFunc for InvokeCallback, ObservableSource for
// InvokeObservable, ReducerSpec for InvokeReducer. Any other Src.Type is
// looked up in custom.
func Build(desc primitives.InvokeDescriptor, custom ActorRegistry) (Behavior, error) {
	switch primitives.InvokeSrcKind(desc.Src.Type) {
	case primitives.InvokeMachine:
		factory, ok := desc.Src.Params.(func() MachineRunner)
		if !ok {
			return nil, invokeParamErr(desc.ID, "func() MachineRunner")
		}
		return NewMachineBehavior(desc.ID, desc.Sync, factory), nil

	case primitives.InvokePromise:
		fn, ok := desc.Src.Params.(PromiseFunc)
		if !ok {
			return nil, invokeParamErr(desc.ID, "PromiseFunc")
		}
		return NewPromiseBehavior(desc.ID, fn), nil

	case primitives.InvokeCallback:
		fn, ok := desc.Src.Params.(CallbackFunc)
		if !ok {
			return nil, invokeParamErr(desc.ID, "CallbackFunc")
		}
		return NewCallbackBehavior(fn), nil

	case primitives.InvokeObservable:
		src, ok := desc.Src.Params.(ObservableSource)
		if !ok {
			return nil, invokeParamErr(desc.ID, "ObservableSource")
		}
		return NewObservableBehavior(desc.ID, src), nil

	case primitives.InvokeReducer:
		spec, ok := desc.Src.Params.(ReducerSpec)
		if !ok {
			return nil, invokeParamErr(desc.ID, "ReducerSpec")
		}
		return NewReducerBehavior(spec.Initial, spec.Reduce), nil

	default:
		if custom != nil {
			if factory, ok := custom.Actor(desc.Src.Type); ok {
				return factory(), nil
			}
		}
		return nil, unknownSourceErr(desc.ID, desc.Src.Type)
	}
}
