package algebra

import (
	"fmt"

	"github.com/comalice/statechartx/internal/primitives"
)

// GuardRegistry resolves a named guard to its implementation. Selection
// looks a guard up lazily, only when it encounters a GuardCustom descriptor
// with no inline Ref.
type GuardRegistry interface {
	Guard(name string) (primitives.GuardFunc, bool)
}

// Evaluate runs a guard descriptor to completion, recursing through
// and/or/not combinators and resolving named guards against registry. A
// panic inside a user-supplied guard function is recovered and turned into
// an error rather than unwinding the macrostep loop; callers that reach
// Evaluate from transition selection propagate the error up to the
// interpreter as an error.execution event rather than swallowing it.
func Evaluate(g *primitives.GuardDescriptor, ctx *primitives.Context, event primitives.Event, state any, stateValue primitives.StateValue, registry GuardRegistry, eventType, sourceID string) (result bool, err error) {
	if g == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("guard %s on transition %q from %q panicked: %v", describeGuard(g), eventType, sourceID, r)
		}
	}()
	result, err = evalInner(g, ctx, event, state, stateValue, registry)
	if err != nil {
		err = fmt.Errorf("guard %s on transition %q from %q: %w", describeGuard(g), eventType, sourceID, err)
	}
	return result, err
}

func evalInner(g *primitives.GuardDescriptor, ctx *primitives.Context, event primitives.Event, state any, stateValue primitives.StateValue, registry GuardRegistry) (bool, error) {
	switch g.Kind {
	case primitives.GuardStateIn:
		return stateValue.Matches(g.Params), nil
	case primitives.GuardAnd:
		for _, child := range g.Children {
			ok, err := evalInner(&child, ctx, event, state, stateValue, registry)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case primitives.GuardOr:
		for _, child := range g.Children {
			ok, err := evalInner(&child, ctx, event, state, stateValue, registry)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case primitives.GuardNot:
		if len(g.Children) != 1 {
			return false, fmt.Errorf("not guard requires exactly one child")
		}
		ok, err := evalInner(&g.Children[0], ctx, event, state, stateValue, registry)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default: // GuardCustom
		if g.Ref != nil {
			return g.Ref(ctx, event, state), nil
		}
		fn, ok := registry.Guard(g.Name)
		if !ok {
			return false, fmt.Errorf("guard %q not registered", g.Name)
		}
		return fn(ctx, event, state), nil
	}
}

func describeGuard(g *primitives.GuardDescriptor) string {
	switch g.Kind {
	case primitives.GuardStateIn:
		return "stateIn"
	case primitives.GuardAnd:
		return "and"
	case primitives.GuardOr:
		return "or"
	case primitives.GuardNot:
		return "not"
	default:
		if g.Name != "" {
			return g.Name
		}
		return "inline"
	}
}
