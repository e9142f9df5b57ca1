package actions

import (
	"fmt"
	"sort"
	"time"

	"github.com/comalice/statechartx/internal/algebra"
	"github.com/comalice/statechartx/internal/primitives"
)

// GuardRegistry is re-exported so callers only need to build one registry
// value to satisfy both algebra.Evaluate (choose branches) and Resolve.
type GuardRegistry = algebra.GuardRegistry

// Resolve executes an ordered action list against ctx (which callers must
// have already cloned — Resolve mutates it in place as assign actions run,
// so later actions in the same list observe earlier assigns) and returns
// every side effect produced, in the order encountered. choose/pure are
// expanded inline: the branch or factory is evaluated against the context
// as it stands at that point in the list, and its resulting actions are
// resolved immediately, before continuing the outer list.
func Resolve(list []primitives.ActionDescriptor, ctx *primitives.Context, event primitives.Event, meta primitives.EventMeta, stateValue primitives.StateValue, guards GuardRegistry, actionsReg Registry) (*Result, error) {
	result := &Result{Context: ctx}
	if err := applyActions(list, ctx, event, meta, stateValue, guards, actionsReg, result); err != nil {
		return nil, err
	}
	return result, nil
}

func applyActions(list []primitives.ActionDescriptor, ctx *primitives.Context, event primitives.Event, meta primitives.EventMeta, stateValue primitives.StateValue, guards GuardRegistry, actionsReg Registry, result *Result) error {
	for _, a := range list {
		if err := applyOne(a, ctx, event, meta, stateValue, guards, actionsReg, result); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(a primitives.ActionDescriptor, ctx *primitives.Context, event primitives.Event, meta primitives.EventMeta, stateValue primitives.StateValue, guards GuardRegistry, actionsReg Registry, result *Result) error {
	switch act := a.(type) {
	case primitives.AssignAction:
		if act.Updater != nil {
			if partial := act.Updater(ctx, event, meta); partial != nil {
				ctx.Update(partial)
			}
		}
		if len(act.Fields) > 0 {
			fields := make([]string, 0, len(act.Fields))
			for f := range act.Fields {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				val := act.Fields[f](ctx, event, meta)
				ctx.Update(map[string]any{f: val})
			}
		}
		return nil

	case primitives.RaiseAction:
		ev := primitives.NewEvent(act.EventType, nil)
		if act.Factory != nil {
			ev = act.Factory(ctx, event)
		}
		result.Raised = append(result.Raised, ev)
		return nil

	case primitives.SendAction:
		ev := primitives.NewEvent(act.EventType, nil)
		if act.Factory != nil {
			ev = act.Factory(ctx, event)
		}
		eff := SendEffect{EventType: ev.Type, Event: ev, To: act.To, SendID: act.ID}
		switch delay := act.Delay.(type) {
		case nil:
			// no delay
		case time.Duration:
			eff.HasDelay = true
			eff.Delay = delay
		case int:
			eff.HasDelay = true
			eff.Delay = time.Duration(delay) * time.Millisecond
		case string:
			d, ok := actionsReg.Delay(delay)
			if !ok {
				return fmt.Errorf("send %q: unresolved delay expression %q", act.EventType, delay)
			}
			eff.HasDelay = true
			eff.Delay = d
		default:
			return fmt.Errorf("send %q: unsupported delay value %v", act.EventType, act.Delay)
		}
		result.Sends = append(result.Sends, eff)
		return nil

	case primitives.EscalateAction:
		var data any = act.Data
		if act.Expr != nil {
			data = act.Expr(ctx, event)
		}
		ev := primitives.NewEvent(primitives.EventEscalate, data)
		result.Sends = append(result.Sends, SendEffect{EventType: ev.Type, Event: ev, To: primitives.ToParent()})
		return nil

	case primitives.CancelAction:
		result.Cancels = append(result.Cancels, CancelEffect{SendID: act.SendID})
		return nil

	case primitives.LogAction:
		var val any
		if act.Expr != nil {
			val = act.Expr(ctx, event)
		}
		result.Logs = append(result.Logs, LogEffect{Label: act.Label, Value: val})
		return nil

	case primitives.ChooseAction:
		for _, branch := range act.Branches {
			ok, err := algebra.Evaluate(branch.Guard, ctx, event, meta.State, stateValue, guards, event.Type, "<choose>")
			if err != nil {
				return err
			}
			if branch.Guard == nil || ok {
				return applyActions(branch.Actions, ctx, event, meta, stateValue, guards, actionsReg, result)
			}
		}
		return nil

	case primitives.PureAction:
		if act.Factory == nil {
			return nil
		}
		produced := act.Factory(ctx, event)
		return applyActions(produced, ctx, event, meta, stateValue, guards, actionsReg, result)

	case primitives.InvokeAction:
		result.Invokes = append(result.Invokes, InvokeEffect{Descriptor: act.Descriptor})
		return nil

	case primitives.StopAction:
		result.Stops = append(result.Stops, StopEffect{Ref: act.Ref})
		return nil

	case primitives.ExecAction:
		if act.Exec != nil {
			return act.Exec(ctx, event)
		}
		fn, ok := actionsReg.Action(act.Name)
		if !ok {
			return fmt.Errorf("action %q not registered", act.Name)
		}
		return fn(ctx, event)

	default:
		return fmt.Errorf("unknown action descriptor %T", a)
	}
}
