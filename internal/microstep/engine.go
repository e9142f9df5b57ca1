package microstep

import (
	"github.com/comalice/statechartx/internal/actions"
	"github.com/comalice/statechartx/internal/algebra"
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// Result is everything one microstep produced: the new configuration and
// history, every effect gathered from exit/transition/entry actions (in the
// order they ran), and the new extended-state context.
type Result struct {
	Configuration []*nodetree.StateNode
	History       HistoryValue
	Context       *primitives.Context
	StateValue    primitives.StateValue

	Raised  []primitives.Event
	Sends   []actions.SendEffect
	Cancels []actions.CancelEffect
	Invokes []actions.InvokeEffect
	Stops   []actions.StopEffect
	Logs    []actions.LogEffect

	Exited  []*nodetree.StateNode
	Entered []*nodetree.StateNode
}

// Run executes one microstep: the exit set and entry set for the given
// conflict-free transition batch, running exit actions (reverse document
// order), transition actions (selection order), and entry actions (document
// order) in that sequence, against a cloned context.
func Run(root *nodetree.StateNode, configuration []*nodetree.StateNode, transitions []*nodetree.Transition, history HistoryValue, ctx *primitives.Context, event primitives.Event, stateForGuards any, guards algebra.GuardRegistry, actReg actions.Registry) (*Result, error) {
	stateValue := DeriveStateValue(configuration, root)
	meta := primitives.EventMeta{State: stateForGuards}

	exitSet := computeExitSet(transitions, configuration)
	newHistory := RecordExitedHistory(exitSet, configuration, history)
	entrySet, _ := computeEntrySet(transitions, newHistory)

	workingCtx := ctx.Clone()
	result := &Result{Context: workingCtx, History: newHistory}

	exitOrdered := nodetree.ByReverseDocumentOrder(exitSet)
	for _, n := range exitOrdered {
		if err := runActions(n.Exit, workingCtx, event, meta, stateValue, guards, actReg, result); err != nil {
			return nil, err
		}
	}
	result.Exited = exitOrdered
	for _, n := range exitOrdered {
		for _, inv := range n.Invoke {
			result.Stops = append(result.Stops, actions.StopEffect{Ref: inv.ID})
		}
	}

	for _, t := range transitions {
		if err := runActions(t.Actions, workingCtx, event, meta, stateValue, guards, actReg, result); err != nil {
			return nil, err
		}
	}

	entryOrdered := nodetree.ByDocumentOrder(entrySet)
	for _, n := range entryOrdered {
		if err := runActions(n.Entry, workingCtx, event, meta, stateValue, guards, actReg, result); err != nil {
			return nil, err
		}
		for _, inv := range n.Invoke {
			result.Invokes = append(result.Invokes, actions.InvokeEffect{Descriptor: inv})
		}
	}
	result.Entered = entryOrdered

	result.Configuration = nextConfiguration(configuration, exitSet, entrySet)
	result.StateValue = DeriveStateValue(result.Configuration, root)
	return result, nil
}

func runActions(list []primitives.ActionDescriptor, ctx *primitives.Context, event primitives.Event, meta primitives.EventMeta, stateValue primitives.StateValue, guards algebra.GuardRegistry, actReg actions.Registry, result *Result) error {
	if len(list) == 0 {
		return nil
	}
	r, err := actions.Resolve(list, ctx, event, meta, stateValue, guards, actReg)
	if err != nil {
		return err
	}
	result.Raised = append(result.Raised, r.Raised...)
	result.Sends = append(result.Sends, r.Sends...)
	result.Cancels = append(result.Cancels, r.Cancels...)
	result.Invokes = append(result.Invokes, r.Invokes...)
	result.Stops = append(result.Stops, r.Stops...)
	result.Logs = append(result.Logs, r.Logs...)
	return nil
}

func nextConfiguration(configuration, exitSet, entrySet []*nodetree.StateNode) []*nodetree.StateNode {
	exited := make(map[*nodetree.StateNode]struct{}, len(exitSet))
	for _, n := range exitSet {
		exited[n] = struct{}{}
	}
	kept := make(map[*nodetree.StateNode]struct{}, len(configuration))
	out := make([]*nodetree.StateNode, 0, len(configuration)+len(entrySet))
	for _, n := range configuration {
		if _, gone := exited[n]; gone {
			continue
		}
		if _, dup := kept[n]; dup {
			continue
		}
		kept[n] = struct{}{}
		out = append(out, n)
	}
	for _, n := range entrySet {
		if _, dup := kept[n]; dup {
			continue
		}
		kept[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func computeExitSet(transitions []*nodetree.Transition, configuration []*nodetree.StateNode) []*nodetree.StateNode {
	seen := map[*nodetree.StateNode]struct{}{}
	var out []*nodetree.StateNode
	for _, t := range transitions {
		domain := nodetree.TransitionDomain(t)
		for _, n := range nodetree.ExitSet(domain, configuration) {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// computeEntrySet implements the SCXML computeEntrySet/
// addDescendantStatesToEnter/addAncestorStatesToEnter algorithm (§4.4).
func computeEntrySet(transitions []*nodetree.Transition, history HistoryValue) ([]*nodetree.StateNode, map[*nodetree.StateNode]bool) {
	order := []*nodetree.StateNode{}
	seen := map[*nodetree.StateNode]struct{}{}
	defaultEntry := map[*nodetree.StateNode]bool{}

	add := func(n *nodetree.StateNode) {
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		order = append(order, n)
	}

	var addDescendant func(n *nodetree.StateNode)
	var addAncestors func(n, ancestor *nodetree.StateNode)

	addDescendant = func(n *nodetree.StateNode) {
		if n.IsHistory() {
			recorded, ok := history[n.ID]
			if !ok {
				recorded = n.HistoryDefault
			}
			for _, s := range recorded {
				addDescendant(s)
			}
			for _, s := range recorded {
				addAncestors(s, n.Parent)
			}
			return
		}

		add(n)
		switch {
		case n.IsCompound():
			defaultEntry[n] = true
			if n.InitialTransition != nil {
				for _, s := range n.InitialTransition.Target {
					addDescendant(s)
				}
				for _, s := range n.InitialTransition.Target {
					addAncestors(s, n)
				}
			}
		case n.IsParallel():
			for _, child := range n.Children() {
				addDescendant(child)
			}
		}
	}

	addAncestors = func(n, ancestor *nodetree.StateNode) {
		for _, anc := range properAncestorsUpTo(n, ancestor) {
			add(anc)
			if anc.IsParallel() {
				for _, child := range anc.Children() {
					if !hasDescendantIn(child, seen) {
						addDescendant(child)
					}
				}
			}
		}
	}

	for _, t := range transitions {
		for _, target := range t.Target {
			addDescendant(target)
		}
		domain := nodetree.TransitionDomain(t)
		for _, target := range t.Target {
			addAncestors(target, domain)
		}
	}

	return order, defaultEntry
}

func properAncestorsUpTo(n, ancestor *nodetree.StateNode) []*nodetree.StateNode {
	all := nodetree.ProperAncestors(n)
	if ancestor == nil {
		return all
	}
	out := make([]*nodetree.StateNode, 0, len(all))
	for _, a := range all {
		if a == ancestor {
			break
		}
		out = append(out, a)
	}
	return out
}

func hasDescendantIn(n *nodetree.StateNode, seen map[*nodetree.StateNode]struct{}) bool {
	if _, ok := seen[n]; ok {
		return true
	}
	for _, c := range n.Children() {
		if hasDescendantIn(c, seen) {
			return true
		}
	}
	return false
}
