package algebra

import (
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// SelectTransitions implements §4.2 candidate selection: for every atomic
// (or final) state in the active configuration, in document order, walk
// from that state up through its ancestors and take the first transition
// whose event descriptor matches eventType and whose guard (if any)
// evaluates true. A transition reached via more than one atomic state's
// walk (e.g. a transition on a shared ancestor of two parallel regions) is
// only returned once.
func SelectTransitions(configuration []*nodetree.StateNode, eventType string, ctx *primitives.Context, event primitives.Event, stateValue primitives.StateValue, stateForGuards any, registry GuardRegistry) ([]*nodetree.Transition, error) {
	leaves := atomicStatesInDocumentOrder(configuration)
	seen := map[*nodetree.Transition]struct{}{}
	selected := make([]*nodetree.Transition, 0, len(leaves))

	for _, leaf := range leaves {
		t, err := selectForState(leaf, eventType, ctx, event, stateValue, stateForGuards, registry)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		selected = append(selected, t)
	}
	return selected, nil
}

func selectForState(leaf *nodetree.StateNode, eventType string, ctx *primitives.Context, event primitives.Event, stateValue primitives.StateValue, stateForGuards any, registry GuardRegistry) (*nodetree.Transition, error) {
	for cur := leaf; cur != nil; cur = cur.Parent {
		for _, t := range cur.Transitions {
			if !MatchesEvent(t.EventType, eventType) {
				continue
			}
			ok, err := Evaluate(t.Guard, ctx, event, stateForGuards, stateValue, registry, eventType, cur.ID)
			if err != nil {
				return nil, err
			}
			if ok {
				return t, nil
			}
		}
	}
	return nil, nil
}

func atomicStatesInDocumentOrder(configuration []*nodetree.StateNode) []*nodetree.StateNode {
	atoms := make([]*nodetree.StateNode, 0, len(configuration))
	for _, n := range configuration {
		if n.IsAtomic() {
			atoms = append(atoms, n)
		}
	}
	return nodetree.ByDocumentOrder(atoms)
}
