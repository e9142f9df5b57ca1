// Package microstep computes one SCXML microstep: the exit set, entry set,
// and resulting configuration for an already-selected, conflict-free batch
// of transitions (§4.4), executing entry/exit/transition actions through
// internal/actions as it goes.
package microstep

import (
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// HistoryValue maps a history pseudo-state's id to the configuration
// subset recorded the last time its containing compound/parallel state was
// exited. Absent entries fall back to the history node's compiled
// HistoryDefault.
type HistoryValue map[string][]*nodetree.StateNode

// RecordExitedHistory returns a new HistoryValue reflecting every history
// child of every exited compound/parallel state, recorded from
// preExitConfiguration (the configuration as it stood just before this
// microstep's exit set was removed).
func RecordExitedHistory(exitSet []*nodetree.StateNode, preExitConfiguration []*nodetree.StateNode, hv HistoryValue) HistoryValue {
	out := make(HistoryValue, len(hv))
	for k, v := range hv {
		out[k] = v
	}

	active := make(map[*nodetree.StateNode]struct{}, len(preExitConfiguration))
	for _, n := range preExitConfiguration {
		active[n] = struct{}{}
	}

	for _, n := range exitSet {
		for _, child := range n.Children() {
			if !child.IsHistory() {
				continue
			}
			if child.History == primitives.DeepHistory {
				out[child.ID] = activeAtomicDescendants(n, active)
			} else {
				out[child.ID] = activeImmediateChildren(n, active)
			}
		}
	}
	return out
}

func activeImmediateChildren(n *nodetree.StateNode, active map[*nodetree.StateNode]struct{}) []*nodetree.StateNode {
	var out []*nodetree.StateNode
	for _, c := range n.Children() {
		if _, ok := active[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func activeAtomicDescendants(n *nodetree.StateNode, active map[*nodetree.StateNode]struct{}) []*nodetree.StateNode {
	var out []*nodetree.StateNode
	var walk func(cur *nodetree.StateNode)
	walk = func(cur *nodetree.StateNode) {
		for _, c := range cur.Children() {
			if _, ok := active[c]; !ok {
				continue
			}
			if c.IsAtomic() {
				out = append(out, c)
			} else {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}
