package microstep

import (
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// DeriveStateValue computes the public StateValue shape (§3) from a compiled
// configuration: an atomic leaf string for a plain nesting chain, or a map
// once a parallel region or mixed-depth compound is involved.
func DeriveStateValue(configuration []*nodetree.StateNode, root *nodetree.StateNode) primitives.StateValue {
	active := make(map[*nodetree.StateNode]struct{}, len(configuration))
	for _, n := range configuration {
		active[n] = struct{}{}
	}
	return valueOf(root, active)
}

func valueOf(n *nodetree.StateNode, active map[*nodetree.StateNode]struct{}) primitives.StateValue {
	switch {
	case n.IsAtomic():
		return primitives.Atomic(n.Key)
	case n.IsParallel():
		m := make(map[string]primitives.StateValue, len(n.Children()))
		for _, c := range n.Children() {
			m[c.Key] = valueOf(c, active)
		}
		return primitives.Compound(m)
	case n.IsCompound():
		for _, c := range n.Children() {
			if _, ok := active[c]; !ok {
				continue
			}
			if c.IsAtomic() {
				return primitives.Atomic(c.Key)
			}
			return primitives.Compound(map[string]primitives.StateValue{c.Key: valueOf(c, active)})
		}
		return primitives.StateValue{}
	default:
		return primitives.StateValue{}
	}
}
