// Domain computation: LCCA, ancestor walks, and exit-set derivation. These
// operate purely on the compiled tree plus an active configuration, so both
// the transition algebra (conflict removal) and the microstep engine
// (exit/entry sets) share them without introducing a dependency cycle.
package nodetree

import "sort"

// IsDescendant reports whether n is a (possibly indirect, non-strict)
// descendant of ancestor.
func IsDescendant(n, ancestor *StateNode) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// IsProperDescendant reports strict descendance (n != ancestor).
func IsProperDescendant(n, ancestor *StateNode) bool {
	return n != ancestor && IsDescendant(n, ancestor)
}

// Ancestors returns n and each proper ancestor, innermost first.
func Ancestors(n *StateNode) []*StateNode {
	out := []*StateNode{}
	for cur := n; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}

// ProperAncestors returns n's proper ancestors only, innermost first.
func ProperAncestors(n *StateNode) []*StateNode {
	out := []*StateNode{}
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}

// LCCA returns the least common compound ancestor of a set of nodes: the
// innermost compound/parallel node that is a (non-strict) ancestor of every
// node in the set. Returns nil if the set is empty.
func LCCA(nodes ...*StateNode) *StateNode {
	if len(nodes) == 0 {
		return nil
	}
	candidate := nodes[0]
	// Walk candidate up until it is a compound/parallel ancestor of itself
	// (or the root), then test against the rest.
	for {
		if candidate.IsCompound() || candidate.IsParallel() || candidate.Parent == nil {
			if isCommonAncestor(candidate, nodes) {
				return candidate
			}
		}
		if candidate.Parent == nil {
			return candidate
		}
		candidate = candidate.Parent
	}
}

func isCommonAncestor(anc *StateNode, nodes []*StateNode) bool {
	for _, n := range nodes {
		if !IsDescendant(n, anc) {
			return false
		}
	}
	return true
}

// TransitionDomain returns the transition domain per §4.3: the LCCA of the
// transition's source and all its (resolved) targets, unless the transition
// is internal and every target is a descendant of the source, in which case
// the domain is the source itself.
func TransitionDomain(t *Transition) *StateNode {
	if len(t.Target) == 0 {
		return t.Source
	}
	if t.Internal {
		allDescendants := true
		for _, target := range t.Target {
			if !IsDescendant(target, t.Source) {
				allDescendants = false
				break
			}
		}
		if allDescendants {
			return t.Source
		}
	}
	nodes := append([]*StateNode{t.Source}, t.Target...)
	return LCCA(nodes...)
}

// ExitSet returns the subset of `configuration` that must exit for a
// transition whose domain is `domain`: every active node that is a
// (non-strict) descendant of domain. Order is unspecified here; callers
// order by document order as needed (reverse for execution, §3 invariant).
func ExitSet(domain *StateNode, configuration []*StateNode) []*StateNode {
	if domain == nil {
		return nil
	}
	out := []*StateNode{}
	for _, n := range configuration {
		if IsDescendant(n, domain) {
			out = append(out, n)
		}
	}
	return out
}

// ByDocumentOrder sorts nodes by Order ascending (entry order).
func ByDocumentOrder(nodes []*StateNode) []*StateNode {
	out := append([]*StateNode(nil), nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ByReverseDocumentOrder sorts nodes by Order descending (exit order).
func ByReverseDocumentOrder(nodes []*StateNode) []*StateNode {
	out := append([]*StateNode(nil), nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order > out[j].Order })
	return out
}
