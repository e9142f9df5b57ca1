package algebra

import "github.com/comalice/statechartx/internal/nodetree"

// RemoveConflicts implements SCXML's conflict-removal algorithm (§4.3):
// transitions are considered in the order selection produced them (document
// order of their triggering atomic state); a later transition whose exit
// set overlaps an already-accepted transition is dropped unless its source
// is a proper descendant of the conflicting transition's source, in which
// case it takes priority and the broader transition is dropped instead.
func RemoveConflicts(enabled []*nodetree.Transition, configuration []*nodetree.StateNode) []*nodetree.Transition {
	filtered := make([]*nodetree.Transition, 0, len(enabled))

	for _, t1 := range enabled {
		exit1 := nodetree.ExitSet(nodetree.TransitionDomain(t1), configuration)
		preempted := false
		toRemove := map[*nodetree.Transition]struct{}{}

		for _, t2 := range filtered {
			exit2 := nodetree.ExitSet(nodetree.TransitionDomain(t2), configuration)
			if !overlaps(exit1, exit2) {
				continue
			}
			if nodetree.IsProperDescendant(t1.Source, t2.Source) {
				toRemove[t2] = struct{}{}
			} else {
				preempted = true
				break
			}
		}

		if preempted {
			continue
		}
		if len(toRemove) > 0 {
			next := filtered[:0:0]
			for _, t := range filtered {
				if _, drop := toRemove[t]; !drop {
					next = append(next, t)
				}
			}
			filtered = next
		}
		filtered = append(filtered, t1)
	}

	return filtered
}

func overlaps(a, b []*nodetree.StateNode) bool {
	set := make(map[*nodetree.StateNode]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; ok {
			return true
		}
	}
	return false
}
