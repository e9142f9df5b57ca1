// StateValue is the recursive state-value shape described in §3: either an
// atomic leaf string, or a mapping from child key to child state value.
package primitives

// StateValue is a sum type: exactly one of (Leaf != "", Map == nil) for an
// atomic leaf, or (Map != nil) for a compound/parallel node's children.
// The zero value is not a valid StateValue.
type StateValue struct {
	Leaf string
	Map  map[string]StateValue
}

// Atomic builds a leaf state value.
func Atomic(leaf string) StateValue { return StateValue{Leaf: leaf} }

// Compound builds a non-leaf state value from a child key -> value mapping.
func Compound(m map[string]StateValue) StateValue { return StateValue{Map: m} }

// IsAtomic reports whether v is a leaf.
func (v StateValue) IsAtomic() bool { return v.Map == nil }

// Equal reports whether two state values describe the same tree of keys
// with identical leaves (§3 invariant).
func (v StateValue) Equal(other StateValue) bool {
	if v.IsAtomic() != other.IsAtomic() {
		return false
	}
	if v.IsAtomic() {
		return v.Leaf == other.Leaf
	}
	if len(v.Map) != len(other.Map) {
		return false
	}
	for k, cv := range v.Map {
		ov, ok := other.Map[k]
		if !ok || !cv.Equal(ov) {
			return false
		}
	}
	return true
}

// Matches reports whether v satisfies the partial state value `partial`
// under recursive containment: every key present in partial must be present
// in v with a matching (recursively) sub-value. Used by the built-in
// `stateIn` guard and State.Matches.
func (v StateValue) Matches(partial StateValue) bool {
	if partial.IsAtomic() {
		if v.IsAtomic() {
			return v.Leaf == partial.Leaf
		}
		// A leaf pattern matches a compound value iff the leaf names one of
		// its active child keys (partial containment at any depth).
		for k, cv := range v.Map {
			if k == partial.Leaf {
				return true
			}
			if cv.Matches(partial) {
				return true
			}
		}
		return false
	}
	if v.IsAtomic() {
		return false
	}
	for k, pv := range partial.Map {
		cv, ok := v.Map[k]
		if !ok || !cv.Matches(pv) {
			return false
		}
	}
	return true
}
