// Package algebra implements event matching, guard evaluation, transition
// selection, and SCXML conflict removal (§4.2, §4.3) over a compiled
// nodetree.StateNode tree.
package algebra

import "strings"

// MatchesEvent reports whether a transition's event descriptor matches an
// incoming event token per §4.2: an exact token match, a trailing `.*`
// prefix wildcard (`foo.*` matches `foo`, `foo.bar`, ...), or the bare `*`
// wildcard matching any non-empty token. The empty descriptor (an eventless
// transition) matches only the empty NULL token, and no non-empty
// descriptor, `*` included, matches the NULL token.
func MatchesEvent(descriptor, eventType string) bool {
	if descriptor == "" {
		return eventType == ""
	}
	if eventType == "" {
		return false
	}
	if descriptor == "*" {
		return true
	}
	if strings.HasSuffix(descriptor, ".*") {
		prefix := strings.TrimSuffix(descriptor, ".*")
		return eventType == prefix || strings.HasPrefix(eventType, prefix+".")
	}
	return descriptor == eventType
}
