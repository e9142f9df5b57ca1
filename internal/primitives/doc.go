// Package primitives provides the foundational, stdlib-only data structures
// shared by every tier of the statechart engine: events, state values, the
// declarative config tree accepted by the compiler, and the action/guard/
// invocation descriptor variants that config nodes carry.
//
// This package intentionally stays free of third-party imports. It describes
// shapes, not behavior — evaluation of guards, resolution of actions, and
// compilation into a runnable node tree all live in sibling internal
// packages that depend on primitives, never the other way around.
package primitives
