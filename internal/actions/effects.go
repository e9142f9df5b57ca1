// Package actions resolves a node's ordered ActionDescriptor list (entry,
// exit, or transition actions) against the current extended state, per
// §4.6. It has no notion of "current configuration" or "transition domain"
// — those belong to microstep, which calls Resolve once per ordered batch
// of actions and applies the returned effects.
package actions

import (
	"time"

	"github.com/comalice/statechartx/internal/primitives"
)

// SendEffect is a deferred `send()`: unlike `raise()`, a send — even one
// targeting self with no delay — always goes through the interpreter's
// external queue or delayed-send scheduler, never the internal queue, so it
// is never visible within the macrostep that produced it.
type SendEffect struct {
	EventType string
	Event     primitives.Event
	To        primitives.SendTarget
	Delay     time.Duration
	HasDelay  bool
	SendID    string // caller generates one if empty
}

type CancelEffect struct{ SendID string }

type InvokeEffect struct{ Descriptor primitives.InvokeDescriptor }

type StopEffect struct{ Ref any }

type LogEffect struct {
	Label string
	Value any
}

// Result accumulates every side effect produced by resolving one ordered
// action list. Raised holds events destined for the internal queue (drives
// further microsteps within the same macrostep); everything else is handed
// to the interpreter to apply at the macrostep boundary.
type Result struct {
	Context *primitives.Context
	Raised  []primitives.Event
	Sends   []SendEffect
	Cancels []CancelEffect
	Invokes []InvokeEffect
	Stops   []StopEffect
	Logs    []LogEffect
}
