// Package actors implements the invocable child-actor shapes named in §4.7:
// a nested machine, a promise, a callback, an observable, and a reducer.
// Each is a Behavior; the interpreter starts one per active Invoke
// descriptor and tears it down when the invoking state exits.
//
// This package never imports the root package. MachineBehavior depends on
// MachineRunner instead of *statechartx.Interpreter directly, so the root
// package can implement MachineRunner and hand a factory down here without
// either package importing the other.
package actors

import (
	"context"

	"github.com/comalice/statechartx/internal/primitives"
)

// ParentRef is how a running behavior delivers done/error/emitted events
// back to the state that invoked it. The interpreter implements this by
// wrapping its own Send method together with the invoking id.
type ParentRef interface {
	Send(event primitives.Event)
}

// ParentAware is implemented by MachineRunner values that can be told their
// own ParentRef ahead of Start, so a nested machine's own
// send({to: parent})/escalate() actions route out to the invoking
// interpreter instead of looping back on the child itself.
type ParentAware interface {
	SetParent(ParentRef)
}

// Behavior is the uniform shape every invocable actor kind implements.
type Behavior interface {
	// Start begins the behavior's work, running until ctx is canceled or
	// Stop is called. Implementations that are not inherently async (a
	// promise, a reducer) still honor ctx for cancellation.
	Start(ctx context.Context, parent ParentRef) error
	// Send delivers an externally-originated event to the behavior, for
	// behaviors that accept input while running (machine, callback,
	// reducer). Promise and observable behaviors ignore it.
	Send(event primitives.Event)
	// Stop tears the behavior down. Safe to call more than once.
	Stop()
	// Snapshot returns the behavior's last known externally-visible value,
	// for service.getSnapshot() (§4.7).
	Snapshot() any
}
