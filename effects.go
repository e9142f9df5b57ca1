package statechartx

import (
	"github.com/comalice/statechartx/actors"
	"github.com/comalice/statechartx/internal/actions"
)

// These are re-exported so callers never need to import the internal
// actions package directly to name an effect's type.
type (
	SendEffect   = actions.SendEffect
	CancelEffect = actions.CancelEffect
	InvokeEffect = actions.InvokeEffect
	StopEffect   = actions.StopEffect
	LogEffect    = actions.LogEffect
)

// Behavior is the invocable child-actor interface (§4.7), re-exported from
// the public actors package so callers implementing a custom actor source
// only need to import this package.
type Behavior = actors.Behavior

