package actions

import (
	"time"

	"github.com/comalice/statechartx/internal/primitives"
)

// Registry resolves named actions and named delay expressions. Named guards
// are resolved by algebra.GuardRegistry instead; the resolver receives one
// alongside this Registry for the guards of choose branches.
type Registry interface {
	Action(name string) (func(ctx *primitives.Context, event primitives.Event) error, bool)
	Delay(name string) (time.Duration, bool)
}
