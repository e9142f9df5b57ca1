package statechartx

import (
	"time"

	"github.com/comalice/statechartx/internal/primitives"
)

// Registries is the machine-wide lookup for everything a declarative
// config can reference by name instead of by inline value: guards,
// actions, delay expressions, and custom actor sources. It satisfies both
// algebra.GuardRegistry and actions.Registry, so one value threads through
// the whole pipeline, matching internal/core/registry.go's builder shape
// generalized from a single versioned-snapshot store to four name->impl
// maps.
type Registries struct {
	guards map[string]primitives.GuardFunc
	acts   map[string]func(ctx *primitives.Context, event primitives.Event) error
	delays map[string]time.Duration
	actors map[string]func() Behavior
}

// NewRegistries returns an empty, ready-to-use Registries.
func NewRegistries() *Registries {
	return &Registries{
		guards: map[string]primitives.GuardFunc{},
		acts:   map[string]func(ctx *primitives.Context, event primitives.Event) error{},
		delays: map[string]time.Duration{},
		actors: map[string]func() Behavior{},
	}
}

// WithGuard registers a named guard, returning r for chaining.
func (r *Registries) WithGuard(name string, fn primitives.GuardFunc) *Registries {
	r.guards[name] = fn
	return r
}

// WithAction registers a named action, returning r for chaining.
func (r *Registries) WithAction(name string, fn func(ctx *primitives.Context, event primitives.Event) error) *Registries {
	r.acts[name] = fn
	return r
}

// WithDelay registers a named delay expression, returning r for chaining.
func (r *Registries) WithDelay(name string, d time.Duration) *Registries {
	r.delays[name] = d
	return r
}

// WithActor registers a custom invoke source factory, returning r for
// chaining.
func (r *Registries) WithActor(name string, factory func() Behavior) *Registries {
	r.actors[name] = factory
	return r
}

func (r *Registries) Guard(name string) (primitives.GuardFunc, bool) {
	fn, ok := r.guards[name]
	return fn, ok
}

func (r *Registries) Action(name string) (func(ctx *primitives.Context, event primitives.Event) error, bool) {
	fn, ok := r.acts[name]
	return fn, ok
}

func (r *Registries) Delay(name string) (time.Duration, bool) {
	d, ok := r.delays[name]
	return d, ok
}

func (r *Registries) Actor(name string) (func() Behavior, bool) {
	fn, ok := r.actors[name]
	return fn, ok
}
