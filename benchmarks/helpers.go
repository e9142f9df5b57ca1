// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	statechartx "github.com/comalice/statechartx"
	"github.com/comalice/statechartx/internal/primitives"
	"gopkg.in/yaml.v3"
)

// FlatBuilder returns a builder for a flat machine with n atomic states
// cycling via "tick" events: s0 -> s1 -> ... -> s(n-1) -> s0.
func FlatBuilder(n int) *statechartx.MachineBuilder {
	if n < 1 {
		n = 1
	}
	b := statechartx.NewMachineBuilder(fmt.Sprintf("flat_%d", n), "s0")
	for i := 0; i < n; i++ {
		target := fmt.Sprintf("s%d", (i+1)%n)
		b.State(fmt.Sprintf("s%d", i)).On("tick", target, nil)
	}
	return b
}

// DeepBuilder returns a builder for depth sibling compound states, each
// containing a two-leaf toggle, simulating a deeply-sectioned statechart.
func DeepBuilder(depth int) *statechartx.MachineBuilder {
	if depth < 1 {
		depth = 1
	}
	b := statechartx.NewMachineBuilder(fmt.Sprintf("deep_%d", depth), "c0")
	for i := 0; i < depth; i++ {
		compound := fmt.Sprintf("c%d", i)
		b.State(compound).Compound("leaf1")
		b.State(compound + ".leaf1").On("tick", "leaf2", nil)
		b.State(compound + ".leaf2").On("tick", "leaf1", nil)
	}
	return b
}

// WideBuilder returns a builder for one "main" state with numTransitions
// outgoing "tick" transitions, each guarded so only the first (highest
// priority) ever fires — exercising the conflict-resolution path at scale.
func WideBuilder(numTransitions int) *statechartx.MachineBuilder {
	if numTransitions < 1 {
		numTransitions = 1
	}
	b := statechartx.NewMachineBuilder(fmt.Sprintf("wide_%d", numTransitions), "main")
	main := b.State("main")
	for i := 0; i < numTransitions; i++ {
		target := fmt.Sprintf("target%d", i)
		idx := i
		guard := primitives.Guard(func(ctx *primitives.Context, e primitives.Event, state any) bool {
			return idx == 0
		})
		main.On("tick", target, guard)
		b.State(target).On("tick", "main", nil)
	}
	return b
}

// GenFlatMachine builds a ready-to-run flat machine; see FlatBuilder.
func GenFlatMachine(n int) (*statechartx.Machine, error) {
	return FlatBuilder(n).BuildMachine()
}

// GenDeepMachine builds a ready-to-run deep machine; see DeepBuilder.
func GenDeepMachine(depth int) (*statechartx.Machine, error) {
	return DeepBuilder(depth).BuildMachine()
}

// GenWideMachine builds a ready-to-run wide machine; see WideBuilder.
func GenWideMachine(numTransitions int) (*statechartx.Machine, error) {
	return WideBuilder(numTransitions).BuildMachine()
}

// SnapshotYAML marshals a MachineSnapshot taken from it to YAML, the way
// production.YAMLPersister does, for use in serialization benchmarks.
func SnapshotYAML(it *statechartx.Interpreter) ([]byte, error) {
	return yaml.Marshal(it.Export())
}
