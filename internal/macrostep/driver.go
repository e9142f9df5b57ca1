// Package macrostep runs the outer event-processing loop: select
// transitions for an event (or the eventless closure), run a microstep,
// and repeat — draining the internal queue and re-checking for eventless
// transitions after each microstep — until the configuration is stable or
// final (§4, §5).
package macrostep

import (
	"fmt"

	"github.com/comalice/statechartx/internal/actions"
	"github.com/comalice/statechartx/internal/algebra"
	"github.com/comalice/statechartx/internal/microstep"
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// maxErrorConversions bounds how many action/guard-execution failures one
// macrostep will rewrap as error.execution before giving up: a machine whose
// own onError handler always fails would otherwise loop forever.
const maxErrorConversions = 1000

// appendErrorExecution enqueues err as a raised error.execution event,
// unless doing so would exceed maxErrorConversions, in which case it
// returns a wrapped hard error for the caller to abort on.
func appendErrorExecution(queue *[]primitives.Event, conversions *int, err error) error {
	*conversions++
	if *conversions > maxErrorConversions {
		return fmt.Errorf("macrostep: exceeded %d error.execution conversions, last: %w", maxErrorConversions, err)
	}
	*queue = append(*queue, primitives.NewEvent(primitives.EventErrorExecution, err))
	return nil
}

// StateBuilder constructs the opaque "meta.state" value handed to guards and
// assign/log/send expressions for the state as it stood at the start of the
// microstep about to run. Kept as a callback so this package never needs to
// import the root package's State type.
type StateBuilder func(value primitives.StateValue, ctx *primitives.Context, configuration []*nodetree.StateNode) any

// Outcome summarizes everything that happened across every microstep of one
// macrostep: the resulting configuration/context/history, and every
// deferred effect (sends, cancels, invocations, stops, logs) gathered along
// the way, in chronological order.
type Outcome struct {
	Configuration []*nodetree.StateNode
	History       microstep.HistoryValue
	Context       *primitives.Context
	StateValue    primitives.StateValue

	Sends   []actions.SendEffect
	Cancels []actions.CancelEffect
	Invokes []actions.InvokeEffect
	Stops   []actions.StopEffect
	Logs    []actions.LogEffect

	// Exited and Entered accumulate every node exited/entered across every
	// microstep of the macrostep, in the order it happened (§4.3 step 2,
	// §9's stop+restart note on invoke-id re-entry).
	Exited  []*nodetree.StateNode
	Entered []*nodetree.StateNode

	Steps int
	Done  bool
}

// Run drives one macrostep to quiescence. externalEvent is nil when the
// caller wants only the eventless closure run. Each iteration checks
// eventless transitions first; only when none is enabled does it take the
// next event: externalEvent first, then internally raised events in order.
func Run(root *nodetree.StateNode, configuration []*nodetree.StateNode, history microstep.HistoryValue, ctx *primitives.Context, externalEvent *primitives.Event, buildState StateBuilder, guards algebra.GuardRegistry, actReg actions.Registry) (*Outcome, error) {
	return RunSeeded(root, configuration, history, ctx, externalEvent, nil, buildState, guards, actReg)
}

// RunInitial builds and enters the machine's initial configuration: a
// synthetic transition whose sole target is root, which the entry-set
// algorithm expands through every nested initial-transition closure exactly
// as a normal transition into a compound/parallel ancestor would. It then
// drains the resulting eventless/raised-event closure via RunSeeded.
func RunInitial(root *nodetree.StateNode, ctx *primitives.Context, buildState StateBuilder, guards algebra.GuardRegistry, actReg actions.Registry) (*Outcome, error) {
	seed := &nodetree.Transition{Source: root, EventType: primitives.EventInit, Target: []*nodetree.StateNode{root}}
	initEvent := primitives.NewEvent(primitives.EventInit, nil)
	stateForGuards := buildState(primitives.StateValue{}, ctx, nil)

	res, err := microstep.Run(root, nil, []*nodetree.Transition{seed}, nil, ctx, initEvent, stateForGuards, guards, actReg)
	if err != nil {
		return nil, err
	}

	outcome, err := RunSeeded(root, res.Configuration, res.History, res.Context, nil, res.Raised, buildState, guards, actReg)
	if err != nil {
		return nil, err
	}

	outcome.Sends = append(append([]actions.SendEffect{}, res.Sends...), outcome.Sends...)
	outcome.Cancels = append(append([]actions.CancelEffect{}, res.Cancels...), outcome.Cancels...)
	outcome.Invokes = append(append([]actions.InvokeEffect{}, res.Invokes...), outcome.Invokes...)
	outcome.Stops = append(append([]actions.StopEffect{}, res.Stops...), outcome.Stops...)
	outcome.Logs = append(append([]actions.LogEffect{}, res.Logs...), outcome.Logs...)
	outcome.Exited = append(append([]*nodetree.StateNode{}, res.Exited...), outcome.Exited...)
	outcome.Entered = append(append([]*nodetree.StateNode{}, res.Entered...), outcome.Entered...)
	outcome.Steps++
	return outcome, nil
}

// RunSeeded is Run with an additional internal-queue seed, used by
// RunInitial to carry over events raised while entering the initial
// configuration.
func RunSeeded(root *nodetree.StateNode, configuration []*nodetree.StateNode, history microstep.HistoryValue, ctx *primitives.Context, externalEvent *primitives.Event, internalSeed []primitives.Event, buildState StateBuilder, guards algebra.GuardRegistry, actReg actions.Registry) (*Outcome, error) {
	config := configuration
	hist := history
	pending := externalEvent
	internalQueue := append([]primitives.Event(nil), internalSeed...)

	outcome := &Outcome{}
	errorConversions := 0

	for {
		if isFinalConfiguration(root, config) {
			outcome.Done = true
			break
		}

		stateValue := microstep.DeriveStateValue(config, root)
		stateForGuards := buildState(stateValue, ctx, config)

		enabled, err := algebra.SelectTransitions(config, "", ctx, primitives.NullEvent, stateValue, stateForGuards, guards)
		if err != nil {
			if cerr := appendErrorExecution(&internalQueue, &errorConversions, err); cerr != nil {
				return nil, cerr
			}
			outcome.Steps++
			continue
		}
		enabled = algebra.RemoveConflicts(enabled, config)

		firingEvent := primitives.NullEvent
		if len(enabled) == 0 {
			var next primitives.Event
			var hasNext bool
			switch {
			case pending != nil:
				next, hasNext = *pending, true
				pending = nil
			case len(internalQueue) > 0:
				next, hasNext = internalQueue[0], true
				internalQueue = internalQueue[1:]
			}
			if !hasNext {
				break
			}
			firingEvent = next
			enabled, err = algebra.SelectTransitions(config, firingEvent.Type, ctx, firingEvent, stateValue, stateForGuards, guards)
			if err != nil {
				if cerr := appendErrorExecution(&internalQueue, &errorConversions, err); cerr != nil {
					return nil, cerr
				}
				outcome.Steps++
				continue
			}
			enabled = algebra.RemoveConflicts(enabled, config)
			if len(enabled) == 0 {
				continue
			}
		}

		res, err := microstep.Run(root, config, enabled, hist, ctx, firingEvent, stateForGuards, guards, actReg)
		if err != nil {
			// §4.6/§7: an action/assign/guard execution failure is rewrapped
			// as a raised error.execution event rather than aborting the
			// macrostep, so an onError transition can react to it. The
			// failed microstep committed nothing (microstep.Run returns no
			// partial Result on error), so config/hist/ctx are untouched.
			if cerr := appendErrorExecution(&internalQueue, &errorConversions, err); cerr != nil {
				return nil, cerr
			}
			outcome.Steps++
			continue
		}

		config = res.Configuration
		hist = res.History
		ctx = res.Context
		internalQueue = append(internalQueue, res.Raised...)

		outcome.Sends = append(outcome.Sends, res.Sends...)
		outcome.Cancels = append(outcome.Cancels, res.Cancels...)
		outcome.Invokes = append(outcome.Invokes, res.Invokes...)
		outcome.Stops = append(outcome.Stops, res.Stops...)
		outcome.Logs = append(outcome.Logs, res.Logs...)
		outcome.Exited = append(outcome.Exited, res.Exited...)
		outcome.Entered = append(outcome.Entered, res.Entered...)
		outcome.Steps++
	}

	outcome.Configuration = config
	outcome.History = hist
	outcome.Context = ctx
	outcome.StateValue = microstep.DeriveStateValue(config, root)
	if isFinalConfiguration(root, config) {
		outcome.Done = true
	}
	return outcome, nil
}

func isFinalConfiguration(root *nodetree.StateNode, configuration []*nodetree.StateNode) bool {
	set := make(map[*nodetree.StateNode]struct{}, len(configuration))
	for _, n := range configuration {
		set[n] = struct{}{}
	}
	return isRegionDone(root, set)
}

func isRegionDone(n *nodetree.StateNode, active map[*nodetree.StateNode]struct{}) bool {
	switch {
	case n.IsFinal():
		return true
	case n.IsParallel():
		for _, c := range n.Children() {
			if !isRegionDone(c, active) {
				return false
			}
		}
		return true
	case n.IsCompound():
		for _, c := range n.Children() {
			if _, ok := active[c]; ok {
				return c.IsFinal()
			}
		}
		return false
	default:
		return false
	}
}
