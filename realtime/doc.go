// Package realtime provides a tick-based deterministic runtime for StatechartX.
//
// The real-time runtime differs from the interpreter's default dispatch in
// one respect only: events are batched and flushed at fixed tick
// boundaries instead of being processed as soon as they are sent.
//   - Events are batched and processed at fixed tick boundaries
//   - Deterministic event ordering via priority + sequence number
//   - Fixed time-step execution (e.g., 60 FPS)
//
// # Example Usage
//
//	machine, _ := statechartx.NewMachineBuilder("game", "idle").BuildMachine()
//	it := statechartx.NewInterpreter(machine)
//	rt := realtime.NewRuntime(it, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	rt.Start(ctx)
//	rt.SendEvent(primitives.NewEvent("TICK", nil))
//
// # Trade-offs vs the interpreter's default dispatch
//
// Lower throughput, higher per-event latency, but guaranteed determinism
// and a fixed time budget per tick — the same trade a game loop makes
// against a purely reactive event loop.
//
// # Architecture
//
// RealtimeRuntime wraps an *statechartx.Interpreter rather than
// reimplementing transition logic: the interpreter already runs every
// event (including its own eventless closure and parallel-region
// handling) to a complete macrostep. The tick loop's only job is
// collecting SendEvent calls into a batch, sorting the batch
// deterministically, and flushing it into the interpreter at each tick
// boundary.
//
// # Event Ordering Guarantees
//
// Events are ordered deterministically using:
//  1. Priority (higher priority processed first)
//  2. Sequence number (FIFO for same priority)
//  3. Stable sorting (preserves relative order)
//
// This ensures that given the same sequence of SendEvent calls, the
// machine executes identically regardless of tick timing.
package realtime
