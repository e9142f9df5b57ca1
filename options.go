package statechartx

// MachineOption configures a Machine at CreateMachine time.
type MachineOption func(*Machine)

// WithRegistries attaches a pre-built Registries (guards/actions/delays/
// actors) to the machine, replacing the empty default.
func WithRegistries(r *Registries) MachineOption {
	return func(m *Machine) { m.registries = r }
}

// InterpreterOption configures an Interpreter at NewInterpreter time.
type InterpreterOption func(*Interpreter)

// WithLogger attaches a Logger; the default is a stdlib-log-backed one
// matching the teacher's LoggingActionRunner style.
func WithLogger(l Logger) InterpreterOption {
	return func(it *Interpreter) { it.logger = l }
}

// WithClock attaches a Clock, overriding the real-time default. Used by
// tests to drive delayed sends deterministically.
func WithClock(c Clock) InterpreterOption {
	return func(it *Interpreter) { it.clock = c }
}

// WithTracer attaches an OpenTelemetry tracer; the default uses the global
// tracer provider under the instrumentation name "statechartx".
func WithTracer(t Tracer) InterpreterOption {
	return func(it *Interpreter) { it.tracer = t }
}

// WithIDGenerator overrides the default uuid-based send-id/invoke-id
// generator.
func WithIDGenerator(g IDGenerator) InterpreterOption {
	return func(it *Interpreter) { it.idGen = g }
}

// WithQueueSize sets the external event queue's buffer size (default 64).
// Send blocks once the queue is full.
func WithQueueSize(n int) InterpreterOption {
	return func(it *Interpreter) { it.queueSize = n }
}

// WithStrict makes Send report an error to the OnError subscribers, rather
// than silently drop the event, when it is called before Start or after
// Stop. Strict mode does not stop the interpreter, and it does not change
// how unhandled events or failed macrosteps are treated.
func WithStrict(strict bool) InterpreterOption {
	return func(it *Interpreter) { it.strict = strict }
}

// WithPersister attaches a Persister the interpreter calls after every
// macrostep that completes without error, whether or not it changed the
// state, for durable rehydration (§8 Rehydration scenario). The initial
// state computed by Start is not saved.
func WithPersister(p Persister) InterpreterOption {
	return func(it *Interpreter) { it.persister = p }
}

// defaultQueueSize matches the teacher's unbounded-slice queue behavior
// closely enough for a bounded channel: generous, rarely a bottleneck.
const defaultQueueSize = 64
