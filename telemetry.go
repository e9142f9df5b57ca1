package statechartx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the subset of trace.Tracer the interpreter needs: one span per
// macrostep, one span per invoked child actor's lifetime.
type Tracer = trace.Tracer

// defaultTracer returns the global tracer provider's tracer under the
// instrumentation name "statechartx", used when no WithTracer option is
// given.
func defaultTracer() Tracer {
	return otel.Tracer("statechartx")
}

// traceMacrostep starts a span covering one macrostep, tagged with the
// triggering event type. Callers must end the returned span.
func traceMacrostep(ctx context.Context, tracer Tracer, machineID, eventType string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "statechartx.macrostep",
		trace.WithAttributes(
			attribute.String("statechartx.machine_id", machineID),
			attribute.String("statechartx.event_type", eventType),
		),
	)
}

// traceActor starts a span covering one invoked child actor's lifetime.
func traceActor(ctx context.Context, tracer Tracer, machineID, invokeID, src string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "statechartx.actor",
		trace.WithAttributes(
			attribute.String("statechartx.machine_id", machineID),
			attribute.String("statechartx.invoke_id", invokeID),
			attribute.String("statechartx.actor_src", src),
		),
	)
}

func endMacrostepSpan(span trace.Span, steps int, done bool) {
	span.SetAttributes(
		attribute.Int("statechartx.microstep_count", steps),
		attribute.Bool("statechartx.done", done),
	)
	span.End()
}
