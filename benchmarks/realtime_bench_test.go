package benchmarks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	statechartx "github.com/comalice/statechartx"
	"github.com/comalice/statechartx/internal/primitives"
	"github.com/comalice/statechartx/realtime"
)

// Honest Realtime Runtime Benchmarks
//
// These benchmarks measure actual system performance and behavior:
// - Throughput: Events actually processed per second (verified via action counters)
// - Latency: Real end-to-end time from SendEvent to state transition
// - Queue Capacity: Actual queue limits before backpressure
// - Tick Processing: Time to process event batches within a tick

func toggleBenchMachine(counted primitives.ActionDescriptor) (*statechartx.Machine, error) {
	b := statechartx.NewMachineBuilder("toggle", "a")
	if counted != nil {
		b.State("a").Entry(counted).On("EVENT_1", "b", nil)
		b.State("b").Entry(counted).On("EVENT_1", "a", nil)
	} else {
		b.State("a").On("EVENT_1", "b", nil)
		b.State("b").On("EVENT_1", "a", nil)
	}
	return b.BuildMachine()
}

// BenchmarkRealtimeThroughput measures actual events processed per second
// with verification that events were actually executed by the state machine.
func BenchmarkRealtimeThroughput(b *testing.B) {
	var processed int64
	count := primitives.ExecAction{Exec: func(ctx *primitives.Context, e primitives.Event) error {
		atomic.AddInt64(&processed, 1)
		return nil
	}}

	m, err := toggleBenchMachine(count)
	if err != nil {
		b.Fatal(err)
	}
	it := statechartx.NewInterpreter(m)
	rt := realtime.NewRuntime(it, realtime.Config{TickRate: time.Millisecond, MaxEventsPerTick: 10000})

	ctx := context.Background()
	if err := rt.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer rt.Stop()

	b.ResetTimer()
	b.ReportAllocs()

	successfulSends := 0
	for i := 0; i < b.N; i++ {
		if err := rt.SendEvent(primitives.NewEvent("EVENT_1", nil)); err != nil {
			b.StopTimer()
			b.Logf("Stopped at backpressure after %d events (%.1f%% of b.N)",
				successfulSends, float64(successfulSends)/float64(b.N)*100)
			break
		}
		successfulSends++
	}

	if successfulSends > 0 {
		timeout := time.After(30 * time.Second)
		for atomic.LoadInt64(&processed) < int64(successfulSends) {
			select {
			case <-timeout:
				b.Fatalf("timeout waiting for processing, processed: %d / %d successful sends",
					atomic.LoadInt64(&processed), successfulSends)
			default:
				time.Sleep(time.Millisecond)
			}
		}
		b.ReportMetric(float64(successfulSends)/b.Elapsed().Seconds(), "events/sec")
	}
}

// BenchmarkRealtimeLatency measures time from SendEvent to actual state
// transition, including tick scheduling overhead.
func BenchmarkRealtimeLatency(b *testing.B) {
	transitioned := make(chan time.Time, 100)
	var sendTimes []time.Time
	var sendMu sync.Mutex

	signal := primitives.ExecAction{Exec: func(ctx *primitives.Context, e primitives.Event) error {
		transitioned <- time.Now()
		return nil
	}}

	bld := statechartx.NewMachineBuilder("latency", "a")
	bld.State("a").On("EVENT_1", "b", nil)
	bld.State("b").Entry(signal).On("EVENT_1", "a", nil)
	m, err := bld.BuildMachine()
	if err != nil {
		b.Fatal(err)
	}

	it := statechartx.NewInterpreter(m)
	rt := realtime.NewRuntime(it, realtime.Config{TickRate: time.Millisecond, MaxEventsPerTick: 1000})

	ctx := context.Background()
	if err := rt.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer rt.Stop()

	b.ResetTimer()

	limit := b.N
	if limit > 50 {
		limit = 50
	}
	for i := 0; i < limit; i++ {
		sendMu.Lock()
		sendTimes = append(sendTimes, time.Now())
		sendMu.Unlock()

		if err := rt.SendEvent(primitives.NewEvent("EVENT_1", nil)); err != nil {
			b.Logf("Stopped at backpressure after %d sends", len(sendTimes))
			break
		}
	}

	var totalLatency time.Duration
	successfulMeasurements := 0
	timeout := time.After(5 * time.Second)

	for i := 0; i < len(sendTimes); i++ {
		select {
		case completeTime := <-transitioned:
			latency := completeTime.Sub(sendTimes[i])
			totalLatency += latency
			successfulMeasurements++
		case <-timeout:
			b.Logf("timeout after %d/%d measurements", successfulMeasurements, len(sendTimes))
			goto done
		}
	}

done:
	if successfulMeasurements > 0 {
		avgLatency := totalLatency / time.Duration(successfulMeasurements)
		b.ReportMetric(float64(avgLatency.Nanoseconds()), "ns/latency")
		b.ReportMetric(float64(avgLatency.Microseconds()), "µs/latency")
	}
}

// BenchmarkRealtimeQueueCapacity measures how many events can be queued
// before hitting backpressure, at different tick rates.
func BenchmarkRealtimeQueueCapacity(b *testing.B) {
	configs := []struct {
		name       string
		tickRate   time.Duration
		maxPerTick int
	}{
		{"60FPS", 16667 * time.Microsecond, 10000},
		{"1000Hz", time.Millisecond, 10000},
	}

	for _, cfg := range configs {
		b.Run(cfg.name, func(b *testing.B) {
			m, err := toggleBenchMachine(nil)
			if err != nil {
				b.Fatal(err)
			}
			it := statechartx.NewInterpreter(m)
			rt := realtime.NewRuntime(it, realtime.Config{TickRate: cfg.tickRate, MaxEventsPerTick: cfg.maxPerTick})

			ctx := context.Background()
			if err := rt.Start(ctx); err != nil {
				b.Fatal(err)
			}
			defer rt.Stop()

			b.ResetTimer()

			successfulSends := 0
			for i := 0; i < b.N; i++ {
				if err := rt.SendEvent(primitives.NewEvent("EVENT_1", nil)); err != nil {
					b.StopTimer()
					b.Logf("Queue capacity reached: %d events before backpressure", successfulSends)
					b.ReportMetric(float64(successfulSends), "events")
					return
				}
				successfulSends++
			}

			b.ReportMetric(float64(successfulSends), "events")
			b.Logf("Sent all %d events without backpressure", successfulSends)
		})
	}
}

// BenchmarkRealtimeTickProcessing measures how long it takes to process a
// batch of events within a single tick.
func BenchmarkRealtimeTickProcessing(b *testing.B) {
	var tickStartTime int64
	var tickEndTime int64
	var tickDurations []time.Duration
	var tickMu sync.Mutex

	markStart := primitives.ExecAction{Exec: func(ctx *primitives.Context, e primitives.Event) error {
		if atomic.LoadInt64(&tickStartTime) == 0 {
			atomic.StoreInt64(&tickStartTime, time.Now().UnixNano())
		}
		return nil
	}}
	markEnd := primitives.ExecAction{Exec: func(ctx *primitives.Context, e primitives.Event) error {
		atomic.StoreInt64(&tickEndTime, time.Now().UnixNano())
		return nil
	}}

	bld := statechartx.NewMachineBuilder("tick_processing", "a")
	bld.State("a").Entry(markStart).Exit(markEnd).On("EVENT_1", "b", nil)
	bld.State("b").Exit(markEnd).On("EVENT_1", "a", nil)
	m, err := bld.BuildMachine()
	if err != nil {
		b.Fatal(err)
	}

	it := statechartx.NewInterpreter(m)
	rt := realtime.NewRuntime(it, realtime.Config{TickRate: 10 * time.Millisecond, MaxEventsPerTick: 1000})

	ctx := context.Background()
	if err := rt.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer rt.Stop()

	b.ResetTimer()

	batchSize := 100
	for i := 0; i < b.N; i++ {
		atomic.StoreInt64(&tickStartTime, 0)
		atomic.StoreInt64(&tickEndTime, 0)

		for j := 0; j < batchSize; j++ {
			if err := rt.SendEvent(primitives.NewEvent("EVENT_1", nil)); err != nil {
				b.Logf("Backpressure at iteration %d, event %d", i, j)
				goto done
			}
		}

		time.Sleep(15 * time.Millisecond)

		startNano := atomic.LoadInt64(&tickStartTime)
		endNano := atomic.LoadInt64(&tickEndTime)
		if startNano > 0 && endNano > 0 {
			tickMu.Lock()
			tickDurations = append(tickDurations, time.Duration(endNano-startNano))
			tickMu.Unlock()
		}
	}

done:
	if len(tickDurations) > 0 {
		var total time.Duration
		for _, d := range tickDurations {
			total += d
		}
		avgDuration := total / time.Duration(len(tickDurations))
		b.ReportMetric(float64(avgDuration.Nanoseconds()), "ns/tick")
		b.ReportMetric(float64(avgDuration.Microseconds()), "µs/tick")
		b.ReportMetric(float64(batchSize), "events/tick")
	}
}
