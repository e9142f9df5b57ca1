// Package benchmarks provides performance benchmarks for event throughput.
package benchmarks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	statechartx "github.com/comalice/statechartx"
	"github.com/comalice/statechartx/internal/primitives"
)

func runThroughput(b *testing.B, m *statechartx.Machine, processed *int64) {
	b.Helper()
	it := statechartx.NewInterpreter(m, statechartx.WithQueueSize(10000))
	if err := it.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	defer it.Stop()

	e := primitives.NewEvent("tick", nil)
	numWorkers := 8
	eventsPerWorker := b.N / numWorkers
	if eventsPerWorker == 0 {
		eventsPerWorker = 1
	}
	var wg sync.WaitGroup
	b.ResetTimer()
	b.ReportAllocs()
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerWorker; i++ {
				it.Send(e)
			}
		}()
	}
	wg.Wait()

	timeout := time.After(30 * time.Second)
	for atomic.LoadInt64(processed) < int64(b.N) {
		select {
		case <-timeout:
			b.Fatalf("timeout waiting for processing, processed: %d / %d", atomic.LoadInt64(processed), b.N)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "events/second")
}

func BenchmarkEventThroughput(b *testing.B) {
	var processed int64
	count := primitives.ExecAction{Exec: func(ctx *primitives.Context, e primitives.Event) error {
		atomic.AddInt64(&processed, 1)
		return nil
	}}
	mb := statechartx.NewMachineBuilder("throughput", "idle")
	mb.State("idle").On("tick", "idle", nil, count)
	m, err := mb.BuildMachine()
	if err != nil {
		b.Fatal(err)
	}
	runThroughput(b, m, &processed)
}

func BenchmarkEventThroughputGuarded(b *testing.B) {
	var processed int64
	guard := primitives.Guard(func(ctx *primitives.Context, e primitives.Event, state any) bool {
		return true
	})
	count := primitives.ExecAction{Exec: func(ctx *primitives.Context, e primitives.Event) error {
		atomic.AddInt64(&processed, 1)
		return nil
	}}
	mb := statechartx.NewMachineBuilder("throughput_guarded", "idle")
	mb.State("idle").On("tick", "idle", guard, count)
	m, err := mb.BuildMachine()
	if err != nil {
		b.Fatal(err)
	}
	runThroughput(b, m, &processed)
}

func BenchmarkEventThroughputDeep(b *testing.B) {
	m, err := GenDeepMachine(5)
	if err != nil {
		b.Fatal(err)
	}
	it := statechartx.NewInterpreter(m, statechartx.WithQueueSize(10000))
	if err := it.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	defer it.Stop()

	e := primitives.NewEvent("tick", nil)
	numWorkers := 8
	eventsPerWorker := b.N / numWorkers
	if eventsPerWorker == 0 {
		eventsPerWorker = 1
	}
	var wg sync.WaitGroup
	b.ResetTimer()
	b.ReportAllocs()
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerWorker; i++ {
				it.Send(e)
			}
		}()
	}
	wg.Wait()
	time.Sleep(100 * time.Millisecond)
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "events/second")
}
