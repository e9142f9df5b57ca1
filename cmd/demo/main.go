package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	statechartx "github.com/comalice/statechartx"
	"github.com/comalice/statechartx/internal/primitives"
	"github.com/comalice/statechartx/internal/production"
)

func main() {
	mb := statechartx.NewMachineBuilder("traffic-light", "red")
	mb.State("red").On("TIMER", "green", nil)
	mb.State("green").On("TIMER", "yellow", nil)
	mb.State("yellow").On("TIMER", "red", nil)

	m, err := mb.BuildMachine()
	if err != nil {
		panic(err)
	}

	persister, err := production.NewJSONPersister("/tmp")
	if err != nil {
		panic(err)
	}

	publishChan := make(chan production.PublishedEvent, 100)
	publisher := production.NewChannelPublisher(publishChan)
	visualizer := &production.DefaultVisualizer{}

	it := statechartx.NewInterpreter(m, statechartx.WithPersister(persister))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := it.Start(ctx); err != nil {
		panic(err)
	}
	defer it.Stop()

	it.OnTransition(func(s *statechartx.State) {
		meta := production.MachineMetadata{
			MachineID:  m.ID(),
			Transition: fmt.Sprintf("%v", s.Value),
			Timestamp:  time.Now(),
		}
		_ = publisher.Publish(ctx, primitives.NewEvent("TIMER", nil), meta)
	})

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	cycles := 0
	for {
		select {
		case <-ticker.C:
			it.Send(primitives.NewEvent("TIMER", nil))
			current := it.CurrentState()
			fmt.Printf("\n--- Cycle %d ---\n", cycles+1)
			fmt.Println("Current state:", current.Value)
			fmt.Println("DOT:\n" + visualizer.ExportDOT(m.Root(), current.StateIDs()))
			select {
			case pubEvent := <-publishChan:
				fmt.Printf("Published: %s (%s)\n", pubEvent.Metadata.Transition, pubEvent.Event.Type)
			default:
			}
			cycles++
			if cycles >= 12 {
				fmt.Println("Demo complete after 12 cycles.")
				return
			}
		case <-sig:
			fmt.Println("\nShutting down gracefully...")
			return
		}
	}
}
