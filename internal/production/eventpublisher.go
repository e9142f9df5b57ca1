package production

import (
	"context"
	"time"

	"github.com/comalice/statechartx/internal/primitives"
)

// MachineMetadata annotates a published event with where it came from: a
// machine id, a human-readable transition description (e.g. "green ->
// yellow"), and when it happened.
type MachineMetadata struct {
	MachineID  string
	Transition string
	Timestamp  time.Time
}

// PublishedEvent bundles an event with its machine metadata for publishing.
type PublishedEvent struct {
	Event    primitives.Event
	Metadata MachineMetadata
}

// ChannelPublisher is a stdlib-only implementation that forwards events to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch chan<- PublishedEvent
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- PublishedEvent) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event primitives.Event, metadata MachineMetadata) error {
	select {
	case p.ch <- PublishedEvent{Event: event, Metadata: metadata}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // Non-blocking drop
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
