// Package core defines the Registry interface for managing versioned
// snapshots of running Machine instances, plus an in-memory implementation.
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	statechartx "github.com/comalice/statechartx"
)

// Registry manages versioned snapshots of running Machine instances.
type Registry interface {
	// Register saves current snapshot with computed version.
	Register(ctx context.Context, machineID string, snapshot statechartx.MachineSnapshot) (MachineSnapshotVersion, error)

	// Latest returns the most recent snapshot for machineID.
	Latest(ctx context.Context, machineID string) (MachineSnapshotVersion, error)

	// Version returns snapshot for specific version.
	Version(ctx context.Context, machineID, version string) (MachineSnapshotVersion, error)

	// ListVersions returns versions for machineID, newest first.
	ListVersions(ctx context.Context, machineID string) ([]string, error)

	// ListMachines returns all machine IDs.
	ListMachines(ctx context.Context) ([]string, error)
}

var (
	ErrNotFound     = errors.New("version or machine not found")
	ErrExists       = errors.New("version already exists")
	ErrInvalidState = errors.New("invalid machine state for versioning")
)

// MachineSnapshotVersion annotates a snapshot with a version and the time
// it was registered.
type MachineSnapshotVersion struct {
	statechartx.MachineSnapshot
	Version   string    `json:"version" yaml:"version"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// InMemoryRegistry keeps every registered version of every machine's
// snapshot in memory, newest last. It never evicts: callers that care
// about retention should wrap it or drain ListVersions periodically.
type InMemoryRegistry struct {
	mu       sync.RWMutex
	versions map[string][]MachineSnapshotVersion
	now      func() time.Time
}

// NewInMemoryRegistry returns a Registry backed by an in-process map.
// now defaults to time.Now; tests may override it for deterministic
// version timestamps.
func NewInMemoryRegistry(now func() time.Time) *InMemoryRegistry {
	if now == nil {
		now = time.Now
	}
	return &InMemoryRegistry{versions: map[string][]MachineSnapshotVersion{}, now: now}
}

func (r *InMemoryRegistry) Register(ctx context.Context, machineID string, snapshot statechartx.MachineSnapshot) (MachineSnapshotVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.versions[machineID]
	version := fmt.Sprintf("v%d", len(existing)+1)
	for _, v := range existing {
		if v.Version == version {
			return MachineSnapshotVersion{}, fmt.Errorf("register %s %s: %w", machineID, version, ErrExists)
		}
	}
	entry := MachineSnapshotVersion{MachineSnapshot: snapshot, Version: version, Timestamp: r.now()}
	r.versions[machineID] = append(existing, entry)
	return entry, nil
}

func (r *InMemoryRegistry) Latest(ctx context.Context, machineID string) (MachineSnapshotVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing := r.versions[machineID]
	if len(existing) == 0 {
		return MachineSnapshotVersion{}, fmt.Errorf("latest %s: %w", machineID, ErrNotFound)
	}
	return existing[len(existing)-1], nil
}

func (r *InMemoryRegistry) Version(ctx context.Context, machineID, version string) (MachineSnapshotVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.versions[machineID] {
		if v.Version == version {
			return v, nil
		}
	}
	return MachineSnapshotVersion{}, fmt.Errorf("version %s %s: %w", machineID, version, ErrNotFound)
}

func (r *InMemoryRegistry) ListVersions(ctx context.Context, machineID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing := r.versions[machineID]
	if len(existing) == 0 {
		return nil, fmt.Errorf("list versions %s: %w", machineID, ErrNotFound)
	}
	out := make([]string, len(existing))
	for i, v := range existing {
		out[len(existing)-1-i] = v.Version
	}
	return out, nil
}

func (r *InMemoryRegistry) ListMachines(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.versions))
	for id := range r.versions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
