package statechartx

import (
	"context"
	"fmt"

	"github.com/comalice/statechartx/internal/microstep"
	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
)

// MachineSnapshot is the durable, serializable projection of an Interpreter's
// State: just enough to rehydrate a machine without replaying history (§8
// Rehydration scenario) — the active configuration by state id (so history
// nodes and parallel regions round-trip), the context, and the event that
// produced it.
type MachineSnapshot struct {
	MachineID     string         `json:"machineId" yaml:"machineId"`
	StateIDs      []string       `json:"stateIds" yaml:"stateIds"`
	Context       map[string]any `json:"context" yaml:"context"`
	HistoryByID   map[string][]string `json:"historyById" yaml:"historyById"`
	LastEventType string         `json:"lastEventType" yaml:"lastEventType"`
	Done          bool           `json:"done" yaml:"done"`
}

// Persister durably stores and reloads MachineSnapshots, generalizing the
// teacher's production.JSONPersister/YAMLPersister from a core.MachineSnapshot
// to this package's MachineSnapshot.
type Persister interface {
	Save(ctx context.Context, snapshot MachineSnapshot) error
	Load(ctx context.Context, machineID string) (MachineSnapshot, error)
}

// Export projects the interpreter's current State into a MachineSnapshot,
// suitable for handing to a Persister. Named distinctly from Snapshot,
// which instead returns the live (StateValue, Context) pair required by
// actors.MachineRunner when this Interpreter is invoked as a nested
// machine actor.
func (it *Interpreter) Export() MachineSnapshot {
	it.mu.Lock()
	defer it.mu.Unlock()
	return snapshotOf(it.machine.id, it.state)
}

func snapshotOf(machineID string, s *State) MachineSnapshot {
	ctxSnapshot := map[string]any{}
	if s.Context != nil {
		ctxSnapshot = s.Context.Snapshot()
	}
	hist := map[string][]string{}
	for id, vals := range s.history {
		ids := make([]string, len(vals))
		for i, v := range vals {
			ids[i] = v.ID
		}
		hist[id] = ids
	}
	return MachineSnapshot{
		MachineID:     machineID,
		StateIDs:      s.StateIDs(),
		Context:       ctxSnapshot,
		HistoryByID:   hist,
		LastEventType: s.Event.Type,
		Done:          s.Done,
	}
}

// Rehydrate reconstructs a State from a previously saved MachineSnapshot,
// resolving each persisted state id back to its compiled node. An unknown
// state id (e.g. the config changed between save and load) is an error;
// history entries whose ids are unknown are skipped.
func (m *Machine) Rehydrate(snap MachineSnapshot) (*State, error) {
	var configuration []*nodetree.StateNode
	for _, id := range snap.StateIDs {
		n, ok := m.ids.Get(id)
		if !ok {
			return nil, fmt.Errorf("machine %q: rehydrate: unknown state id %q", m.id, id)
		}
		configuration = append(configuration, n)
	}
	ctx := primitives.NewContext()
	ctx.Update(snap.Context)

	hist := microstep.HistoryValue{}
	for id, vals := range snap.HistoryByID {
		if _, ok := m.ids.Get(id); !ok {
			continue
		}
		nodes := make([]*nodetree.StateNode, 0, len(vals))
		for _, vid := range vals {
			if vn, ok := m.ids.Get(vid); ok {
				nodes = append(nodes, vn)
			}
		}
		hist[id] = nodes
	}

	value := microstep.DeriveStateValue(configuration, m.root)
	return &State{
		Value:         value,
		Context:       ctx,
		Event:         primitives.NewEvent(snap.LastEventType, nil),
		Done:          snap.Done,
		Changed:       false,
		machine:       m,
		configuration: configuration,
		history:       hist,
	}, nil
}
