// Tests for JSONPersister/YAMLPersister round-trip.
package production

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	statechartx "github.com/comalice/statechartx"
)

func testSnapshot() statechartx.MachineSnapshot {
	return statechartx.MachineSnapshot{
		MachineID:     "test-machine",
		StateIDs:      []string{"test-machine.s1"},
		Context:       map[string]any{"key": "value", "counter": 42},
		HistoryByID:   map[string][]string{},
		LastEventType: "xstate.init",
	}
}

func TestJSONPersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := NewJSONPersister(dir)
	if err != nil {
		t.Fatalf("NewJSONPersister failed: %v", err)
	}

	snapshot := testSnapshot()
	if err := p.Save(context.Background(), snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := p.Load(context.Background(), "test-machine")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snapJSON, _ := json.Marshal(snapshot)
	loadedJSON, _ := json.Marshal(loaded)
	if !bytes.Equal(snapJSON, loadedJSON) {
		t.Errorf("snapshot JSON mismatch:\nwant %s\ngot  %s", snapJSON, loadedJSON)
	}
}

func TestJSONPersister_LoadNonExistent(t *testing.T) {
	dir := t.TempDir()
	p, err := NewJSONPersister(dir)
	if err != nil {
		t.Fatalf("NewJSONPersister failed: %v", err)
	}

	_, err = p.Load(context.Background(), "nonexistent")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist wrapped error, got %v", err)
	}
}

func TestYAMLPersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := NewYAMLPersister(dir)
	if err != nil {
		t.Fatalf("NewYAMLPersister failed: %v", err)
	}

	snapshot := testSnapshot()
	if err := p.Save(context.Background(), snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := p.Load(context.Background(), "test-machine")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.MachineID != snapshot.MachineID || len(loaded.StateIDs) != len(snapshot.StateIDs) {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, snapshot)
	}
}
