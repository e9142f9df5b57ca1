package core

import (
	"context"
	"errors"
	"testing"
	"time"

	statechartx "github.com/comalice/statechartx"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func snap(id string) statechartx.MachineSnapshot {
	return statechartx.MachineSnapshot{MachineID: id, StateIDs: []string{id + ".s1"}}
}

func TestInMemoryRegistry_RegisterAndLatest(t *testing.T) {
	r := NewInMemoryRegistry(fixedClock(time.Unix(0, 0)))
	ctx := context.Background()

	v1, err := r.Register(ctx, "m1", snap("m1"))
	if err != nil {
		t.Fatalf("register v1: %v", err)
	}
	if v1.Version != "v1" {
		t.Errorf("expected v1, got %s", v1.Version)
	}

	v2, err := r.Register(ctx, "m1", snap("m1"))
	if err != nil {
		t.Fatalf("register v2: %v", err)
	}
	if v2.Version != "v2" {
		t.Errorf("expected v2, got %s", v2.Version)
	}

	latest, err := r.Latest(ctx, "m1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != "v2" {
		t.Errorf("expected latest v2, got %s", latest.Version)
	}
}

func TestInMemoryRegistry_NotFound(t *testing.T) {
	r := NewInMemoryRegistry(nil)
	ctx := context.Background()

	if _, err := r.Latest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Version(ctx, "missing", "v1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.ListVersions(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryRegistry_ListVersionsNewestFirst(t *testing.T) {
	r := NewInMemoryRegistry(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.Register(ctx, "m1", snap("m1")); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	versions, err := r.ListVersions(ctx, "m1")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	want := []string{"v3", "v2", "v1"}
	if len(versions) != len(want) {
		t.Fatalf("expected %d versions, got %d", len(want), len(versions))
	}
	for i, v := range want {
		if versions[i] != v {
			t.Errorf("versions[%d] = %s, want %s", i, versions[i], v)
		}
	}
}

func TestInMemoryRegistry_ListMachines(t *testing.T) {
	r := NewInMemoryRegistry(nil)
	ctx := context.Background()

	if _, err := r.Register(ctx, "b", snap("b")); err != nil {
		t.Fatalf("register b: %v", err)
	}
	if _, err := r.Register(ctx, "a", snap("a")); err != nil {
		t.Fatalf("register a: %v", err)
	}

	machines, err := r.ListMachines(ctx)
	if err != nil {
		t.Fatalf("list machines: %v", err)
	}
	if len(machines) != 2 || machines[0] != "a" || machines[1] != "b" {
		t.Errorf("expected sorted [a b], got %v", machines)
	}
}
