package process

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestRegistryNumbering(t *testing.T) {
	r := NewRegistry()
	j1 := spawnSleep(t, "30")
	j2 := spawnSleep(t, "30")
	defer r.KillAll()

	if n := r.Add(j1); n != 1 {
		t.Fatalf("first number = %d", n)
	}
	if n := r.Add(j2); n != 2 {
		t.Fatalf("second number = %d", n)
	}
	if j1.Number() != 1 || j2.Number() != 2 {
		t.Fatalf("job numbers %d, %d", j1.Number(), j2.Number())
	}

	got, ok := r.Get(2)
	if !ok || got != j2 {
		t.Fatalf("Get(2) = %v, %v", got, ok)
	}
	if jobs := r.Jobs(); len(jobs) != 2 || jobs[0] != j1 {
		t.Fatalf("Jobs() = %v", jobs)
	}

	r.Remove(1)
	if _, ok := r.Get(1); ok {
		t.Fatalf("removed job still present")
	}
	// Numbers are never reused.
	j3 := spawnSleep(t, "30")
	if n := r.Add(j3); n != 3 {
		t.Fatalf("number after removal = %d", n)
	}
}

func TestKillAll(t *testing.T) {
	r := NewRegistry()
	j := spawnSleep(t, "30")
	r.Add(j)
	r.KillAll()
	code, err := j.Wait(context.Background())
	if err != nil || code != 137 {
		t.Fatalf("killed job = %d, %v", code, err)
	}
}

func TestAdoptMovesJobToOrphans(t *testing.T) {
	r := NewRegistry()
	j := spawnSleep(t, "30")
	r.Add(j)
	defer func() { _ = j.Signal(SigKill); _, _ = j.Wait(context.Background()) }()

	if err := Adopt(j, r, time.Second); err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	if _, ok := r.Get(j.Number()); ok {
		t.Fatalf("job still in source registry")
	}
	found := false
	for _, o := range Orphans().Jobs() {
		if o == j {
			found = true
		}
	}
	if !found {
		t.Fatalf("job missing from orphan registry")
	}
	Orphans().Remove(j.Number())
}

func TestAdoptRacesWithExit(t *testing.T) {
	r := NewRegistry()
	j, err := Spawn(SpawnSpec{Argv: []string{"sh", "-c", "exit 0"}, Env: os.Environ()})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	r.Add(j)
	<-j.Done()

	err = Adopt(j, r, time.Second)
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("want process error, got %v", err)
	}
	if pe.Kind != ErrDetachRaced {
		t.Fatalf("kind = %v, want detach raced", pe.Kind)
	}
	// The failed detach leaves ownership where it was.
	if _, ok := r.Get(j.Number()); !ok {
		t.Fatalf("job vanished from source registry")
	}
}
