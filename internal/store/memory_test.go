package store

import (
	"context"
	"errors"
	"testing"

	"github.com/wordlesmith/wordle-solver/internal/solver"
)

func newHandle(t *testing.T, id string) *Handle {
	t.Helper()
	solutions := []string{"crane", "slate"}
	s, err := solver.NewSession(solver.Config{
		Solutions: solutions,
		Ranker:    solver.NewRanker(solutions, 1),
	})
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	return &Handle{ID: id, Session: s}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	h := newHandle(t, "abc123")
	if err := m.Save(ctx, h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := m.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != h {
		t.Fatal("Get returned a different handle")
	}

	if err := m.Delete(ctx, "abc123"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := m.Get(ctx, "abc123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrNotFound", err)
	}
	if err := m.Delete(ctx, "abc123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double Delete: got %v, want ErrNotFound", err)
	}
}
