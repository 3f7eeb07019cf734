// internal/store/memory.go
//
// In-memory implementation of the session Store interface. Solve sessions
// are ephemeral (they live as long as a puzzle is being solved) so this is
// the production store as well as the test one; durable solve history goes
// to SQLite separately.
//
// Characteristics:
//   - Stores *Handle records keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Errors are returned for missing IDs on Get().
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wordlesmith/wordle-solver/internal/solver"
)

// ErrNotFound is returned by Get and Delete for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Handle pairs a solver session with its public identity and ownership.
// The solver package itself knows nothing about IDs or owners. Sessions are
// single-writer: the embedded mutex serializes mutations when concurrent
// requests hit the same session.
type Handle struct {
	sync.Mutex
	ID        string
	OwnerID   string // user ID or anonymous cookie ID
	Session   *solver.Session
	CreatedAt time.Time
}

// Store defines the keeping of active solve sessions.
// Implementations may be backed by memory (this package), Redis, etc.
type Store interface {
	// Save persists or updates a session handle.
	Save(ctx context.Context, h *Handle) error

	// Get retrieves a session handle by ID.
	Get(ctx context.Context, id string) (*Handle, error)

	// Delete removes a session handle; ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex       // guards sessions map
	sessions map[string]*Handle // keyed by Handle.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Handle)}
}

// Save adds or updates the handle in the map.
func (m *memory) Save(ctx context.Context, h *Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[h.ID] = h
	return nil
}

// Get looks up a handle by ID.
func (m *memory) Get(ctx context.Context, id string) (*Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.sessions[id]; ok {
		return h, nil
	}
	return nil, ErrNotFound
}

// Delete removes a handle by ID.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}
