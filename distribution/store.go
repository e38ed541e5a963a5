package distribution

import (
	"errors"
	"sync"
)

var errNilDelta = errors.New("distribution: nil delta")

// Store persists engine records.
type Store interface {
	// Load returns the persisted state. A store with nothing persisted
	// returns an empty state with no admin.
	Load() (*State, error)

	// Apply writes every record in the delta atomically.
	Apply(d *Delta) error
}

// MemStore is an in-memory implementation of Store for testing.
type MemStore struct {
	mu    sync.Mutex
	state *State

	// FailApply, when set, is returned by Apply without writing anything.
	FailApply error
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: NewState("")}
}

// Load returns a copy of the stored state.
func (s *MemStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

// Apply writes the delta into the stored state.
func (s *MemStore) Apply(d *Delta) error {
	if d == nil {
		return errNilDelta
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailApply != nil {
		return s.FailApply
	}
	d.Apply(s.state)
	return nil
}
