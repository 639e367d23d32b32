// Package guard implements the Local Vote Guard: a per-client persisted
// marker recording that this client already voted, and the timestamp of the
// last server-driven reset it has observed. Clearing on a newer reset
// timestamp is the only path by which a client may vote again.
//
// The guard is best-effort. It prevents accidental double voting per client,
// not adversarial bypass; nothing server-side enforces it.
package guard

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// State is the persisted guard marker.
type State struct {
	Voted     bool  `json:"voted"`
	LastReset int64 `json:"last_reset,omitempty"`
}

// Store persists the guard marker for one client.
type Store interface {
	Get() (State, error)
	Set(state State) error
	Clear() error
}

// MemoryStore keeps the guard in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStore creates a cleared in-memory guard
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *MemoryStore) Set(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Set(State{})
}

// FileStore persists the guard as a small JSON file, the localStorage
// equivalent for kiosk or CLI clients. A missing file reads as a cleared
// guard.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a guard persisted at the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt marker reads as cleared rather than wedging the client.
		return State{}, nil
	}
	return state, nil
}

func (s *FileStore) Set(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
