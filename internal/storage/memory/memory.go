// Package memory provides in-memory store adapters. They back the unit tests
// of the coordination core and single-node demo runs; production uses the
// postgres adapters.
package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/storage"
)

// ParticipantStore is an in-memory storage.ParticipantStore.
type ParticipantStore struct {
	mu           sync.Mutex
	participants []contest.Participant
	hub          *storage.Hub[[]contest.Participant]
}

// NewParticipantStore creates an empty participant store
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{hub: storage.NewHub[[]contest.Participant]()}
}

// Create appends a participant, assigning the next dense entry number.
func (s *ParticipantStore) Create(p *contest.Participant) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.EntryNumber = len(s.participants) + 1
	s.participants = append(s.participants, *p)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Publish(snapshot)
	return nil
}

// IncrementVote adds to the participant's vote count. The add commutes:
// concurrent increments from independent callers all land.
func (s *ParticipantStore) IncrementVote(id uuid.UUID, by int) error {
	s.mu.Lock()
	found := false
	for i := range s.participants {
		if s.participants[i].ID == id {
			s.participants[i].Votes += by
			found = true
			break
		}
	}
	var snapshot []contest.Participant
	if found {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if !found {
		return errors.New("participant not found")
	}
	s.hub.Publish(snapshot)
	return nil
}

// DeleteAll removes every participant.
func (s *ParticipantStore) DeleteAll() error {
	s.mu.Lock()
	s.participants = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Publish(snapshot)
	return nil
}

// List returns all participants ordered by creation time ascending.
func (s *ParticipantStore) List() ([]contest.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// Subscribe registers a snapshot callback.
func (s *ParticipantStore) Subscribe(fn func([]contest.Participant)) func() {
	return s.hub.Subscribe(fn)
}

func (s *ParticipantStore) snapshotLocked() []contest.Participant {
	snapshot := make([]contest.Participant, len(s.participants))
	copy(snapshot, s.participants)
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.Before(snapshot[j].CreatedAt)
	})
	return snapshot
}

// ConfigStore is an in-memory storage.ConfigStore.
type ConfigStore struct {
	mu  sync.Mutex
	cfg *contest.ActivityConfig
	hub *storage.Hub[*contest.ActivityConfig]
}

// NewConfigStore creates a config store holding no record.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{hub: storage.NewHub[*contest.ActivityConfig]()}
}

// Read returns the stored config, or (nil, nil) when absent.
func (s *ConfigStore) Read() (*contest.ActivityConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return nil, nil
	}
	cfg := *s.cfg
	return &cfg, nil
}

// Write replaces the stored config wholesale.
func (s *ConfigStore) Write(cfg contest.ActivityConfig) error {
	s.mu.Lock()
	stored := cfg
	s.cfg = &stored
	push := stored
	s.mu.Unlock()

	s.hub.Publish(&push)
	return nil
}

// Subscribe registers a config callback.
func (s *ConfigStore) Subscribe(fn func(*contest.ActivityConfig)) func() {
	return s.hub.Subscribe(fn)
}

// BallotStore is an in-memory storage.BallotStore.
type BallotStore struct {
	mu      sync.Mutex
	ballots []contest.Ballot
}

// NewBallotStore creates an empty ballot store
func NewBallotStore() *BallotStore {
	return &BallotStore{}
}

// Append records a ballot.
func (s *BallotStore) Append(b *contest.Ballot) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots = append(s.ballots, *b)
	return nil
}

// ListAll returns every recorded ballot.
func (s *BallotStore) ListAll() ([]contest.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contest.Ballot, len(s.ballots))
	copy(out, s.ballots)
	return out, nil
}

// DeleteAll removes every ballot.
func (s *BallotStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots = nil
	return nil
}
