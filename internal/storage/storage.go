// Package storage defines the store contracts the coordination core depends
// on. The core is format-agnostic over whatever backend implements them; the
// postgres and memory subpackages provide the two concrete adapters.
package storage

import (
	"github.com/google/uuid"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
)

// ParticipantStore is the durable collection of contest entries.
//
// List and every subscription push deliver a full snapshot ordered by
// creation time ascending; subscribers replace their view wholesale, no
// incremental diffing. IncrementVote must be a commutative atomic add at the
// store level so concurrent votes from independent clients all land.
type ParticipantStore interface {
	Create(p *contest.Participant) error
	IncrementVote(id uuid.UUID, by int) error
	DeleteAll() error
	List() ([]contest.Participant, error)
	Subscribe(fn func([]contest.Participant)) (unsubscribe func())
}

// ConfigStore holds the single shared ActivityConfig record.
//
// Read returns (nil, nil) when no record exists. Write is a full replace and
// is the only mutation path. Subscribers receive the config after every
// write, or nil while the record is absent.
type ConfigStore interface {
	Read() (*contest.ActivityConfig, error)
	Write(cfg contest.ActivityConfig) error
	Subscribe(fn func(*contest.ActivityConfig)) (unsubscribe func())
}

// BallotStore is the append-only collection of cast votes. It is only the
// sampling pool for the prize draw; vote counts live denormalized on the
// participants.
type BallotStore interface {
	Append(b *contest.Ballot) error
	ListAll() ([]contest.Ballot, error)
	DeleteAll() error
}
