package contest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoterInfo is the optional identity a voter attaches to their ballot. It is
// used only as the sampling population for the prize draw, never to enforce
// the one-vote contract.
type VoterInfo struct {
	Badge string `json:"badge"`
	Name  string `json:"name"`
}

// Ballot records a single cast vote. Ballots are append-only: never mutated,
// bulk-deleted only by a full reset.
type Ballot struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ParticipantID uuid.UUID `json:"participant_id" gorm:"type:uuid;not null"`
	VoterBadge    string    `json:"voter_badge" gorm:"not null"`
	VoterName     string    `json:"voter_name" gorm:"not null"`
	CastAt        time.Time `json:"cast_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Ballot) TableName() string {
	return "ballots"
}

// BeforeCreate sets a UUID before creating the record
func (b *Ballot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// NewBallot creates a ballot for the given target and voter
func NewBallot(participantID uuid.UUID, voter VoterInfo) *Ballot {
	return &Ballot{
		ID:            uuid.New(),
		ParticipantID: participantID,
		VoterBadge:    voter.Badge,
		VoterName:     voter.Name,
		CastAt:        time.Now(),
	}
}

// Validate checks if the ballot data is valid
func (b *Ballot) Validate() error {
	if b.ParticipantID == uuid.Nil {
		return fmt.Errorf("participant_id is required")
	}
	return nil
}
