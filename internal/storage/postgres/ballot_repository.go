package postgres

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/logger"
)

// BallotRepository implements storage.BallotStore using GORM. Ballots are
// append-only; the only delete is the bulk wipe on reset.
type BallotRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewBallotRepository creates a new PostgreSQL ballot repository
func NewBallotRepository(db *gorm.DB) *BallotRepository {
	return &BallotRepository{
		db:  db,
		log: logger.Repository("ballot"),
	}
}

// Append records a cast vote.
func (r *BallotRepository) Append(b *contest.Ballot) error {
	r.log.Debug("appending ballot", "ballot_id", b.ID, "participant_id", b.ParticipantID)

	if err := b.Validate(); err != nil {
		r.log.Error("ballot validation failed", "error", err, "ballot_id", b.ID)
		return fmt.Errorf("ballot validation failed: %w", err)
	}

	if err := r.db.Create(b).Error; err != nil {
		r.log.Error("failed to append ballot", "error", err, "ballot_id", b.ID)
		return fmt.Errorf("failed to append ballot: %w", err)
	}

	r.log.Info("ballot appended", "ballot_id", b.ID, "participant_id", b.ParticipantID)
	return nil
}

// ListAll returns every recorded ballot, oldest first.
func (r *BallotRepository) ListAll() ([]contest.Ballot, error) {
	var ballots []contest.Ballot
	if err := r.db.Order("cast_at ASC").Find(&ballots).Error; err != nil {
		r.log.Error("failed to list ballots", "error", err)
		return nil, fmt.Errorf("failed to list ballots: %w", err)
	}

	r.log.Debug("ballots listed", "count", len(ballots))
	return ballots, nil
}

// DeleteAll removes every ballot. Reset support only.
func (r *BallotRepository) DeleteAll() error {
	r.log.Debug("deleting all ballots")

	if err := r.db.Where("1 = 1").Delete(&contest.Ballot{}).Error; err != nil {
		r.log.Error("failed to delete ballots", "error", err)
		return fmt.Errorf("failed to delete ballots: %w", err)
	}

	r.log.Info("all ballots deleted")
	return nil
}
