package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/storage"
)

// ParticipantRepository implements storage.ParticipantStore using GORM.
// Every mutation re-reads the ordered snapshot and publishes it, so
// subscribers always replace their view wholesale.
type ParticipantRepository struct {
	db  *gorm.DB
	hub *storage.Hub[[]contest.Participant]
	log *log.Logger
}

// NewParticipantRepository creates a new PostgreSQL participant repository
func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{
		db:  db,
		hub: storage.NewHub[[]contest.Participant](),
		log: logger.Repository("participant"),
	}
}

// Create inserts a participant and assigns its entry number inside one
// transaction. The table is locked against concurrent inserts for the
// duration, so entry numbers stay dense and unique even when two
// registrations land simultaneously.
func (r *ParticipantRepository) Create(p *contest.Participant) error {
	r.log.Debug("creating participant", "participant_id", p.ID, "name", p.Name)

	if err := p.Validate(); err != nil {
		r.log.Error("participant validation failed", "error", err, "participant_id", p.ID)
		return fmt.Errorf("participant validation failed: %w", err)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("LOCK TABLE participants IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
			return fmt.Errorf("failed to lock participants table: %w", err)
		}

		var count int64
		if err := tx.Model(&contest.Participant{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}

		p.EntryNumber = int(count) + 1
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create participant: %w", err)
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to create participant", "error", err, "participant_id", p.ID)
		return err
	}

	r.log.Info("participant created", "participant_id", p.ID, "entry_number", p.EntryNumber)
	r.Refresh()
	notify(r.db, r.log, payloadParticipants)
	return nil
}

// IncrementVote adds to the participant's vote count with a commutative
// in-database add, never a read-modify-write of a cached value, so
// concurrent votes from independent clients all land.
func (r *ParticipantRepository) IncrementVote(id uuid.UUID, by int) error {
	r.log.Debug("incrementing vote", "participant_id", id, "by", by)

	result := r.db.Model(&contest.Participant{}).
		Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", by))
	if result.Error != nil {
		r.log.Error("failed to increment vote", "participant_id", id, "error", result.Error)
		return fmt.Errorf("failed to increment vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("vote increment targeted missing participant", "participant_id", id)
		return errors.New("participant not found")
	}

	r.Refresh()
	notify(r.db, r.log, payloadParticipants)
	return nil
}

// DeleteAll removes every participant. Reset support only.
func (r *ParticipantRepository) DeleteAll() error {
	r.log.Debug("deleting all participants")

	if err := r.db.Where("1 = 1").Delete(&contest.Participant{}).Error; err != nil {
		r.log.Error("failed to delete participants", "error", err)
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	r.log.Info("all participants deleted")
	r.Refresh()
	notify(r.db, r.log, payloadParticipants)
	return nil
}

// List returns all participants ordered by creation time ascending.
func (r *ParticipantRepository) List() ([]contest.Participant, error) {
	var participants []contest.Participant
	if err := r.db.Order("created_at ASC").Find(&participants).Error; err != nil {
		r.log.Error("failed to list participants", "error", err)
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	r.log.Debug("participants listed", "count", len(participants))
	return participants, nil
}

// Subscribe registers a snapshot callback and returns an unsubscribe func.
func (r *ParticipantRepository) Subscribe(fn func([]contest.Participant)) func() {
	return r.hub.Subscribe(fn)
}

// Refresh re-reads the ordered snapshot and fans it out. Called after local
// writes and by the notify listener when another process writes. A failed
// read publishes nothing, so subscribers keep their last good snapshot.
func (r *ParticipantRepository) Refresh() {
	snapshot, err := r.List()
	if err != nil {
		r.log.Error("failed to refresh participant snapshot", "error", err)
		return
	}
	r.hub.Publish(snapshot)
}
