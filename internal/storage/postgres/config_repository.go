package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/storage"
)

// configDocID is the primary key of the single live config row.
const configDocID = "main_config"

// activityConfigRow is the storage shape of the singleton config record. The
// lucky winner flattens to nullable columns; a NULL badge means no winner.
type activityConfigRow struct {
	ID                 string `gorm:"primaryKey"`
	IsRegistrationOpen bool   `gorm:"not null"`
	IsVotingOpen       bool   `gorm:"not null"`
	IsResultsRevealed  bool   `gorm:"not null"`
	LastResetTimestamp int64  `gorm:"not null;default:0"`
	LuckyVoterBadge    *string
	LuckyVoterName     *string
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (activityConfigRow) TableName() string {
	return "activity_config"
}

func (row *activityConfigRow) toDomain() *contest.ActivityConfig {
	cfg := &contest.ActivityConfig{
		IsRegistrationOpen: row.IsRegistrationOpen,
		IsVotingOpen:       row.IsVotingOpen,
		IsResultsRevealed:  row.IsResultsRevealed,
		LastResetTimestamp: row.LastResetTimestamp,
	}
	if row.LuckyVoterBadge != nil {
		cfg.LuckyDrawWinner = &contest.LuckyWinner{
			VoterBadge: *row.LuckyVoterBadge,
			VoterName:  derefString(row.LuckyVoterName),
		}
	}
	return cfg
}

func rowFromDomain(cfg contest.ActivityConfig) *activityConfigRow {
	row := &activityConfigRow{
		ID:                 configDocID,
		IsRegistrationOpen: cfg.IsRegistrationOpen,
		IsVotingOpen:       cfg.IsVotingOpen,
		IsResultsRevealed:  cfg.IsResultsRevealed,
		LastResetTimestamp: cfg.LastResetTimestamp,
	}
	if cfg.LuckyDrawWinner != nil {
		row.LuckyVoterBadge = &cfg.LuckyDrawWinner.VoterBadge
		row.LuckyVoterName = &cfg.LuckyDrawWinner.VoterName
	}
	return row
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ConfigRepository implements storage.ConfigStore using GORM over a single
// row. Write is a full replace; there is no partial update path.
type ConfigRepository struct {
	db  *gorm.DB
	hub *storage.Hub[*contest.ActivityConfig]
	log *log.Logger
}

// NewConfigRepository creates a new PostgreSQL config repository
func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{
		db:  db,
		hub: storage.NewHub[*contest.ActivityConfig](),
		log: logger.Repository("config"),
	}
}

// Read returns the live config, or (nil, nil) when no record exists.
func (r *ConfigRepository) Read() (*contest.ActivityConfig, error) {
	var row activityConfigRow
	if err := r.db.First(&row, "id = ?", configDocID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("config record absent")
			return nil, nil
		}
		r.log.Error("failed to read config", "error", err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return row.toDomain(), nil
}

// Write replaces the config record wholesale and publishes it.
func (r *ConfigRepository) Write(cfg contest.ActivityConfig) error {
	r.log.Debug("writing config",
		"registration_open", cfg.IsRegistrationOpen,
		"voting_open", cfg.IsVotingOpen,
		"results_revealed", cfg.IsResultsRevealed,
		"last_reset", cfg.LastResetTimestamp)

	row := rowFromDomain(cfg)
	if err := r.db.Save(row).Error; err != nil {
		r.log.Error("failed to write config", "error", err)
		return fmt.Errorf("failed to write config: %w", err)
	}

	r.log.Info("config written", "results_revealed", cfg.IsResultsRevealed)
	r.Refresh()
	notify(r.db, r.log, payloadConfig)
	return nil
}

// Subscribe registers a config callback and returns an unsubscribe func.
func (r *ConfigRepository) Subscribe(fn func(*contest.ActivityConfig)) func() {
	return r.hub.Subscribe(fn)
}

// Refresh re-reads the record and fans it out. A failed read publishes
// nothing, freezing subscribers at their last good value.
func (r *ConfigRepository) Refresh() {
	cfg, err := r.Read()
	if err != nil {
		r.log.Error("failed to refresh config snapshot", "error", err)
		return
	}
	r.hub.Publish(cfg)
}
