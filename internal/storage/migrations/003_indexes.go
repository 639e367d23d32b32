package migrations

import "gorm.io/gorm"

// migration003Up creates performance indexes
func migration003Up(db *gorm.DB) error {
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_entry_number ON participants(entry_number)",
		"CREATE INDEX IF NOT EXISTS idx_participants_created_at ON participants(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_ballots_participant_id ON ballots(participant_id)",
		"CREATE INDEX IF NOT EXISTS idx_ballots_cast_at ON ballots(cast_at)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration003Down drops performance indexes
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"DROP INDEX IF EXISTS idx_ballots_cast_at",
		"DROP INDEX IF EXISTS idx_ballots_participant_id",
		"DROP INDEX IF EXISTS idx_participants_created_at",
		"DROP INDEX IF EXISTS idx_participants_entry_number",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return err
		}
	}

	return nil
}
