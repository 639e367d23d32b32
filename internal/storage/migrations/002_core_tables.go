package migrations

import "gorm.io/gorm"

// migration002Up creates all core tables
func migration002Up(db *gorm.DB) error {
	if err := db.Exec(`
        CREATE TABLE IF NOT EXISTS participants (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            name VARCHAR(255) NOT NULL,
            badge VARCHAR(64) NOT NULL,
            theme VARCHAR(255) NOT NULL,
            photo_url TEXT NOT NULL,
            entry_number INTEGER NOT NULL,
            votes INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )
    `).Error; err != nil {
		return err
	}

	if err := db.Exec(`
        CREATE TABLE IF NOT EXISTS ballots (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            participant_id UUID NOT NULL,
            voter_badge VARCHAR(64) NOT NULL,
            voter_name VARCHAR(255) NOT NULL,
            cast_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )
    `).Error; err != nil {
		return err
	}

	return db.Exec(`
        CREATE TABLE IF NOT EXISTS activity_config (
            id VARCHAR(32) PRIMARY KEY,
            is_registration_open BOOLEAN NOT NULL DEFAULT TRUE,
            is_voting_open BOOLEAN NOT NULL DEFAULT TRUE,
            is_results_revealed BOOLEAN NOT NULL DEFAULT FALSE,
            last_reset_timestamp BIGINT NOT NULL DEFAULT 0,
            lucky_voter_badge VARCHAR(64),
            lucky_voter_name VARCHAR(255),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )
    `).Error
}

// migration002Down drops all core tables
func migration002Down(db *gorm.DB) error {
	tables := []string{
		"activity_config",
		"ballots",
		"participants",
	}

	for _, table := range tables {
		if err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			return err
		}
	}

	return nil
}
