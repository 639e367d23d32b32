package migrations

import "gorm.io/gorm"

// migration004Up seeds the singleton config row. Idempotent; a live row wins.
func migration004Up(db *gorm.DB) error {
	return db.Exec(`
        INSERT INTO activity_config (id, is_registration_open, is_voting_open, is_results_revealed, last_reset_timestamp)
        VALUES ('main_config', TRUE, TRUE, FALSE, 0)
        ON CONFLICT (id) DO NOTHING
    `).Error
}

// migration004Down removes the singleton config row
func migration004Down(db *gorm.DB) error {
	return db.Exec("DELETE FROM activity_config WHERE id = 'main_config'").Error
}
