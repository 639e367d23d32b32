package contest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant represents a contest entry: one person, one photo, one theme.
// Entry numbers are assigned at creation time, 1-based and dense per creation
// order; the vote count only ever grows until a full reset removes the row.
type Participant struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"not null"`
	Badge       string    `json:"badge"`
	Theme       string    `json:"theme" gorm:"not null"`
	PhotoURL    string    `json:"photo_url" gorm:"not null"`
	EntryNumber int       `json:"entry_number" gorm:"not null"`
	Votes       int       `json:"votes" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Participant) TableName() string {
	return "participants"
}

// BeforeCreate sets a UUID before creating the record
func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewParticipant creates a new participant with the given parameters.
// The entry number is assigned by the participant store at creation time.
func NewParticipant(name, badge, theme, photoURL string) *Participant {
	return &Participant{
		ID:        uuid.New(),
		Name:      name,
		Badge:     badge,
		Theme:     theme,
		PhotoURL:  photoURL,
		Votes:     0,
		CreatedAt: time.Now(),
	}
}

// Validate checks if the participant data is valid
func (p *Participant) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Theme == "" {
		return fmt.Errorf("theme is required")
	}
	if p.PhotoURL == "" {
		return fmt.Errorf("photo_url is required")
	}
	if p.Votes < 0 {
		return fmt.Errorf("votes cannot be negative")
	}
	return nil
}
