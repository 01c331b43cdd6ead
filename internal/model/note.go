package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a text note owned by exactly one user.
// Summary stays nil until a summarization attempt succeeds.
type Note struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID   uuid.UUID `json:"-" gorm:"type:char(36);not null;index:idx_notes_owner_created,priority:1"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Summary   *string   `json:"summary" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_notes_owner_created,priority:2"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Owner User `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
