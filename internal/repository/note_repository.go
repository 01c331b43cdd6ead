package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notekeeper/internal/model"
)

// NoteRepository defines note persistence operations. Every read and delete
// is keyed by owner as well as id.
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Note, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// Create creates a new note record.
func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error
}

// Update persists title, content and summary of an existing note owned by
// note.OwnerID. It never inserts: a note deleted in the meantime stays
// deleted and ErrNotFound is returned.
func (r *noteRepository) Update(ctx context.Context, note *model.Note) error {
	now := time.Now()
	db := r.db.WithContext(ctx)
	res := db.Model(&model.Note{}).
		Where("id = ? AND owner_id = ?", note.ID, note.OwnerID).
		Updates(map[string]interface{}{
			"title":      note.Title,
			"content":    note.Content,
			"summary":    note.Summary,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 for a matched row whose values did not change
		var count int64
		if err := db.Model(&model.Note{}).
			Where("id = ? AND owner_id = ?", note.ID, note.OwnerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	note.UpdatedAt = now
	return nil
}

// Delete removes a note owned by ownerID.
func (r *noteRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByIDAndOwner finds a note by id that belongs to ownerID.
func (r *noteRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&note).Error; err != nil {
		return nil, translate(err)
	}
	return &note, nil
}

// ListByOwner lists the owner's notes, newest first.
func (r *noteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	notes := make([]model.Note, 0)
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}
