package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"notekeeper/internal/auth"
	"notekeeper/internal/cache"
	"notekeeper/internal/model"
	"notekeeper/internal/repository"
	"notekeeper/internal/summarizer"
)

const (
	noteCacheTTL = time.Minute
	// versions must outlive every entry cached against them
	noteVersionTTL = time.Hour
)

// ErrNoteNotFound is returned when the note does not exist or is not owned
// by the caller; callers cannot tell the two apart.
var ErrNoteNotFound = errors.New("note not found")

// Summarizer produces an optional summary for a note.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) summarizer.Result
}

// NoteService handles note operations. Every call is scoped to owner.
type NoteService interface {
	Create(ctx context.Context, owner auth.Identity, title, content string) (*model.Note, error)
	List(ctx context.Context, owner auth.Identity) ([]model.Note, error)
	Get(ctx context.Context, owner auth.Identity, id uuid.UUID) (*model.Note, error)
	Update(ctx context.Context, owner auth.Identity, id uuid.UUID, title, content string) (*model.Note, error)
	Delete(ctx context.Context, owner auth.Identity, id uuid.UUID) error
}

// cachedNote is a cached single-note read, stamped with the note's cache
// version at the moment it was read from the store. An entry whose version
// no longer matches is ignored.
type cachedNote struct {
	Version int64      `json:"version"`
	Note    model.Note `json:"note"`
}

type noteService struct {
	users      repository.UserRepository
	notes      repository.NoteRepository
	summarizer Summarizer
	cache      *cache.Client
	logger     *slog.Logger
}

// NewNoteService creates a new note service. cache may be nil.
func NewNoteService(
	users repository.UserRepository,
	notes repository.NoteRepository,
	summarizer Summarizer,
	cache *cache.Client,
	logger *slog.Logger,
) NoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &noteService{
		users:      users,
		notes:      notes,
		summarizer: summarizer,
		cache:      cache,
		logger:     logger,
	}
}

func (s *noteService) cacheKey(ownerID, id uuid.UUID) string {
	return fmt.Sprintf("note:%s:%s", ownerID, id)
}

func (s *noteService) versionKey(ownerID, id uuid.UUID) string {
	return s.cacheKey(ownerID, id) + ":version"
}

// bumpVersion invalidates every cached copy of the note.
func (s *noteService) bumpVersion(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.cache.Incr(ctx, s.versionKey(ownerID, id), noteVersionTTL); err != nil {
		return fmt.Errorf("invalidate cached note: %w", err)
	}
	return nil
}

// invalidate runs after a store mutation. A read that raced the mutation
// may already have cached the old row under the previous version; the bump
// makes that entry unusable.
func (s *noteService) invalidate(ctx context.Context, ownerID, id uuid.UUID) {
	if err := s.bumpVersion(ctx, ownerID, id); err != nil {
		s.logger.ErrorContext(ctx, "cached note may be stale", "note_id", id, "err", err)
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(ownerID, id)); err != nil {
		s.logger.WarnContext(ctx, "drop cached note", "note_id", id, "err", err)
	}
}

// ownerID resolves the caller's user id.
func (s *noteService) ownerID(ctx context.Context, owner auth.Identity) (uuid.UUID, error) {
	user, err := s.users.FindByUsername(ctx, owner.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("resolve owner: %w", err)
	}
	return user.ID, nil
}

// Create stores a new note for owner. The note is saved even when no
// summary could be produced.
func (s *noteService) Create(ctx context.Context, owner auth.Identity, title, content string) (*model.Note, error) {
	ownerID, err := s.ownerID(ctx, owner)
	if err != nil {
		return nil, err
	}

	note := &model.Note{
		OwnerID: ownerID,
		Title:   title,
		Content: content,
	}
	if text, ok := s.summarizer.Summarize(ctx, title, content).Value(); ok {
		note.Summary = &text
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// List returns owner's notes, newest first.
func (s *noteService) List(ctx context.Context, owner auth.Identity) ([]model.Note, error) {
	ownerID, err := s.ownerID(ctx, owner)
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Get retrieves a single note with caching. The version is read before the
// store so an entry written by a read that raced a mutation is stamped with
// the pre-mutation version.
func (s *noteService) Get(ctx context.Context, owner auth.Identity, id uuid.UUID) (*model.Note, error) {
	ownerID, err := s.ownerID(ctx, owner)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(ownerID, id)
	version, versionErr := s.cache.GetInt64(ctx, s.versionKey(ownerID, id))
	if versionErr == nil {
		var cached cachedNote
		if s.cache.GetJSON(ctx, key, &cached) && cached.Version == version {
			cached.Note.OwnerID = ownerID
			return &cached.Note, nil
		}
	}

	note, err := s.find(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	// without a version the entry could never be validated
	if versionErr == nil {
		s.cache.SetJSON(ctx, key, cachedNote{Version: version, Note: *note}, noteCacheTTL)
	}
	return note, nil
}

// Update replaces title and content. The summary is regenerated and only
// overwritten when the new attempt succeeds.
func (s *noteService) Update(ctx context.Context, owner auth.Identity, id uuid.UUID, title, content string) (*model.Note, error) {
	ownerID, err := s.ownerID(ctx, owner)
	if err != nil {
		return nil, err
	}

	note, err := s.find(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	note.Title = title
	note.Content = content
	if res := s.summarizer.Summarize(ctx, title, content); res.Ok() {
		text, _ := res.Value()
		note.Summary = &text
	} else if note.Summary != nil {
		s.logger.DebugContext(ctx, "keeping previous summary", "note_id", id)
	}

	// no write unless cached copies can be invalidated
	if err := s.bumpVersion(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if err := s.notes.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}

	s.invalidate(ctx, ownerID, id)
	return note, nil
}

// Delete removes owner's note.
func (s *noteService) Delete(ctx context.Context, owner auth.Identity, id uuid.UUID) error {
	ownerID, err := s.ownerID(ctx, owner)
	if err != nil {
		return err
	}

	if err := s.bumpVersion(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	s.invalidate(ctx, ownerID, id)
	return nil
}

func (s *noteService) find(ctx context.Context, id, ownerID uuid.UUID) (*model.Note, error) {
	note, err := s.notes.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return note, nil
}
