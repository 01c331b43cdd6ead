// Package memory implements the repositories in process memory for local
// development (DB_DRIVER=memory) and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"notekeeper/internal/model"
	"notekeeper/internal/repository"
)

// ErrDuplicateUsername mirrors the unique index on users.username.
var ErrDuplicateUsername = errors.New("duplicate username")

// DB holds users and notes behind a single mutex.
type DB struct {
	mu    sync.Mutex
	users map[string]model.User // keyed by username
	notes map[uuid.UUID]storedNote
	seq   int64

	now func() time.Time
}

type storedNote struct {
	note model.Note
	seq  int64
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		users: make(map[string]model.User),
		notes: make(map[uuid.UUID]storedNote),
		now:   time.Now,
	}
}

// Ensure interfaces are met.
var _ repository.UserRepository = (*UserRepo)(nil)
var _ repository.NoteRepository = (*NoteRepo)(nil)

// Users returns the credential store view of db.
func (db *DB) Users() *UserRepo { return &UserRepo{db: db} }

// Notes returns the note store view of db.
func (db *DB) Notes() *NoteRepo { return &NoteRepo{db: db} }

// --- UserRepository ---

// UserRepo is the in-memory credential store.
type UserRepo struct {
	db *DB
}

// Create inserts a user, assigning id and timestamps.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[user.Username]; ok {
		return ErrDuplicateUsername
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.db.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.db.users[user.Username] = *user
	return nil
}

// FindByUsername returns a copy of the stored user.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// ExistsByUsername reports whether username is taken.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, ok := r.db.users[username]
	return ok, nil
}

// --- NoteRepository ---

// NoteRepo is the in-memory note store.
type NoteRepo struct {
	db *DB
}

// Create inserts a note, assigning id and timestamps.
func (r *NoteRepo) Create(ctx context.Context, note *model.Note) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := r.db.now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	r.db.seq++
	r.db.notes[note.ID] = storedNote{note: cloneNote(*note), seq: r.db.seq}
	return nil
}

// Update replaces an existing note. Owner and creation time are kept from
// the stored row.
func (r *NoteRepo) Update(ctx context.Context, note *model.Note) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.notes[note.ID]
	if !ok || stored.note.OwnerID != note.OwnerID {
		return repository.ErrNotFound
	}
	note.CreatedAt = stored.note.CreatedAt
	note.UpdatedAt = r.db.now().UTC()
	stored.note = cloneNote(*note)
	r.db.notes[note.ID] = stored
	return nil
}

// Delete removes a note owned by ownerID.
func (r *NoteRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.notes[id]
	if !ok || stored.note.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.db.notes, id)
	return nil
}

// FindByIDAndOwner returns a copy of the note if ownerID owns it.
func (r *NoteRepo) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.notes[id]
	if !ok || stored.note.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	n := cloneNote(stored.note)
	return &n, nil
}

// ListByOwner returns the owner's notes, newest first. Notes created within
// the same clock tick keep reverse insertion order.
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	owned := make([]storedNote, 0)
	for _, s := range r.db.notes {
		if s.note.OwnerID == ownerID {
			owned = append(owned, s)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].note.CreatedAt.Equal(owned[j].note.CreatedAt) {
			return owned[i].note.CreatedAt.After(owned[j].note.CreatedAt)
		}
		return owned[i].seq > owned[j].seq
	})

	notes := make([]model.Note, 0, len(owned))
	for _, s := range owned {
		notes = append(notes, cloneNote(s.note))
	}
	return notes, nil
}

func cloneNote(n model.Note) model.Note {
	if n.Summary != nil {
		s := *n.Summary
		n.Summary = &s
	}
	return n
}
