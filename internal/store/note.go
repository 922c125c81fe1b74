package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/studytrack-api/internal/domain"
)

// NoteStore persists notes and their edit history.
type NoteStore interface {
	Create(ctx context.Context, n *domain.Note) error

	// GetByID returns ErrNoteNotFound if missing or not owned.
	GetByID(ctx context.Context, id, userID int64) (*domain.Note, error)

	// GetByIDForUpdate locks the note row until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id, userID int64) (*domain.Note, error)

	// List returns the user's notes, optionally only those of one session.
	List(ctx context.Context, userID int64, sessionID *int64) ([]*domain.Note, error)

	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id, userID int64) error

	// AddHistory appends a snapshot and sets its ID.
	AddHistory(ctx context.Context, h *domain.NoteHistory) error

	// ListHistory returns snapshots newest first.
	ListHistory(ctx context.Context, noteID, userID int64) ([]domain.NoteHistory, error)

	WithTx(tx *sql.Tx) NoteStore
}
