package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
)

// SessionFilter narrows a session listing. Nil fields do not filter.
type SessionFilter struct {
	Status    *domain.SessionStatus
	SubjectID *int64
	TopicID   *int64
	From      *time.Time // sessions started at or after
	To        *time.Time // sessions started before
	Limit     int
	Offset    int
}

// SessionStore persists study sessions. Every method is scoped by owner.
type SessionStore interface {
	// Create inserts the session and sets its ID.
	Create(ctx context.Context, s *domain.StudySession) error

	// GetByID returns the session without its pauses.
	// Returns ErrSessionNotFound if missing or not owned.
	GetByID(ctx context.Context, id, userID int64) (*domain.StudySession, error)

	// GetByIDForUpdate is GetByID with a row lock held until the enclosing
	// transaction ends. Only meaningful on a store bound with WithTx.
	GetByIDForUpdate(ctx context.Context, id, userID int64) (*domain.StudySession, error)

	// List returns matching sessions, newest first, with ElapsedSeconds
	// computed as of now.
	List(ctx context.Context, userID int64, filter SessionFilter, now time.Time) ([]*domain.StudySession, error)

	// UpdateStatus sets the status of a session that is not finished.
	// Returns ErrSessionNotFound when no unfinished owned session matched.
	UpdateStatus(ctx context.Context, id, userID int64, status domain.SessionStatus, at time.Time) error

	// Finish marks the session finished at endedAt and stores the elapsed
	// cache. Returns ErrSessionNotFound when no unfinished owned session matched.
	Finish(ctx context.Context, id, userID int64, endedAt time.Time, elapsedSeconds int64) error

	// Delete removes the session together with its pauses and notes.
	Delete(ctx context.Context, id, userID int64) error

	WithTx(tx *sql.Tx) SessionStore
}

// PauseStore persists session pauses.
type PauseStore interface {
	// Create inserts an open pause and sets its ID.
	// Returns ErrOpenPauseExists if the session already has an open pause.
	Create(ctx context.Context, p *domain.Pause) error

	// GetByID returns ErrPauseNotFound if the pause is missing or not owned.
	GetByID(ctx context.Context, id, userID int64) (*domain.Pause, error)

	// GetOpenForUpdate returns an owned pause that has not ended, locking
	// it. Returns ErrPauseNotFound when missing, not owned, or already closed.
	GetOpenForUpdate(ctx context.Context, id, userID int64) (*domain.Pause, error)

	// Close sets the end of an open pause.
	// Returns ErrPauseNotFound when no open owned pause matched.
	Close(ctx context.Context, id, userID int64, endedAt time.Time) error

	// CloseOpenForSession ends every open pause of the session and reports
	// how many were closed.
	CloseOpenForSession(ctx context.Context, sessionID, userID int64, endedAt time.Time) (int64, error)

	// ListBySession returns the session's pauses ordered by start.
	ListBySession(ctx context.Context, sessionID, userID int64) ([]domain.Pause, error)

	WithTx(tx *sql.Tx) PauseStore
}
