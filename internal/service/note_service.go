package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// NoteInput carries the writable fields of a note. SessionID is only read
// on create.
type NoteInput struct {
	SessionID int64
	Title     string
	Content   string
}

// NoteService manages session notes and their edit history.
type NoteService interface {
	// Create returns ErrRelationshipInvalid when the session is not owned.
	Create(ctx context.Context, userID int64, in NoteInput) (*domain.Note, error)
	Get(ctx context.Context, userID, id int64) (*domain.Note, error)
	List(ctx context.Context, userID int64, sessionID *int64) ([]*domain.Note, error)

	// Update snapshots the previous title and content into the history in
	// the same transaction. An edit that changes nothing writes nothing.
	Update(ctx context.Context, userID, id int64, in NoteInput) (*domain.Note, error)
	Delete(ctx context.Context, userID, id int64) error

	// History returns the snapshots of an owned note, newest first.
	History(ctx context.Context, userID, id int64) ([]domain.NoteHistory, error)
}

type noteService struct {
	db       *sql.DB
	notes    store.NoteStore
	sessions store.SessionStore
	clock    Clock
	logger   *slog.Logger
}

// NewNoteService creates a NoteService.
func NewNoteService(
	db *sql.DB,
	notes store.NoteStore,
	sessions store.SessionStore,
	clock Clock,
	logger *slog.Logger,
) NoteService {
	if db == nil || notes == nil || sessions == nil {
		panic("note service requires db and stores")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &noteService{
		db:       db,
		notes:    notes,
		sessions: sessions,
		clock:    clock,
		logger:   logger.With(slog.String("component", "note_service")),
	}
}

// Create implements NoteService.
func (s *noteService) Create(ctx context.Context, userID int64, in NoteInput) (*domain.Note, error) {
	n, err := domain.NewNote(userID, in.SessionID, in.Title, in.Content, s.clock.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.GetByID(ctx, in.SessionID, userID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, relationshipError("session %d not found", in.SessionID)
		}
		return nil, s.wrap("create", err)
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, s.wrap("create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("note created",
		slog.Int64("note_id", n.ID),
		slog.Int64("session_id", n.SessionID))
	return n, nil
}

// Get implements NoteService.
func (s *noteService) Get(ctx context.Context, userID, id int64) (*domain.Note, error) {
	n, err := s.notes.GetByID(ctx, id, userID)
	if err != nil {
		return nil, s.wrap("get", err)
	}
	return n, nil
}

// List implements NoteService.
func (s *noteService) List(ctx context.Context, userID int64, sessionID *int64) ([]*domain.Note, error) {
	list, err := s.notes.List(ctx, userID, sessionID)
	if err != nil {
		return nil, s.wrap("list", err)
	}
	return list, nil
}

// Update implements NoteService.
func (s *noteService) Update(ctx context.Context, userID, id int64, in NoteInput) (*domain.Note, error) {
	var updated *domain.Note
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		notes := s.notes.WithTx(tx)
		n, err := notes.GetByIDForUpdate(ctx, id, userID)
		if err != nil {
			return err
		}
		updated = n

		snapshot, err := n.Edit(in.Title, in.Content, s.clock.now())
		if err != nil || snapshot == nil {
			return err
		}
		if err := notes.AddHistory(ctx, snapshot); err != nil {
			return err
		}
		return notes.Update(ctx, n)
	})
	if err != nil {
		return nil, s.wrap("update", err)
	}
	return updated, nil
}

// Delete implements NoteService.
func (s *noteService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.notes.Delete(ctx, id, userID); err != nil {
		return s.wrap("delete", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("note deleted", slog.Int64("note_id", id))
	return nil
}

// History implements NoteService.
func (s *noteService) History(ctx context.Context, userID, id int64) ([]domain.NoteHistory, error) {
	if _, err := s.notes.GetByID(ctx, id, userID); err != nil {
		return nil, s.wrap("history", err)
	}
	history, err := s.notes.ListHistory(ctx, id, userID)
	if err != nil {
		return nil, s.wrap("history", err)
	}
	return history, nil
}

func (s *noteService) wrap(op string, err error) error {
	return wrapCrudError("note", op, err)
}
