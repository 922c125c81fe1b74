package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresNoteStore implements store.NoteStore over notas and notas_historico.
type PostgresNoteStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresNoteStore creates a note store.
func NewPostgresNoteStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresNoteStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNoteStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "note_store")),
	}
}

var _ store.NoteStore = (*PostgresNoteStore)(nil)

// Create implements store.NoteStore.
func (s *PostgresNoteStore) Create(ctx context.Context, n *domain.Note) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("note.create"),
		n.UserID, n.SessionID, n.Title, n.Content, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
	return s.fail(ctx, "create", MapError(err, store.ErrNoteNotFound))
}

// GetByID implements store.NoteStore.
func (s *PostgresNoteStore) GetByID(ctx context.Context, id, userID int64) (*domain.Note, error) {
	return s.get(ctx, "note.get", id, userID)
}

// GetByIDForUpdate implements store.NoteStore.
func (s *PostgresNoteStore) GetByIDForUpdate(ctx context.Context, id, userID int64) (*domain.Note, error) {
	return s.get(ctx, "note.get_for_update", id, userID)
}

func (s *PostgresNoteStore) get(ctx context.Context, name string, id, userID int64) (*domain.Note, error) {
	var n domain.Note
	err := s.db.QueryRowContext(ctx, s.queries.MustGet(name), id, userID).Scan(
		&n.ID, &n.UserID, &n.SessionID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, s.fail(ctx, "get", MapError(err, store.ErrNoteNotFound))
	}
	return &n, nil
}

// List implements store.NoteStore.
func (s *PostgresNoteStore) List(ctx context.Context, userID int64, sessionID *int64) ([]*domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("note.list"), userID, sessionID)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	notes := []*domain.Note{}
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.SessionID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return notes, nil
}

// Update implements store.NoteStore.
func (s *PostgresNoteStore) Update(ctx context.Context, n *domain.Note) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("note.update"),
		n.ID, n.UserID, n.Title, n.Content, n.UpdatedAt,
	)
	if err != nil {
		return s.fail(ctx, "update", MapError(err, store.ErrNoteNotFound))
	}
	return CheckRowsAffected(result, store.ErrNoteNotFound)
}

// Delete implements store.NoteStore. History rows cascade.
func (s *PostgresNoteStore) Delete(ctx context.Context, id, userID int64) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("note.delete"), id, userID)
	if err != nil {
		return s.fail(ctx, "delete", MapError(err, store.ErrNoteNotFound))
	}
	return CheckRowsAffected(result, store.ErrNoteNotFound)
}

// AddHistory implements store.NoteStore.
func (s *PostgresNoteStore) AddHistory(ctx context.Context, h *domain.NoteHistory) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("note.history_add"),
		h.NoteID, h.UserID, h.Title, h.Content, h.EditedAt,
	).Scan(&h.ID)
	return s.fail(ctx, "add_history", MapError(err, store.ErrNoteNotFound))
}

// ListHistory implements store.NoteStore.
func (s *PostgresNoteStore) ListHistory(ctx context.Context, noteID, userID int64) ([]domain.NoteHistory, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("note.history_list"), noteID, userID)
	if err != nil {
		return nil, s.fail(ctx, "list_history", err)
	}
	defer func() { _ = rows.Close() }()

	history := []domain.NoteHistory{}
	for rows.Next() {
		var h domain.NoteHistory
		if err := rows.Scan(&h.ID, &h.NoteID, &h.UserID, &h.Title, &h.Content, &h.EditedAt); err != nil {
			return nil, s.fail(ctx, "list_history", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list_history", err)
	}
	return history, nil
}

// WithTx implements store.NoteStore.
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{db: tx, queries: s.queries, logger: s.logger}
}

func (s *PostgresNoteStore) fail(ctx context.Context, op string, err error) error {
	return logStoreError(ctx, s.logger, "note", op, err)
}
