package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresPauseStore implements store.PauseStore over pausas_sessao.
type PostgresPauseStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresPauseStore creates a pause store.
func NewPostgresPauseStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresPauseStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPauseStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "pause_store")),
	}
}

var _ store.PauseStore = (*PostgresPauseStore)(nil)

// Create implements store.PauseStore. The partial unique index on open
// pauses turns a concurrent second pause into ErrOpenPauseExists.
func (s *PostgresPauseStore) Create(ctx context.Context, p *domain.Pause) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("pause.create"),
		p.UserID, p.SessionID, p.StartedAt,
	).Scan(&p.ID)
	return s.fail(ctx, "create", MapError(err, store.ErrPauseNotFound))
}

// GetByID implements store.PauseStore.
func (s *PostgresPauseStore) GetByID(ctx context.Context, id, userID int64) (*domain.Pause, error) {
	return s.get(ctx, "pause.get", id, userID)
}

// GetOpenForUpdate implements store.PauseStore.
func (s *PostgresPauseStore) GetOpenForUpdate(ctx context.Context, id, userID int64) (*domain.Pause, error) {
	return s.get(ctx, "pause.get_open_for_update", id, userID)
}

func (s *PostgresPauseStore) get(ctx context.Context, name string, id, userID int64) (*domain.Pause, error) {
	var p domain.Pause
	err := s.db.QueryRowContext(ctx, s.queries.MustGet(name), id, userID).Scan(
		&p.ID, &p.UserID, &p.SessionID, &p.StartedAt, &p.EndedAt,
	)
	if err != nil {
		return nil, s.fail(ctx, "get", MapError(err, store.ErrPauseNotFound))
	}
	return &p, nil
}

// Close implements store.PauseStore.
func (s *PostgresPauseStore) Close(ctx context.Context, id, userID int64, endedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("pause.close"), id, userID, endedAt)
	if err != nil {
		return s.fail(ctx, "close", MapError(err, store.ErrPauseNotFound))
	}
	return CheckRowsAffected(result, store.ErrPauseNotFound)
}

// CloseOpenForSession implements store.PauseStore.
func (s *PostgresPauseStore) CloseOpenForSession(
	ctx context.Context,
	sessionID, userID int64,
	endedAt time.Time,
) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("pause.close_open_for_session"), sessionID, userID, endedAt)
	if err != nil {
		return 0, s.fail(ctx, "close_open", MapError(err, store.ErrPauseNotFound))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, s.fail(ctx, "close_open", err)
	}
	return n, nil
}

// ListBySession implements store.PauseStore.
func (s *PostgresPauseStore) ListBySession(ctx context.Context, sessionID, userID int64) ([]domain.Pause, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("pause.list_by_session"), sessionID, userID)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	pauses := []domain.Pause{}
	for rows.Next() {
		var p domain.Pause
		if err := rows.Scan(&p.ID, &p.UserID, &p.SessionID, &p.StartedAt, &p.EndedAt); err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		pauses = append(pauses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return pauses, nil
}

// WithTx implements store.PauseStore.
func (s *PostgresPauseStore) WithTx(tx *sql.Tx) store.PauseStore {
	return &PostgresPauseStore{db: tx, queries: s.queries, logger: s.logger}
}

func (s *PostgresPauseStore) fail(ctx context.Context, op string, err error) error {
	return logStoreError(ctx, s.logger, "pause", op, err)
}
