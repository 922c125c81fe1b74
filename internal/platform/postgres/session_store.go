package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

const defaultSessionListLimit = 50

// PostgresSessionStore implements store.SessionStore over sessoes_estudo.
type PostgresSessionStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresSessionStore creates a session store.
func NewPostgresSessionStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresSessionStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSessionStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("session.create"),
		session.UserID, session.CategoryID, session.SubjectID, session.TopicID,
		session.StartedAt, session.Status, session.CreatedAt, session.UpdatedAt,
	).Scan(&session.ID)
	if err != nil {
		return s.fail(ctx, "create", MapError(err, store.ErrSessionNotFound))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("study session created",
		slog.Int64("session_id", session.ID),
		slog.Int64("user_id", session.UserID))
	return nil
}

// GetByID implements store.SessionStore.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id, userID int64) (*domain.StudySession, error) {
	return s.get(ctx, "session.get", id, userID)
}

// GetByIDForUpdate implements store.SessionStore.
func (s *PostgresSessionStore) GetByIDForUpdate(ctx context.Context, id, userID int64) (*domain.StudySession, error) {
	return s.get(ctx, "session.get_for_update", id, userID)
}

func (s *PostgresSessionStore) get(ctx context.Context, name string, id, userID int64) (*domain.StudySession, error) {
	var session domain.StudySession
	err := s.db.QueryRowContext(ctx, s.queries.MustGet(name), id, userID).Scan(
		&session.ID, &session.UserID, &session.CategoryID, &session.SubjectID, &session.TopicID,
		&session.StartedAt, &session.EndedAt, &session.Status, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, s.fail(ctx, "get", MapError(err, store.ErrSessionNotFound))
	}
	return &session, nil
}

// List implements store.SessionStore.
func (s *PostgresSessionStore) List(
	ctx context.Context,
	userID int64,
	filter store.SessionFilter,
	now time.Time,
) ([]*domain.StudySession, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSessionListLimit
	}

	var status any
	if filter.Status != nil {
		status = *filter.Status
	}

	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("session.list"),
		userID, status, filter.SubjectID, filter.TopicID, filter.From, filter.To,
		limit, filter.Offset, now,
	)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := []*domain.StudySession{}
	for rows.Next() {
		var session domain.StudySession
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.CategoryID, &session.SubjectID, &session.TopicID,
			&session.StartedAt, &session.EndedAt, &session.Status, &session.CreatedAt, &session.UpdatedAt,
			&session.ElapsedSeconds,
		); err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return sessions, nil
}

// UpdateStatus implements store.SessionStore.
func (s *PostgresSessionStore) UpdateStatus(
	ctx context.Context,
	id, userID int64,
	status domain.SessionStatus,
	at time.Time,
) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("session.update_status"), id, userID, status, at)
	if err != nil {
		return s.fail(ctx, "update_status", MapError(err, store.ErrSessionNotFound))
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

// Finish implements store.SessionStore.
func (s *PostgresSessionStore) Finish(
	ctx context.Context,
	id, userID int64,
	endedAt time.Time,
	elapsedSeconds int64,
) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("session.finish"), id, userID, endedAt, elapsedSeconds)
	if err != nil {
		return s.fail(ctx, "finish", MapError(err, store.ErrSessionNotFound))
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

// Delete implements store.SessionStore. Pauses and notes go with the
// session through ON DELETE CASCADE.
func (s *PostgresSessionStore) Delete(ctx context.Context, id, userID int64) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("session.delete"), id, userID)
	if err != nil {
		return s.fail(ctx, "delete", MapError(err, store.ErrSessionNotFound))
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

// WithTx implements store.SessionStore.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{db: tx, queries: s.queries, logger: s.logger}
}

func (s *PostgresSessionStore) fail(ctx context.Context, op string, err error) error {
	return logStoreError(ctx, s.logger, "session", op, err)
}
