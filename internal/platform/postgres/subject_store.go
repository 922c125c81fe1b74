package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresSubjectStore implements store.SubjectStore.
type PostgresSubjectStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresSubjectStore creates a subject store.
func NewPostgresSubjectStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresSubjectStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSubjectStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "subject_store")),
	}
}

var _ store.SubjectStore = (*PostgresSubjectStore)(nil)

// Create implements store.SubjectStore.
func (s *PostgresSubjectStore) Create(ctx context.Context, sub *domain.Subject) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("subject.create"),
		sub.UserID, sub.CategoryID, sub.Name, sub.Description, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID)
	return s.fail(ctx, "create", MapError(err, store.ErrSubjectNotFound))
}

// GetByID implements store.SubjectStore.
func (s *PostgresSubjectStore) GetByID(ctx context.Context, id, userID int64) (*domain.Subject, error) {
	var sub domain.Subject
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("subject.get"), id, userID).Scan(
		&sub.ID, &sub.UserID, &sub.CategoryID, &sub.Name, &sub.Description, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, s.fail(ctx, "get", MapError(err, store.ErrSubjectNotFound))
	}
	return &sub, nil
}

// List implements store.SubjectStore.
func (s *PostgresSubjectStore) List(ctx context.Context, userID int64, categoryID *int64) ([]*domain.Subject, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("subject.list"), userID, categoryID)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	subjects := []*domain.Subject{}
	for rows.Next() {
		var sub domain.Subject
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.CategoryID, &sub.Name, &sub.Description, &sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		subjects = append(subjects, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return subjects, nil
}

// Update implements store.SubjectStore.
func (s *PostgresSubjectStore) Update(ctx context.Context, sub *domain.Subject) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("subject.update"),
		sub.ID, sub.UserID, sub.CategoryID, sub.Name, sub.Description, sub.UpdatedAt,
	)
	if err != nil {
		return s.fail(ctx, "update", MapError(err, store.ErrSubjectNotFound))
	}
	return CheckRowsAffected(result, store.ErrSubjectNotFound)
}

// Delete implements store.SubjectStore.
func (s *PostgresSubjectStore) Delete(ctx context.Context, id, userID int64) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("subject.delete"), id, userID)
	if err != nil {
		return s.fail(ctx, "delete", MapError(err, store.ErrSubjectNotFound))
	}
	return CheckRowsAffected(result, store.ErrSubjectNotFound)
}

// WithTx implements store.SubjectStore.
func (s *PostgresSubjectStore) WithTx(tx *sql.Tx) store.SubjectStore {
	return &PostgresSubjectStore{db: tx, queries: s.queries, logger: s.logger}
}

func (s *PostgresSubjectStore) fail(ctx context.Context, op string, err error) error {
	return logStoreError(ctx, s.logger, "subject", op, err)
}
