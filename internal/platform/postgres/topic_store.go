package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresTopicStore implements store.TopicStore.
type PostgresTopicStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresTopicStore creates a topic store.
func NewPostgresTopicStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresTopicStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTopicStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "topic_store")),
	}
}

var _ store.TopicStore = (*PostgresTopicStore)(nil)

// Create implements store.TopicStore.
func (s *PostgresTopicStore) Create(ctx context.Context, t *domain.Topic) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("topic.create"),
		t.UserID, t.SubjectID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	return s.fail(ctx, "create", MapError(err, store.ErrTopicNotFound))
}

// GetByID implements store.TopicStore.
func (s *PostgresTopicStore) GetByID(ctx context.Context, id, userID int64) (*domain.Topic, error) {
	var t domain.Topic
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("topic.get"), id, userID).Scan(
		&t.ID, &t.UserID, &t.SubjectID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, s.fail(ctx, "get", MapError(err, store.ErrTopicNotFound))
	}
	return &t, nil
}

// List implements store.TopicStore.
func (s *PostgresTopicStore) List(ctx context.Context, userID int64, subjectID *int64) ([]*domain.Topic, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("topic.list"), userID, subjectID)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	topics := []*domain.Topic{}
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.SubjectID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		topics = append(topics, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return topics, nil
}

// Update implements store.TopicStore.
func (s *PostgresTopicStore) Update(ctx context.Context, t *domain.Topic) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("topic.update"),
		t.ID, t.UserID, t.SubjectID, t.Name, t.Description, t.UpdatedAt,
	)
	if err != nil {
		return s.fail(ctx, "update", MapError(err, store.ErrTopicNotFound))
	}
	return CheckRowsAffected(result, store.ErrTopicNotFound)
}

// Delete implements store.TopicStore.
func (s *PostgresTopicStore) Delete(ctx context.Context, id, userID int64) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("topic.delete"), id, userID)
	if err != nil {
		return s.fail(ctx, "delete", MapError(err, store.ErrTopicNotFound))
	}
	return CheckRowsAffected(result, store.ErrTopicNotFound)
}

// WithTx implements store.TopicStore.
func (s *PostgresTopicStore) WithTx(tx *sql.Tx) store.TopicStore {
	return &PostgresTopicStore{db: tx, queries: s.queries, logger: s.logger}
}

func (s *PostgresTopicStore) fail(ctx context.Context, op string, err error) error {
	return logStoreError(ctx, s.logger, "topic", op, err)
}
