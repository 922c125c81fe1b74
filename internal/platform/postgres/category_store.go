package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresCategoryStore implements store.CategoryStore.
type PostgresCategoryStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresCategoryStore creates a category store.
func NewPostgresCategoryStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresCategoryStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCategoryStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "category_store")),
	}
}

var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// Create implements store.CategoryStore.
func (s *PostgresCategoryStore) Create(ctx context.Context, c *domain.Category) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("category.create"),
		c.UserID, c.Name, c.Description, c.Color, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return s.fail(ctx, "create", MapError(err, store.ErrCategoryNotFound))
}

// GetByID implements store.CategoryStore.
func (s *PostgresCategoryStore) GetByID(ctx context.Context, id, userID int64) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("category.get"), id, userID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, s.fail(ctx, "get", MapError(err, store.ErrCategoryNotFound))
	}
	return &c, nil
}

// List implements store.CategoryStore.
func (s *PostgresCategoryStore) List(ctx context.Context, userID int64) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("category.list"), userID)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []*domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return categories, nil
}

// Update implements store.CategoryStore.
func (s *PostgresCategoryStore) Update(ctx context.Context, c *domain.Category) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("category.update"),
		c.ID, c.UserID, c.Name, c.Description, c.Color, c.UpdatedAt,
	)
	if err != nil {
		return s.fail(ctx, "update", MapError(err, store.ErrCategoryNotFound))
	}
	return CheckRowsAffected(result, store.ErrCategoryNotFound)
}

// Delete implements store.CategoryStore.
func (s *PostgresCategoryStore) Delete(ctx context.Context, id, userID int64) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("category.delete"), id, userID)
	if err != nil {
		return s.fail(ctx, "delete", MapError(err, store.ErrCategoryNotFound))
	}
	return CheckRowsAffected(result, store.ErrCategoryNotFound)
}

// WithTx implements store.CategoryStore.
func (s *PostgresCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return &PostgresCategoryStore{db: tx, queries: s.queries, logger: s.logger}
}

func (s *PostgresCategoryStore) fail(ctx context.Context, op string, err error) error {
	return logStoreError(ctx, s.logger, "category", op, err)
}
