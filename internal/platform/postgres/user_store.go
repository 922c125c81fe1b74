package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresUserStore creates a user store. A nil logger uses slog.Default().
func NewPostgresUserStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if q == nil {
		panic("query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return domain.NewValidationError("password", "must be hashed before storage")
	}

	err := s.db.QueryRowContext(ctx, s.queries.MustGet("user.create"),
		user.Email, user.HashedPassword, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		err = MapError(err, store.ErrUserNotFound)
		if store.IsDuplicateError(err) {
			log.Debug("email already registered")
			return err
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return err
	}

	log.Info("user created", slog.Int64("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.get(ctx, s.queries.MustGet("user.get_by_id"), id)
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.get(ctx, s.queries.MustGet("user.get_by_email"), email)
}

func (s *PostgresUserStore) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		err = MapError(err, store.ErrUserNotFound)
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	return &u, nil
}

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, queries: s.queries, logger: s.logger}
}
