package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresGoalStore implements store.GoalStore over metas.
type PostgresGoalStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresGoalStore creates a goal store.
func NewPostgresGoalStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresGoalStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGoalStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "goal_store")),
	}
}

var _ store.GoalStore = (*PostgresGoalStore)(nil)

// Create implements store.GoalStore.
func (s *PostgresGoalStore) Create(ctx context.Context, g *domain.Goal) error {
	err := s.db.QueryRowContext(ctx, s.queries.MustGet("goal.create"),
		g.UserID, g.SubjectID, g.TopicID, g.Title, g.Description, g.Target, g.Current,
		string(g.Unit), string(g.Recurrence), g.StartDate, g.EndDate, g.Completed,
		g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	return s.fail(ctx, "create", MapError(err, store.ErrGoalNotFound))
}

// GetByID implements store.GoalStore.
func (s *PostgresGoalStore) GetByID(ctx context.Context, id, userID int64) (*domain.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, s.queries.MustGet("goal.get"), id, userID))
	if err != nil {
		return nil, s.fail(ctx, "get", MapError(err, store.ErrGoalNotFound))
	}
	return g, nil
}

// List implements store.GoalStore.
func (s *PostgresGoalStore) List(ctx context.Context, userID int64, completed *bool) ([]*domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("goal.list"), userID, completed)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	goals := []*domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return goals, nil
}

// Update implements store.GoalStore.
func (s *PostgresGoalStore) Update(ctx context.Context, g *domain.Goal) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("goal.update"),
		g.ID, g.UserID, g.SubjectID, g.TopicID, g.Title, g.Description, g.Target, g.Current,
		string(g.Unit), string(g.Recurrence), g.StartDate, g.EndDate, g.Completed, g.UpdatedAt,
	)
	if err != nil {
		return s.fail(ctx, "update", MapError(err, store.ErrGoalNotFound))
	}
	return CheckRowsAffected(result, store.ErrGoalNotFound)
}

// Delete implements store.GoalStore.
func (s *PostgresGoalStore) Delete(ctx context.Context, id, userID int64) error {
	result, err := s.db.ExecContext(ctx, s.queries.MustGet("goal.delete"), id, userID)
	if err != nil {
		return s.fail(ctx, "delete", MapError(err, store.ErrGoalNotFound))
	}
	return CheckRowsAffected(result, store.ErrGoalNotFound)
}

// WithTx implements store.GoalStore.
func (s *PostgresGoalStore) WithTx(tx *sql.Tx) store.GoalStore {
	return &PostgresGoalStore{db: tx, queries: s.queries, logger: s.logger}
}

func (s *PostgresGoalStore) fail(ctx context.Context, op string, err error) error {
	return logStoreError(ctx, s.logger, "goal", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	var (
		g                domain.Goal
		unit, recurrence string
	)
	err := row.Scan(
		&g.ID, &g.UserID, &g.SubjectID, &g.TopicID, &g.Title, &g.Description,
		&g.Target, &g.Current, &unit, &recurrence, &g.StartDate, &g.EndDate,
		&g.Completed, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Unit = domain.GoalUnit(unit)
	g.Recurrence = domain.GoalRecurrence(recurrence)
	return &g, nil
}
