package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/studytrack-api/internal/domain"
)

// GoalStore persists goals. Every method is scoped by owner.
type GoalStore interface {
	Create(ctx context.Context, g *domain.Goal) error

	// GetByID returns ErrGoalNotFound if missing or not owned.
	GetByID(ctx context.Context, id, userID int64) (*domain.Goal, error)

	// List returns the user's goals, optionally filtered by completion.
	List(ctx context.Context, userID int64, completed *bool) ([]*domain.Goal, error)

	Update(ctx context.Context, g *domain.Goal) error
	Delete(ctx context.Context, id, userID int64) error
	WithTx(tx *sql.Tx) GoalStore
}
