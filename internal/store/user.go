package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/studytrack-api/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create inserts the user and sets its ID. The user must carry a
	// hashed password. Returns ErrEmailExists on a duplicate email.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if no user has this ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail matches case-insensitively. Returns ErrUserNotFound on miss.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
