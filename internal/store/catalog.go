package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/studytrack-api/internal/domain"
)

// CategoryStore persists categories. Every method is scoped by owner.
type CategoryStore interface {
	// Create inserts the category and sets its ID.
	// Returns ErrDuplicate if the user already has a category with that name.
	Create(ctx context.Context, c *domain.Category) error

	// GetByID returns ErrCategoryNotFound if the category is missing or not owned.
	GetByID(ctx context.Context, id, userID int64) (*domain.Category, error)

	// List returns the user's categories ordered by name.
	List(ctx context.Context, userID int64) ([]*domain.Category, error)

	// Update overwrites name, description and color.
	Update(ctx context.Context, c *domain.Category) error

	// Delete removes the category. Returns ErrForeignKey while sessions
	// still reference it.
	Delete(ctx context.Context, id, userID int64) error

	WithTx(tx *sql.Tx) CategoryStore
}

// SubjectStore persists subjects.
type SubjectStore interface {
	// Create inserts the subject and sets its ID.
	// Returns ErrDuplicate when the name is taken for this user.
	Create(ctx context.Context, s *domain.Subject) error

	// GetByID returns ErrSubjectNotFound if the subject is missing or not owned.
	GetByID(ctx context.Context, id, userID int64) (*domain.Subject, error)

	// List returns the user's subjects, optionally only those of one category.
	List(ctx context.Context, userID int64, categoryID *int64) ([]*domain.Subject, error)

	Update(ctx context.Context, s *domain.Subject) error
	Delete(ctx context.Context, id, userID int64) error
	WithTx(tx *sql.Tx) SubjectStore
}

// TopicStore persists topics.
type TopicStore interface {
	// Create inserts the topic and sets its ID.
	// Returns ErrDuplicate when the name is taken within the subject.
	Create(ctx context.Context, t *domain.Topic) error

	// GetByID returns ErrTopicNotFound if the topic is missing or not owned.
	GetByID(ctx context.Context, id, userID int64) (*domain.Topic, error)

	// List returns the user's topics, optionally only those of one subject.
	List(ctx context.Context, userID int64, subjectID *int64) ([]*domain.Topic, error)

	Update(ctx context.Context, t *domain.Topic) error
	Delete(ctx context.Context, id, userID int64) error
	WithTx(tx *sql.Tx) TopicStore
}
