package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

// SubjectInput carries the writable fields of a subject.
type SubjectInput struct {
	CategoryID  int64
	Name        string
	Description string
}

// TopicInput carries the writable fields of a topic.
type TopicInput struct {
	SubjectID   int64
	Name        string
	Description string
}

// CatalogService manages the category, subject and topic hierarchy that
// sessions are classified under. Every lookup is scoped to the owner, so a
// foreign entity reads as not found.
type CatalogService interface {
	CreateCategory(ctx context.Context, userID int64, in CategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, in CategoryInput) (*domain.Category, error)
	// DeleteCategory returns ErrInUse while sessions reference the category.
	DeleteCategory(ctx context.Context, userID, id int64) error

	// CreateSubject returns ErrRelationshipInvalid when the category is not owned.
	CreateSubject(ctx context.Context, userID int64, in SubjectInput) (*domain.Subject, error)
	GetSubject(ctx context.Context, userID, id int64) (*domain.Subject, error)
	ListSubjects(ctx context.Context, userID int64, categoryID *int64) ([]*domain.Subject, error)
	UpdateSubject(ctx context.Context, userID, id int64, in SubjectInput) (*domain.Subject, error)
	DeleteSubject(ctx context.Context, userID, id int64) error

	// CreateTopic returns ErrRelationshipInvalid when the subject is not owned.
	CreateTopic(ctx context.Context, userID int64, in TopicInput) (*domain.Topic, error)
	GetTopic(ctx context.Context, userID, id int64) (*domain.Topic, error)
	ListTopics(ctx context.Context, userID int64, subjectID *int64) ([]*domain.Topic, error)
	UpdateTopic(ctx context.Context, userID, id int64, in TopicInput) (*domain.Topic, error)
	DeleteTopic(ctx context.Context, userID, id int64) error
}

type catalogService struct {
	db         *sql.DB
	categories store.CategoryStore
	subjects   store.SubjectStore
	topics     store.TopicStore
	clock      Clock
	logger     *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(
	db *sql.DB,
	categories store.CategoryStore,
	subjects store.SubjectStore,
	topics store.TopicStore,
	clock Clock,
	logger *slog.Logger,
) CatalogService {
	if db == nil || categories == nil || subjects == nil || topics == nil {
		panic("catalog service requires db and stores")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogService{
		db:         db,
		categories: categories,
		subjects:   subjects,
		topics:     topics,
		clock:      clock,
		logger:     logger.With(slog.String("component", "catalog_service")),
	}
}

// CreateCategory implements CatalogService.
func (s *catalogService) CreateCategory(ctx context.Context, userID int64, in CategoryInput) (*domain.Category, error) {
	c, err := domain.NewCategory(userID, in.Name, in.Description, in.Color, s.clock.now())
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, s.wrap("create_category", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("category created", slog.Int64("category_id", c.ID))
	return c, nil
}

// GetCategory implements CatalogService.
func (s *catalogService) GetCategory(ctx context.Context, userID, id int64) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id, userID)
	if err != nil {
		return nil, s.wrap("get_category", err)
	}
	return c, nil
}

// ListCategories implements CatalogService.
func (s *catalogService) ListCategories(ctx context.Context, userID int64) ([]*domain.Category, error) {
	list, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, s.wrap("list_categories", err)
	}
	return list, nil
}

// UpdateCategory implements CatalogService.
func (s *catalogService) UpdateCategory(
	ctx context.Context,
	userID, id int64,
	in CategoryInput,
) (*domain.Category, error) {
	var updated *domain.Category
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		categories := s.categories.WithTx(tx)
		c, err := categories.GetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		c.Name = strings.TrimSpace(in.Name)
		c.Description = strings.TrimSpace(in.Description)
		c.Color = strings.TrimSpace(in.Color)
		c.UpdatedAt = s.clock.now()
		if err := c.Validate(); err != nil {
			return err
		}
		updated = c
		return categories.Update(ctx, c)
	})
	if err != nil {
		return nil, s.wrap("update_category", err)
	}
	return updated, nil
}

// DeleteCategory implements CatalogService.
func (s *catalogService) DeleteCategory(ctx context.Context, userID, id int64) error {
	if err := s.categories.Delete(ctx, id, userID); err != nil {
		return s.wrap("delete_category", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("category deleted", slog.Int64("category_id", id))
	return nil
}

// CreateSubject implements CatalogService.
func (s *catalogService) CreateSubject(ctx context.Context, userID int64, in SubjectInput) (*domain.Subject, error) {
	subject, err := domain.NewSubject(userID, in.CategoryID, in.Name, in.Description, s.clock.now())
	if err != nil {
		return nil, err
	}
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.requireCategory(ctx, tx, userID, in.CategoryID); err != nil {
			return err
		}
		return s.subjects.WithTx(tx).Create(ctx, subject)
	})
	if err != nil {
		return nil, s.wrap("create_subject", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("subject created", slog.Int64("subject_id", subject.ID))
	return subject, nil
}

// GetSubject implements CatalogService.
func (s *catalogService) GetSubject(ctx context.Context, userID, id int64) (*domain.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id, userID)
	if err != nil {
		return nil, s.wrap("get_subject", err)
	}
	return subject, nil
}

// ListSubjects implements CatalogService.
func (s *catalogService) ListSubjects(ctx context.Context, userID int64, categoryID *int64) ([]*domain.Subject, error) {
	list, err := s.subjects.List(ctx, userID, categoryID)
	if err != nil {
		return nil, s.wrap("list_subjects", err)
	}
	return list, nil
}

// UpdateSubject implements CatalogService.
func (s *catalogService) UpdateSubject(
	ctx context.Context,
	userID, id int64,
	in SubjectInput,
) (*domain.Subject, error) {
	var updated *domain.Subject
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		subjects := s.subjects.WithTx(tx)
		subject, err := subjects.GetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		if in.CategoryID != subject.CategoryID {
			if err := s.requireCategory(ctx, tx, userID, in.CategoryID); err != nil {
				return err
			}
		}
		subject.CategoryID = in.CategoryID
		subject.Name = strings.TrimSpace(in.Name)
		subject.Description = strings.TrimSpace(in.Description)
		subject.UpdatedAt = s.clock.now()
		if err := subject.Validate(); err != nil {
			return err
		}
		updated = subject
		return subjects.Update(ctx, subject)
	})
	if err != nil {
		return nil, s.wrap("update_subject", err)
	}
	return updated, nil
}

// DeleteSubject implements CatalogService.
func (s *catalogService) DeleteSubject(ctx context.Context, userID, id int64) error {
	if err := s.subjects.Delete(ctx, id, userID); err != nil {
		return s.wrap("delete_subject", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("subject deleted", slog.Int64("subject_id", id))
	return nil
}

// CreateTopic implements CatalogService.
func (s *catalogService) CreateTopic(ctx context.Context, userID int64, in TopicInput) (*domain.Topic, error) {
	topic, err := domain.NewTopic(userID, in.SubjectID, in.Name, in.Description, s.clock.now())
	if err != nil {
		return nil, err
	}
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.requireSubject(ctx, tx, userID, in.SubjectID); err != nil {
			return err
		}
		return s.topics.WithTx(tx).Create(ctx, topic)
	})
	if err != nil {
		return nil, s.wrap("create_topic", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("topic created", slog.Int64("topic_id", topic.ID))
	return topic, nil
}

// GetTopic implements CatalogService.
func (s *catalogService) GetTopic(ctx context.Context, userID, id int64) (*domain.Topic, error) {
	topic, err := s.topics.GetByID(ctx, id, userID)
	if err != nil {
		return nil, s.wrap("get_topic", err)
	}
	return topic, nil
}

// ListTopics implements CatalogService.
func (s *catalogService) ListTopics(ctx context.Context, userID int64, subjectID *int64) ([]*domain.Topic, error) {
	list, err := s.topics.List(ctx, userID, subjectID)
	if err != nil {
		return nil, s.wrap("list_topics", err)
	}
	return list, nil
}

// UpdateTopic implements CatalogService.
func (s *catalogService) UpdateTopic(ctx context.Context, userID, id int64, in TopicInput) (*domain.Topic, error) {
	var updated *domain.Topic
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		topics := s.topics.WithTx(tx)
		topic, err := topics.GetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		if in.SubjectID != topic.SubjectID {
			if err := s.requireSubject(ctx, tx, userID, in.SubjectID); err != nil {
				return err
			}
		}
		topic.SubjectID = in.SubjectID
		topic.Name = strings.TrimSpace(in.Name)
		topic.Description = strings.TrimSpace(in.Description)
		topic.UpdatedAt = s.clock.now()
		if err := topic.Validate(); err != nil {
			return err
		}
		updated = topic
		return topics.Update(ctx, topic)
	})
	if err != nil {
		return nil, s.wrap("update_topic", err)
	}
	return updated, nil
}

// DeleteTopic implements CatalogService.
func (s *catalogService) DeleteTopic(ctx context.Context, userID, id int64) error {
	if err := s.topics.Delete(ctx, id, userID); err != nil {
		return s.wrap("delete_topic", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("topic deleted", slog.Int64("topic_id", id))
	return nil
}

func (s *catalogService) requireCategory(ctx context.Context, tx *sql.Tx, userID, categoryID int64) error {
	if _, err := s.categories.WithTx(tx).GetByID(ctx, categoryID, userID); err != nil {
		if store.IsNotFoundError(err) {
			return relationshipError("category %d not found", categoryID)
		}
		return err
	}
	return nil
}

func (s *catalogService) requireSubject(ctx context.Context, tx *sql.Tx, userID, subjectID int64) error {
	if _, err := s.subjects.WithTx(tx).GetByID(ctx, subjectID, userID); err != nil {
		if store.IsNotFoundError(err) {
			return relationshipError("subject %d not found", subjectID)
		}
		return err
	}
	return nil
}

func (s *catalogService) wrap(op string, err error) error {
	return wrapCrudError("catalog", op, err)
}

// wrapCrudError passes expected conditions through, turns a foreign key
// violation on delete into ErrInUse, and wraps anything else.
func wrapCrudError(service, op string, err error) error {
	switch {
	case isExpected(err), store.IsDuplicateError(err):
		return err
	case errors.Is(err, store.ErrForeignKey):
		if strings.HasPrefix(op, "delete") {
			return ErrInUse
		}
		return relationshipError("referenced entity no longer exists")
	}
	return NewServiceError(service, op, "operation failed", err)
}
