package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// GoalInput carries the writable fields of a goal. A nil Completed means
// completion is derived from Current and Target.
type GoalInput struct {
	SubjectID   *int64
	TopicID     *int64
	Title       string
	Description string
	Target      float64
	Current     float64
	Unit        domain.GoalUnit
	Recurrence  domain.GoalRecurrence
	StartDate   time.Time
	EndDate     *time.Time
	Completed   *bool
}

// GoalService manages progress goals.
type GoalService interface {
	// Create returns ErrRelationshipInvalid when the subject or topic is not
	// owned, or the topic does not belong to the subject.
	Create(ctx context.Context, userID int64, in GoalInput) (*domain.Goal, error)
	Get(ctx context.Context, userID, id int64) (*domain.Goal, error)
	List(ctx context.Context, userID int64, completed *bool) ([]*domain.Goal, error)
	Update(ctx context.Context, userID, id int64, in GoalInput) (*domain.Goal, error)

	// UpdateProgress sets the current quantity and recomputes completion.
	UpdateProgress(ctx context.Context, userID, id int64, current float64) (*domain.Goal, error)

	// Complete marks the goal done regardless of progress.
	Complete(ctx context.Context, userID, id int64) (*domain.Goal, error)
	Delete(ctx context.Context, userID, id int64) error
}

type goalService struct {
	db       *sql.DB
	goals    store.GoalStore
	subjects store.SubjectStore
	topics   store.TopicStore
	clock    Clock
	logger   *slog.Logger
}

// NewGoalService creates a GoalService.
func NewGoalService(
	db *sql.DB,
	goals store.GoalStore,
	subjects store.SubjectStore,
	topics store.TopicStore,
	clock Clock,
	logger *slog.Logger,
) GoalService {
	if db == nil || goals == nil || subjects == nil || topics == nil {
		panic("goal service requires db and stores")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &goalService{
		db:       db,
		goals:    goals,
		subjects: subjects,
		topics:   topics,
		clock:    clock,
		logger:   logger.With(slog.String("component", "goal_service")),
	}
}

// Create implements GoalService.
func (s *goalService) Create(ctx context.Context, userID int64, in GoalInput) (*domain.Goal, error) {
	now := s.clock.now()
	g := &domain.Goal{UserID: userID, CreatedAt: now}
	if err := s.apply(g, in, now); err != nil {
		return nil, err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.checkLinks(ctx, tx, userID, g.SubjectID, g.TopicID); err != nil {
			return err
		}
		return s.goals.WithTx(tx).Create(ctx, g)
	})
	if err != nil {
		return nil, s.wrap("create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("goal created",
		slog.Int64("goal_id", g.ID),
		slog.Int64("user_id", userID))
	return g, nil
}

// Get implements GoalService.
func (s *goalService) Get(ctx context.Context, userID, id int64) (*domain.Goal, error) {
	g, err := s.goals.GetByID(ctx, id, userID)
	if err != nil {
		return nil, s.wrap("get", err)
	}
	return g, nil
}

// List implements GoalService.
func (s *goalService) List(ctx context.Context, userID int64, completed *bool) ([]*domain.Goal, error) {
	list, err := s.goals.List(ctx, userID, completed)
	if err != nil {
		return nil, s.wrap("list", err)
	}
	return list, nil
}

// Update implements GoalService.
func (s *goalService) Update(ctx context.Context, userID, id int64, in GoalInput) (*domain.Goal, error) {
	var updated *domain.Goal
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		goals := s.goals.WithTx(tx)
		g, err := goals.GetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		if err := s.apply(g, in, s.clock.now()); err != nil {
			return err
		}
		if err := s.checkLinks(ctx, tx, userID, g.SubjectID, g.TopicID); err != nil {
			return err
		}
		updated = g
		return goals.Update(ctx, g)
	})
	if err != nil {
		return nil, s.wrap("update", err)
	}
	return updated, nil
}

// UpdateProgress implements GoalService.
func (s *goalService) UpdateProgress(ctx context.Context, userID, id int64, current float64) (*domain.Goal, error) {
	return s.modify(ctx, "update_progress", userID, id, func(g *domain.Goal, now time.Time) error {
		return g.SetProgress(current, now)
	})
}

// Complete implements GoalService.
func (s *goalService) Complete(ctx context.Context, userID, id int64) (*domain.Goal, error) {
	return s.modify(ctx, "complete", userID, id, func(g *domain.Goal, now time.Time) error {
		g.MarkCompleted(now)
		return nil
	})
}

// Delete implements GoalService.
func (s *goalService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.goals.Delete(ctx, id, userID); err != nil {
		return s.wrap("delete", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("goal deleted", slog.Int64("goal_id", id))
	return nil
}

func (s *goalService) modify(
	ctx context.Context,
	op string,
	userID, id int64,
	fn func(g *domain.Goal, now time.Time) error,
) (*domain.Goal, error) {
	var updated *domain.Goal
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		goals := s.goals.WithTx(tx)
		g, err := goals.GetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		if err := fn(g, s.clock.now()); err != nil {
			return err
		}
		updated = g
		return goals.Update(ctx, g)
	})
	if err != nil {
		return nil, s.wrap(op, err)
	}
	return updated, nil
}

// apply copies in onto g, fills defaults and validates.
func (s *goalService) apply(g *domain.Goal, in GoalInput, now time.Time) error {
	g.SubjectID = in.SubjectID
	g.TopicID = in.TopicID
	g.Title = in.Title
	g.Description = strings.TrimSpace(in.Description)
	g.Target = in.Target
	g.Current = in.Current
	g.Unit = in.Unit
	g.Recurrence = in.Recurrence
	if g.Recurrence == "" {
		g.Recurrence = domain.RecurrenceNone
	}
	g.StartDate = in.StartDate
	if g.StartDate.IsZero() {
		y, m, d := now.Date()
		g.StartDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	g.EndDate = in.EndDate
	if in.Completed != nil {
		g.Completed = *in.Completed
	} else {
		g.Completed = g.Reached()
	}
	g.UpdatedAt = now
	return g.Validate()
}

func (s *goalService) checkLinks(ctx context.Context, tx *sql.Tx, userID int64, subjectID, topicID *int64) error {
	if subjectID != nil {
		if _, err := s.subjects.WithTx(tx).GetByID(ctx, *subjectID, userID); err != nil {
			if store.IsNotFoundError(err) {
				return relationshipError("subject %d not found", *subjectID)
			}
			return err
		}
	}
	if topicID != nil {
		topic, err := s.topics.WithTx(tx).GetByID(ctx, *topicID, userID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return relationshipError("topic %d not found", *topicID)
			}
			return err
		}
		if subjectID == nil || topic.SubjectID != *subjectID {
			return relationshipError("topic %d does not belong to the subject", *topicID)
		}
	}
	return nil
}

func (s *goalService) wrap(op string, err error) error {
	return wrapCrudError("goal", op, err)
}
