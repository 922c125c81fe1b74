package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/events"
	"github.com/phrazzld/studytrack-api/internal/platform/cache"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// StartSessionInput identifies what a new session studies.
type StartSessionInput struct {
	CategoryID int64
	SubjectID  int64
	TopicID    int64
}

// SessionService manages the study session lifecycle.
type SessionService interface {
	// Start creates an in-progress session after checking that the topic
	// belongs to the subject and the subject to the category, all owned by
	// userID. Returns ErrRelationshipInvalid otherwise.
	Start(ctx context.Context, userID int64, in StartSessionInput) (*domain.StudySession, error)

	// Pause opens a pause on an in-progress session.
	// Returns store.ErrSessionNotFound or a domain.ErrInvalidTransition.
	Pause(ctx context.Context, userID, sessionID int64) (*domain.Pause, error)

	// Resume closes an open pause and puts its session back in progress.
	// Reports false when the pause is missing, not owned, or already closed.
	// An open pause on a session already in progress is closed without a
	// status change.
	Resume(ctx context.Context, userID, pauseID int64) (bool, error)

	// Finish closes any open pause, stores the elapsed time and ends the
	// session. Reports false when the session is missing, not owned, or
	// already finished, and writes nothing in that case.
	Finish(ctx context.Context, userID, sessionID int64) (bool, error)

	// Get returns the session with its pauses and elapsed time as of now.
	Get(ctx context.Context, userID, sessionID int64) (*domain.StudySession, error)

	// ElapsedSeconds returns the session's study time as of now.
	ElapsedSeconds(ctx context.Context, userID, sessionID int64) (int64, error)

	// List returns the user's sessions matching filter, newest first.
	List(ctx context.Context, userID int64, filter store.SessionFilter) ([]*domain.StudySession, error)

	// Delete removes the session with its pauses and notes.
	Delete(ctx context.Context, userID, sessionID int64) error
}

// SessionServiceDeps collects the collaborators of the session service.
type SessionServiceDeps struct {
	DB         *sql.DB
	Categories store.CategoryStore
	Subjects   store.SubjectStore
	Topics     store.TopicStore
	Sessions   store.SessionStore
	Pauses     store.PauseStore
	Emitter    events.EventEmitter
	Reports    cache.ReportCache
	Clock      Clock
	Logger     *slog.Logger
}

type sessionService struct {
	db         *sql.DB
	categories store.CategoryStore
	subjects   store.SubjectStore
	topics     store.TopicStore
	sessions   store.SessionStore
	pauses     store.PauseStore
	emitter    events.EventEmitter
	reports    cache.ReportCache
	clock      Clock
	logger     *slog.Logger
}

// NewSessionService creates a SessionService. A nil Emitter discards events
// and a nil Reports cache skips invalidation.
func NewSessionService(deps SessionServiceDeps) SessionService {
	if deps.DB == nil || deps.Sessions == nil || deps.Pauses == nil {
		panic("session service requires db, session and pause stores")
	}
	if deps.Emitter == nil {
		deps.Emitter = events.NopEmitter{}
	}
	if deps.Reports == nil {
		deps.Reports = cache.NoopReportCache{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &sessionService{
		db:         deps.DB,
		categories: deps.Categories,
		subjects:   deps.Subjects,
		topics:     deps.Topics,
		sessions:   deps.Sessions,
		pauses:     deps.Pauses,
		emitter:    deps.Emitter,
		reports:    deps.Reports,
		clock:      deps.Clock,
		logger:     deps.Logger.With(slog.String("component", "session_service")),
	}
}

// Start implements SessionService.
func (s *sessionService) Start(ctx context.Context, userID int64, in StartSessionInput) (*domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.now()

	session, err := domain.NewStudySession(userID, in.CategoryID, in.SubjectID, in.TopicID, now)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.checkChain(ctx, tx, userID, in); err != nil {
			return err
		}
		if err := s.sessions.WithTx(tx).Create(ctx, session); err != nil {
			if errors.Is(err, store.ErrForeignKey) {
				return relationshipError("referenced catalog entry no longer exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRelationshipInvalid) {
			log.Debug("rejected session start", slog.String("reason", err.Error()))
			return nil, err
		}
		return nil, s.wrap("start", "failed to create session", err)
	}

	log.Info("study session started",
		slog.Int64("session_id", session.ID),
		slog.Int64("user_id", userID))
	s.changed(ctx, events.SessionStarted, userID, session.ID, now)
	return session, nil
}

// checkChain verifies category ⊃ subject ⊃ topic, all owned by userID.
func (s *sessionService) checkChain(ctx context.Context, tx *sql.Tx, userID int64, in StartSessionInput) error {
	if _, err := s.categories.WithTx(tx).GetByID(ctx, in.CategoryID, userID); err != nil {
		if store.IsNotFoundError(err) {
			return relationshipError("category %d not found", in.CategoryID)
		}
		return err
	}

	subject, err := s.subjects.WithTx(tx).GetByID(ctx, in.SubjectID, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return relationshipError("subject %d not found", in.SubjectID)
		}
		return err
	}
	if subject.CategoryID != in.CategoryID {
		return relationshipError("subject %d does not belong to category %d", in.SubjectID, in.CategoryID)
	}

	topic, err := s.topics.WithTx(tx).GetByID(ctx, in.TopicID, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return relationshipError("topic %d not found", in.TopicID)
		}
		return err
	}
	if topic.SubjectID != in.SubjectID {
		return relationshipError("topic %d does not belong to subject %d", in.TopicID, in.SubjectID)
	}
	return nil
}

// Pause implements SessionService.
func (s *sessionService) Pause(ctx context.Context, userID, sessionID int64) (*domain.Pause, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.now()
	var pause *domain.Pause

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessions.WithTx(tx)

		session, err := sessions.GetByIDForUpdate(ctx, sessionID, userID)
		if err != nil {
			return err
		}
		if err := session.CanPause(); err != nil {
			return err
		}

		pause = &domain.Pause{UserID: userID, SessionID: sessionID, StartedAt: now}
		// a concurrent pause that won the race surfaces as ErrOpenPauseExists
		if err := s.pauses.WithTx(tx).Create(ctx, pause); err != nil {
			return err
		}
		return sessions.UpdateStatus(ctx, sessionID, userID, domain.SessionPaused, now)
	})
	if err != nil {
		if isExpected(err) {
			log.Debug("rejected session pause",
				slog.Int64("session_id", sessionID),
				slog.String("reason", err.Error()))
			return nil, err
		}
		return nil, s.wrap("pause", "failed to pause session", err)
	}

	log.Info("study session paused",
		slog.Int64("session_id", sessionID),
		slog.Int64("pause_id", pause.ID))
	s.changed(ctx, events.SessionPaused, userID, sessionID, now)
	return pause, nil
}

// Resume implements SessionService. Rows are locked session first, then
// pause, the same order Pause and Finish use.
func (s *sessionService) Resume(ctx context.Context, userID, pauseID int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.now()

	existing, err := s.pauses.GetByID(ctx, pauseID, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, nil
		}
		return false, s.wrap("resume", "failed to load pause", err)
	}
	if !existing.IsOpen() {
		return false, nil
	}
	sessionID := existing.SessionID

	resumed := false
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessions.WithTx(tx)
		pauses := s.pauses.WithTx(tx)

		session, err := sessions.GetByIDForUpdate(ctx, sessionID, userID)
		if err != nil {
			return err
		}
		if _, err := pauses.GetOpenForUpdate(ctx, pauseID, userID); err != nil {
			if store.IsNotFoundError(err) {
				// closed by a concurrent resume or finish
				return nil
			}
			return err
		}
		// finished sessions have no open pause, so this is a stale row
		if session.Status == domain.SessionFinished {
			return nil
		}

		if err := pauses.Close(ctx, pauseID, userID, now); err != nil {
			return err
		}
		if session.CanResume() == nil {
			if err := sessions.UpdateStatus(ctx, sessionID, userID, domain.SessionInProgress, now); err != nil {
				return err
			}
		} else {
			log.Warn("closed open pause on a session that was not paused",
				slog.Int64("session_id", sessionID),
				slog.Int64("pause_id", pauseID),
				slog.String("status", session.Status.String()))
		}
		resumed = true
		return nil
	})
	if err != nil {
		if isExpected(err) {
			log.Debug("rejected session resume",
				slog.Int64("pause_id", pauseID),
				slog.String("reason", err.Error()))
			return false, err
		}
		return false, s.wrap("resume", "failed to resume session", err)
	}
	if !resumed {
		return false, nil
	}

	log.Info("study session resumed",
		slog.Int64("session_id", sessionID),
		slog.Int64("pause_id", pauseID))
	s.changed(ctx, events.SessionResumed, userID, sessionID, now)
	return true, nil
}

// Finish implements SessionService.
func (s *sessionService) Finish(ctx context.Context, userID, sessionID int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.now()

	finished := false
	var elapsed int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessions.WithTx(tx)
		pauses := s.pauses.WithTx(tx)

		session, err := sessions.GetByIDForUpdate(ctx, sessionID, userID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil
			}
			return err
		}
		if session.CanFinish() != nil {
			return nil
		}

		closed, err := pauses.CloseOpenForSession(ctx, sessionID, userID, now)
		if err != nil {
			return err
		}
		if closed > 0 {
			log.Debug("closed open pause at finish", slog.Int64("session_id", sessionID))
		}

		all, err := pauses.ListBySession(ctx, sessionID, userID)
		if err != nil {
			return err
		}
		elapsed = domain.ElapsedSeconds(session.StartedAt, &now, all, now)

		if err := sessions.Finish(ctx, sessionID, userID, now, elapsed); err != nil {
			return err
		}
		finished = true
		return nil
	})
	if err != nil {
		return false, s.wrap("finish", "failed to finish session", err)
	}
	if !finished {
		return false, nil
	}

	log.Info("study session finished",
		slog.Int64("session_id", sessionID),
		slog.Int64("elapsed_seconds", elapsed))
	s.changed(ctx, events.SessionFinished, userID, sessionID, now)
	return true, nil
}

// Get implements SessionService.
func (s *sessionService) Get(ctx context.Context, userID, sessionID int64) (*domain.StudySession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, s.wrap("get", "failed to load session", err)
	}

	pauses, err := s.pauses.ListBySession(ctx, sessionID, userID)
	if err != nil {
		return nil, s.wrap("get", "failed to load pauses", err)
	}
	session.Pauses = pauses
	session.ElapsedSeconds = session.Elapsed(s.clock.now())
	return session, nil
}

// ElapsedSeconds implements SessionService.
func (s *sessionService) ElapsedSeconds(ctx context.Context, userID, sessionID int64) (int64, error) {
	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return 0, err
	}
	return session.ElapsedSeconds, nil
}

// List implements SessionService.
func (s *sessionService) List(
	ctx context.Context,
	userID int64,
	filter store.SessionFilter,
) ([]*domain.StudySession, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.ErrInvalidDateRange
	}
	sessions, err := s.sessions.List(ctx, userID, filter, s.clock.now())
	if err != nil {
		return nil, s.wrap("list", "failed to list sessions", err)
	}
	return sessions, nil
}

// Delete implements SessionService.
func (s *sessionService) Delete(ctx context.Context, userID, sessionID int64) error {
	if err := s.sessions.Delete(ctx, sessionID, userID); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return s.wrap("delete", "failed to delete session", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("study session deleted",
		slog.Int64("session_id", sessionID))
	s.changed(ctx, events.SessionDeleted, userID, sessionID, s.clock.now())
	return nil
}

// changed runs after a committed change to a session. The user's cached
// reports are invalidated before returning so the next read sees the
// change, then the event is published.
func (s *sessionService) changed(ctx context.Context, t events.EventType, userID, sessionID int64, at time.Time) {
	if err := s.reports.Bump(ctx, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to invalidate cached reports",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
	}
	s.emit(ctx, t, userID, sessionID, at)
}

// emit publishes an event. Failures are logged and never reach the caller.
func (s *sessionService) emit(ctx context.Context, t events.EventType, userID, sessionID int64, at time.Time) {
	if err := s.emitter.EmitEvent(ctx, events.NewSessionEvent(t, userID, sessionID, at)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit session event",
			slog.String("event_type", string(t)),
			slog.Int64("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

func (s *sessionService) wrap(op, msg string, err error) error {
	if isExpected(err) {
		return err
	}
	return NewServiceError("session", op, msg, err)
}

// isExpected reports whether err is a client-facing condition that should
// pass through unwrapped.
func isExpected(err error) bool {
	return store.IsNotFoundError(err) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, store.ErrOpenPauseExists) ||
		errors.Is(err, ErrRelationshipInvalid)
}
