package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a lifecycle operation does not apply
// to the session's current state.
var ErrInvalidTransition = errors.New("invalid session state transition")

// Specific transition failures.
var (
	ErrSessionNotInProgress = fmt.Errorf("%w: session is not in progress", ErrInvalidTransition)
	ErrSessionNotPaused     = fmt.Errorf("%w: session is not paused", ErrInvalidTransition)
	ErrSessionFinished      = fmt.Errorf("%w: session is already finished", ErrInvalidTransition)
)

// StudySession is one timed study activity against a category/subject/topic.
//
// ElapsedSeconds is derived from StartedAt, EndedAt and the pauses whenever
// the session is read. It is never edited directly.
type StudySession struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	CategoryID     int64         `json:"category_id"`
	SubjectID      int64         `json:"subject_id"`
	TopicID        int64         `json:"topic_id"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        *time.Time    `json:"ended_at,omitempty"`
	Status         SessionStatus `json:"status"`
	ElapsedSeconds int64         `json:"elapsed_seconds"`
	Pauses         []Pause       `json:"pauses,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Pause is an interval during which the session clock is stopped.
type Pause struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	SessionID int64      `json:"session_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// NewStudySession creates an in-progress session starting at now.
func NewStudySession(userID, categoryID, subjectID, topicID int64, now time.Time) (*StudySession, error) {
	s := &StudySession{
		UserID:     userID,
		CategoryID: categoryID,
		SubjectID:  subjectID,
		TopicID:    topicID,
		StartedAt:  now.UTC(),
		Status:     SessionInProgress,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the identifying references and the status/end consistency.
func (s *StudySession) Validate() error {
	switch {
	case s.UserID <= 0:
		return NewValidationError("user_id", "is required")
	case s.CategoryID <= 0:
		return NewValidationError("category_id", "is required")
	case s.SubjectID <= 0:
		return NewValidationError("subject_id", "is required")
	case s.TopicID <= 0:
		return NewValidationError("topic_id", "is required")
	case !s.Status.Valid():
		return ErrInvalidSessionStatus
	case s.Status == SessionFinished && s.EndedAt == nil:
		return NewValidationError("ended_at", "is required for a finished session")
	case s.EndedAt != nil && s.EndedAt.Before(s.StartedAt):
		return NewValidationError("ended_at", "must not be before start")
	}
	return nil
}

// CanPause returns nil when the session may transition to paused.
func (s *StudySession) CanPause() error {
	switch s.Status {
	case SessionInProgress:
		return nil
	case SessionFinished:
		return ErrSessionFinished
	default:
		return ErrSessionNotInProgress
	}
}

// CanResume returns nil when the session may transition back to in progress.
func (s *StudySession) CanResume() error {
	switch s.Status {
	case SessionPaused:
		return nil
	case SessionFinished:
		return ErrSessionFinished
	default:
		return ErrSessionNotPaused
	}
}

// CanFinish returns nil unless the session is already finished.
func (s *StudySession) CanFinish() error {
	if s.Status == SessionFinished {
		return ErrSessionFinished
	}
	return nil
}

// OpenPause returns the pause that has not ended yet, if any.
func (s *StudySession) OpenPause() *Pause {
	for i := range s.Pauses {
		if s.Pauses[i].IsOpen() {
			return &s.Pauses[i]
		}
	}
	return nil
}

// Elapsed computes the study time at now from the loaded pauses.
func (s *StudySession) Elapsed(now time.Time) int64 {
	return ElapsedSeconds(s.StartedAt, s.EndedAt, s.Pauses, now)
}

// IsOpen reports whether the pause is still running.
func (p *Pause) IsOpen() bool {
	return p.EndedAt == nil
}

// DurationSeconds is the length of the pause, using now for an open pause.
func (p *Pause) DurationSeconds(now time.Time) int64 {
	return intervalSeconds(p.StartedAt, p.EndedAt, now)
}

// ElapsedSeconds is (end-or-now - start) minus the sum of pause durations,
// where open pauses run until now. Malformed data (overlapping pauses or
// pauses outside the session) can drive the raw value negative; it is
// clamped to zero.
func ElapsedSeconds(start time.Time, end *time.Time, pauses []Pause, now time.Time) int64 {
	total := intervalSeconds(start, end, now)
	for i := range pauses {
		total -= pauses[i].DurationSeconds(now)
	}
	if total < 0 {
		return 0
	}
	return total
}

func intervalSeconds(start time.Time, end *time.Time, now time.Time) int64 {
	stop := now
	if end != nil {
		stop = *end
	}
	return int64(stop.Sub(start) / time.Second)
}
