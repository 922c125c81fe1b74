package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// GoalUnit is what a goal's target and current quantities count.
type GoalUnit string

// Goal units as persisted.
const (
	GoalUnitHours     GoalUnit = "horas"
	GoalUnitMinutes   GoalUnit = "minutos"
	GoalUnitSessions  GoalUnit = "sessoes"
	GoalUnitPages     GoalUnit = "paginas"
	GoalUnitExercises GoalUnit = "exercicios"
	GoalUnitTopics    GoalUnit = "topicos"
)

// GoalRecurrence is how often a goal resets.
type GoalRecurrence string

// Goal recurrences as persisted.
const (
	RecurrenceNone    GoalRecurrence = "nenhuma"
	RecurrenceDaily   GoalRecurrence = "diaria"
	RecurrenceWeekly  GoalRecurrence = "semanal"
	RecurrenceMonthly GoalRecurrence = "mensal"
)

var (
	goalUnits = map[GoalUnit]struct{}{
		GoalUnitHours: {}, GoalUnitMinutes: {}, GoalUnitSessions: {},
		GoalUnitPages: {}, GoalUnitExercises: {}, GoalUnitTopics: {},
	}
	goalRecurrences = map[GoalRecurrence]struct{}{
		RecurrenceNone: {}, RecurrenceDaily: {}, RecurrenceWeekly: {}, RecurrenceMonthly: {},
	}
)

// Valid reports whether u is a known unit.
func (u GoalUnit) Valid() bool {
	_, ok := goalUnits[u]
	return ok
}

// Valid reports whether r is a known recurrence.
func (r GoalRecurrence) Valid() bool {
	_, ok := goalRecurrences[r]
	return ok
}

// Goal ("meta") is a progress target, optionally tied to a subject or topic.
type Goal struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	SubjectID   *int64         `json:"subject_id,omitempty"`
	TopicID     *int64         `json:"topic_id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Target      float64        `json:"target"`
	Current     float64        `json:"current"`
	Unit        GoalUnit       `json:"unit"`
	Recurrence  GoalRecurrence `json:"recurrence"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	Completed   bool           `json:"completed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Validate checks the goal fields.
func (g *Goal) Validate() error {
	g.Title = strings.TrimSpace(g.Title)
	switch {
	case g.UserID <= 0:
		return NewValidationError("user_id", "is required")
	case g.Title == "":
		return NewValidationError("title", "cannot be empty")
	case utf8.RuneCountInString(g.Title) > 150:
		return NewValidationError("title", "must be at most 150 characters")
	case utf8.RuneCountInString(g.Description) > maxDescriptionLength:
		return NewValidationError("description", "must be at most 500 characters")
	case g.Target <= 0:
		return NewValidationError("target", "must be greater than zero")
	case g.Current < 0:
		return NewValidationError("current", "must not be negative")
	case !g.Unit.Valid():
		return NewValidationError("unit", "invalid unit")
	case !g.Recurrence.Valid():
		return NewValidationError("recurrence", "invalid recurrence")
	case g.StartDate.IsZero():
		return NewValidationError("start_date", "is required")
	case g.EndDate != nil && g.EndDate.Before(g.StartDate):
		return ErrInvalidDateRange
	case g.TopicID != nil && g.SubjectID == nil:
		return NewValidationError("subject_id", "is required when topic_id is set")
	}
	return nil
}

// Reached reports whether the current quantity meets the target.
func (g *Goal) Reached() bool {
	return g.Current >= g.Target
}

// SetProgress updates the current quantity and derives completion from it.
func (g *Goal) SetProgress(current float64, now time.Time) error {
	if current < 0 {
		return NewValidationError("current", "must not be negative")
	}
	g.Current = current
	g.Completed = g.Reached()
	g.UpdatedAt = now.UTC()
	return nil
}

// MarkCompleted sets completion directly regardless of progress.
func (g *Goal) MarkCompleted(now time.Time) {
	g.Completed = true
	g.UpdatedAt = now.UTC()
}
