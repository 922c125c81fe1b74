package domain

import (
	"time"
)

// Period is the span a dashboard aggregates over.
type Period string

// Supported dashboard periods.
const (
	PeriodDay   Period = "dia"
	PeriodWeek  Period = "semana"
	PeriodMonth Period = "mes"
	PeriodYear  Period = "ano"
)

// Report validation errors.
var (
	ErrInvalidPeriod = NewValidationError("periodo", "must be one of dia, semana, mes, ano")
	ErrInvalidMonth  = NewValidationError("mes", "must be between 1 and 12")
	ErrInvalidYear   = NewValidationError("ano", "must be between 1970 and 9999")
)

// ParsePeriod validates a period keyword.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// Range returns the half-open interval [start, end) of the period that
// contains day, in loc. Weeks run Monday to Sunday.
func (p Period) Range(day time.Time, loc *time.Location) (time.Time, time.Time, error) {
	d := day.In(loc)
	y, m, dd := d.Date()
	midnight := time.Date(y, m, dd, 0, 0, 0, 0, loc)

	switch p {
	case PeriodDay:
		return midnight, midnight.AddDate(0, 0, 1), nil
	case PeriodWeek:
		offset := int(midnight.Weekday())
		if offset == 0 {
			offset = 7
		}
		start := midnight.AddDate(0, 0, -offset+1)
		return start, start.AddDate(0, 0, 7), nil
	case PeriodMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	case PeriodYear:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, ErrInvalidPeriod
}

// MonthRange returns [first day, first day of next month) for a calendar month.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	if year < 1970 || year > 9999 {
		return time.Time{}, time.Time{}, ErrInvalidYear
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}

// DayTotal is the study time attributed to one calendar day.
type DayTotal struct {
	Date         string `json:"date"` // YYYY-MM-DD
	TotalSeconds int64  `json:"total_seconds"`
	TotalMinutes int64  `json:"total_minutes"`
	SessionCount int    `json:"session_count"`
}

// SubjectTotal is the study time attributed to one subject.
type SubjectTotal struct {
	SubjectID    int64  `json:"subject_id"`
	SubjectName  string `json:"subject_name"`
	TotalSeconds int64  `json:"total_seconds"`
	TotalMinutes int64  `json:"total_minutes"`
	SessionCount int    `json:"session_count"`
}

// Calendar lists the days of a month that have study activity.
type Calendar struct {
	Month int        `json:"mes"`
	Year  int        `json:"ano"`
	Days  []DayTotal `json:"dias"`
}

// Dashboard summarizes study time over a period.
type Dashboard struct {
	Period       Period         `json:"periodo"`
	Start        string         `json:"inicio"`
	End          string         `json:"fim"` // inclusive last day
	TotalSeconds int64          `json:"total_seconds"`
	TotalMinutes int64          `json:"total_minutes"`
	SessionCount int            `json:"session_count"`
	BySubject    []SubjectTotal `json:"por_materia"`
	ByDay        []DayTotal     `json:"por_dia"`
}

// SecondsToMinutes truncates a second count to whole minutes.
func SecondsToMinutes(seconds int64) int64 {
	return seconds / 60
}
