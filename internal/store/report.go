package store

import (
	"context"
	"time"
)

// SessionTotal is one session's contribution to a report.
type SessionTotal struct {
	SessionID      int64
	SubjectID      int64
	SubjectName    string
	StartedAt      time.Time
	ElapsedSeconds int64
	// Finished is false while the session still runs, so ElapsedSeconds
	// depends on the now it was computed at.
	Finished bool
}

// ReportStore runs the read-only aggregation queries behind the calendar
// and dashboard.
type ReportStore interface {
	// SessionTotals returns every owned session started in [from, to) with
	// its elapsed seconds computed as of now, ordered by start.
	SessionTotals(ctx context.Context, userID int64, from, to, now time.Time) ([]SessionTotal, error)
}
