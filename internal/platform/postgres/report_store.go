package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// PostgresReportStore implements store.ReportStore.
type PostgresReportStore struct {
	db      store.DBTX
	queries *queries.Registry
	logger  *slog.Logger
}

// NewPostgresReportStore creates a report store.
func NewPostgresReportStore(db store.DBTX, q *queries.Registry, logger *slog.Logger) *PostgresReportStore {
	if db == nil || q == nil {
		panic("db and query registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReportStore{
		db:      db,
		queries: q,
		logger:  logger.With(slog.String("component", "report_store")),
	}
}

var _ store.ReportStore = (*PostgresReportStore)(nil)

// SessionTotals implements store.ReportStore.
func (s *PostgresReportStore) SessionTotals(
	ctx context.Context,
	userID int64,
	from, to, now time.Time,
) ([]store.SessionTotal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, s.queries.MustGet("report.session_totals"), userID, from, to, now)
	if err != nil {
		return nil, logStoreError(ctx, s.logger, "report", "session_totals", err)
	}
	defer func() { _ = rows.Close() }()

	totals := []store.SessionTotal{}
	for rows.Next() {
		var t store.SessionTotal
		if err := rows.Scan(&t.SessionID, &t.SubjectID, &t.SubjectName, &t.StartedAt, &t.ElapsedSeconds, &t.Finished); err != nil {
			return nil, logStoreError(ctx, s.logger, "report", "session_totals", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, logStoreError(ctx, s.logger, "report", "session_totals", err)
	}

	log.Debug("session totals loaded",
		slog.Int64("user_id", userID),
		slog.Time("from", from),
		slog.Time("to", to),
		slog.Int("count", len(totals)))
	return totals, nil
}
