package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/cache"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/store"
)

const dateLayout = "2006-01-02"

// ReportService aggregates elapsed study time for the calendar and the
// dashboard. Each session counts on the day it started, in the configured
// time zone, with in-progress sessions measured up to now.
type ReportService interface {
	// Calendar returns per-day totals for the days of a month with activity.
	Calendar(ctx context.Context, userID int64, month, year int) (*domain.Calendar, error)

	// Dashboard returns totals per subject and per day for the period
	// containing day.
	Dashboard(ctx context.Context, userID int64, period domain.Period, day time.Time) (*domain.Dashboard, error)
}

type reportService struct {
	reports  store.ReportStore
	cache    cache.ReportCache
	location *time.Location
	clock    Clock
	logger   *slog.Logger
}

// NewReportService creates a ReportService. A nil cache disables caching and
// a nil location means UTC.
func NewReportService(
	reports store.ReportStore,
	c cache.ReportCache,
	location *time.Location,
	clock Clock,
	logger *slog.Logger,
) ReportService {
	if reports == nil {
		panic("report store cannot be nil")
	}
	if c == nil {
		c = cache.NoopReportCache{}
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &reportService{
		reports:  reports,
		cache:    c,
		location: location,
		clock:    clock,
		logger:   logger.With(slog.String("component", "report_service")),
	}
}

// Calendar implements ReportService.
func (s *reportService) Calendar(ctx context.Context, userID int64, month, year int) (*domain.Calendar, error) {
	start, end, err := domain.MonthRange(year, month, s.location)
	if err != nil {
		return nil, err
	}

	return cached(ctx, s, userID, "calendar", []string{strconv.Itoa(year), strconv.Itoa(month)},
		func() (*domain.Calendar, bool, error) {
			totals, err := s.reports.SessionTotals(ctx, userID, start.UTC(), end.UTC(), s.clock.now())
			if err != nil {
				return nil, false, NewServiceError("report", "calendar", "failed to load session totals", err)
			}
			return &domain.Calendar{Month: month, Year: year, Days: s.byDay(totals)}, allFinished(totals), nil
		})
}

// Dashboard implements ReportService.
func (s *reportService) Dashboard(
	ctx context.Context,
	userID int64,
	period domain.Period,
	day time.Time,
) (*domain.Dashboard, error) {
	start, end, err := period.Range(day, s.location)
	if err != nil {
		return nil, err
	}

	return cached(ctx, s, userID, "dashboard", []string{string(period), start.Format(dateLayout)},
		func() (*domain.Dashboard, bool, error) {
			totals, err := s.reports.SessionTotals(ctx, userID, start.UTC(), end.UTC(), s.clock.now())
			if err != nil {
				return nil, false, NewServiceError("report", "dashboard", "failed to load session totals", err)
			}

			d := &domain.Dashboard{
				Period:       period,
				Start:        start.Format(dateLayout),
				End:          end.AddDate(0, 0, -1).Format(dateLayout),
				SessionCount: len(totals),
				BySubject:    bySubject(totals),
				ByDay:        s.byDay(totals),
			}
			for _, t := range totals {
				d.TotalSeconds += t.ElapsedSeconds
			}
			d.TotalMinutes = domain.SecondsToMinutes(d.TotalSeconds)
			return d, allFinished(totals), nil
		})
}

// byDay groups totals by local start date. totals arrive ordered by start,
// so days come out ascending.
func (s *reportService) byDay(totals []store.SessionTotal) []domain.DayTotal {
	days := []domain.DayTotal{}
	for _, t := range totals {
		date := t.StartedAt.In(s.location).Format(dateLayout)
		if n := len(days); n == 0 || days[n-1].Date != date {
			days = append(days, domain.DayTotal{Date: date})
		}
		d := &days[len(days)-1]
		d.TotalSeconds += t.ElapsedSeconds
		d.SessionCount++
	}
	for i := range days {
		days[i].TotalMinutes = domain.SecondsToMinutes(days[i].TotalSeconds)
	}
	return days
}

// allFinished reports whether totals are final. A report that includes a
// running session changes every second and is never cached.
func allFinished(totals []store.SessionTotal) bool {
	for _, t := range totals {
		if !t.Finished {
			return false
		}
	}
	return true
}

// bySubject groups totals per subject, most studied first.
func bySubject(totals []store.SessionTotal) []domain.SubjectTotal {
	index := map[int64]int{}
	subjects := []domain.SubjectTotal{}
	for _, t := range totals {
		i, ok := index[t.SubjectID]
		if !ok {
			i = len(subjects)
			index[t.SubjectID] = i
			subjects = append(subjects, domain.SubjectTotal{SubjectID: t.SubjectID, SubjectName: t.SubjectName})
		}
		subjects[i].TotalSeconds += t.ElapsedSeconds
		subjects[i].SessionCount++
	}
	for i := range subjects {
		subjects[i].TotalMinutes = domain.SecondsToMinutes(subjects[i].TotalSeconds)
	}
	sort.SliceStable(subjects, func(a, b int) bool {
		if subjects[a].TotalSeconds != subjects[b].TotalSeconds {
			return subjects[a].TotalSeconds > subjects[b].TotalSeconds
		}
		return subjects[a].SubjectName < subjects[b].SubjectName
	})
	return subjects
}

// cached serves a report from the cache or computes it, storing the result
// only when compute marks it cacheable. Cache failures are logged and fall
// back to computing.
func cached[T any](
	ctx context.Context,
	s *reportService,
	userID int64,
	kind string,
	params []string,
	compute func() (*T, bool, error),
) (*T, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	version, err := s.cache.Version(ctx, userID)
	if err != nil {
		log.Warn("report cache unavailable", slog.String("error", err.Error()))
		report, _, err := compute()
		return report, err
	}
	key := cache.Key(kind, userID, version, append(params, s.location.String())...)

	if data, found, err := s.cache.Get(ctx, key); err != nil {
		log.Warn("report cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if found {
		var report T
		if err := json.Unmarshal(data, &report); err == nil {
			log.Debug("report cache hit", slog.String("key", key))
			return &report, nil
		}
		log.Warn("discarding unreadable cached report", slog.String("key", key))
	}

	report, cacheable, err := compute()
	if err != nil {
		return nil, err
	}
	if !cacheable {
		log.Debug("report includes running sessions, not cached", slog.String("key", key))
		return report, nil
	}

	if data, err := json.Marshal(report); err == nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			log.Warn("report cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return report, nil
}
