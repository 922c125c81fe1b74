package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studytrack-api/internal/config"
	"github.com/phrazzld/studytrack-api/internal/events"
	"github.com/phrazzld/studytrack-api/internal/platform/cache"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/platform/tracing"
	"github.com/phrazzld/studytrack-api/internal/service"
	"github.com/phrazzld/studytrack-api/internal/service/auth"
)

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	location *time.Location

	jwtService auth.JWTService

	users    service.UserService
	catalog  service.CatalogService
	sessions service.SessionService
	reports  service.ReportService
	goals    service.GoalService
	notes    service.NoteService

	reportCache cache.ReportCache
	bus         *events.Bus
	forwarder   *events.NATSForwarder

	shutdownTracing tracing.ShutdownFunc
}

// newApplication wires stores, services and event handlers on top of an
// open database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.location, err = time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Server.Timezone, err)
	}

	app.shutdownTracing, err = tracing.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Duration("token_lifetime", cfg.Auth.TokenLifetime),
		slog.Duration("refresh_token_lifetime", cfg.Auth.RefreshTokenLifetime))

	q, err := queries.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load SQL queries: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, q, logger)
	categoryStore := postgres.NewPostgresCategoryStore(db, q, logger)
	subjectStore := postgres.NewPostgresSubjectStore(db, q, logger)
	topicStore := postgres.NewPostgresTopicStore(db, q, logger)
	sessionStore := postgres.NewPostgresSessionStore(db, q, logger)
	pauseStore := postgres.NewPostgresPauseStore(db, q, logger)
	goalStore := postgres.NewPostgresGoalStore(db, q, logger)
	noteStore := postgres.NewPostgresNoteStore(db, q, logger)
	reportStore := postgres.NewPostgresReportStore(db, q, logger)

	app.reportCache, err = cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report cache: %w", err)
	}

	if err := app.setupEvents(ctx); err != nil {
		return nil, err
	}

	clock := service.Clock(time.Now)
	hasher := auth.NewBcrypt(cfg.Auth.BCryptCost)

	app.users = service.NewUserService(userStore, hasher, hasher, clock, logger)
	app.catalog = service.NewCatalogService(db, categoryStore, subjectStore, topicStore, clock, logger)
	app.sessions = service.NewSessionService(service.SessionServiceDeps{
		DB:         db,
		Categories: categoryStore,
		Subjects:   subjectStore,
		Topics:     topicStore,
		Sessions:   sessionStore,
		Pauses:     pauseStore,
		Emitter:    app.bus,
		Reports:    app.reportCache,
		Clock:      clock,
		Logger:     logger,
	})
	app.reports = service.NewReportService(reportStore, app.reportCache, app.location, clock, logger)
	app.goals = service.NewGoalService(db, goalStore, subjectStore, topicStore, clock, logger)
	app.notes = service.NewNoteService(db, noteStore, sessionStore, clock, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// setupEvents starts the session event bus and, when configured, the NATS
// forwarder.
func (app *application) setupEvents(ctx context.Context) error {
	app.bus = events.NewBus(app.logger)

	if app.config.Events.NATSURL == "" {
		return nil
	}
	forwarder, err := events.NewNATSForwarder(ctx, app.config.Events.NATSURL, app.config.Events.Stream, app.logger)
	if err != nil {
		return fmt.Errorf("failed to connect event forwarder: %w", err)
	}
	app.forwarder = forwarder
	if err := app.bus.RegisterHandler(ctx, "nats_forwarder", forwarder); err != nil {
		return fmt.Errorf("failed to register NATS forwarder: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then releases every resource.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources in reverse order of acquisition.
func (app *application) cleanup() {
	if app.bus != nil {
		if err := app.bus.Close(); err != nil {
			app.logger.Error("error closing event bus", slog.String("error", err.Error()))
		}
	}
	if app.forwarder != nil {
		if err := app.forwarder.Close(); err != nil {
			app.logger.Error("error closing NATS connection", slog.String("error", err.Error()))
		}
	}
	if app.reportCache != nil {
		if err := app.reportCache.Close(); err != nil {
			app.logger.Error("error closing report cache", slog.String("error", err.Error()))
		}
	}
	if app.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.shutdownTracing(ctx); err != nil {
			app.logger.Error("error flushing traces", slog.String("error", err.Error()))
		}
		cancel()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
