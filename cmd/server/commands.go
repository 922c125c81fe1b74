package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/studytrack-api/internal/config"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile    string
	configFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "studytrack",
		Short:         "Study session tracking API",
		Long:          "studytrack serves the study tracking HTTP API and manages its PostgreSQL schema.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default .env)")
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default ./config.yaml)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newMigrateCommand(opts))
	root.AddCommand(newHashPasswordCommand())
	return root
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(runContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, log, closer, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closer.Close()

			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}

			app, err := newApplication(ctx, cfg, log, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(command string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := runContext(cmd)
			cfg, log, closer, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer closer.Close()

			// create only writes a file and needs no connection
			if command == "create" {
				return postgres.NewMigrator(nil, log).Run(ctx, command, args...)
			}

			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			return postgres.NewMigrator(db, log).Run(ctx, command, args...)
		}
	}

	for _, sub := range []struct {
		use, short string
	}{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the latest migration"},
		{"reset", "Roll back every migration"},
		{"status", "Show the status of every migration"},
		{"version", "Print the current schema version"},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE:  run(sub.use),
		})
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE:  run("create"),
	})
	return cmd
}

// bootstrap loads configuration and sets up the global logger.
func bootstrap(opts *rootOptions) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.LoadWithOptions(config.Options{
		EnvFile:    opts.envFile,
		ConfigFile: opts.configFile,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closer, err := logger.Setup(cfg.Server, cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Server.Timezone),
		slog.String("cache_backend", cfg.Cache.Backend))
	return cfg, log, closer, nil
}

// runContext is the command context, or Background when cobra has none.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
