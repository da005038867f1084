package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Togather-Foundation/listings/internal/api"
	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/config"
	"github.com/Togather-Foundation/listings/internal/metrics"
	"github.com/Togather-Foundation/listings/internal/storage/postgres"
	"github.com/Togather-Foundation/listings/internal/telemetry"
	"github.com/Togather-Foundation/listings/internal/uploads"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const dbMetricsInterval = 15 * time.Second

type serveOptions struct {
	host    string
	port    int
	migrate bool
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the listings HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Optionally apply pending database migrations (--migrate)
- Serve the API, /health, /metrics and stored images
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging and console output
  server serve --log-level debug --log-format console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			applyServeFlags(&cfg, opts)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, opts.migrate)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 8080)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func applyServeFlags(cfg *config.Config, opts *serveOptions) {
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
}

func runServer(ctx context.Context, cfg config.Config, migrateFirst bool) error {
	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting listings server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if migrateFirst {
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := postgres.Open(openCtx, cfg.Database.URL, int32(cfg.Database.MaxConnections))
	cancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	go metrics.NewDBCollector(pool).Run(ctx, dbMetricsInterval)

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}

	store, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, logger)
	if err != nil {
		return err
	}

	handler := api.NewRouter(ctx, cfg, api.Deps{
		Repo:    repo,
		Tokens:  auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Uploads: store,
		Logger:  logger,
		Build:   api.BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate},
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return gracefulShutdown(server, cfg.Server.ShutdownTimeout, logger)
}

func gracefulShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
