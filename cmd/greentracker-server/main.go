// Package main is the entry point for the GreenTracker server.
// GreenTracker analyzes receipt images with a generative model and keeps
// a per-user carbon footprint history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecospend/greentracker/internal/ai"
	"github.com/ecospend/greentracker/internal/archive"
	"github.com/ecospend/greentracker/internal/config"
	"github.com/ecospend/greentracker/internal/handler"
	"github.com/ecospend/greentracker/internal/metrics"
	"github.com/ecospend/greentracker/internal/ratelimit"
	"github.com/ecospend/greentracker/internal/service"
	"github.com/ecospend/greentracker/internal/session"
	"github.com/ecospend/greentracker/internal/store"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting GreenTracker Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	st := store.Open(cfg.Store.Path, logger)

	sessions, err := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	model := ai.NewClient(ai.Config{
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		APIKey:  cfg.AI.APIKey,
		Timeout: cfg.AI.Timeout,
	}, logger)

	ledger := service.NewLedgerService(st, logger)

	limiter, redisClient, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	archiver, err := newArchiver(ctx, cfg.Archive, logger)
	if err != nil {
		return err
	}

	m := metrics.New()

	h := handler.New(handler.Config{
		Accounts:       service.NewAccountService(st, sessions, logger),
		Ledger:         ledger,
		Analysis:       service.NewAnalysisService(model, ledger, logger),
		Sessions:       sessions,
		Archiver:       archiver,
		Limiter:        limiter,
		Metrics:        m,
		Logger:         logger,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Str("path", cfg.Metrics.Path).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
	}
	return nil
}

// newLimiter builds the configured rate limiter. With Redis enabled the
// bucket state is shared across replicas; otherwise it is per process.
func newLimiter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ratelimit.Limiter, *redis.Client, error) {
	if !cfg.RateLimit.Enabled {
		return ratelimit.NoopLimiter{}, nil, nil
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("rate limiting backed by Redis")
		return ratelimit.NewRedisLimiter(client, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize), client, nil
	}

	logger.Info().Msg("rate limiting in memory")
	return ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize), nil, nil
}

// newArchiver builds the configured receipt archive backend.
func newArchiver(ctx context.Context, cfg config.ArchiveConfig, logger zerolog.Logger) (archive.Archiver, error) {
	switch cfg.Backend {
	case "filesystem":
		logger.Info().Str("dir", cfg.DataDir).Msg("archiving receipts to filesystem")
		return archive.NewFilesystem(cfg.DataDir, logger), nil
	case "s3":
		logger.Info().Str("bucket", cfg.S3.Bucket).Msg("archiving receipts to S3")
		return archive.NewS3(ctx, archive.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, logger)
	default:
		return archive.Noop{}, nil
	}
}

// newLogger configures zerolog from the logging section.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := log.Logger.Level(level)
	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger
}
