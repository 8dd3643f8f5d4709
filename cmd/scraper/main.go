package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/browser"
	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/html"
	httpadapter "github.com/couchcryptid/weekly-forecast-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weekly-forecast-etl/internal/adapter/kafka"
	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/memory"
	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/postgres"
	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/weekly-forecast-etl/internal/config"
	"github.com/couchcryptid/weekly-forecast-etl/internal/observability"
	"github.com/couchcryptid/weekly-forecast-etl/internal/pipeline"
	"github.com/couchcryptid/weekly-forecast-etl/internal/scheduler"
)

// forecastStore is a store the pipeline writes to and the HTTP server reads from.
type forecastStore interface {
	pipeline.Store
	httpadapter.ForecastReader
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("store opened", "driver", cfg.StoreDriver)

	// A nil *Writer must not reach the pipeline as a non-nil Publisher.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(
		newFetcher(cfg, logger),
		pipeline.NewParser(cfg.ParseConcurrency),
		store,
		publisher,
		pipeline.Source{URL: cfg.ForecastURL, Country: cfg.Country},
		logger,
		metrics,
	).WithFetchRetry(cfg.FetchAttempts, cfg.FetchBackoff, cfg.FetchMaxBackoff)

	code := 0
	if cfg.RunOnce {
		if _, err := p.Run(ctx); err != nil {
			code = 1
		}
	} else {
		code = serve(ctx, cfg, p, store, logger)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	closeStore()
	logger.Info("shutdown complete")
	stop()
	os.Exit(code)
}

// serve runs the HTTP server and the scheduler until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, store forecastStore, logger *slog.Logger) int {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, cfg.Country, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	sched := scheduler.New(cfg.ScheduleCron, cfg.RunOnStart, time.Local, func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	}, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return 1
	}
	logger.Info("next scheduled run", "at", sched.NextRun())

	<-ctx.Done()
	logger.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	return 0
}

func newFetcher(cfg *config.Config, logger *slog.Logger) pipeline.Fetcher {
	if cfg.FetchMode == config.FetchModeHTTP {
		return html.NewHTTPFetcher(cfg.FetchTimeout, logger)
	}
	return browser.NewFetcher(cfg.FetchTimeout, logger)
}

// openStore returns the configured store and its close function.
func openStore(ctx context.Context, cfg *config.Config) (forecastStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewStore(), func() {}, nil
	case config.StorePostgres:
		s, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreSQLite:
		s, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
