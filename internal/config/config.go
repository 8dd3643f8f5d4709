package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Fetch modes.
const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	ForecastURL      string
	Country          string
	FetchMode        string
	FetchTimeout     time.Duration
	FetchAttempts    int
	FetchBackoff     time.Duration
	FetchMaxBackoff  time.Duration
	ParseConcurrency int

	StoreDriver string
	SQLitePath  string
	DatabaseURL string

	// Publishing is enabled when at least one broker is configured.
	KafkaBrokers []string
	KafkaTopic   string

	ScheduleCron string
	RunOnStart   bool
	RunOnce      bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// PublishEnabled reports whether forecast documents are published to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	fetchBackoff, err := parseDuration("FETCH_BACKOFF", "5s")
	if err != nil {
		return nil, err
	}
	fetchMaxBackoff, err := parseDuration("FETCH_MAX_BACKOFF", "1m")
	if err != nil {
		return nil, err
	}
	fetchAttempts, err := parsePositiveInt("FETCH_ATTEMPTS", 3, 10)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositiveInt("PARSE_CONCURRENCY", 8, 256)
	if err != nil {
		return nil, err
	}
	runOnStart, err := parseBool("RUN_ON_START", true)
	if err != nil {
		return nil, err
	}
	runOnce, err := parseBool("RUN_ONCE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ForecastURL:      sharedcfg.EnvOrDefault("FORECAST_URL", "https://www.jma.go.jp/jp/week/"),
		Country:          sharedcfg.EnvOrDefault("FORECAST_COUNTRY", "日本"),
		FetchMode:        strings.ToLower(sharedcfg.EnvOrDefault("FETCH_MODE", FetchModeBrowser)),
		FetchTimeout:     fetchTimeout,
		FetchAttempts:    fetchAttempts,
		FetchBackoff:     fetchBackoff,
		FetchMaxBackoff:  fetchMaxBackoff,
		ParseConcurrency: concurrency,

		StoreDriver: strings.ToLower(sharedcfg.EnvOrDefault("STORE_DRIVER", StoreSQLite)),
		SQLitePath:  sharedcfg.EnvOrDefault("SQLITE_PATH", "data/forecast.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weekly-weather-forecast"),

		ScheduleCron: sharedcfg.EnvOrDefault("SCHEDULE_CRON", "0 11,17 * * *"),
		RunOnStart:   runOnStart,
		RunOnce:      runOnce,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.ForecastURL == "" {
		return nil, errors.New("FORECAST_URL is required")
	}
	switch cfg.FetchMode {
	case FetchModeBrowser, FetchModeHTTP:
	default:
		return nil, fmt.Errorf("invalid FETCH_MODE %q: want %s or %s", cfg.FetchMode, FetchModeBrowser, FetchModeHTTP)
	}
	switch cfg.StoreDriver {
	case StoreSQLite, StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == StorePostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("STORE_DRIVER is postgres but DATABASE_URL is not set")
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if !cfg.RunOnce && strings.TrimSpace(cfg.ScheduleCron) == "" {
		return nil, errors.New("SCHEDULE_CRON is required unless RUN_ONCE is true")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def, maxValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > maxValue {
		return 0, fmt.Errorf("invalid %s: must be between 1 and %d", key, maxValue)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
