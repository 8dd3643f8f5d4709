// Package sqlite stores forecast documents in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const upsertForecast = `
	INSERT INTO weekly_weather_forecast (
		country, region, date_key, forecast_date, type,
		highest_temp, lowest_temp, rainy_percent, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (country, region, date_key) DO UPDATE SET
		forecast_date = excluded.forecast_date,
		type          = excluded.type,
		highest_temp  = excluded.highest_temp,
		lowest_temp   = excluded.lowest_temp,
		rainy_percent = excluded.rainy_percent,
		updated_at    = excluded.updated_at
`

const selectForecasts = `
	SELECT country, region, forecast_date, type, highest_temp, lowest_temp, rainy_percent
	FROM weekly_weather_forecast
	WHERE country = ? AND region = ?
	ORDER BY forecast_date
`

// Store persists forecast documents keyed by country, region, and date.
type Store struct {
	conn *sql.DB
}

// NewStore opens the database at path, creating its directory, and applies
// pending migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SaveForecast writes docs in one transaction. A document for an existing
// country, region, and date replaces the stored one.
func (s *Store) SaveForecast(ctx context.Context, docs []domain.Document) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsertForecast)
	if err != nil {
		return fmt.Errorf("sqlite: prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, doc := range docs {
		if _, err := stmt.ExecContext(ctx,
			doc.Country, doc.Region, doc.DateKey(), doc.Date.ISO(), doc.Type,
			doc.HighestTemp, doc.LowestTemp, doc.RainyPercent, now,
		); err != nil {
			return fmt.Errorf("sqlite: save %s/%s: %w", doc.Region, doc.DateKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Forecasts returns the documents stored for region, ordered by date.
func (s *Store) Forecasts(ctx context.Context, country, region string) ([]domain.Document, error) {
	rows, err := s.conn.QueryContext(ctx, selectForecasts, country, region)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query forecasts: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var (
			doc  domain.Document
			date string
		)
		if err := rows.Scan(&doc.Country, &doc.Region, &date, &doc.Type,
			&doc.HighestTemp, &doc.LowestTemp, &doc.RainyPercent); err != nil {
			return nil, fmt.Errorf("sqlite: scan forecast: %w", err)
		}
		if doc.Date, err = domain.ParseLocalDate(date); err != nil {
			return nil, fmt.Errorf("sqlite: stored date %q: %w", date, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}
