// Package postgres stores forecast documents in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS weekly_weather_forecast (
		country       TEXT        NOT NULL,
		region        TEXT        NOT NULL,
		date_key      TEXT        NOT NULL,
		forecast_date DATE        NOT NULL,
		type          TEXT        NOT NULL DEFAULT '',
		highest_temp  TEXT        NOT NULL DEFAULT '0',
		lowest_temp   TEXT        NOT NULL DEFAULT '0',
		rainy_percent TEXT        NOT NULL DEFAULT '0',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (country, region, date_key)
	)
`

const upsertForecast = `
	INSERT INTO weekly_weather_forecast (
		country, region, date_key, forecast_date, type,
		highest_temp, lowest_temp, rainy_percent, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	ON CONFLICT (country, region, date_key) DO UPDATE SET
		forecast_date = EXCLUDED.forecast_date,
		type          = EXCLUDED.type,
		highest_temp  = EXCLUDED.highest_temp,
		lowest_temp   = EXCLUDED.lowest_temp,
		rainy_percent = EXCLUDED.rainy_percent,
		updated_at    = now()
`

const selectForecasts = `
	SELECT country, region, forecast_date, type, highest_temp, lowest_temp, rainy_percent
	FROM weekly_weather_forecast
	WHERE country = $1 AND region = $2
	ORDER BY forecast_date
`

// Store persists forecast documents through a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to databaseURL and creates the forecast table if needed.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// SaveForecast upserts docs as one batch inside a single transaction.
func (s *Store) SaveForecast(ctx context.Context, docs []domain.Document) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, doc := range docs {
			batch.Queue(upsertForecast,
				doc.Country, doc.Region, doc.DateKey(), doc.Date.Time(), doc.Type,
				doc.HighestTemp, doc.LowestTemp, doc.RainyPercent,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for _, doc := range docs {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("save %s/%s: %w", doc.Region, doc.DateKey(), err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("postgres: failed to save forecast: %w", err)
	}
	return nil
}

// Forecasts returns the documents stored for region, ordered by date.
func (s *Store) Forecasts(ctx context.Context, country, region string) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx, selectForecasts, country, region)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var (
			doc  domain.Document
			date time.Time
		)
		if err := rows.Scan(&doc.Country, &doc.Region, &date, &doc.Type,
			&doc.HighestTemp, &doc.LowestTemp, &doc.RainyPercent); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan forecast row: %w", err)
		}
		doc.Date = domain.LocalDateOf(date)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}
