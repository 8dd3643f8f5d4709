package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
	"github.com/couchcryptid/weekly-forecast-etl/internal/observability"
)

// Fetcher loads a forecast page and returns its root node.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (domain.Node, error)
}

// Store persists forecast documents. A call is one batch: either every
// document is written or none is.
type Store interface {
	SaveForecast(ctx context.Context, docs []domain.Document) error
}

// Publisher forwards persisted documents to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, runID string, docs []domain.Document) error
}

// Source identifies the page to scrape and the country its regions belong to.
type Source struct {
	URL     string
	Country string
}

// Pipeline runs the fetch-parse-store sequence for one scrape.
type Pipeline struct {
	fetcher   Fetcher
	parser    *Parser
	store     Store
	publisher Publisher
	source    Source
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	fetchAttempts int
	backoff       time.Duration
	maxBackoff    time.Duration
}

// New creates a Pipeline. publisher may be nil to disable publishing.
func New(f Fetcher, parser *Parser, s Store, pub Publisher, source Source, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		parser:    parser,
		store:     s,
		publisher: pub,
		source:    source,
		logger:    logger,
		metrics:   metrics,

		fetchAttempts: 1,
	}
}

// WithFetchRetry makes each run try the fetch up to attempts times, waiting
// backoff after the first failure and doubling up to maxBackoff.
func (p *Pipeline) WithFetchRetry(attempts int, backoff, maxBackoff time.Duration) *Pipeline {
	if attempts < 1 {
		attempts = 1
	}
	p.fetchAttempts = attempts
	p.backoff = backoff
	p.maxBackoff = maxBackoff
	return p
}

// CheckReadiness returns nil once a run has persisted records,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no forecast has been stored yet")
	}
	return nil
}

// Run performs one scrape.
//
// Failing to fetch the page or to find the forecast table fails the run and
// nothing is stored. Region failures do not: the records that parsed are
// stored and the failures are logged and returned in the Result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	start := time.Now()

	p.metrics.ScraperRunning.Set(1)
	defer p.metrics.ScraperRunning.Set(0)

	logger.Info("started obtaining weekly weather forecast", "url", p.source.URL)

	result, err := p.run(ctx, runID, logger)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues(observability.OutcomeFailure).Inc()
		logger.Error("weekly weather forecast run failed", "error", err, "duration", time.Since(start))
		return result, err
	}

	outcome := observability.OutcomeSuccess
	if len(result.Errors) > 0 {
		outcome = observability.OutcomePartial
	}
	p.metrics.RunsTotal.WithLabelValues(outcome).Inc()

	logger.Info("finished obtaining weekly weather forecast",
		"regions", len(result.Regions),
		"records", result.Records(),
		"region_errors", len(result.Errors),
		"duration", time.Since(start),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, runID string, logger *slog.Logger) (*Result, error) {
	fetched := domain.Today()

	page, err := p.fetch(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast page: %w", err)
	}

	table, err := domain.LocateForecastTable(ctx, page)
	if err != nil {
		return nil, err
	}

	result, err := p.parser.Parse(ctx, table, fetched)
	if err != nil {
		return nil, err
	}
	result.RunID = runID

	p.metrics.RecordsParsed.Add(float64(result.Records()))
	for _, regionErr := range result.Errors {
		p.metrics.RegionErrors.Inc()
		logger.Warn("region parse failed", "region", regionErr.Region, "error", regionErr.Err)
	}

	docs := result.Documents(p.source.Country)
	if len(docs) == 0 {
		logger.Warn("forecast table produced no records")
		return result, nil
	}

	if err := p.store.SaveForecast(ctx, docs); err != nil {
		return result, fmt.Errorf("save forecast: %w", err)
	}
	p.metrics.RecordsSaved.Add(float64(len(docs)))
	p.metrics.LastSuccess.SetToCurrentTime()
	p.ready.Store(true)

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, runID, docs); err != nil {
			return result, fmt.Errorf("publish forecast: %w", err)
		}
		p.metrics.MessagesPublished.Add(float64(len(docs)))
	}

	return result, nil
}

func (p *Pipeline) fetch(ctx context.Context, logger *slog.Logger) (domain.Node, error) {
	wait := p.backoff
	for attempt := 1; ; attempt++ {
		page, err := p.fetcher.Fetch(ctx, p.source.URL)
		if err == nil {
			return page, nil
		}
		if attempt >= p.fetchAttempts || ctx.Err() != nil {
			return nil, err
		}

		logger.Warn("fetch failed, retrying", "attempt", attempt, "backoff", wait, "error", err)
		if !retry.SleepWithContext(ctx, wait) {
			return nil, err
		}
		wait = retry.NextBackoff(wait, p.maxBackoff)
	}
}
