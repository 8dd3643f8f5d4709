package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the "outcome" label of RunsTotal.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the scraper.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec // labels: outcome={success,partial,failure}
	RecordsParsed     prometheus.Counter
	RegionErrors      prometheus.Counter
	RecordsSaved      prometheus.Counter
	MessagesPublished prometheus.Counter
	ScraperRunning    prometheus.Gauge
	LastSuccess       prometheus.Gauge

	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers all scraper metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RecordsParsed,
		m.RegionErrors,
		m.RecordsSaved,
		m.MessagesPublished,
		m.ScraperRunning,
		m.LastSuccess,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weekly_forecast",
			Name:      "runs_total",
			Help:      "Scrape runs by outcome.",
		}, []string{"outcome"}),
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weekly_forecast",
			Name:      "records_parsed_total",
			Help:      "Forecast records parsed from the page.",
		}),
		RegionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weekly_forecast",
			Name:      "region_errors_total",
			Help:      "Region rows that failed to parse completely.",
		}),
		RecordsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weekly_forecast",
			Name:      "records_saved_total",
			Help:      "Forecast documents written to the store.",
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weekly_forecast",
			Name:      "messages_published_total",
			Help:      "Forecast documents published to Kafka.",
		}),
		ScraperRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weekly_forecast",
			Name:      "scraper_running",
			Help:      "1 while a scrape run is in progress.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weekly_forecast",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that persisted records.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weekly_forecast",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-parse-store run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
	}
}
