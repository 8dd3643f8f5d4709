package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// ForecastReader reads stored forecast documents for one region.
type ForecastReader interface {
	Forecasts(ctx context.Context, country, region string) ([]domain.Document, error)
}

// Server exposes health, readiness, metrics, and stored forecasts over HTTP.
type Server struct {
	httpServer *http.Server
	forecasts  ForecastReader
	country    string
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /forecasts/{region} routes. Forecasts are read for country.
func NewServer(addr string, ready sharedobs.ReadinessChecker, forecasts ForecastReader, country string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		forecasts: forecasts,
		country:   country,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /forecasts/{region}", s.handleForecasts)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type forecastsResponse struct {
	Country   string            `json:"country"`
	Region    string            `json:"region"`
	Forecasts []domain.Document `json:"forecasts"`
}

func (s *Server) handleForecasts(w http.ResponseWriter, r *http.Request) {
	region := r.PathValue("region")

	docs, err := s.forecasts.Forecasts(r.Context(), s.country, region)
	if err != nil {
		s.logger.Error("read forecasts failed", "region", region, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read forecasts"})
		return
	}
	if len(docs) == 0 {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no forecasts for region " + region})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, forecastsResponse{Country: s.country, Region: region, Forecasts: docs})
}
