package html

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// HTTPFetcher loads a page with a plain GET request. It suits pages whose
// forecast table is present in the served HTML; use the browser fetcher for
// pages that build it with script.
type HTTPFetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch downloads url and parses it, converting legacy encodings such as
// Shift_JIS to UTF-8 based on the response headers and meta tags.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (domain.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, body)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}

	page, err := Parse(body)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("page fetched", "url", url, "status", resp.StatusCode)
	return page, nil
}
