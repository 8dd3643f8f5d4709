// Package browser renders pages in headless Chrome before parsing them.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/html"
	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// Fetcher launches a fresh browser for every Fetch and always shuts it down
// before returning.
type Fetcher struct {
	timeout   time.Duration
	waitFor   string
	allocOpts []chromedp.ExecAllocatorOption
	logger    *slog.Logger
}

// NewFetcher creates a headless Chrome fetcher. Each Fetch, including browser
// startup, is bounded by timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	return &Fetcher{
		timeout:   timeout,
		waitFor:   "body",
		allocOpts: opts,
		logger:    logger,
	}
}

// Fetch navigates to url, waits for the document body and parses the
// rendered DOM.
func (f *Fetcher) Fetch(ctx context.Context, url string) (domain.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			f.logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)
	defer cancelBrowser()

	start := time.Now()
	var rendered string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(f.waitFor, chromedp.ByQuery),
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}
	f.logger.Debug("page rendered", "url", url, "bytes", len(rendered), "duration", time.Since(start))

	page, err := html.ParseString(rendered)
	if err != nil {
		return nil, err
	}
	return page, nil
}
