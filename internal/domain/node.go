package domain

import "context"

// Selectors for the JMA weekly forecast page.
const (
	SelectorForecastList = ".forecastlist"
	SelectorTableBody    = "tbody"
	SelectorRegionRow    = "tr"
	SelectorRegionName   = ".area"
	SelectorForecastCell = ".forecast"
	SelectorMinTemp      = ".mintemp"
	SelectorMaxTemp      = ".maxtemp"
	SelectorWeatherIcon  = "img"
	SelectorRainyPercent = ".pop"

	AttrWeatherLabel = "alt"
)

// Node is the read-only view of a page element the parsers work against.
// Implementations are supplied by the page fetching adapters.
type Node interface {
	// Find returns the first descendant matching selector, or nil and no
	// error when nothing matches.
	Find(ctx context.Context, selector string) (Node, error)

	// FindAll returns every descendant matching selector in document order.
	FindAll(ctx context.Context, selector string) ([]Node, error)

	// Text returns the element's text content.
	Text(ctx context.Context) (string, error)

	// Attr returns the named attribute, or "" when it is not set.
	Attr(ctx context.Context, name string) (string, error)
}
