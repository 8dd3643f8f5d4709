package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// Result is the outcome of parsing one forecast table.
type Result struct {
	RunID string
	Date  domain.LocalDate

	// Regions in table row order. Rows without a region name are omitted.
	Regions []domain.Region

	// Errors holds one entry per region row that failed wholly or in part.
	Errors []*domain.RegionError
}

// ByName groups records by region name. Rows sharing a name are merged in
// row order.
func (r *Result) ByName() map[string][]domain.Weather {
	out := make(map[string][]domain.Weather, len(r.Regions))
	for _, region := range r.Regions {
		out[region.Name] = append(out[region.Name], region.Weather...)
	}
	return out
}

// Records returns the total number of parsed records.
func (r *Result) Records() int {
	n := 0
	for _, region := range r.Regions {
		n += len(region.Weather)
	}
	return n
}

// Documents serializes every record for storage under country.
func (r *Result) Documents(country string) []domain.Document {
	docs := make([]domain.Document, 0, r.Records())
	for _, region := range r.Regions {
		docs = append(docs, region.Documents(country)...)
	}
	return docs
}

// Parser turns a forecast table into a Result, parsing rows concurrently.
type Parser struct {
	concurrency int
}

// NewParser creates a Parser that parses at most concurrency rows at once.
func NewParser(concurrency int) *Parser {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Parser{concurrency: concurrency}
}

type rowOutcome struct {
	region domain.Region
	ok     bool
	err    *domain.RegionError
}

// Parse parses every row of table with offset 0 dated fetched.
//
// Row failures never abort the parse, including a node that panics; they are
// collected in Result.Errors and whatever the row yielded is kept. The only error returned is failing to
// enumerate the rows at all.
func (p *Parser) Parse(ctx context.Context, table domain.Node, fetched domain.LocalDate) (*Result, error) {
	rows, err := table.FindAll(ctx, domain.SelectorRegionRow)
	if err != nil {
		return nil, fmt.Errorf("enumerate region rows: %w", err)
	}

	// Each task owns one slot; slots are merged in row order once all finish.
	outcomes := make([]rowOutcome, len(rows))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, row := range rows {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = rowOutcome{ok: true, err: &domain.RegionError{Err: fmt.Errorf("row %d: panic: %v", i, r)}}
				}
			}()
			region, ok, err := domain.ParseRegionRow(ctx, row, fetched)
			outcomes[i] = rowOutcome{region: region, ok: ok, err: asRegionError(err, region.Name)}
			return nil
		})
	}
	_ = g.Wait() // tasks report through outcomes

	result := &Result{Date: fetched}
	for _, o := range outcomes {
		if o.err != nil {
			result.Errors = append(result.Errors, o.err)
		}
		if o.ok && o.region.Name != "" {
			result.Regions = append(result.Regions, o.region)
		}
	}
	return result, nil
}

func asRegionError(err error, region string) *domain.RegionError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*domain.RegionError); ok {
		return re
	}
	return &domain.RegionError{Region: region, Err: err}
}
