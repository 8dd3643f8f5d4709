// Command parsehtml runs the forecast parser against a saved JMA weekly
// forecast page and prints the resulting documents as JSON. It uses the same
// domain and pipeline packages as the scraper, so its output matches what a
// live run would store for that page and date.
//
// Usage:
//
//	go run ./cmd/parsehtml \
//	  -in internal/pipeline/testdata/weekly_forecast.html \
//	  -date 2024-12-29 \
//	  -out data/mock/weekly_forecast.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/net/html/charset"

	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/html"
	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
	"github.com/couchcryptid/weekly-forecast-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "saved forecast page (HTML)")
	date := flag.String("date", "", "date of the first forecast column, YYYY-M-D (default today)")
	country := flag.String("country", domain.DefaultCountry, "country the regions belong to")
	out := flag.String("out", "", "output path for the JSON documents (default stdout)")
	concurrency := flag.Int("concurrency", 8, "region rows parsed at once")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	fetched := domain.Today()
	if *date != "" {
		d, err := domain.ParseLocalDate(*date)
		if err != nil {
			return err
		}
		fetched = d
	}

	page, err := readPage(*in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *in, err)
	}

	ctx := context.Background()
	table, err := domain.LocateForecastTable(ctx, page)
	if err != nil {
		return err
	}
	result, err := pipeline.NewParser(*concurrency).Parse(ctx, table, fetched)
	if err != nil {
		return err
	}

	for _, regionErr := range result.Errors {
		log.Printf("warning: %v", regionErr)
	}
	printStats(result)

	docs := result.Documents(*country)
	if *out == "" {
		return encode(os.Stdout, docs)
	}
	if err := writeJSON(*out, docs); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d documents: %s", len(docs), *out)
	return nil
}

// readPage decodes the file using the charset declared in its meta tags.
func readPage(path string) (*html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return nil, err
	}
	return html.Parse(r)
}

func printStats(result *pipeline.Result) {
	counts := make(map[string]int)
	for name, records := range result.ByName() {
		counts[name] = len(records)
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Printf("first column: %s", result.Date)
	for _, name := range names {
		log.Printf("  %s: %d records", name, counts[name])
	}
	log.Printf("total: %d records, %d region errors", result.Records(), len(result.Errors))
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
