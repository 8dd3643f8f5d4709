// Package memory holds forecast documents in process memory. It backs
// STORE_DRIVER=memory and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// Store is a country → region → date key tree of documents.
type Store struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]domain.Document
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{docs: make(map[string]map[string]map[string]domain.Document)}
}

// SaveForecast stores docs, replacing documents with the same key.
func (s *Store) SaveForecast(ctx context.Context, docs []domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		regions, ok := s.docs[doc.Country]
		if !ok {
			regions = make(map[string]map[string]domain.Document)
			s.docs[doc.Country] = regions
		}
		dates, ok := regions[doc.Region]
		if !ok {
			dates = make(map[string]domain.Document)
			regions[doc.Region] = dates
		}
		dates[doc.DateKey()] = doc
	}
	return nil
}

// Forecasts returns the documents stored for region, ordered by date.
func (s *Store) Forecasts(_ context.Context, country, region string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := s.docs[country][region]
	out := make([]domain.Document, 0, len(dates))
	for _, doc := range dates {
		out = append(out, doc)
	}
	slices.SortFunc(out, func(a, b domain.Document) int { return a.Date.Compare(b.Date) })
	return out, nil
}
