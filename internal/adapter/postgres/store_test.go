package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// newTestStore connects to POSTGRES_TEST_URL and clears the test region.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}

	ctx := context.Background()
	s, err := NewStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.pool.Exec(ctx, `DELETE FROM weekly_weather_forecast WHERE region LIKE 'test-%'`)
	require.NoError(t, err)
	return s
}

func TestStore_SaveAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := domain.NewLocalDate(2024, time.December, 31)

	docs := []domain.Document{
		{Country: "日本", Region: "test-東京地方", Date: date.AddDays(1), Type: "曇", HighestTemp: "9", LowestTemp: "1", RainyPercent: "40"},
		{Country: "日本", Region: "test-東京地方", Date: date, Type: "晴", HighestTemp: "12", LowestTemp: "3", RainyPercent: "10"},
	}
	require.NoError(t, s.SaveForecast(ctx, docs))

	docs[1].Type = "雨"
	require.NoError(t, s.SaveForecast(ctx, docs[1:]))

	got, err := s.Forecasts(ctx, "日本", "test-東京地方")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, docs[1], got[0])
	assert.Equal(t, docs[0], got[1])
	assert.Equal(t, "2025-1-1", got[1].DateKey())
}
