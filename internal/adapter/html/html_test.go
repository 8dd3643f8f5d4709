package html

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

const testPage = `<html><body>
<table class="forecastlist"><tbody>
<tr><th class="area">東京地方</th>
<td class="forecast"><img alt="晴"><span class="pop">20/30</span><span class="maxtemp">12</span></td>
<td class="forecast"><img src="x.png"></td>
</tr>
</tbody></table>
</body></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNode_FindAndText(t *testing.T) {
	ctx := context.Background()
	page, err := ParseString(testPage)
	require.NoError(t, err)

	area, err := page.Find(ctx, domain.SelectorRegionName)
	require.NoError(t, err)
	require.NotNil(t, area)

	text, err := area.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "東京地方", text)
}

func TestNode_FindMissingReturnsNil(t *testing.T) {
	page, err := ParseString(testPage)
	require.NoError(t, err)

	n, err := page.Find(context.Background(), ".nothing")
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestNode_FindAllDocumentOrder(t *testing.T) {
	ctx := context.Background()
	page, err := ParseString(testPage)
	require.NoError(t, err)

	cells, err := page.FindAll(ctx, domain.SelectorForecastCell)
	require.NoError(t, err)
	require.Len(t, cells, 2)

	icon, err := cells[0].Find(ctx, domain.SelectorWeatherIcon)
	require.NoError(t, err)
	alt, err := icon.Attr(ctx, domain.AttrWeatherLabel)
	require.NoError(t, err)
	assert.Equal(t, "晴", alt)

	// missing attribute reads as empty
	icon, err = cells[1].Find(ctx, domain.SelectorWeatherIcon)
	require.NoError(t, err)
	alt, err = icon.Attr(ctx, domain.AttrWeatherLabel)
	require.NoError(t, err)
	assert.Empty(t, alt)
}

func TestNode_CancelledContext(t *testing.T) {
	page, err := ParseString(testPage)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = page.Find(ctx, domain.SelectorRegionName)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = page.FindAll(ctx, domain.SelectorForecastCell)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNode_DrivesRowParser(t *testing.T) {
	ctx := context.Background()
	page, err := ParseString(testPage)
	require.NoError(t, err)

	table, err := domain.LocateForecastTable(ctx, page)
	require.NoError(t, err)
	rows, err := table.FindAll(ctx, domain.SelectorRegionRow)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	fetched := domain.NewLocalDate(2024, time.March, 5)
	region, ok, err := domain.ParseRegionRow(ctx, rows[0], fetched)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, region.Weather, 2)
	assert.Equal(t, 30, region.Weather[0].RainyPercent)
	assert.Equal(t, 12.0, region.Weather[0].HighestTemp)
	assert.Equal(t, fetched.AddDays(1), region.Weather[1].Date)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, testPage)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, discardLogger())
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	_, err = domain.LocateForecastTable(context.Background(), page)
	assert.NoError(t, err)
}

func TestHTTPFetcher_DecodesShiftJIS(t *testing.T) {
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), testPage)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = io.WriteString(w, encoded)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, discardLogger())
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	area, err := page.Find(context.Background(), domain.SelectorRegionName)
	require.NoError(t, err)
	text, err := area.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "東京地方", text)
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, discardLogger())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
