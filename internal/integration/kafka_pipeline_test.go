//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/html"
	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/kafka"
	"github.com/couchcryptid/weekly-forecast-etl/internal/adapter/memory"
	"github.com/couchcryptid/weekly-forecast-etl/internal/config"
	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
	"github.com/couchcryptid/weekly-forecast-etl/internal/observability"
	"github.com/couchcryptid/weekly-forecast-etl/internal/pipeline"
)

const testTopic = "test-weekly-weather-forecast"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate kafka: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func readReceived(ctx context.Context, t *testing.T, consumer *kafkago.Reader, n int) []kafka.Received {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out := make([]kafka.Received, 0, n)
	for range n {
		msg, err := consumer.ReadMessage(readCtx)
		require.NoError(t, err, "read from forecast topic")
		got, err := kafka.DecodeMessage(msg)
		require.NoError(t, err)
		out = append(out, got)
	}
	return out
}

// TestPipelinePublishesToKafka scrapes the fixture page over HTTP, stores the
// records in memory, and reads every published document back from Kafka.
func TestPipelinePublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.December, 29, 12, 0, 0, 0, time.Local)))
	t.Cleanup(func() { domain.SetClock(clockwork.NewRealClock()) })

	page, err := os.ReadFile(filepath.Join("..", "pipeline", "testdata", "weekly_forecast.html"))
	require.NoError(t, err)
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	defer site.Close()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	store := memory.NewStore()
	p := pipeline.New(
		html.NewHTTPFetcher(10*time.Second, discardLogger()),
		pipeline.NewParser(4),
		store,
		writer,
		pipeline.Source{URL: site.URL, Country: domain.DefaultCountry},
		discardLogger(),
		observability.NewMetricsForTesting(),
	)

	result, err := p.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 10, result.Records())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := readReceived(ctx, t, consumer, 10)

	assert.Equal(t, "東京地方/2024-12-29", received[0].Key)
	assert.Equal(t, "東京地方/2025-1-4", received[6].Key)
	assert.Equal(t, "沖縄本島地方/2024-12-31", received[9].Key)
	for _, r := range received {
		assert.Equal(t, result.RunID, r.RunID)
		assert.Equal(t, "日本", r.Document.Country)
	}
	assert.Equal(t, "8.5", received[3].Document.HighestTemp)
	assert.Equal(t, "40", received[2].Document.RainyPercent)

	stored, err := store.Forecasts(ctx, domain.DefaultCountry, "東京地方")
	require.NoError(t, err)
	assert.Len(t, stored, 7)
}
