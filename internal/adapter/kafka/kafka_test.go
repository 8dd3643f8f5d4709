package kafka

import (
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weekly-forecast-etl/internal/config"
	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

func testDocument() domain.Document {
	return domain.Document{
		Country:      "日本",
		Region:       "東京地方",
		Date:         domain.NewLocalDate(2025, time.January, 4),
		Type:         "晴時々曇",
		HighestTemp:  "8.5",
		LowestTemp:   "-1",
		RainyPercent: "30",
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage("run-1", testDocument())
	require.NoError(t, err)

	assert.Equal(t, []byte("東京地方/2025-1-4"), msg.Key)
	assert.JSONEq(t, `{
		"country": "日本",
		"region": "東京地方",
		"date": "2025-1-4",
		"type": "晴時々曇",
		"highestTemp": "8.5",
		"lowestTemp": "-1",
		"rainyPercent": "30"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, "country", msg.Headers[1].Key)
	assert.Equal(t, []byte("日本"), msg.Headers[1].Value)
}

func TestDecodeMessage(t *testing.T) {
	msg, err := serializeToMessage("run-2", testDocument())
	require.NoError(t, err)

	got, err := DecodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.RunID)
	assert.Equal(t, "東京地方/2025-1-4", got.Key)
	assert.Equal(t, testDocument(), got.Document)
}

func TestDecodeMessage_InvalidJSON(t *testing.T) {
	_, err := DecodeMessage(kafkago.Message{Value: []byte("{")})
	assert.Error(t, err)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"a:9092", "b:9092"}, KafkaTopic: "weekly-weather-forecast"}
	w := NewWriter(cfg, slog.New(slog.DiscardHandler))

	assert.Equal(t, "weekly-weather-forecast", w.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
	assert.IsType(t, &kafkago.Hash{}, w.writer.Balancer)
}

func TestSerializeToMessage_KeyPerRegionAndDay(t *testing.T) {
	doc := testDocument()
	first, err := serializeToMessage("run-1", doc)
	require.NoError(t, err)
	rerun, err := serializeToMessage("run-2", doc)
	require.NoError(t, err)
	doc.Date = doc.Date.AddDays(1)
	nextDay, err := serializeToMessage("run-1", doc)
	require.NoError(t, err)

	balancer := &kafkago.Hash{}
	partitions := []int{0, 1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, first.Key, rerun.Key)
	assert.Equal(t, balancer.Balance(first, partitions...), balancer.Balance(rerun, partitions...))
	assert.NotEqual(t, first.Key, nextDay.Key)
}
