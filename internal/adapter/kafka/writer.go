package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weekly-forecast-etl/internal/config"
	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// Message header keys.
const (
	HeaderRunID   = "run_id"
	HeaderCountry = "country"
)

// Writer produces forecast documents to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured forecast topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes docs and writes them in a single WriteMessages call.
// Each message is keyed by region and date, so every run's message for the
// same day lands on the same partition; days of one region may spread across
// partitions.
func (w *Writer) Publish(ctx context.Context, runID string, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(docs))
	for i := range docs {
		msg, err := serializeToMessage(runID, docs[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("published forecast documents", "topic", w.writer.Topic, "count", len(msgs), "run_id", runID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey is the partition key of a document: region and date key.
func MessageKey(doc domain.Document) string {
	return doc.Region + "/" + doc.DateKey()
}

// serializeToMessage marshals a Document into a Kafka message.
func serializeToMessage(runID string, doc domain.Document) (kafkago.Message, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast document: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(doc)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderRunID, Value: []byte(runID)},
			{Key: HeaderCountry, Value: []byte(doc.Country)},
		},
	}, nil
}

// Received is a forecast document read back from the topic.
type Received struct {
	RunID    string
	Key      string
	Document domain.Document
}

// DecodeMessage maps a consumed Kafka message back to its document.
func DecodeMessage(msg kafkago.Message) (Received, error) {
	r := Received{Key: string(msg.Key)}
	for _, h := range msg.Headers {
		if h.Key == HeaderRunID {
			r.RunID = string(h.Value)
		}
	}
	if err := json.Unmarshal(msg.Value, &r.Document); err != nil {
		return Received{}, fmt.Errorf("decode forecast document: %w", err)
	}
	return r, nil
}
