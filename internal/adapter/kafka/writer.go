package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crash-map-service/internal/config"
	"github.com/couchcryptid/crash-map-service/internal/domain"
	"github.com/couchcryptid/crash-map-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the exporter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes fatal crash records to a Kafka topic.
// It implements pipeline.Exporter.
type Writer struct {
	writer    messageWriter
	logger    *slog.Logger
	batchSize int
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, batchSize: 500}
}

// Export serializes every fatal record of the snapshot and publishes them in
// batches. Keys are stable record IDs so consumers can deduplicate reloads.
func (w *Writer) Export(ctx context.Context, snap *pipeline.Snapshot) error {
	if len(snap.Fatal) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(snap.Fatal))
	for i := range snap.Fatal {
		msg, err := serializeToMessage(snap.Fatal[i], snap.LoadedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	for start := 0; start < len(msgs); start += w.batchSize {
		end := min(start+w.batchSize, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return fmt.Errorf("publish fatal crashes %d-%d: %w", start, end, err)
		}
	}

	w.logger.Info("fatal crashes exported", "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a CrashRecord into a Kafka message.
func serializeToMessage(r domain.CrashRecord, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize crash record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.RecordID(r)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(r.Severity)},
			{Key: "loaded_at", Value: []byte(loadedAt.Format(time.RFC3339))},
		},
	}, nil
}
