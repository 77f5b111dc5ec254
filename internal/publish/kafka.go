// Package publish forwards change-log entries to Kafka so downstream
// loaders can react to captured changes without polling the object store.
package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"driftcap/internal/capture"
	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

// KafkaPublisher produces one message per change-log entry, keyed by table
// name so a table's changes stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher wires a publisher from configuration.
func NewKafkaPublisher(cfg models.Publisher) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.ConfigError("publisher requires at least one broker", "publisher.brokers")
	}
	if cfg.Topic == "" {
		return nil, errors.ConfigError("publisher requires a topic", "publisher.topic")
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// PublishChanges implements capture.Publisher.
func (p *KafkaPublisher) PublishChanges(ctx context.Context, table string, entries []capture.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(entries))
	for _, entry := range entries {
		value, err := json.Marshal(entry)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode change event")
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(table),
			Value: value,
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "failed to publish change events").
			WithContext("table", table).
			WithContext("entries", len(entries)).
			AsRecoverable()
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
