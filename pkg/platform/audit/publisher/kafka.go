// Package publisher provides audit sinks behind the audit.Publisher contract.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"inkpad/pkg/platform/audit"
)

// KafkaPublisher emits audit events to a Kafka topic. Produces are
// asynchronous; delivery failures are logged and dropped rather than
// surfaced, because an audit outage must not fail user requests.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects to the brokers and ensures the audit topic exists.
func NewKafka(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	// Idempotent topic creation; an existing topic is fine.
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(pingCtx, 1, 1, nil, topic)
	if err != nil {
		logger.Warn("could not ensure audit topic", "topic", topic, "error", err)
	} else if resp.Err != nil && resp.Err != kerr.TopicAlreadyExists {
		logger.Warn("could not ensure audit topic", "topic", topic, "error", resp.Err)
	}

	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Emit serializes the event and produces it asynchronously.
func (p *KafkaPublisher) Emit(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Action),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Warn("audit produce failed", "action", event.Action, "error", err)
		}
	})
	return nil
}

// Close flushes buffered produces and releases the client.
func (p *KafkaPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
	return nil
}
