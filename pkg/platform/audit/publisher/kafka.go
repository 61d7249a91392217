// Package publisher delivers outbox entries to Kafka with franz-go.
package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "presence/pkg/platform/audit"
)

// Header keys set on every record.
const (
	HeaderEventType = "event_type"
	HeaderCategory  = "category"
	HeaderEntryID   = "outbox_id"
)

// KafkaPublisher produces outbox entries to a single topic, keyed by aggregate
// so all events for one attendance record land on one partition in order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects a producer for topic. The producer waits for all in-sync
// replicas and is idempotent.
func NewKafka(brokers []string, topic string, opts ...kgo.Opt) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (p *KafkaPublisher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

// Publish produces the batch synchronously and returns the first failure.
func (p *KafkaPublisher) Publish(ctx context.Context, entries []audit.OutboxEntry) error {
	records := make([]*kgo.Record, len(entries))
	for i, e := range entries {
		records[i] = Record(p.topic, e)
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit events: %w", err)
	}
	return nil
}

// Ping checks broker reachability.
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// Record maps an outbox entry to a Kafka record.
func Record(topic string, e audit.OutboxEntry) *kgo.Record {
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventType, Value: []byte(e.EventType)},
			{Key: HeaderCategory, Value: []byte(e.EventType.Category())},
			{Key: HeaderEntryID, Value: []byte(e.ID.String())},
		},
		Timestamp: e.CreatedAt,
	}
}
