package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes events as JSON to a Kafka topic, keyed by record id
// so events for one record stay ordered within a partition.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

func NewKafkaSink(client *kgo.Client, topic string) *KafkaSink {
	return &KafkaSink{client: client, topic: topic}
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.RecordID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

var _ Sink = (*KafkaSink)(nil)
var _ Sink = (*MemorySink)(nil)
