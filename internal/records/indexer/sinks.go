package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"
)

// MemorySink records delivered ops for tests and demo mode.
type MemorySink struct {
	mu  sync.RWMutex
	ops []Op
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Deliver(_ context.Context, op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
	return nil
}

func (s *MemorySink) Ops() []Op {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Op, len(s.ops))
	copy(out, s.ops)
	return out
}

// KafkaSink hands ops to the indexing pipeline topic, keyed by record id.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

func NewKafkaSink(client *kgo.Client, topic string) *KafkaSink {
	return &KafkaSink{client: client, topic: topic}
}

func (s *KafkaSink) Deliver(ctx context.Context, op Op) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal index op: %w", err)
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(op.RecordID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce index op: %w", err)
	}
	return nil
}

var _ Sink = (*MemorySink)(nil)
var _ Sink = (*KafkaSink)(nil)
