// Package kafka owns the franz-go client used by the audit and index
// publishers.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"archiva/internal/platform/config"
)

// New creates a producer client for the configured brokers.
// Returns nil if no brokers are configured (Kafka not enabled).
func New(cfg config.KafkaConfig) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopics creates the given topics if they do not exist yet. Existing
// topics are not an error.
func EnsureTopics(ctx context.Context, client *kgo.Client, topics ...string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}
