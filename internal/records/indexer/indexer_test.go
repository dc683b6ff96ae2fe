package indexer_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"archiva/internal/records/indexer"
	id "archiva/pkg/domain"
)

func TestQueueWorkerDelivery(t *testing.T) {
	sink := indexer.NewMemorySink()
	queue := indexer.NewQueue(8, slog.Default())
	worker := indexer.NewWorker(sink, queue.Ops(), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	queue.Enqueue(context.Background(), id.RecordID("rec-1"))
	queue.Enqueue(context.Background(), id.RecordID("rec-2"))

	require.Eventually(t, func() bool {
		return len(sink.Ops()) == 2
	}, time.Second, 10*time.Millisecond)

	ops := sink.Ops()
	require.Equal(t, id.RecordID("rec-1"), ops[0].RecordID)
	require.False(t, ops[0].QueuedAt.IsZero())

	cancel()
	<-done
}

func TestEnqueueNeverBlocks(t *testing.T) {
	queue := indexer.NewQueue(1, slog.Default())
	queue.Enqueue(context.Background(), id.RecordID("rec-1"))
	queue.Enqueue(context.Background(), id.RecordID("rec-2"))
	require.Len(t, queue.Ops(), 1)
}
