// Package indexer queues re-index operations for records whose community
// membership changed. Indexing is eventually consistent; the search engine
// itself lives behind the sink.
package indexer

import (
	"context"
	"log/slog"
	"time"

	id "archiva/pkg/domain"
)

// Op asks the search layer to refresh one record.
type Op struct {
	RecordID id.RecordID `json:"record_id"`
	QueuedAt time.Time   `json:"queued_at"`
}

// Sink delivers index operations to the search infrastructure.
type Sink interface {
	Deliver(ctx context.Context, op Op) error
}

// Queue is the service-facing side. Enqueue never blocks; on overflow the
// operation is dropped and logged, the record will be picked up by the next
// change or a full reindex.
type Queue struct {
	ops    chan Op
	logger *slog.Logger
}

func NewQueue(buffer int, logger *slog.Logger) *Queue {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Queue{ops: make(chan Op, buffer), logger: logger}
}

func (q *Queue) Enqueue(ctx context.Context, recordID id.RecordID) {
	op := Op{RecordID: recordID, QueuedAt: time.Now().UTC()}
	select {
	case q.ops <- op:
	default:
		q.logger.WarnContext(ctx, "index queue full, dropping op", "record_id", recordID)
	}
}

func (q *Queue) Ops() <-chan Op { return q.ops }

// Worker drains the queue into a sink.
type Worker struct {
	sink   Sink
	ops    <-chan Op
	logger *slog.Logger
}

func NewWorker(sink Sink, ops <-chan Op, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, ops: ops, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op := <-w.ops:
			if err := w.sink.Deliver(ctx, op); err != nil {
				w.logger.ErrorContext(ctx, "deliver index op", "record_id", op.RecordID, "error", err)
			}
		}
	}
}
