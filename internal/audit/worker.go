package audit

import (
	"context"
	"log/slog"
)

// Sink persists audit events. Implementations must be safe for use from a
// single worker goroutine.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Worker drains the publisher inbox into a sink. Sink failures are logged
// and skipped so one bad event cannot stall the trail.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append audit event", "action", event.Action, "error", err)
			}
		}
	}
}
