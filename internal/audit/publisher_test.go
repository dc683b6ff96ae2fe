package audit_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"archiva/internal/audit"
	"archiva/internal/identity"
	id "archiva/pkg/domain"
	"archiva/pkg/requestcontext"
)

func TestPublisherWorkerRoundTrip(t *testing.T) {
	sink := audit.NewMemorySink()
	pub := audit.NewPublisher(8, slog.Default())
	worker := audit.NewWorker(sink, pub.Inbox(), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	actor := identity.User(id.NewUserID())
	emitCtx := requestcontext.WithRequestID(context.Background(), "req-123")
	pub.CommunitiesAdded(emitCtx, id.RecordID("rec-1"), id.NewCommunityID(), actor)
	pub.DefaultSet(emitCtx, id.RecordID("rec-1"), id.NewCommunityID(), actor)

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	events := sink.Events()
	require.Equal(t, audit.ActionCommunitiesAdded, events[0].Action)
	require.Equal(t, audit.ActionDefaultCommunitySet, events[1].Action)
	require.Equal(t, "req-123", events[0].RequestCorr)
	require.False(t, events[0].Timestamp.IsZero())

	cancel()
	<-done
}

func TestPublisherDropsOnOverflow(t *testing.T) {
	pub := audit.NewPublisher(1, slog.Default())
	actor := identity.User(id.NewUserID())

	pub.CommunitiesAdded(context.Background(), id.RecordID("rec-1"), id.NewCommunityID(), actor)
	// Second emit must not block even though nothing drains the inbox.
	pub.CommunitiesAdded(context.Background(), id.RecordID("rec-2"), id.NewCommunityID(), actor)

	require.Len(t, pub.Inbox(), 1)
}
