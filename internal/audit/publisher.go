package audit

import (
	"context"
	"log/slog"

	"archiva/internal/identity"
	requestmodels "archiva/internal/requests/models"
	id "archiva/pkg/domain"
	"archiva/pkg/requestcontext"
)

// Publisher hands events to a background worker over a buffered channel.
// Emission never blocks domain logic; on overflow the event is dropped and
// logged.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{inbox: make(chan Event, buffer), logger: logger}
}

// Inbox is consumed by the Worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

func (p *Publisher) emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	event.RequestCorr = requestcontext.RequestID(ctx)
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event", "action", event.Action)
	}
}

func (p *Publisher) CommunitiesAdded(ctx context.Context, recordID id.RecordID, communityID id.CommunityID, actor identity.Identity) {
	p.emit(ctx, Event{
		Action:      ActionCommunitiesAdded,
		RecordID:    recordID,
		CommunityID: &communityID,
		ActorID:     actor.String(),
	})
}

func (p *Publisher) CommunitiesRemoved(ctx context.Context, recordID id.RecordID, communityID id.CommunityID, actor identity.Identity) {
	p.emit(ctx, Event{
		Action:      ActionCommunitiesRemoved,
		RecordID:    recordID,
		CommunityID: &communityID,
		ActorID:     actor.String(),
	})
}

func (p *Publisher) BulkAdded(ctx context.Context, communityID id.CommunityID, count int, actor identity.Identity) {
	p.emit(ctx, Event{
		Action:      ActionCommunitiesBulkAdded,
		CommunityID: &communityID,
		Count:       count,
		ActorID:     actor.String(),
	})
}

func (p *Publisher) DefaultSet(ctx context.Context, recordID id.RecordID, communityID id.CommunityID, actor identity.Identity) {
	p.emit(ctx, Event{
		Action:      ActionDefaultCommunitySet,
		RecordID:    recordID,
		CommunityID: &communityID,
		ActorID:     actor.String(),
	})
}

func (p *Publisher) RequestCreated(ctx context.Context, req *requestmodels.InclusionRequest, actor identity.Identity) {
	p.emit(ctx, Event{
		Action:      ActionInclusionReqCreated,
		RecordID:    req.RecordID,
		CommunityID: &req.CommunityID,
		RequestID:   &req.ID,
		ActorID:     actor.String(),
	})
}

func (p *Publisher) RequestDecided(ctx context.Context, req *requestmodels.InclusionRequest, actor identity.Identity) {
	action := ActionInclusionReqAccepted
	if req.Status == requestmodels.StatusDeclined {
		action = ActionInclusionReqDeclined
	}
	p.emit(ctx, Event{
		Action:      action,
		RecordID:    req.RecordID,
		CommunityID: &req.CommunityID,
		RequestID:   &req.ID,
		ActorID:     actor.String(),
	})
}
