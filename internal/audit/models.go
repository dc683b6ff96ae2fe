package audit

import (
	"time"

	id "archiva/pkg/domain"
)

// Action names an audited domain event.
type Action string

const (
	ActionCommunitiesAdded     Action = "record_communities_added"
	ActionCommunitiesRemoved   Action = "record_communities_removed"
	ActionCommunitiesBulkAdded Action = "record_communities_bulk_added"
	ActionDefaultCommunitySet  Action = "default_community_set"
	ActionInclusionReqCreated  Action = "inclusion_request_created"
	ActionInclusionReqAccepted Action = "inclusion_request_accepted"
	ActionInclusionReqDeclined Action = "inclusion_request_declined"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp   time.Time       `json:"timestamp"`
	Action      Action          `json:"action"`
	RecordID    id.RecordID     `json:"record_id,omitempty"`
	CommunityID *id.CommunityID `json:"community_id,omitempty"`
	RequestID   *id.RequestID   `json:"request_id,omitempty"`
	ActorID     string          `json:"actor_id"`
	RequestCorr string          `json:"request_correlation_id,omitempty"`
	// Count carries the item count of bulk events.
	Count int `json:"count,omitempty"`
}
