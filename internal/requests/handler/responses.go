package handler

import (
	"time"

	"archiva/internal/requests/models"
	id "archiva/pkg/domain"
)

// RequestResponse is the wire shape of one inclusion request.
type RequestResponse struct {
	ID          id.RequestID   `json:"id"`
	RecordID    id.RecordID    `json:"record_id"`
	CommunityID id.CommunityID `json:"community_id"`
	Status      models.Status  `json:"status"`
	Message     string         `json:"message,omitempty"`
	CreatedBy   id.UserID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	DecidedAt   *time.Time     `json:"decided_at,omitempty"`
}

func NewRequestResponse(req *models.InclusionRequest) RequestResponse {
	return RequestResponse{
		ID:          req.ID,
		RecordID:    req.RecordID,
		CommunityID: req.CommunityID,
		Status:      req.Status,
		Message:     req.Message,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   req.CreatedAt,
		DecidedAt:   req.DecidedAt,
	}
}

// ListResponse carries the requests filed for a record, newest first.
type ListResponse struct {
	Hits []RequestResponse `json:"hits"`
}

func NewListResponse(reqs []*models.InclusionRequest) ListResponse {
	hits := make([]RequestResponse, 0, len(reqs))
	for _, req := range reqs {
		hits = append(hits, NewRequestResponse(req))
	}
	return ListResponse{Hits: hits}
}
