package models

import (
	"time"

	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
)

// Status is the lifecycle state of an inclusion request.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
)

// InclusionRequest asks that a record be included in a community. Direct
// inclusion by a curator produces an already-accepted request so the audit
// trail stays uniform.
type InclusionRequest struct {
	ID          id.RequestID
	RecordID    id.RecordID
	CommunityID id.CommunityID
	Status      Status
	Message     string
	CreatedBy   id.UserID
	CreatedAt   time.Time
	DecidedAt   *time.Time
}

// NewInclusionRequest constructs a submitted request.
func NewInclusionRequest(requestID id.RequestID, recordID id.RecordID, communityID id.CommunityID, createdBy id.UserID, message string, now time.Time) (*InclusionRequest, error) {
	if requestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request id is required")
	}
	if recordID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "record id is required")
	}
	if communityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "community id is required")
	}
	return &InclusionRequest{
		ID:          requestID,
		RecordID:    recordID,
		CommunityID: communityID,
		Status:      StatusSubmitted,
		Message:     message,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}, nil
}

// IsOpen reports whether the request still awaits a decision.
func (r *InclusionRequest) IsOpen() bool { return r.Status == StatusSubmitted }

// Accept transitions the request to accepted.
func (r *InclusionRequest) Accept(now time.Time) error {
	if !r.IsOpen() {
		return dErrors.New(dErrors.CodeInvariantViolation, "request already decided")
	}
	r.Status = StatusAccepted
	r.DecidedAt = &now
	return nil
}

// Decline transitions the request to declined.
func (r *InclusionRequest) Decline(now time.Time) error {
	if !r.IsOpen() {
		return dErrors.New(dErrors.CodeInvariantViolation, "request already decided")
	}
	r.Status = StatusDeclined
	r.DecidedAt = &now
	return nil
}
