// Package models holds the request/response shapes of the record-communities
// service. Result shapes differ per operation on purpose; callers depend on
// the exact contract of each.
package models

import (
	id "archiva/pkg/domain"
)

// Messages recorded on per-item failures. These are part of the service
// contract and mirrored by API clients.
const (
	MsgAlreadyIncluded   = "Community already included."
	MsgAlreadyRequested  = "Community already requested."
	MsgNotIncluded       = "Record not included in the community."
	MsgCommunityNotFound = "Community not found."
	MsgRecordNotFound    = "Record not found."
)

// CommunityRef names one community in an add or remove payload, optionally
// carrying a message for the community's curators.
type CommunityRef struct {
	ID      id.CommunityID `json:"id"`
	Message string         `json:"message,omitempty"`
}

// BulkError is the per-item failure entry of a bulk operation. Exactly one
// outcome (success or BulkError) exists per requested (record, community)
// pair.
type BulkError struct {
	RecordID    id.RecordID    `json:"record_id"`
	CommunityID id.CommunityID `json:"community_id"`
	Message     string         `json:"message"`
}

// RequestResult is the per-item success entry of Add: the inclusion request
// created for a community, and whether it was accepted on the spot.
type RequestResult struct {
	CommunityID id.CommunityID `json:"community_id"`
	RequestID   id.RequestID   `json:"request_id"`
	Accepted    bool           `json:"accepted"`
}

// RemovedResult is the per-item success entry of Remove.
type RemovedResult struct {
	Community id.CommunityID `json:"community"`
}
