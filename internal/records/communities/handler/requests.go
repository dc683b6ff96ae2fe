package handler

import (
	ccmodels "archiva/internal/records/communities/models"
	id "archiva/pkg/domain"
)

// AddRequest is the payload of POST /records/{id}/communities.
type AddRequest struct {
	Communities []ccmodels.CommunityRef `json:"communities"`
}

func (r AddRequest) Refs() []ccmodels.CommunityRef { return r.Communities }

// RemoveRequest is the payload of DELETE /records/{id}/communities.
type RemoveRequest struct {
	Communities []ccmodels.CommunityRef `json:"communities"`
}

func (r RemoveRequest) Refs() []ccmodels.CommunityRef { return r.Communities }

// SetDefaultRequest is the payload of PUT /records/{id}/communities/default.
type SetDefaultRequest struct {
	CommunityID string `json:"community_id"`
}

// BulkAddRequest is the payload of POST /communities/{id}/records.
type BulkAddRequest struct {
	Records    []string `json:"records"`
	SetDefault bool     `json:"set_default"`
}

// RecordIDs parses and validates every record id in the payload.
func (r BulkAddRequest) RecordIDs() ([]id.RecordID, error) {
	out := make([]id.RecordID, 0, len(r.Records))
	for _, raw := range r.Records {
		recordID, err := id.ParseRecordID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, recordID)
	}
	return out, nil
}
