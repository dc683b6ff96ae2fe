package handler

import (
	ccmodels "archiva/internal/records/communities/models"
	id "archiva/pkg/domain"
)

// AddResponse carries the per-community outcomes of an add. Hits and errors
// together cover every requested community exactly once.
type AddResponse struct {
	Hits   []ccmodels.RequestResult `json:"hits"`
	Errors []ccmodels.BulkError     `json:"errors"`
}

func NewAddResponse(hits []ccmodels.RequestResult, errs []ccmodels.BulkError) AddResponse {
	if hits == nil {
		hits = []ccmodels.RequestResult{}
	}
	return AddResponse{Hits: hits, Errors: emptyIfNil(errs)}
}

// RemoveResponse carries the per-community outcomes of a remove.
type RemoveResponse struct {
	Hits   []ccmodels.RemovedResult `json:"hits"`
	Errors []ccmodels.BulkError     `json:"errors"`
}

func NewRemoveResponse(hits []ccmodels.RemovedResult, errs []ccmodels.BulkError) RemoveResponse {
	if hits == nil {
		hits = []ccmodels.RemovedResult{}
	}
	return RemoveResponse{Hits: hits, Errors: emptyIfNil(errs)}
}

// SetDefaultResponse echoes the community that became the default.
type SetDefaultResponse struct {
	Default id.CommunityID `json:"default"`
}

// BulkAddResponse reports only failures; absence of a record means success.
type BulkAddResponse struct {
	Errors []ccmodels.BulkError `json:"errors"`
}

func emptyIfNil(errs []ccmodels.BulkError) []ccmodels.BulkError {
	if errs == nil {
		return []ccmodels.BulkError{}
	}
	return errs
}
