package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"archiva/internal/identity"
	"archiva/internal/platform/middleware"
	ccmodels "archiva/internal/records/communities/models"
	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
	"archiva/pkg/platform/httputil"
	"archiva/pkg/requestcontext"
)

// Service defines the record-communities operations the handler exposes.
type Service interface {
	Add(ctx context.Context, actor identity.Identity, recordID id.RecordID, refs []ccmodels.CommunityRef) ([]ccmodels.RequestResult, []ccmodels.BulkError, error)
	Remove(ctx context.Context, actor identity.Identity, recordID id.RecordID, refs []ccmodels.CommunityRef) ([]ccmodels.RemovedResult, []ccmodels.BulkError, error)
	BulkAdd(ctx context.Context, actor identity.Identity, communityID id.CommunityID, recordIDs []id.RecordID, setDefault bool) ([]ccmodels.BulkError, error)
	SetDefault(ctx context.Context, actor identity.Identity, recordID id.RecordID, communityID id.CommunityID) error
}

// Handler wires record-communities endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the record-communities endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/records/{id}/communities", h.HandleAdd)
	r.Delete("/records/{id}/communities", h.HandleRemove)
	r.Put("/records/{id}/communities/default", h.HandleSetDefault)
	r.Post("/communities/{id}/records", h.HandleBulkAdd)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	actor := middleware.GetIdentity(r.Context())
	if actor.IsAnonymous() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return identity.Identity{}, false
	}
	return actor, true
}

func recordIDParam(r *http.Request) (id.RecordID, error) {
	return id.ParseRecordID(chi.URLParam(r, "id"))
}

// HandleAdd handles POST /records/{id}/communities requests.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := recordIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[AddRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	results, itemErrs, err := h.service.Add(ctx, actor, recordID, req.Refs())
	if err != nil {
		h.logger.ErrorContext(ctx, "add communities failed",
			"request_id", requestcontext.RequestID(ctx),
			"record_id", recordID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "communities added",
		"request_id", requestcontext.RequestID(ctx),
		"record_id", recordID,
		"succeeded", len(results),
		"failed", len(itemErrs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, NewAddResponse(results, itemErrs))
}

// HandleRemove handles DELETE /records/{id}/communities requests.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := recordIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[RemoveRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	removed, itemErrs, err := h.service.Remove(ctx, actor, recordID, req.Refs())
	if err != nil {
		h.logger.ErrorContext(ctx, "remove communities failed",
			"request_id", requestcontext.RequestID(ctx),
			"record_id", recordID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, NewRemoveResponse(removed, itemErrs))
}

// HandleSetDefault handles PUT /records/{id}/communities/default requests.
func (h *Handler) HandleSetDefault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := recordIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[SetDefaultRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	communityID, err := id.ParseCommunityID(req.CommunityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SetDefault(ctx, actor, recordID, communityID); err != nil {
		h.logger.ErrorContext(ctx, "set default community failed",
			"request_id", requestcontext.RequestID(ctx),
			"record_id", recordID,
			"community_id", communityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SetDefaultResponse{Default: communityID})
}

// HandleBulkAdd handles POST /communities/{id}/records requests.
func (h *Handler) HandleBulkAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	communityID, err := id.ParseCommunityID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[BulkAddRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	recordIDs, err := req.RecordIDs()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	itemErrs, err := h.service.BulkAdd(ctx, actor, communityID, recordIDs, req.SetDefault)
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk add failed",
			"request_id", requestcontext.RequestID(ctx),
			"community_id", communityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bulk add completed",
		"request_id", requestcontext.RequestID(ctx),
		"community_id", communityID,
		"requested", len(recordIDs),
		"failed", len(itemErrs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, BulkAddResponse{Errors: emptyIfNil(itemErrs)})
}
