package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"archiva/internal/identity"
	"archiva/internal/platform/middleware"
	"archiva/internal/requests/models"
	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
	"archiva/pkg/platform/httputil"
	"archiva/pkg/requestcontext"
)

// Service defines the inclusion-request operations the handler exposes.
type Service interface {
	Accept(ctx context.Context, actor identity.Identity, requestID id.RequestID) (*models.InclusionRequest, error)
	Decline(ctx context.Context, actor identity.Identity, requestID id.RequestID) (*models.InclusionRequest, error)
	Get(ctx context.Context, requestID id.RequestID) (*models.InclusionRequest, error)
	ListByRecord(ctx context.Context, recordID id.RecordID) ([]*models.InclusionRequest, error)
}

// Handler wires inclusion-request endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the inclusion-request endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/requests/{id}/accept", h.HandleAccept)
	r.Post("/requests/{id}/decline", h.HandleDecline)
	r.Get("/requests/{id}", h.HandleGet)
	r.Get("/records/{id}/requests", h.HandleList)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	actor := middleware.GetIdentity(r.Context())
	if actor.IsAnonymous() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return identity.Identity{}, false
	}
	return actor, true
}

// HandleAccept handles POST /requests/{id}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Accept, "accept inclusion request failed")
}

// HandleDecline handles POST /requests/{id}/decline.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Decline, "decline inclusion request failed")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, identity.Identity, id.RequestID) (*models.InclusionRequest, error), msg string) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := fn(ctx, actor, requestID)
	if err != nil {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"inclusion_request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, NewRequestResponse(req))
}

// HandleGet handles GET /requests/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := h.service.Get(r.Context(), requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewRequestResponse(req))
}

// HandleList handles GET /records/{id}/requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reqs, err := h.service.ListByRecord(r.Context(), recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewListResponse(reqs))
}
