package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	communitymodels "archiva/internal/communities/models"
	"archiva/internal/identity"
	"archiva/internal/policy"
	"archiva/internal/requests/models"
	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
	"archiva/pkg/platform/sentinel"
	"archiva/pkg/requestcontext"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, req *models.InclusionRequest) error
	Get(ctx context.Context, requestID id.RequestID) (*models.InclusionRequest, error)
	Update(ctx context.Context, req *models.InclusionRequest) error
	FindOpen(ctx context.Context, recordID id.RecordID, communityID id.CommunityID) (*models.InclusionRequest, error)
	ListByRecord(ctx context.Context, recordID id.RecordID) ([]*models.InclusionRequest, error)
}

// AuditPublisher records request lifecycle events.
type AuditPublisher interface {
	RequestCreated(ctx context.Context, req *models.InclusionRequest, actor identity.Identity)
	RequestDecided(ctx context.Context, req *models.InclusionRequest, actor identity.Identity)
}

// TxRunner wraps decisions in one unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// AcceptHook runs inside the accepting unit of work, after the status change
// is persisted. It applies whatever the request asked for, here the
// record-community association. A hook error rolls the acceptance back.
type AcceptHook func(ctx context.Context, actor identity.Identity, req *models.InclusionRequest) error

// CommunityStore resolves the community a request targets. When configured,
// decisions require the actor to curate that community.
type CommunityStore interface {
	Get(ctx context.Context, communityID id.CommunityID) (*communitymodels.Community, error)
}

type Service struct {
	store       Store
	tx          TxRunner
	onAccept    AcceptHook
	communities CommunityStore
	checker     *policy.Checker
	logger      *slog.Logger
	audit       AuditPublisher
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) { s.tx = tx }
}

func WithAcceptHook(hook AcceptHook) Option {
	return func(s *Service) { s.onAccept = hook }
}

func WithCommunityStore(cs CommunityStore) Option {
	return func(s *Service) { s.communities = cs }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, tx: passthroughTx{}, checker: policy.NewChecker(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit opens a new inclusion request. At most one open request may exist
// per (record, community) pair.
func (s *Service) Submit(ctx context.Context, actor identity.Identity, recordID id.RecordID, communityID id.CommunityID, message string) (*models.InclusionRequest, error) {
	if actor.IsAnonymous() {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "authentication required")
	}

	if existing, err := s.store.FindOpen(ctx, recordID, communityID); err == nil && existing != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "an open request already exists for this community")
	} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up open request")
	}

	req, err := models.NewInclusionRequest(id.NewRequestID(), recordID, communityID, actor.UserID, message, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, req); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an open request already exists for this community")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create inclusion request")
	}

	s.logger.InfoContext(ctx, "inclusion request submitted",
		"request_id", req.ID,
		"record_id", recordID,
		"community_id", communityID,
	)
	if s.audit != nil {
		s.audit.RequestCreated(ctx, req, actor)
	}
	return req, nil
}

// SubmitAccepted creates an already-accepted request. Used for direct
// inclusion by curators so the audit trail stays uniform.
func (s *Service) SubmitAccepted(ctx context.Context, actor identity.Identity, recordID id.RecordID, communityID id.CommunityID) (*models.InclusionRequest, error) {
	now := requestcontext.Now(ctx)
	req, err := models.NewInclusionRequest(id.NewRequestID(), recordID, communityID, actor.UserID, "", now)
	if err != nil {
		return nil, err
	}
	if err := req.Accept(now); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create inclusion request")
	}
	if s.audit != nil {
		s.audit.RequestCreated(ctx, req, actor)
	}
	return req, nil
}

// Accept resolves an open request in favour of inclusion.
func (s *Service) Accept(ctx context.Context, actor identity.Identity, requestID id.RequestID) (*models.InclusionRequest, error) {
	return s.decide(ctx, actor, requestID, (*models.InclusionRequest).Accept, "inclusion request accepted")
}

// Decline resolves an open request against inclusion.
func (s *Service) Decline(ctx context.Context, actor identity.Identity, requestID id.RequestID) (*models.InclusionRequest, error) {
	return s.decide(ctx, actor, requestID, (*models.InclusionRequest).Decline, "inclusion request declined")
}

func (s *Service) decide(ctx context.Context, actor identity.Identity, requestID id.RequestID, transition func(*models.InclusionRequest, time.Time) error, msg string) (*models.InclusionRequest, error) {
	var req *models.InclusionRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.Get(ctx, requestID)
		if err != nil {
			return err
		}
		if s.communities != nil {
			community, err := s.communities.Get(ctx, req.CommunityID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "resolve community")
			}
			if err := s.checker.Can(actor, policy.ActionManage, policy.Resource{Community: community}); err != nil {
				return err
			}
		}
		if err := transition(req, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.store.Update(ctx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update inclusion request")
		}
		if req.Status == models.StatusAccepted && s.onAccept != nil {
			if err := s.onAccept(ctx, actor, req); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "apply accepted request")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, msg, "request_id", req.ID, "record_id", req.RecordID)
	if s.audit != nil {
		s.audit.RequestDecided(ctx, req, actor)
	}
	return req, nil
}

// Get fetches a request by id.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*models.InclusionRequest, error) {
	req, err := s.store.Get(ctx, requestID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch inclusion request")
	}
	return req, nil
}

// ListByRecord returns every request filed for a record, newest first.
func (s *Service) ListByRecord(ctx context.Context, recordID id.RecordID) ([]*models.InclusionRequest, error) {
	reqs, err := s.store.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list inclusion requests")
	}
	return reqs, nil
}
