// Package communities implements the record-communities service: managing
// which communities a record belongs to, which one is its default, and the
// inclusion-request workflow around additions.
package communities

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	communitymodels "archiva/internal/communities/models"
	"archiva/internal/identity"
	"archiva/internal/policy"
	"archiva/internal/records/communities/components"
	"archiva/internal/records/communities/metrics"
	ccmodels "archiva/internal/records/communities/models"
	recordmodels "archiva/internal/records/models"
	requestmodels "archiva/internal/requests/models"
	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
	"archiva/pkg/platform/sentinel"
)

// RecordStore is the record persistence surface the service needs.
type RecordStore interface {
	Resolve(ctx context.Context, recordID id.RecordID) (*recordmodels.Record, error)
	Save(ctx context.Context, rec *recordmodels.Record) error
}

// CommunityStore resolves communities referenced by payloads.
type CommunityStore interface {
	Get(ctx context.Context, communityID id.CommunityID) (*communitymodels.Community, error)
}

// RequestService files inclusion requests on behalf of the service.
type RequestService interface {
	Submit(ctx context.Context, actor identity.Identity, recordID id.RecordID, communityID id.CommunityID, message string) (*requestmodels.InclusionRequest, error)
	SubmitAccepted(ctx context.Context, actor identity.Identity, recordID id.RecordID, communityID id.CommunityID) (*requestmodels.InclusionRequest, error)
}

// TxRunner wraps mutating operations in one unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PassthroughTx runs the function directly; memory stores are atomic per
// call and need no transaction.
type PassthroughTx struct{}

func (PassthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// IndexQueue receives record ids whose search documents went stale.
type IndexQueue interface {
	Enqueue(ctx context.Context, recordID id.RecordID)
}

// AuditPublisher records membership changes.
type AuditPublisher interface {
	CommunitiesAdded(ctx context.Context, recordID id.RecordID, communityID id.CommunityID, actor identity.Identity)
	CommunitiesRemoved(ctx context.Context, recordID id.RecordID, communityID id.CommunityID, actor identity.Identity)
	BulkAdded(ctx context.Context, communityID id.CommunityID, count int, actor identity.Identity)
	DefaultSet(ctx context.Context, recordID id.RecordID, communityID id.CommunityID, actor identity.Identity)
}

// Service orchestrates membership changes. Per-item failures surface as
// entries in the returned error lists; only systemic failures (unknown
// record, permission denial, storage faults) abort an operation.
type Service struct {
	records     RecordStore
	communities CommunityStore
	requests    RequestService
	tx          TxRunner
	checker     *policy.Checker
	pipeline    *components.Pipeline
	maxBatch    int

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
	indexer IndexQueue
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithIndexQueue(q IndexQueue) Option {
	return func(s *Service) { s.indexer = q }
}

func WithComponents(p *components.Pipeline) Option {
	return func(s *Service) { s.pipeline = p }
}

// WithMaxBatch caps how many communities one add payload may name.
func WithMaxBatch(n int) Option {
	return func(s *Service) { s.maxBatch = n }
}

func New(records RecordStore, communities CommunityStore, requests RequestService, tx TxRunner, opts ...Option) *Service {
	s := &Service{
		records:     records,
		communities: communities,
		requests:    requests,
		tx:          tx,
		checker:     policy.NewChecker(),
		pipeline:    components.NewPipeline(),
		maxBatch:    10,
		logger:      slog.Default(),
		tracer:      otel.Tracer("archiva/records/communities"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add files inclusion requests for the named communities. Curators of a
// target community get the association immediately; everyone else leaves an
// open request behind. One outcome is returned per requested community.
func (s *Service) Add(ctx context.Context, actor identity.Identity, recordID id.RecordID, refs []ccmodels.CommunityRef) ([]ccmodels.RequestResult, []ccmodels.BulkError, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "communities.Add",
		trace.WithAttributes(attribute.String("record.id", recordID.String()), attribute.Int("communities.count", len(refs))))
	defer span.End()

	record, err := s.resolveRecord(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checker.Can(actor, policy.ActionAddCommunity, policy.Resource{Record: record}); err != nil {
		return nil, nil, err
	}
	if err := s.validateBatch(len(refs)); err != nil {
		return nil, nil, err
	}
	if err := s.pipeline.RunAdd(ctx, actor, record, &refs); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "add hooks")
	}

	var results []ccmodels.RequestResult
	var itemErrs []ccmodels.BulkError
	changed := false
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, ref := range refs {
			community, err := s.communities.Get(ctx, ref.ID)
			if errors.Is(err, sentinel.ErrNotFound) {
				itemErrs = append(itemErrs, ccmodels.BulkError{RecordID: recordID, CommunityID: ref.ID, Message: ccmodels.MsgCommunityNotFound})
				continue
			} else if err != nil {
				return fmt.Errorf("resolve community %s: %w", ref.ID, err)
			}
			if record.HasCommunity(ref.ID) {
				itemErrs = append(itemErrs, ccmodels.BulkError{RecordID: recordID, CommunityID: ref.ID, Message: ccmodels.MsgAlreadyIncluded})
				continue
			}

			direct := s.checker.Allowed(actor, policy.ActionIncludeDirectly, policy.Resource{Record: record, Community: community})
			var req *requestmodels.InclusionRequest
			if direct {
				req, err = s.requests.SubmitAccepted(ctx, actor, recordID, ref.ID)
			} else {
				req, err = s.requests.Submit(ctx, actor, recordID, ref.ID, ref.Message)
			}
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				// An open request for this community already exists.
				itemErrs = append(itemErrs, ccmodels.BulkError{RecordID: recordID, CommunityID: ref.ID, Message: ccmodels.MsgAlreadyRequested})
				continue
			}
			if err != nil {
				return fmt.Errorf("file inclusion request for %s: %w", ref.ID, err)
			}

			if direct {
				if err := record.Parent.Communities.Add(ref.ID, false); err != nil {
					return err
				}
				changed = true
			}
			results = append(results, ccmodels.RequestResult{CommunityID: ref.ID, RequestID: req.ID, Accepted: direct})
		}
		if changed {
			if err := s.records.Save(ctx, record); err != nil {
				return fmt.Errorf("save record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, s.systemic(err, "add communities")
	}

	if s.audit != nil {
		for _, res := range results {
			if res.Accepted {
				s.audit.CommunitiesAdded(ctx, recordID, res.CommunityID, actor)
			}
		}
	}
	s.enqueueIfChanged(ctx, recordID, changed)
	s.observe("add", start, len(itemErrs), func(m *metrics.Metrics) {
		m.CommunitiesAdded.Add(float64(len(results)))
	})
	s.logger.InfoContext(ctx, "communities add processed",
		"record_id", recordID,
		"requested", len(refs),
		"succeeded", len(results),
		"failed", len(itemErrs),
	)
	return results, itemErrs, nil
}

// Remove detaches the named communities from the record. The default pointer
// is cleared when it referenced a removed community.
func (s *Service) Remove(ctx context.Context, actor identity.Identity, recordID id.RecordID, refs []ccmodels.CommunityRef) ([]ccmodels.RemovedResult, []ccmodels.BulkError, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "communities.Remove",
		trace.WithAttributes(attribute.String("record.id", recordID.String()), attribute.Int("communities.count", len(refs))))
	defer span.End()

	record, err := s.resolveRecord(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checker.Can(actor, policy.ActionRemoveCommunity, policy.Resource{Record: record}); err != nil {
		return nil, nil, err
	}
	if err := s.validateBatch(len(refs)); err != nil {
		return nil, nil, err
	}
	if err := s.pipeline.RunRemove(ctx, actor, record, &refs); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "remove hooks")
	}

	var removed []ccmodels.RemovedResult
	var itemErrs []ccmodels.BulkError
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, ref := range refs {
			if !record.HasCommunity(ref.ID) {
				itemErrs = append(itemErrs, ccmodels.BulkError{RecordID: recordID, CommunityID: ref.ID, Message: ccmodels.MsgNotIncluded})
				continue
			}
			if err := record.Parent.Communities.Remove(ref.ID); err != nil {
				return err
			}
			removed = append(removed, ccmodels.RemovedResult{Community: ref.ID})
		}
		if len(removed) > 0 {
			if err := s.records.Save(ctx, record); err != nil {
				return fmt.Errorf("save record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, s.systemic(err, "remove communities")
	}

	if s.audit != nil {
		for _, r := range removed {
			s.audit.CommunitiesRemoved(ctx, recordID, r.Community, actor)
		}
	}
	s.enqueueIfChanged(ctx, recordID, len(removed) > 0)
	s.observe("remove", start, len(itemErrs), func(m *metrics.Metrics) {
		m.CommunitiesRemoved.Add(float64(len(removed)))
	})
	s.logger.InfoContext(ctx, "communities remove processed",
		"record_id", recordID,
		"requested", len(refs),
		"removed", len(removed),
		"failed", len(itemErrs),
	)
	return removed, itemErrs, nil
}

// BulkAdd attaches many records to one community in a single pass. Curators
// only. Only failures are reported; silence per record means success.
func (s *Service) BulkAdd(ctx context.Context, actor identity.Identity, communityID id.CommunityID, recordIDs []id.RecordID, setDefault bool) ([]ccmodels.BulkError, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "communities.BulkAdd",
		trace.WithAttributes(attribute.String("community.id", communityID.String()), attribute.Int("records.count", len(recordIDs))))
	defer span.End()

	community, err := s.communities.Get(ctx, communityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, ccmodels.MsgCommunityNotFound)
	} else if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resolve community")
	}
	if err := s.checker.Can(actor, policy.ActionBulkAdd, policy.Resource{Community: community}); err != nil {
		return nil, err
	}
	if err := s.pipeline.RunBulkAdd(ctx, actor, communityID, &recordIDs, &setDefault); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "bulk add hooks")
	}

	var itemErrs []ccmodels.BulkError
	added := 0
	var touched []id.RecordID
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, recordID := range recordIDs {
			record, err := s.records.Resolve(ctx, recordID)
			if errors.Is(err, sentinel.ErrNotFound) {
				itemErrs = append(itemErrs, ccmodels.BulkError{RecordID: recordID, CommunityID: communityID, Message: ccmodels.MsgRecordNotFound})
				continue
			} else if err != nil {
				return fmt.Errorf("resolve record %s: %w", recordID, err)
			}
			if record.HasCommunity(communityID) {
				itemErrs = append(itemErrs, ccmodels.BulkError{RecordID: recordID, CommunityID: communityID, Message: ccmodels.MsgAlreadyIncluded})
				continue
			}
			// A record's first community always becomes its default.
			makeDefault := setDefault || len(record.Parent.Communities.IDs) == 0
			if err := record.Parent.Communities.Add(communityID, makeDefault); err != nil {
				return err
			}
			if err := s.records.Save(ctx, record); err != nil {
				return fmt.Errorf("save record %s: %w", recordID, err)
			}
			added++
			touched = append(touched, recordID)
		}
		return nil
	})
	if err != nil {
		return nil, s.systemic(err, "bulk add")
	}

	for _, recordID := range touched {
		s.enqueueIfChanged(ctx, recordID, true)
	}
	if added > 0 && s.audit != nil {
		s.audit.BulkAdded(ctx, communityID, added, actor)
	}
	s.observe("bulk_add", start, len(itemErrs), func(m *metrics.Metrics) {
		m.BulkRecordsAdded.Add(float64(added))
	})
	s.logger.InfoContext(ctx, "bulk add processed",
		"community_id", communityID,
		"requested", len(recordIDs),
		"added", added,
		"failed", len(itemErrs),
	)
	return itemErrs, nil
}

// SetDefault points the record's default community at an existing member.
// A hook may substitute the target before it is validated.
func (s *Service) SetDefault(ctx context.Context, actor identity.Identity, recordID id.RecordID, communityID id.CommunityID) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "communities.SetDefault",
		trace.WithAttributes(attribute.String("record.id", recordID.String())))
	defer span.End()

	record, err := s.resolveRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if err := s.checker.Can(actor, policy.ActionManage, policy.Resource{Record: record}); err != nil {
		return err
	}
	if err := s.pipeline.RunSetDefault(ctx, actor, record, &communityID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "set default hooks")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := record.Parent.Communities.SetDefault(communityID); err != nil {
			return dErrors.New(dErrors.CodeValidation, ccmodels.MsgNotIncluded)
		}
		if err := s.records.Save(ctx, record); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.systemic(err, "set default community")
	}

	s.enqueueIfChanged(ctx, recordID, true)
	if s.audit != nil {
		s.audit.DefaultSet(ctx, recordID, communityID, actor)
	}
	s.observe("set_default", start, 0, func(m *metrics.Metrics) {
		m.DefaultSet.Inc()
	})
	s.logger.InfoContext(ctx, "default community set", "record_id", recordID, "community_id", communityID)
	return nil
}

func (s *Service) resolveRecord(ctx context.Context, recordID id.RecordID) (*recordmodels.Record, error) {
	record, err := s.records.Resolve(ctx, recordID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, ccmodels.MsgRecordNotFound)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resolve record")
	}
	return record, nil
}

func (s *Service) validateBatch(n int) error {
	if n == 0 {
		return dErrors.New(dErrors.CodeValidation, "missing communities")
	}
	if n > s.maxBatch {
		return dErrors.Newf(dErrors.CodeValidation, "too many communities, max %d per request", s.maxBatch)
	}
	return nil
}

// systemic passes domain errors through and wraps storage faults.
func (s *Service) systemic(err error, msg string) error {
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) enqueueIfChanged(ctx context.Context, recordID id.RecordID, changed bool) {
	if changed && s.indexer != nil {
		s.indexer.Enqueue(ctx, recordID)
	}
}

func (s *Service) observe(operation string, start time.Time, itemErrs int, record func(*metrics.Metrics)) {
	if s.metrics == nil {
		return
	}
	record(s.metrics)
	s.metrics.CountItemErrors(operation, itemErrs)
	s.metrics.ObserveOperation(operation, start)
}
