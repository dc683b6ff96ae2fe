// Package components runs service hooks in registration order. A component
// implements only the hooks it cares about; the pipeline type-asserts per
// hook and skips components that lack it.
package components

import (
	"context"
	"fmt"

	"archiva/internal/identity"
	ccmodels "archiva/internal/records/communities/models"
	recordmodels "archiva/internal/records/models"
	id "archiva/pkg/domain"
)

// AddComponent observes or mutates an add payload before requests are
// created. Removing an entry from refs drops that community from the
// operation.
type AddComponent interface {
	Add(ctx context.Context, actor identity.Identity, record *recordmodels.Record, refs *[]ccmodels.CommunityRef) error
}

// RemoveComponent observes or mutates a remove payload.
type RemoveComponent interface {
	Remove(ctx context.Context, actor identity.Identity, record *recordmodels.Record, refs *[]ccmodels.CommunityRef) error
}

// SetDefaultComponent may veto or substitute the community about to become
// the record's default. A substituted target is validated by the service
// after the pipeline runs.
type SetDefaultComponent interface {
	SetDefault(ctx context.Context, actor identity.Identity, record *recordmodels.Record, communityID *id.CommunityID) error
}

// BulkAddComponent observes or mutates the record set of a bulk add, and may
// flip whether the community becomes each record's default.
type BulkAddComponent interface {
	BulkAdd(ctx context.Context, actor identity.Identity, communityID id.CommunityID, recordIDs *[]id.RecordID, setDefault *bool) error
}

// Pipeline invokes registered components sequentially. The first hook error
// aborts the operation.
type Pipeline struct {
	components []any
}

func NewPipeline(components ...any) *Pipeline {
	return &Pipeline{components: components}
}

// Register appends a component. Order of registration is order of invocation.
func (p *Pipeline) Register(c any) {
	p.components = append(p.components, c)
}

func (p *Pipeline) RunAdd(ctx context.Context, actor identity.Identity, record *recordmodels.Record, refs *[]ccmodels.CommunityRef) error {
	for _, c := range p.components {
		hook, ok := c.(AddComponent)
		if !ok {
			continue
		}
		if err := hook.Add(ctx, actor, record, refs); err != nil {
			return fmt.Errorf("component %T: %w", c, err)
		}
	}
	return nil
}

func (p *Pipeline) RunRemove(ctx context.Context, actor identity.Identity, record *recordmodels.Record, refs *[]ccmodels.CommunityRef) error {
	for _, c := range p.components {
		hook, ok := c.(RemoveComponent)
		if !ok {
			continue
		}
		if err := hook.Remove(ctx, actor, record, refs); err != nil {
			return fmt.Errorf("component %T: %w", c, err)
		}
	}
	return nil
}

func (p *Pipeline) RunSetDefault(ctx context.Context, actor identity.Identity, record *recordmodels.Record, communityID *id.CommunityID) error {
	for _, c := range p.components {
		hook, ok := c.(SetDefaultComponent)
		if !ok {
			continue
		}
		if err := hook.SetDefault(ctx, actor, record, communityID); err != nil {
			return fmt.Errorf("component %T: %w", c, err)
		}
	}
	return nil
}

func (p *Pipeline) RunBulkAdd(ctx context.Context, actor identity.Identity, communityID id.CommunityID, recordIDs *[]id.RecordID, setDefault *bool) error {
	for _, c := range p.components {
		hook, ok := c.(BulkAddComponent)
		if !ok {
			continue
		}
		if err := hook.BulkAdd(ctx, actor, communityID, recordIDs, setDefault); err != nil {
			return fmt.Errorf("component %T: %w", c, err)
		}
	}
	return nil
}
