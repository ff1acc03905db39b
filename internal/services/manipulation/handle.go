package manipulation

import (
	"context"
	"fmt"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// RelationHandle binds a parent record and one of its relations to a store
type RelationHandle struct {
	store  repositories.Store
	parent *entities.Record
	rel    *entities.RelationDescriptor
}

// NewRelationHandle creates a handle for parent's relation
func NewRelationHandle(store repositories.Store, parent *entities.Record, rel *entities.RelationDescriptor) *RelationHandle {
	return &RelationHandle{store: store, parent: parent, rel: rel}
}

// Descriptor returns the relation descriptor
func (h *RelationHandle) Descriptor() *entities.RelationDescriptor {
	return h.rel
}

// Current returns the records currently related
func (h *RelationHandle) Current(ctx context.Context) ([]*entities.Record, error) {
	related, err := h.store.Related(ctx, h.parent, h.rel)
	if err != nil {
		return nil, fmt.Errorf("failed to read relation %s: %w", h.rel.Name, err)
	}
	return related, nil
}

// First returns the single related record of a singular relation, or nil
func (h *RelationHandle) First(ctx context.Context) (*entities.Record, error) {
	related, err := h.Current(ctx)
	if err != nil || len(related) == 0 {
		return nil, err
	}
	return related[0], nil
}

// Identities returns the identities currently related
func (h *RelationHandle) Identities(ctx context.Context) ([]entities.Identity, error) {
	related, err := h.Current(ctx)
	if err != nil {
		return nil, err
	}
	return entities.Identities(related), nil
}

// Associate points the relation keys at related
func (h *RelationHandle) Associate(related *entities.Record) {
	h.rel.Link(h.parent, related)
}

// Dissociate clears the relation keys between the parent and related
func (h *RelationHandle) Dissociate(related *entities.Record) {
	h.rel.Unlink(h.parent, related)
}

// Sync makes join membership equal desired (detaching) or current plus desired.
// It returns false when the store rejects a join row write.
func (h *RelationHandle) Sync(ctx context.Context, desired []entities.Identity, detaching bool) (Partition, bool, error) {
	current, err := h.Identities(ctx)
	if err != nil {
		return Partition{}, false, err
	}

	p := Diff(current, desired)
	if ok, err := h.Attach(ctx, p.ToAdd); err != nil || !ok {
		return Partition{}, false, err
	}
	if !detaching {
		p.ToRemove = nil
		return p, true, nil
	}
	if ok, err := h.Detach(ctx, p.ToRemove); err != nil || !ok {
		return Partition{}, false, err
	}
	return p, true, nil
}

// Attach adds join rows for ids
func (h *RelationHandle) Attach(ctx context.Context, ids []entities.Identity) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	ok, err := h.store.AttachPivots(ctx, h.parent, h.rel, ids)
	if err != nil {
		return false, fmt.Errorf("failed to attach to %s: %w", h.rel.Name, err)
	}
	return ok, nil
}

// Detach removes join rows for ids
func (h *RelationHandle) Detach(ctx context.Context, ids []entities.Identity) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	ok, err := h.store.DetachPivots(ctx, h.parent, h.rel, ids)
	if err != nil {
		return false, fmt.Errorf("failed to detach from %s: %w", h.rel.Name, err)
	}
	return ok, nil
}
