package manipulation

import (
	"context"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// pluralOwnedHandler manipulates one-to-many relations where each related record holds the key
type pluralOwnedHandler struct {
	store repositories.Store
}

func (p *pluralOwnedHandler) attach(ctx context.Context, h *RelationHandle, records []*entities.Record, detaching bool, policy ConfigProvider) (bool, error) {
	var stragglers []*entities.Record
	if detaching {
		current, err := h.Current(ctx)
		if err != nil {
			return false, err
		}
		part := Diff(entities.Identities(current), entities.Identities(records))
		stragglers = pick(current, part.ToRemove)
	}

	for _, r := range records {
		h.Associate(r)
	}
	if ok, err := p.store.SaveMany(ctx, records); err != nil || !ok {
		return false, err
	}

	if !detaching {
		return true, nil
	}

	deleteOnDetach := policy.DeleteOnDetach(h.rel.Name)
	for _, r := range stragglers {
		if ok, err := dispose(ctx, p.store, h, r, deleteOnDetach); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (p *pluralOwnedHandler) detach(ctx context.Context, h *RelationHandle, records []*entities.Record, policy ConfigProvider) (bool, error) {
	current, err := h.Current(ctx)
	if err != nil {
		return false, err
	}

	deleteOnDetach := policy.DeleteOnDetach(h.rel.Name)
	for _, r := range members(current, records) {
		if ok, err := dispose(ctx, p.store, h, r, deleteOnDetach); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
