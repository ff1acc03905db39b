package manipulation

import (
	"context"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// singularOwningHandler manipulates relations where the parent holds the key
type singularOwningHandler struct {
	store repositories.Store
}

func (s *singularOwningHandler) attach(ctx context.Context, h *RelationHandle, records []*entities.Record, _ bool, policy ConfigProvider) (bool, error) {
	desired := first(records)

	previous, err := h.First(ctx)
	if err != nil {
		return false, err
	}
	if sameRecord(previous, desired) {
		return true, nil
	}

	if desired != nil && !desired.Exists() {
		if ok, err := s.store.Save(ctx, desired); err != nil || !ok {
			return false, err
		}
	}

	if desired != nil {
		h.Associate(desired)
	} else {
		h.Dissociate(previous)
	}
	if ok, err := s.store.Save(ctx, h.parent); err != nil || !ok {
		return false, err
	}

	// The previous record holds no key for this relation, so only deletion touches it.
	if previous != nil && policy.DeleteOnDetach(h.rel.Name) {
		return s.store.Delete(ctx, previous)
	}
	return true, nil
}

func (s *singularOwningHandler) detach(ctx context.Context, h *RelationHandle, records []*entities.Record, policy ConfigProvider) (bool, error) {
	target := first(records)
	if target == nil {
		return false, nil
	}

	previous, err := h.First(ctx)
	if err != nil {
		return false, err
	}
	if previous == nil || !sameRecord(previous, target) {
		return false, nil
	}
	return s.attach(ctx, h, nil, false, policy)
}
