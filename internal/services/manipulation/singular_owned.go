package manipulation

import (
	"context"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// singularOwnedHandler manipulates one-to-one relations where the related record holds the key
type singularOwnedHandler struct {
	store repositories.Store
}

func (s *singularOwnedHandler) attach(ctx context.Context, h *RelationHandle, records []*entities.Record, _ bool, policy ConfigProvider) (bool, error) {
	desired := first(records)

	previous, err := h.First(ctx)
	if err != nil {
		return false, err
	}
	if sameRecord(previous, desired) {
		return true, nil
	}

	if desired != nil {
		h.Associate(desired)
		if ok, err := s.store.Save(ctx, desired); err != nil || !ok {
			return false, err
		}
	}

	if previous != nil {
		return dispose(ctx, s.store, h, previous, policy.DeleteOnDetach(h.rel.Name))
	}
	return true, nil
}

func (s *singularOwnedHandler) detach(ctx context.Context, h *RelationHandle, records []*entities.Record, policy ConfigProvider) (bool, error) {
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
