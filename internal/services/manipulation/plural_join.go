package manipulation

import (
	"context"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// pluralJoinHandler manipulates many-to-many relations recorded in a join table.
// Join rows of deleted records are left to the store's cascade.
type pluralJoinHandler struct {
	store repositories.Store
}

func (j *pluralJoinHandler) attach(ctx context.Context, h *RelationHandle, records []*entities.Record, detaching bool, policy ConfigProvider) (bool, error) {
	for _, r := range records {
		if r.Exists() {
			continue
		}
		if ok, err := j.store.Save(ctx, r); err != nil || !ok {
			return false, err
		}
	}

	var stragglers []*entities.Record
	deleteOnDetach := detaching && policy.DeleteOnDetach(h.rel.Name)
	if deleteOnDetach {
		current, err := h.Current(ctx)
		if err != nil {
			return false, err
		}
		part := Diff(entities.Identities(current), entities.Identities(records))
		stragglers = pick(current, part.ToRemove)
	}

	if _, ok, err := h.Sync(ctx, entities.Identities(records), detaching); err != nil || !ok {
		return false, err
	}

	for _, r := range stragglers {
		if ok, err := j.store.Delete(ctx, r); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (j *pluralJoinHandler) detach(ctx context.Context, h *RelationHandle, records []*entities.Record, policy ConfigProvider) (bool, error) {
	current, err := h.Current(ctx)
	if err != nil {
		return false, err
	}

	detached := members(current, records)
	if len(detached) == 0 {
		return true, nil
	}
	if ok, err := h.Detach(ctx, entities.Identities(detached)); err != nil || !ok {
		return false, err
	}

	if !policy.DeleteOnDetach(h.rel.Name) {
		return true, nil
	}
	for _, r := range detached {
		if ok, err := j.store.Delete(ctx, r); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
