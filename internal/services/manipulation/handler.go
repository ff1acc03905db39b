package manipulation

import (
	"context"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// handler implements attach and detach for one relation topology.
// A false result without error means a persistence step was rejected.
type handler interface {
	attach(ctx context.Context, h *RelationHandle, records []*entities.Record, detaching bool, policy ConfigProvider) (bool, error)
	detach(ctx context.Context, h *RelationHandle, records []*entities.Record, policy ConfigProvider) (bool, error)
}

func handlerFor(kind entities.RelationKind, store repositories.Store) handler {
	switch kind {
	case entities.SingularOwning:
		return &singularOwningHandler{store: store}
	case entities.SingularOwned:
		return &singularOwnedHandler{store: store}
	case entities.PluralOwned:
		return &pluralOwnedHandler{store: store}
	case entities.PluralJoin:
		return &pluralJoinHandler{store: store}
	}
	return nil
}

// first normalizes a record list for a singular relation: only the first element is honored
func first(records []*entities.Record) *entities.Record {
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

// sameRecord reports whether two possibly-nil records denote the same stored record
func sameRecord(a, b *entities.Record) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Exists() && b.Exists() && a.Identity() == b.Identity()
}

// dispose applies the detach disposition to a record leaving an owned relation
func dispose(ctx context.Context, store repositories.Store, h *RelationHandle, record *entities.Record, deleteOnDetach bool) (bool, error) {
	if deleteOnDetach {
		return store.Delete(ctx, record)
	}
	h.Dissociate(record)
	return store.Save(ctx, record)
}
