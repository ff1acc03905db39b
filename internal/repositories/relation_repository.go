package repositories

import (
	"context"

	"github.com/asakaida/datastore/internal/entities"
)

// RelationRepository defines the interface for reading and writing relation membership
type RelationRepository interface {
	// Related retrieves the records currently related to parent through rel
	Related(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor) ([]*entities.Record, error)

	// AttachPivots inserts join rows for the given related identities, ignoring existing rows.
	// It returns false when the store rejects the rows.
	AttachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error)

	// DetachPivots removes join rows for the given related identities
	DetachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error)
}

// Store combines record and relation persistence
type Store interface {
	RecordRepository
	RelationRepository
}
