package repositories

import (
	"context"
	"errors"

	"github.com/asakaida/datastore/internal/entities"
)

// ErrUnknownType is returned when a record type is not part of the schema
var ErrUnknownType = errors.New("unknown record type")

// RecordRepository defines the interface for record persistence.
// Save, SaveMany and Delete report a rejected write as false without an error;
// errors are reserved for infrastructure failures.
type RecordRepository interface {
	// Find retrieves a record by type and ID, returning nil if it does not exist
	Find(ctx context.Context, recordType string, id string) (*entities.Record, error)

	// FindMany retrieves the records with the given IDs, skipping missing ones
	FindMany(ctx context.Context, recordType string, ids []string) ([]*entities.Record, error)

	// Save inserts a new record or updates an existing one
	Save(ctx context.Context, record *entities.Record) (bool, error)

	// SaveMany saves records in order and stops at the first rejected write
	SaveMany(ctx context.Context, records []*entities.Record) (bool, error)

	// Delete removes a record
	Delete(ctx context.Context, record *entities.Record) (bool, error)
}
