package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
)

// QueryRepository defines the interface for list queries built with squirrel
type QueryRepository interface {
	// Driver returns the strategy driver key ("postgres", "sqlite")
	Driver() string

	// Query returns a base select over the table of the record type
	Query(recordType string) (sq.SelectBuilder, error)

	// Select runs the query and maps rows to records of the given type
	Select(ctx context.Context, recordType string, query sq.SelectBuilder) ([]*entities.Record, error)

	// Count returns the number of rows the query would return, ignoring limit and offset
	Count(ctx context.Context, query sq.SelectBuilder) (int, error)
}

// DataRepository combines record, relation and query access
type DataRepository interface {
	Store
	QueryRepository
}
