package resource

import (
	"fmt"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// AdapterFactory creates adapters for the record types of a schema
type AdapterFactory struct {
	schema *entities.Schema
}

// NewAdapterFactory creates a factory over the schema
func NewAdapterFactory(schema *entities.Schema) *AdapterFactory {
	return &AdapterFactory{schema: schema}
}

// ForType returns the adapter for a record type
func (f *AdapterFactory) ForType(recordType string) (Adapter, error) {
	t := f.schema.GetType(recordType)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", repositories.ErrUnknownType, recordType)
	}
	return NewDefinitionAdapter(t), nil
}
