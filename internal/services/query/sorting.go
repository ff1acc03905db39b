package query

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/services/resource"
)

// DefaultSortStrategies are used for columns without a per-type strategy
var DefaultSortStrategies = map[string]string{
	"id":         SortNumeric,
	"active":     SortNumeric,
	"position":   SortNumeric,
	"created_at": SortNumeric,
	"updated_at": SortNumeric,
}

// ApplySorting orders the query by the sort keys, or by the resource default when none are given.
// Keys that are not available sort keys are ignored.
func ApplySorting(
	query sq.SelectBuilder,
	factory *SortStrategyFactory,
	entityType *entities.EntityType,
	adapter resource.Adapter,
	keys []entities.SortKey,
) (sq.SelectBuilder, error) {
	if len(keys) == 0 {
		keys = adapter.DefaultSorting()
	}

	available := make(map[string]bool)
	for _, k := range adapter.AvailableSortKeys() {
		available[k] = true
	}

	for _, key := range keys {
		if !available[key.Key] {
			continue
		}
		column := adapter.DataKeyForAttribute(key.Key)
		if !entityType.HasColumn(column) {
			continue
		}

		name, ok := entityType.SortStrategies[key.Key]
		if !ok {
			name, ok = entityType.SortStrategies[column]
		}
		if !ok {
			name = DefaultSortStrategies[column]
		}

		strategy, err := factory.Make(name)
		if err != nil {
			return query, err
		}
		query = strategy.Apply(query, entityType.Table+"."+column, key)
	}

	return query, nil
}
