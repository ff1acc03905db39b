package query

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/services/resource"
)

// DefaultFilterStrategies are used for columns without a per-type strategy
var DefaultFilterStrategies = map[string]string{
	"id":   FilterExact,
	"slug": FilterExactCaseInsensitive,
}

// FilterHandler applies request filters to a list query of one record type
type FilterHandler struct {
	factory       *FilterStrategyFactory
	schema        *entities.Schema
	entityType    *entities.EntityType
	adapter       resource.Adapter
	reversePrefix string
}

// NewFilterHandler creates a handler. An empty reversePrefix disables reversed filters.
func NewFilterHandler(
	factory *FilterStrategyFactory,
	schema *entities.Schema,
	entityType *entities.EntityType,
	adapter resource.Adapter,
	reversePrefix string,
) *FilterHandler {
	return &FilterHandler{
		factory:       factory,
		schema:        schema,
		entityType:    entityType,
		adapter:       adapter,
		reversePrefix: reversePrefix,
	}
}

// Apply narrows the query by the filters, or by the resource defaults when none are given.
// Keys that are not available filters are ignored.
func (h *FilterHandler) Apply(query sq.SelectBuilder, filters map[string]any) (sq.SelectBuilder, error) {
	if len(filters) == 0 {
		filters = h.adapter.DefaultFilters()
	}

	available := make(map[string]bool)
	for _, key := range h.adapter.AvailableFilterKeys() {
		available[key] = true
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		key, reversed := h.parseKey(raw)
		if !available[key] {
			continue
		}

		field, strategyName, err := h.resolve(key)
		if err != nil {
			return query, err
		}

		strategy, err := h.factory.Make(strategyName, reversed)
		if err != nil {
			return query, err
		}

		query, err = strategy.Apply(query, field, filters[raw])
		if err != nil {
			return query, fmt.Errorf("failed to apply filter %s: %w", raw, err)
		}
	}

	return query, nil
}

func (h *FilterHandler) parseKey(raw string) (string, bool) {
	if h.reversePrefix != "" && strings.HasPrefix(raw, h.reversePrefix) {
		return strings.TrimPrefix(raw, h.reversePrefix), true
	}
	return raw, false
}

// resolve maps a filter key to its field and strategy name.
// Includes resolve to relations; everything else to a column.
func (h *FilterHandler) resolve(key string) (Field, string, error) {
	field := Field{Type: h.entityType.Name, Table: h.entityType.Table}

	if relName := h.adapter.DataKeyForInclude(key); relName != "" {
		if rel := h.entityType.GetRelation(relName); rel != nil {
			field.Column = relName
			field.Relation = rel
			if rel.RelatedType != "" {
				field.Related = h.schema.GetType(rel.RelatedType)
			}
			strategy := h.strategyFor(key, relName)
			if strategy == "" {
				strategy = FilterRelationKey
			}
			return field, strategy, nil
		}
	}

	column := h.adapter.DataKeyForAttribute(key)
	if !h.entityType.HasColumn(column) {
		return field, "", fmt.Errorf("filter %q does not map to a column of %s", key, h.entityType.Name)
	}
	field.Column = column

	strategy := h.strategyFor(key, column)
	if strategy == "" {
		strategy = DefaultFilterStrategies[column]
	}
	return field, strategy, nil
}

func (h *FilterHandler) strategyFor(key, dataKey string) string {
	if s, ok := h.entityType.FilterStrategies[key]; ok {
		return s
	}
	return h.entityType.FilterStrategies[dataKey]
}
