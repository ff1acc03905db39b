// Package resource translates API-facing names (attributes, includes, filters, sort keys)
// into the columns and relations of a record type.
package resource

import (
	"sort"
	"strings"

	"github.com/asakaida/datastore/internal/entities"
)

// Adapter maps the API names of one resource onto its record type
type Adapter interface {
	// DataKeyForAttribute returns the column for an API attribute
	DataKeyForAttribute(attribute string) string

	// AttributeForDataKey returns the API attribute for a column, or "" when it is not exposed
	AttributeForDataKey(column string) string

	// DataKeyForInclude returns the relation name for an include, or "" when unknown
	DataKeyForInclude(include string) string

	AvailableIncludeKeys() []string
	DefaultIncludes() []string

	// IsIncludeSingular reports whether the include resolves to a singular relation
	IsIncludeSingular(include string) bool

	AvailableFilterKeys() []string
	DefaultFilters() map[string]any

	AvailableSortKeys() []string
	DefaultSorting() []entities.SortKey
}

var _ Adapter = (*DefinitionAdapter)(nil)

// DefinitionAdapter is an Adapter backed by a schema resource definition.
// Types without a definition expose their columns under the same names.
type DefinitionAdapter struct {
	entityType *entities.EntityType
	def        *entities.ResourceDefinition
}

// NewDefinitionAdapter creates an adapter for the entity type
func NewDefinitionAdapter(entityType *entities.EntityType) *DefinitionAdapter {
	def := entityType.Resource
	if def == nil {
		def = &entities.ResourceDefinition{}
	}
	return &DefinitionAdapter{entityType: entityType, def: def}
}

func (a *DefinitionAdapter) DataKeyForAttribute(attribute string) string {
	if column, ok := a.def.Attributes[attribute]; ok {
		return column
	}
	return strings.ReplaceAll(attribute, "-", "_")
}

func (a *DefinitionAdapter) AttributeForDataKey(column string) string {
	if len(a.def.Attributes) == 0 {
		if a.entityType.HasColumn(column) {
			return column
		}
		return ""
	}
	for attribute, c := range a.def.Attributes {
		if c == column {
			return attribute
		}
	}
	return ""
}

func (a *DefinitionAdapter) DataKeyForInclude(include string) string {
	if len(a.def.Includes) == 0 {
		if a.entityType.GetRelation(include) != nil {
			return include
		}
		return ""
	}
	return a.def.Includes[include]
}

func (a *DefinitionAdapter) AvailableIncludeKeys() []string {
	if len(a.def.Includes) == 0 {
		keys := make([]string, 0, len(a.entityType.Relations))
		for _, rel := range a.entityType.Relations {
			keys = append(keys, rel.Name)
		}
		sort.Strings(keys)
		return keys
	}
	keys := make([]string, 0, len(a.def.Includes))
	for k := range a.def.Includes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *DefinitionAdapter) DefaultIncludes() []string {
	return a.def.DefaultIncludes
}

func (a *DefinitionAdapter) IsIncludeSingular(include string) bool {
	rel := a.entityType.GetRelation(a.DataKeyForInclude(include))
	return rel != nil && rel.Kind.IsSingular()
}

func (a *DefinitionAdapter) AvailableFilterKeys() []string {
	return a.def.Filters
}

func (a *DefinitionAdapter) DefaultFilters() map[string]any {
	return a.def.DefaultFilters
}

func (a *DefinitionAdapter) AvailableSortKeys() []string {
	return a.def.SortKeys
}

func (a *DefinitionAdapter) DefaultSorting() []entities.SortKey {
	return entities.ParseSortKeys(a.def.DefaultSort)
}
