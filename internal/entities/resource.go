package entities

// ResourceDefinition maps API-facing names onto a record type
type ResourceDefinition struct {
	Attributes      map[string]string // API attribute -> column
	Includes        map[string]string // API include -> relation name
	DefaultIncludes []string
	Filters         []string       // Available filter keys (API names)
	DefaultFilters  map[string]any // Filters applied when none are given
	SortKeys        []string       // Available sort keys (API names)
	DefaultSort     []string       // Default sort keys, "-" prefix for descending
}
