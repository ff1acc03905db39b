// Package schema loads record type, relation and resource definitions from YAML.
package schema

// Document is the YAML form of a schema file
type Document struct {
	AllowRelationshipReplace bool            `yaml:"allow_relationship_replace,omitempty"`
	Types                    []*TypeDocument `yaml:"types"`
}

// TypeDocument describes one record type
type TypeDocument struct {
	Name      string              `yaml:"name"`
	Table     string              `yaml:"table,omitempty"`
	Columns   []string            `yaml:"columns,omitempty"`
	Relations []*RelationDocument `yaml:"relations,omitempty"`

	Manipulation *ManipulationDocument `yaml:"manipulation,omitempty"`
	Resource     *ResourceDocument     `yaml:"resource,omitempty"`

	FilterStrategies map[string]string `yaml:"filter_strategies,omitempty"`
	SortStrategies   map[string]string `yaml:"sort_strategies,omitempty"`
}

// RelationDocument describes one relation. Kind accepts the canonical
// names (plural_owned) and ORM aliases (has_many).
type RelationDocument struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	RelatedType string `yaml:"related_type,omitempty"`
	ForeignKey  string `yaml:"foreign_key,omitempty"`
	MorphType   string `yaml:"morph_type,omitempty"`

	JoinTable      string `yaml:"join_table,omitempty"`
	JoinParentKey  string `yaml:"join_parent_key,omitempty"`
	JoinRelatedKey string `yaml:"join_related_key,omitempty"`
	JoinMorphType  string `yaml:"join_morph_type,omitempty"`
}

// ManipulationDocument holds per-relation manipulation flags
type ManipulationDocument struct {
	AllowReplace   map[string]bool `yaml:"allow_replace,omitempty"`
	DeleteOnDetach map[string]bool `yaml:"delete_on_detach,omitempty"`
}

// ResourceDocument maps API names onto the type
type ResourceDocument struct {
	Attributes      map[string]string `yaml:"attributes,omitempty"`
	Includes        map[string]string `yaml:"includes,omitempty"`
	DefaultIncludes []string          `yaml:"default_includes,omitempty"`
	Filters         []string          `yaml:"filters,omitempty"`
	DefaultFilters  map[string]any    `yaml:"default_filters,omitempty"`
	SortKeys        []string          `yaml:"sort_keys,omitempty"`
	DefaultSort     []string          `yaml:"default_sort,omitempty"`
}
