package entities

// EntityType represents a record type definition in the schema
// Example: "post" stored in table "posts" with relations "author", "comments", "tags"
type EntityType struct {
	Name      string                // Type name (e.g., "post", "comment")
	Table     string                // Backing table name
	Columns   []string              // Writable columns, excluding id
	Relations []*RelationDescriptor // Relation definitions

	Manipulation ManipulationConfig // Per-type manipulation defaults
	Resource     *ResourceDefinition // API resource mapping (optional)

	FilterStrategies map[string]string // Column -> filter strategy
	SortStrategies   map[string]string // Column -> sort strategy
}

// GetRelation returns the relation definition by name
func (e *EntityType) GetRelation(name string) *RelationDescriptor {
	for _, r := range e.Relations {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// HasColumn reports whether the column is writable on this type
func (e *EntityType) HasColumn(column string) bool {
	if column == "id" {
		return true
	}
	for _, c := range e.Columns {
		if c == column {
			return true
		}
	}
	return false
}
