package entities

// Schema represents the complete set of record types known to the data store
type Schema struct {
	Types []*EntityType // Type definitions

	// AllowRelationshipReplace is the global default for replacing plural relations
	AllowRelationshipReplace bool
}

// GetType returns the type definition by name
func (s *Schema) GetType(name string) *EntityType {
	for _, t := range s.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// GetRelation returns the relation definition for a given type and relation name
func (s *Schema) GetRelation(typeName, relationName string) *RelationDescriptor {
	t := s.GetType(typeName)
	if t == nil {
		return nil
	}
	return t.GetRelation(relationName)
}
