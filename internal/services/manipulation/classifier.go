package manipulation

import "github.com/asakaida/datastore/internal/entities"

// Classifier resolves relation descriptors from static schema knowledge
type Classifier struct {
	schema *entities.Schema
}

// NewClassifier creates a classifier over the schema
func NewClassifier(schema *entities.Schema) *Classifier {
	return &Classifier{schema: schema}
}

// Classify returns the descriptor of the named relation on the parent's type
func (c *Classifier) Classify(parent *entities.Record, name string) (*entities.RelationDescriptor, error) {
	if parent == nil {
		return nil, invalidArgument("parent record is required")
	}
	if c.schema == nil {
		return nil, &UnknownRelationError{Type: parent.Type, Relation: name}
	}

	rel := c.schema.GetRelation(parent.Type, name)
	if rel == nil {
		return nil, &UnknownRelationError{Type: parent.Type, Relation: name}
	}
	if rel.Kind == entities.RelationKindUnknown {
		return nil, &UnknownRelationError{Type: parent.Type, Relation: name}
	}
	return rel, nil
}
