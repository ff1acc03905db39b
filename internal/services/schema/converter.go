package schema

import (
	"fmt"

	"github.com/asakaida/datastore/internal/entities"
)

// ToSchema converts a document to entities.Schema.
// A type without a table is stored in a table of the same name.
func ToSchema(doc *Document) (*entities.Schema, error) {
	schema := &entities.Schema{
		AllowRelationshipReplace: doc.AllowRelationshipReplace,
		Types:                    make([]*entities.EntityType, 0, len(doc.Types)),
	}

	for _, td := range doc.Types {
		t, err := convertType(td)
		if err != nil {
			return nil, fmt.Errorf("failed to convert type %s: %w", td.Name, err)
		}
		schema.Types = append(schema.Types, t)
	}

	return schema, nil
}

func convertType(td *TypeDocument) (*entities.EntityType, error) {
	t := &entities.EntityType{
		Name:             td.Name,
		Table:            td.Table,
		Columns:          td.Columns,
		Relations:        make([]*entities.RelationDescriptor, 0, len(td.Relations)),
		FilterStrategies: td.FilterStrategies,
		SortStrategies:   td.SortStrategies,
	}
	if t.Table == "" {
		t.Table = td.Name
	}

	for _, rd := range td.Relations {
		kind, err := entities.ParseRelationKind(rd.Kind)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", rd.Name, err)
		}
		t.Relations = append(t.Relations, &entities.RelationDescriptor{
			Name:           rd.Name,
			Kind:           kind,
			RelatedType:    rd.RelatedType,
			ForeignKey:     rd.ForeignKey,
			MorphType:      rd.MorphType,
			JoinTable:      rd.JoinTable,
			JoinParentKey:  rd.JoinParentKey,
			JoinRelatedKey: rd.JoinRelatedKey,
			JoinMorphType:  rd.JoinMorphType,
		})
	}

	if md := td.Manipulation; md != nil {
		t.Manipulation = entities.ManipulationConfig{
			AllowReplace:   md.AllowReplace,
			DeleteOnDetach: md.DeleteOnDetach,
		}
	}

	if rd := td.Resource; rd != nil {
		t.Resource = &entities.ResourceDefinition{
			Attributes:      rd.Attributes,
			Includes:        rd.Includes,
			DefaultIncludes: rd.DefaultIncludes,
			Filters:         rd.Filters,
			DefaultFilters:  rd.DefaultFilters,
			SortKeys:        rd.SortKeys,
			DefaultSort:     rd.DefaultSort,
		}
	}

	return t, nil
}

// FromSchema converts entities.Schema back to its document form
func FromSchema(schema *entities.Schema) *Document {
	doc := &Document{
		AllowRelationshipReplace: schema.AllowRelationshipReplace,
		Types:                    make([]*TypeDocument, 0, len(schema.Types)),
	}

	for _, t := range schema.Types {
		td := &TypeDocument{
			Name:             t.Name,
			Table:            t.Table,
			Columns:          t.Columns,
			FilterStrategies: t.FilterStrategies,
			SortStrategies:   t.SortStrategies,
		}
		for _, rel := range t.Relations {
			td.Relations = append(td.Relations, &RelationDocument{
				Name:           rel.Name,
				Kind:           rel.Kind.String(),
				RelatedType:    rel.RelatedType,
				ForeignKey:     rel.ForeignKey,
				MorphType:      rel.MorphType,
				JoinTable:      rel.JoinTable,
				JoinParentKey:  rel.JoinParentKey,
				JoinRelatedKey: rel.JoinRelatedKey,
				JoinMorphType:  rel.JoinMorphType,
			})
		}
		if len(t.Manipulation.AllowReplace) > 0 || len(t.Manipulation.DeleteOnDetach) > 0 {
			td.Manipulation = &ManipulationDocument{
				AllowReplace:   t.Manipulation.AllowReplace,
				DeleteOnDetach: t.Manipulation.DeleteOnDetach,
			}
		}
		if r := t.Resource; r != nil {
			td.Resource = &ResourceDocument{
				Attributes:      r.Attributes,
				Includes:        r.Includes,
				DefaultIncludes: r.DefaultIncludes,
				Filters:         r.Filters,
				DefaultFilters:  r.DefaultFilters,
				SortKeys:        r.SortKeys,
				DefaultSort:     r.DefaultSort,
			}
		}
		doc.Types = append(doc.Types, td)
	}

	return doc
}
