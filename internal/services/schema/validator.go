package schema

import (
	"fmt"
	"strings"

	"github.com/asakaida/datastore/internal/entities"
)

// Validator checks a converted schema for consistency
type Validator struct {
	schema *entities.Schema
	errors []string
	types  map[string]*entities.EntityType
}

// NewValidator creates a new Validator
func NewValidator(schema *entities.Schema) *Validator {
	types := make(map[string]*entities.EntityType)
	for _, t := range schema.Types {
		types[t.Name] = t
	}
	return &Validator{
		schema: schema,
		errors: []string{},
		types:  types,
	}
}

// Validate validates the schema and returns an error listing every problem found
func (v *Validator) Validate() error {
	v.validateUniqueTypeNames()
	for _, t := range v.schema.Types {
		v.validateType(t)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *Validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *Validator) validateUniqueTypeNames() {
	seen := make(map[string]bool)
	for _, t := range v.schema.Types {
		if t.Name == "" {
			v.addError("type name is required")
			continue
		}
		if seen[t.Name] {
			v.addError("duplicate type name: %s", t.Name)
		}
		seen[t.Name] = true
	}
}

func (v *Validator) validateType(t *entities.EntityType) {
	columns := make(map[string]bool)
	for _, c := range t.Columns {
		if c == "id" {
			v.addError("type %s: column id is implicit", t.Name)
		}
		if columns[c] {
			v.addError("type %s: duplicate column: %s", t.Name, c)
		}
		columns[c] = true
	}

	relations := make(map[string]bool)
	for _, rel := range t.Relations {
		if relations[rel.Name] {
			v.addError("type %s: duplicate relation name: %s", t.Name, rel.Name)
		}
		relations[rel.Name] = true
		if columns[rel.Name] {
			v.addError("type %s: relation %s conflicts with a column", t.Name, rel.Name)
		}
		v.validateRelation(t, rel)
	}

	for name := range t.Manipulation.AllowReplace {
		if t.GetRelation(name) == nil {
			v.addError("type %s: allow_replace references unknown relation: %s", t.Name, name)
		}
	}
	for name := range t.Manipulation.DeleteOnDetach {
		if t.GetRelation(name) == nil {
			v.addError("type %s: delete_on_detach references unknown relation: %s", t.Name, name)
		}
	}

	if t.Resource != nil {
		v.validateResource(t)
	}
}

// validateRelation checks the descriptor and that its key columns live on the right side
func (v *Validator) validateRelation(t *entities.EntityType, rel *entities.RelationDescriptor) {
	if err := rel.Validate(); err != nil {
		v.addError("type %s: %v", t.Name, err)
		return
	}

	var related *entities.EntityType
	if rel.RelatedType != "" {
		related = v.types[rel.RelatedType]
		if related == nil {
			v.addError("type %s: relation %s references undefined type: %s", t.Name, rel.Name, rel.RelatedType)
			return
		}
	}

	switch rel.Kind {
	case entities.SingularOwning:
		v.requireColumn(t, rel, t, rel.ForeignKey)
		if rel.MorphType != "" {
			v.requireColumn(t, rel, t, rel.MorphType)
		}
	case entities.SingularOwned, entities.PluralOwned:
		v.requireColumn(t, rel, related, rel.ForeignKey)
		if rel.MorphType != "" {
			v.requireColumn(t, rel, related, rel.MorphType)
		}
	}
}

func (v *Validator) requireColumn(t *entities.EntityType, rel *entities.RelationDescriptor, owner *entities.EntityType, column string) {
	if !owner.HasColumn(column) {
		v.addError("type %s: relation %s: column %s is not defined on %s", t.Name, rel.Name, column, owner.Name)
	}
}

func (v *Validator) validateResource(t *entities.EntityType) {
	r := t.Resource
	for attr, column := range r.Attributes {
		if !t.HasColumn(column) {
			v.addError("type %s: attribute %s maps to undefined column: %s", t.Name, attr, column)
		}
	}
	for include, relName := range r.Includes {
		if t.GetRelation(relName) == nil {
			v.addError("type %s: include %s maps to undefined relation: %s", t.Name, include, relName)
		}
	}
	for _, include := range r.DefaultIncludes {
		if _, ok := r.Includes[include]; !ok && len(r.Includes) > 0 {
			v.addError("type %s: default include %s is not an include", t.Name, include)
		}
	}
}
