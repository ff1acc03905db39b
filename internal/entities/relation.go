package entities

import (
	"fmt"
	"strings"
)

// RelationKind classifies a relation by cardinality and ownership topology
type RelationKind int

const (
	// RelationKindUnknown is the zero value and never valid
	RelationKindUnknown RelationKind = iota
	// SingularOwning: the parent holds the foreign key (belongs to, morph to)
	SingularOwning
	// SingularOwned: the related record holds the foreign key, at most one (has one, morph one)
	SingularOwned
	// PluralJoin: membership lives in a join table (belongs to many, morph to many)
	PluralJoin
	// PluralOwned: each related record holds the foreign key (has many, morph many)
	PluralOwned
)

var relationKindNames = map[RelationKind]string{
	SingularOwning: "singular_owning",
	SingularOwned:  "singular_owned",
	PluralJoin:     "plural_join",
	PluralOwned:    "plural_owned",
}

var relationKindAliases = map[string]RelationKind{
	"singular_owning": SingularOwning,
	"belongs_to":      SingularOwning,
	"morph_to":        SingularOwning,
	"singular_owned":  SingularOwned,
	"has_one":         SingularOwned,
	"morph_one":       SingularOwned,
	"plural_join":     PluralJoin,
	"belongs_to_many": PluralJoin,
	"morph_to_many":   PluralJoin,
	"plural_owned":    PluralOwned,
	"has_many":        PluralOwned,
	"morph_many":      PluralOwned,
}

// ParseRelationKind resolves a kind from its name or a common ORM alias
func ParseRelationKind(name string) (RelationKind, error) {
	kind, ok := relationKindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return RelationKindUnknown, fmt.Errorf("unknown relation kind: %q", name)
	}
	return kind, nil
}

// String returns the canonical name of the kind
func (k RelationKind) String() string {
	if name, ok := relationKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsSingular reports whether the relation holds at most one related record
func (k RelationKind) IsSingular() bool {
	return k == SingularOwning || k == SingularOwned
}

// ForeignKeyOwner names the side that stores the relation key
type ForeignKeyOwner string

const (
	OwnerParent    ForeignKeyOwner = "parent"
	OwnerRelated   ForeignKeyOwner = "related"
	OwnerJoinTable ForeignKeyOwner = "joinTable"
)

// RelationDescriptor is the static description of a named relation.
// Example: "comments" on post is PluralOwned to comment via comment.post_id
type RelationDescriptor struct {
	Name        string       // Relation name (e.g., "comments")
	Kind        RelationKind // Topology
	RelatedType string       // Related record type, empty for a polymorphic owning relation

	ForeignKey string // Key column on the parent (owning) or related record (owned)
	MorphType  string // Type discriminator column next to ForeignKey (polymorphic only)

	JoinTable      string // Join table name (PluralJoin only)
	JoinParentKey  string // Join column pointing at the parent
	JoinRelatedKey string // Join column pointing at the related record
	JoinMorphType  string // Join column holding the parent type (polymorphic join only)
}

// ForeignKeyOwner returns which side stores the key for this relation
func (d *RelationDescriptor) ForeignKeyOwner() ForeignKeyOwner {
	switch d.Kind {
	case SingularOwning:
		return OwnerParent
	case PluralJoin:
		return OwnerJoinTable
	default:
		return OwnerRelated
	}
}

// Polymorphic reports whether the relation stores a type discriminator
func (d *RelationDescriptor) Polymorphic() bool {
	return d.MorphType != "" || d.JoinMorphType != ""
}

// AcceptsType reports whether records of the given type may be related
func (d *RelationDescriptor) AcceptsType(recordType string) bool {
	return d.RelatedType == "" || d.RelatedType == recordType
}

// TargetType returns the type of the record an owning relation currently points at
func (d *RelationDescriptor) TargetType(parent *Record) string {
	if d.RelatedType != "" {
		return d.RelatedType
	}
	if d.MorphType == "" || parent == nil {
		return ""
	}
	return parent.GetString(d.MorphType)
}

// Link sets the keys that make related a member of the relation on parent.
// Join relations store membership outside both records and are left untouched.
func (d *RelationDescriptor) Link(parent, related *Record) {
	switch d.Kind {
	case SingularOwning:
		parent.Set(d.ForeignKey, related.ID)
		if d.MorphType != "" {
			parent.Set(d.MorphType, related.Type)
		}
	case SingularOwned, PluralOwned:
		related.Set(d.ForeignKey, parent.ID)
		if d.MorphType != "" {
			related.Set(d.MorphType, parent.Type)
		}
	}
}

// Unlink clears the keys written by Link
func (d *RelationDescriptor) Unlink(parent, related *Record) {
	switch d.Kind {
	case SingularOwning:
		parent.Set(d.ForeignKey, nil)
		if d.MorphType != "" {
			parent.Set(d.MorphType, nil)
		}
	case SingularOwned, PluralOwned:
		related.Set(d.ForeignKey, nil)
		if d.MorphType != "" {
			related.Set(d.MorphType, nil)
		}
	}
}

// Validate checks the descriptor has what its kind needs
func (d *RelationDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("relation name is required")
	}
	switch d.Kind {
	case SingularOwning:
		if d.ForeignKey == "" {
			return fmt.Errorf("relation %s: foreign key is required", d.Name)
		}
		if d.RelatedType == "" && d.MorphType == "" {
			return fmt.Errorf("relation %s: related type or morph type is required", d.Name)
		}
	case SingularOwned, PluralOwned:
		if d.RelatedType == "" {
			return fmt.Errorf("relation %s: related type is required", d.Name)
		}
		if d.ForeignKey == "" {
			return fmt.Errorf("relation %s: foreign key is required", d.Name)
		}
	case PluralJoin:
		if d.RelatedType == "" {
			return fmt.Errorf("relation %s: related type is required", d.Name)
		}
		if d.JoinTable == "" {
			return fmt.Errorf("relation %s: join table is required", d.Name)
		}
		if d.JoinParentKey == "" || d.JoinRelatedKey == "" {
			return fmt.Errorf("relation %s: join keys are required", d.Name)
		}
	default:
		return fmt.Errorf("relation %s: unknown kind", d.Name)
	}
	return nil
}
