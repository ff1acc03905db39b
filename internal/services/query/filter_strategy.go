// Package query applies filters, sorting and include resolution to list queries.
package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
)

// Field is the target of a filter: a column of the queried table, or a relation of its type
type Field struct {
	Type     string
	Table    string
	Column   string
	Relation *entities.RelationDescriptor
	Related  *entities.EntityType
}

// Qualified returns the table-qualified column
func (f Field) Qualified() string {
	return f.Table + "." + f.Column
}

// FilterStrategy narrows a select by a single filter value
type FilterStrategy interface {
	Apply(query sq.SelectBuilder, field Field, value any) (sq.SelectBuilder, error)
}

// ExactStrategy matches the value exactly, or any element of a slice
type ExactStrategy struct {
	Reversed bool
}

func (s ExactStrategy) Apply(query sq.SelectBuilder, field Field, value any) (sq.SelectBuilder, error) {
	return query.Where(equals(field.Qualified(), value, s.Reversed)), nil
}

// ExactCaseInsensitiveStrategy compares lower-cased values
type ExactCaseInsensitiveStrategy struct {
	Reversed bool
}

func (s ExactCaseInsensitiveStrategy) Apply(query sq.SelectBuilder, field Field, value any) (sq.SelectBuilder, error) {
	column := "lower(" + field.Qualified() + ")"
	return query.Where(equals(column, lowerValues(value), s.Reversed)), nil
}

// ExactCommaSeparatedStrategy splits a string value on commas and matches any part
type ExactCommaSeparatedStrategy struct {
	Reversed bool
}

func (s ExactCommaSeparatedStrategy) Apply(query sq.SelectBuilder, field Field, value any) (sq.SelectBuilder, error) {
	if str, ok := value.(string); ok {
		parts := strings.Split(str, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			values = append(values, strings.TrimSpace(p))
		}
		value = values
	}
	return query.Where(equals(field.Qualified(), value, s.Reversed)), nil
}

// LikeStrategy matches values containing the filter value
type LikeStrategy struct {
	Reversed bool
}

func (s LikeStrategy) Apply(query sq.SelectBuilder, field Field, value any) (sq.SelectBuilder, error) {
	return query.Where(like(field.Qualified(), fmt.Sprint(value), s.Reversed)), nil
}

// LikeCaseInsensitiveStrategy matches lower-cased values containing the filter value
type LikeCaseInsensitiveStrategy struct {
	Reversed bool
}

func (s LikeCaseInsensitiveStrategy) Apply(query sq.SelectBuilder, field Field, value any) (sq.SelectBuilder, error) {
	column := "lower(" + field.Qualified() + ")"
	return query.Where(like(column, strings.ToLower(fmt.Sprint(value)), s.Reversed)), nil
}

// RelationKeyStrategy matches records whose relation contains a record with the given id(s)
type RelationKeyStrategy struct {
	Reversed bool
}

func (s RelationKeyStrategy) Apply(query sq.SelectBuilder, field Field, value any) (sq.SelectBuilder, error) {
	rel := field.Relation
	if rel == nil {
		return query, fmt.Errorf("filter on %s requires a relation", field.Column)
	}

	parentID := field.Table + ".id"
	switch rel.Kind {
	case entities.SingularOwning:
		return query.Where(equals(field.Table+"."+rel.ForeignKey, value, s.Reversed)), nil

	case entities.SingularOwned, entities.PluralOwned:
		if field.Related == nil {
			return query, fmt.Errorf("relation %s has no related type", rel.Name)
		}
		table := field.Related.Table
		sub := sq.Select("1").
			From(table).
			Where(table + "." + rel.ForeignKey + " = " + parentID).
			Where(equals(table+".id", value, false))
		if rel.MorphType != "" {
			sub = sub.Where(sq.Eq{table + "." + rel.MorphType: field.Type})
		}
		return query.Where(exists(sub, s.Reversed)), nil

	case entities.PluralJoin:
		sub := sq.Select("1").
			From(rel.JoinTable).
			Where(rel.JoinTable + "." + rel.JoinParentKey + " = " + parentID).
			Where(equals(rel.JoinTable+"."+rel.JoinRelatedKey, value, false))
		if rel.JoinMorphType != "" {
			sub = sub.Where(sq.Eq{rel.JoinTable + "." + rel.JoinMorphType: field.Type})
		}
		return query.Where(exists(sub, s.Reversed)), nil
	}

	return query, fmt.Errorf("relation %s: unknown kind", rel.Name)
}

func equals(column string, value any, reversed bool) sq.Sqlizer {
	if reversed {
		return sq.NotEq{column: value}
	}
	return sq.Eq{column: value}
}

func like(column, value string, reversed bool) sq.Sqlizer {
	pattern := "%" + value + "%"
	if reversed {
		return sq.NotLike{column: pattern}
	}
	return sq.Like{column: pattern}
}

func exists(sub sq.SelectBuilder, reversed bool) sq.Sqlizer {
	if reversed {
		return sq.Expr("NOT EXISTS (?)", sub)
	}
	return sq.Expr("EXISTS (?)", sub)
}

func lowerValues(value any) any {
	switch v := value.(type) {
	case string:
		return strings.ToLower(v)
	case []string:
		lowered := make([]string, len(v))
		for i, s := range v {
			lowered[i] = strings.ToLower(s)
		}
		return lowered
	case []any:
		lowered := make([]any, len(v))
		for i, s := range v {
			lowered[i] = lowerValues(s)
		}
		return lowered
	default:
		return value
	}
}
