package query

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
)

// SortStrategy orders a select by one column
type SortStrategy interface {
	Apply(query sq.SelectBuilder, column string, key entities.SortKey) sq.SelectBuilder
}

// AlphabeticStrategy orders by the column as-is
type AlphabeticStrategy struct{}

func (AlphabeticStrategy) Apply(query sq.SelectBuilder, column string, key entities.SortKey) sq.SelectBuilder {
	return query.OrderBy(column + " " + key.Direction())
}

// LowerAlphabeticStrategy orders by the lower-cased column
type LowerAlphabeticStrategy struct{}

func (LowerAlphabeticStrategy) Apply(query sq.SelectBuilder, column string, key entities.SortKey) sq.SelectBuilder {
	return query.OrderBy("lower(" + column + ") " + key.Direction())
}

// NullLastStrategy puts NULLs after every other value in both directions
type NullLastStrategy struct {
	Lower bool
}

func (s NullLastStrategy) Apply(query sq.SelectBuilder, column string, key entities.SortKey) sq.SelectBuilder {
	ordered := column
	if s.Lower {
		ordered = "lower(" + column + ")"
	}
	return query.OrderBy(column+" IS NULL", ordered+" "+key.Direction())
}

// NumericStrategy orders by the column without collation
type NumericStrategy struct{}

func (NumericStrategy) Apply(query sq.SelectBuilder, column string, key entities.SortKey) sq.SelectBuilder {
	return query.OrderBy(column + " " + key.Direction())
}
