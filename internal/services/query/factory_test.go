package query

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asakaida/datastore/internal/entities"
)

func TestFilterStrategyFactory_Make(t *testing.T) {
	tests := []struct {
		name     string
		driver   string
		strategy string
		reversed bool
		want     FilterStrategy
	}{
		{"default strategy", "sqlite", "", false, LikeStrategy{}},
		{"exact", "sqlite", FilterExact, true, ExactStrategy{Reversed: true}},
		{"case-insensitive falls back on sqlite", "sqlite", FilterExactCaseInsensitive, false, ExactStrategy{}},
		{"case-insensitive on postgres", "postgres", FilterExactCaseInsensitive, false, ExactCaseInsensitiveStrategy{}},
		{"like on postgres uses default map", "postgres", FilterLike, false, LikeStrategy{}},
		{"ilike on postgres", "postgres", FilterLikeCaseInsensitive, true, LikeCaseInsensitiveStrategy{Reversed: true}},
		{"comma separated", "sqlite", FilterExactCommaSeparated, false, ExactCommaSeparatedStrategy{}},
		{"relation key", "postgres", FilterRelationKey, false, RelationKeyStrategy{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFilterStrategyFactory(tt.driver, "").Make(tt.strategy, tt.reversed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("configured default", func(t *testing.T) {
		f := NewFilterStrategyFactory("sqlite", FilterExact)
		assert.Equal(t, FilterExact, f.DefaultStrategy())
		got, err := f.Make("", false)
		require.NoError(t, err)
		assert.Equal(t, ExactStrategy{}, got)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := NewFilterStrategyFactory("sqlite", "").Make("fuzzy", false)
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})
}

func TestSortStrategyFactory_Make(t *testing.T) {
	tests := []struct {
		name     string
		driver   string
		strategy string
		want     SortStrategy
	}{
		{"default strategy", "sqlite", "", AlphabeticStrategy{}},
		{"postgres alphabetic", "postgres", SortAlphabetic, LowerAlphabeticStrategy{}},
		{"numeric", "postgres", SortNumeric, NumericStrategy{}},
		{"null last", "sqlite", SortNumericNullLast, NullLastStrategy{}},
		{"postgres alphabetic null last", "postgres", SortAlphabeticNullLast, NullLastStrategy{Lower: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSortStrategyFactory(tt.driver, "").Make(tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewSortStrategyFactory("sqlite", "").Make("random")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategies_SQL(t *testing.T) {
	base := sq.Select("*").From("posts")
	field := Field{Type: "post", Table: "posts", Column: "title"}

	tests := []struct {
		name     string
		strategy FilterStrategy
		value    any
		wantSQL  string
		wantArgs []any
	}{
		{"exact", ExactStrategy{}, "a", "SELECT * FROM posts WHERE posts.title = ?", []any{"a"}},
		{"exact list", ExactStrategy{}, []string{"a", "b"}, "SELECT * FROM posts WHERE posts.title IN (?,?)", []any{"a", "b"}},
		{"exact reversed", ExactStrategy{Reversed: true}, "a", "SELECT * FROM posts WHERE posts.title <> ?", []any{"a"}},
		{"lower exact", ExactCaseInsensitiveStrategy{}, "ABC", "SELECT * FROM posts WHERE lower(posts.title) = ?", []any{"abc"}},
		{"comma separated", ExactCommaSeparatedStrategy{}, "a, b", "SELECT * FROM posts WHERE posts.title IN (?,?)", []any{"a", "b"}},
		{"like", LikeStrategy{}, "x", "SELECT * FROM posts WHERE posts.title LIKE ?", []any{"%x%"}},
		{"lower like reversed", LikeCaseInsensitiveStrategy{Reversed: true}, "X", "SELECT * FROM posts WHERE lower(posts.title) NOT LIKE ?", []any{"%x%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.strategy.Apply(base, field, tt.value)
			require.NoError(t, err)
			sqlStr, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sqlStr)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	t.Run("null last", func(t *testing.T) {
		q := NullLastStrategy{Lower: true}.Apply(base, "posts.title", entities.SortKey{Key: "title", Reversed: true})
		sqlStr, _, err := q.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM posts ORDER BY posts.title IS NULL, lower(posts.title) desc", sqlStr)
	})

	t.Run("relation key without relation", func(t *testing.T) {
		_, err := RelationKeyStrategy{}.Apply(base, field, "1")
		assert.Error(t, err)
	})
}
