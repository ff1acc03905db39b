package query

import (
	"errors"
	"fmt"
)

// Filter strategy names
const (
	FilterExact                = "exact"
	FilterExactCaseInsensitive = "exact-case-insensitive"
	FilterExactCommaSeparated  = "exact-comma-separated"
	FilterLike                 = "like"
	FilterLikeCaseInsensitive  = "like-case-insensitive"
	FilterRelationKey          = "relation-key"
)

// Sort strategy names
const (
	SortAlphabetic         = "alphabetic"
	SortAlphabeticNullLast = "alphabetic-null-last"
	SortNumeric            = "numeric"
	SortNumericNullLast    = "numeric-null-last"
)

// DefaultDriver is the class map used for drivers without their own entry
const DefaultDriver = "default"

// ErrUnknownStrategy is returned for a strategy name with no implementation
var ErrUnknownStrategy = errors.New("unknown strategy")

type filterConstructor func(reversed bool) FilterStrategy

var filterClassMap = map[string]map[string]filterConstructor{
	DefaultDriver: {
		FilterExact:                func(r bool) FilterStrategy { return ExactStrategy{Reversed: r} },
		FilterExactCaseInsensitive: func(r bool) FilterStrategy { return ExactStrategy{Reversed: r} },
		FilterExactCommaSeparated:  func(r bool) FilterStrategy { return ExactCommaSeparatedStrategy{Reversed: r} },
		FilterLike:                 func(r bool) FilterStrategy { return LikeStrategy{Reversed: r} },
		FilterLikeCaseInsensitive:  func(r bool) FilterStrategy { return LikeStrategy{Reversed: r} },
		FilterRelationKey:          func(r bool) FilterStrategy { return RelationKeyStrategy{Reversed: r} },
	},
	"postgres": {
		FilterExactCaseInsensitive: func(r bool) FilterStrategy { return ExactCaseInsensitiveStrategy{Reversed: r} },
		FilterLikeCaseInsensitive:  func(r bool) FilterStrategy { return LikeCaseInsensitiveStrategy{Reversed: r} },
	},
}

var sortClassMap = map[string]map[string]SortStrategy{
	DefaultDriver: {
		SortAlphabetic:         AlphabeticStrategy{},
		SortAlphabeticNullLast: NullLastStrategy{},
		SortNumeric:            NumericStrategy{},
		SortNumericNullLast:    NullLastStrategy{},
	},
	"postgres": {
		SortAlphabetic:         LowerAlphabeticStrategy{},
		SortAlphabeticNullLast: NullLastStrategy{Lower: true},
	},
}

// FilterStrategyFactory resolves filter strategy names for a database driver
type FilterStrategyFactory struct {
	driver          string
	defaultStrategy string
}

// NewFilterStrategyFactory creates a factory; an empty default falls back to like-case-insensitive
func NewFilterStrategyFactory(driver, defaultStrategy string) *FilterStrategyFactory {
	if defaultStrategy == "" {
		defaultStrategy = FilterLikeCaseInsensitive
	}
	return &FilterStrategyFactory{driver: driver, defaultStrategy: defaultStrategy}
}

// DefaultStrategy returns the strategy used when none is configured
func (f *FilterStrategyFactory) DefaultStrategy() string {
	return f.defaultStrategy
}

// Make returns the strategy for the name, or the default strategy when name is empty
func (f *FilterStrategyFactory) Make(name string, reversed bool) (FilterStrategy, error) {
	if name == "" {
		name = f.defaultStrategy
	}
	if ctor, ok := filterClassMap[f.driver][name]; ok {
		return ctor(reversed), nil
	}
	if ctor, ok := filterClassMap[DefaultDriver][name]; ok {
		return ctor(reversed), nil
	}
	return nil, fmt.Errorf("%w: filter %q", ErrUnknownStrategy, name)
}

// SortStrategyFactory resolves sort strategy names for a database driver
type SortStrategyFactory struct {
	driver          string
	defaultStrategy string
}

// NewSortStrategyFactory creates a factory; an empty default falls back to alphabetic
func NewSortStrategyFactory(driver, defaultStrategy string) *SortStrategyFactory {
	if defaultStrategy == "" {
		defaultStrategy = SortAlphabetic
	}
	return &SortStrategyFactory{driver: driver, defaultStrategy: defaultStrategy}
}

// Make returns the strategy for the name, or the default strategy when name is empty
func (f *SortStrategyFactory) Make(name string) (SortStrategy, error) {
	if name == "" {
		name = f.defaultStrategy
	}
	if s, ok := sortClassMap[f.driver][name]; ok {
		return s, nil
	}
	if s, ok := sortClassMap[DefaultDriver][name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: sort %q", ErrUnknownStrategy, name)
}
