package query

import (
	"context"
	"sort"
	"strings"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/services/resource"
	"github.com/asakaida/datastore/pkg/cache"
)

// IncludeResolver turns API include paths into relation paths.
// Example: post ["comments.post", "tags"] -> ["comments.post", "tags"] after name translation
type IncludeResolver struct {
	schema   *entities.Schema
	adapters *resource.AdapterFactory
	cache    cache.Cache
}

// NewIncludeResolver creates a resolver. A nil cache disables caching.
func NewIncludeResolver(schema *entities.Schema, adapters *resource.AdapterFactory, c cache.Cache) *IncludeResolver {
	if c == nil {
		c = cache.Noop{}
	}
	return &IncludeResolver{schema: schema, adapters: adapters, cache: c}
}

type includeTree map[string]includeTree

// Resolve returns the dotted relation paths for the includes, sorted.
// Includes the resource does not expose are skipped.
func (r *IncludeResolver) Resolve(ctx context.Context, recordType string, includes []string) ([]string, error) {
	if len(includes) == 0 {
		return []string{}, nil
	}

	normalized := make([]string, 0, len(includes))
	for _, inc := range includes {
		if inc = strings.TrimSpace(inc); inc != "" {
			normalized = append(normalized, inc)
		}
	}
	sort.Strings(normalized)

	key := "includes:" + recordType + ":" + strings.Join(normalized, ",")
	if v, ok := r.cache.Get(ctx, key); ok {
		if paths, ok := v.([]string); ok {
			return paths, nil
		}
	}

	tree := includeTree{}
	for _, inc := range normalized {
		node := tree
		for _, part := range strings.Split(inc, ".") {
			if node[part] == nil {
				node[part] = includeTree{}
			}
			node = node[part]
		}
	}

	paths, err := r.walk(recordType, tree, "")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	if err := r.cache.Set(ctx, key, paths, 0); err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *IncludeResolver) walk(recordType string, tree includeTree, prefix string) ([]string, error) {
	adapter, err := r.adapters.ForType(recordType)
	if err != nil {
		return nil, err
	}
	entityType := r.schema.GetType(recordType)

	paths := []string{}
	for include, children := range tree {
		relName := adapter.DataKeyForInclude(include)
		if relName == "" {
			continue
		}
		rel := entityType.GetRelation(relName)
		if rel == nil {
			continue
		}

		path := prefix + relName
		if len(children) == 0 || rel.RelatedType == "" {
			paths = append(paths, path)
			continue
		}

		nested, err := r.walk(rel.RelatedType, children, path+".")
		if err != nil {
			return nil, err
		}
		if len(nested) == 0 {
			paths = append(paths, path)
		}
		paths = append(paths, nested...)
	}
	return paths, nil
}
