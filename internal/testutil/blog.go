// Package testutil provides shared fixtures for package tests.
package testutil

import "github.com/asakaida/datastore/internal/entities"

// BlogSchema returns a schema covering every relation topology:
//
//	author  -> posts (has many), profile (has one)
//	post    -> author (belongs to), comments (has many), tags (belongs to many), images (morph many)
//	comment -> post (belongs to)
//	image   -> imageable (morph to)
//	video   -> images (morph many), tags (morph to many)
func BlogSchema() *entities.Schema {
	return &entities.Schema{
		Types: []*entities.EntityType{
			{
				Name:    "author",
				Table:   "authors",
				Columns: []string{"name"},
				Relations: []*entities.RelationDescriptor{
					{Name: "posts", Kind: entities.PluralOwned, RelatedType: "post", ForeignKey: "author_id"},
					{Name: "profile", Kind: entities.SingularOwned, RelatedType: "profile", ForeignKey: "author_id"},
				},
				Resource: &entities.ResourceDefinition{
					Attributes: map[string]string{"name": "name"},
					Includes:   map[string]string{"posts": "posts", "profile": "profile"},
					Filters:    []string{"name"},
					SortKeys:   []string{"name"},
				},
			},
			{
				Name:    "profile",
				Table:   "profiles",
				Columns: []string{"bio", "author_id"},
				Resource: &entities.ResourceDefinition{
					Attributes: map[string]string{"bio": "bio"},
				},
			},
			{
				Name:    "post",
				Table:   "posts",
				Columns: []string{"title", "body", "position", "author_id"},
				Relations: []*entities.RelationDescriptor{
					{Name: "author", Kind: entities.SingularOwning, RelatedType: "author", ForeignKey: "author_id"},
					{Name: "comments", Kind: entities.PluralOwned, RelatedType: "comment", ForeignKey: "post_id"},
					{Name: "tags", Kind: entities.PluralJoin, RelatedType: "tag", JoinTable: "post_tag", JoinParentKey: "post_id", JoinRelatedKey: "tag_id"},
					{Name: "images", Kind: entities.PluralOwned, RelatedType: "image", ForeignKey: "imageable_id", MorphType: "imageable_type"},
				},
				Resource: &entities.ResourceDefinition{
					Attributes: map[string]string{"title": "title", "body": "body", "position": "position"},
					Includes: map[string]string{
						"author":   "author",
						"comments": "comments",
						"tags":     "tags",
						"images":   "images",
					},
					Filters:  []string{"title", "position", "author", "tags"},
					SortKeys: []string{"title", "position"},
				},
				FilterStrategies: map[string]string{"position": "exact"},
				SortStrategies:   map[string]string{"position": "numeric"},
			},
			{
				Name:    "comment",
				Table:   "comments",
				Columns: []string{"body", "post_id"},
				Relations: []*entities.RelationDescriptor{
					{Name: "post", Kind: entities.SingularOwning, RelatedType: "post", ForeignKey: "post_id"},
				},
				Resource: &entities.ResourceDefinition{
					Attributes: map[string]string{"body": "body"},
					Includes:   map[string]string{"post": "post"},
				},
			},
			{
				Name:    "tag",
				Table:   "tags",
				Columns: []string{"name"},
				Relations: []*entities.RelationDescriptor{
					{Name: "posts", Kind: entities.PluralJoin, RelatedType: "post", JoinTable: "post_tag", JoinParentKey: "tag_id", JoinRelatedKey: "post_id"},
				},
				Resource: &entities.ResourceDefinition{
					Attributes: map[string]string{"name": "name"},
					Includes:   map[string]string{"posts": "posts"},
				},
			},
			{
				Name:    "image",
				Table:   "images",
				Columns: []string{"url", "imageable_id", "imageable_type"},
				Relations: []*entities.RelationDescriptor{
					{Name: "imageable", Kind: entities.SingularOwning, ForeignKey: "imageable_id", MorphType: "imageable_type"},
				},
			},
			{
				Name:    "video",
				Table:   "videos",
				Columns: []string{"title"},
				Relations: []*entities.RelationDescriptor{
					{Name: "images", Kind: entities.PluralOwned, RelatedType: "image", ForeignKey: "imageable_id", MorphType: "imageable_type"},
					{Name: "tags", Kind: entities.PluralJoin, RelatedType: "tag", JoinTable: "taggables", JoinParentKey: "taggable_id", JoinRelatedKey: "tag_id", JoinMorphType: "taggable_type"},
				},
			},
		},
	}
}
