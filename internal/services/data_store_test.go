package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
	"github.com/asakaida/datastore/internal/repositories/relational"
	"github.com/asakaida/datastore/internal/services/manipulation"
	"github.com/asakaida/datastore/internal/testutil"
	"github.com/asakaida/datastore/pkg/cache/memorycache"
)

func newTestDataStore(t *testing.T, opts ...DataStoreOption) (*DataStore, *relational.Client) {
	t.Helper()
	schema := testutil.BlogSchema()
	client := relational.SetupTestClient(t, schema)
	engine := manipulation.NewEngine(schema, client)
	opts = append([]DataStoreOption{WithEngine(engine), WithCache(memorycache.New(nil))}, opts...)
	return NewDataStore(schema, client, opts...), client
}

func mustCreate(t *testing.T, d *DataStore, recordType string, attrs map[string]any) *entities.Record {
	t.Helper()
	r, err := d.Create(context.Background(), recordType, attrs)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func titles(records []*entities.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.GetString("title"))
	}
	return out
}

func TestDataStore_CRUD(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDataStore(t)

	t.Run("正常系: 作成から削除まで", func(t *testing.T) {
		post := mustCreate(t, d, "post", map[string]any{"title": "hello", "body": "world"})
		assert.True(t, post.Exists())
		assert.Equal(t, "hello", post.GetString("title"))

		updated, err := d.UpdateByID(ctx, "post", post.ID, map[string]any{"title": "bye"})
		require.NoError(t, err)
		assert.Equal(t, "bye", updated.GetString("title"))
		assert.Equal(t, "world", updated.GetString("body"))

		found, err := d.GetByID(ctx, "post", post.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, "bye", found.GetString("title"))

		require.NoError(t, d.DeleteByID(ctx, "post", post.ID))
		_, err = d.GetByID(ctx, "post", post.ID, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("異常系: 未知の属性", func(t *testing.T) {
		_, err := d.Create(ctx, "post", map[string]any{"rating": 5})
		assert.ErrorIs(t, err, manipulation.ErrInvalidArgument)

		_, err = d.Create(ctx, "post", map[string]any{"id": "fixed"})
		assert.ErrorIs(t, err, manipulation.ErrInvalidArgument)
	})

	t.Run("異常系: 存在しないレコード", func(t *testing.T) {
		_, err := d.UpdateByID(ctx, "post", "missing", map[string]any{"title": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, d.DeleteByID(ctx, "post", "missing"), ErrNotFound)
	})

	t.Run("異常系: 未知の型", func(t *testing.T) {
		_, err := d.GetByID(ctx, "unknown", "1", nil)
		assert.ErrorIs(t, err, repositories.ErrUnknownType)
		_, err = d.GetByContext(ctx, "unknown", nil, nil)
		assert.ErrorIs(t, err, repositories.ErrUnknownType)
	})

	t.Run("異常系: IDなし", func(t *testing.T) {
		_, err := d.GetByID(ctx, "post", "", nil)
		assert.ErrorIs(t, err, manipulation.ErrInvalidArgument)
	})
}

func TestDataStore_GetManyByID(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDataStore(t)

	a := mustCreate(t, d, "post", map[string]any{"title": "a"})
	b := mustCreate(t, d, "post", map[string]any{"title": "b"})

	records, err := d.GetManyByID(ctx, "post", []string{b.ID, "missing", a.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, titles(records))
}

func TestDataStore_GetByContext(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDataStore(t, WithPageSizes(2, 3))

	for i := 1; i <= 5; i++ {
		mustCreate(t, d, "post", map[string]any{"title": fmt.Sprintf("post %d", i), "position": i})
	}
	mustCreate(t, d, "post", map[string]any{"title": "other", "position": 6})

	tests := []struct {
		name      string
		rc        *entities.RequestContext
		want      []string
		wantTotal int
	}{
		{
			name:      "正常系: ページネーションなし",
			rc: &entities.RequestContext{
				Filters: map[string]any{"title": "post"},
				Sorting: entities.ParseSortKeys([]string{"position"}),
			},
			want:      []string{"post 1", "post 2", "post 3", "post 4", "post 5"},
			wantTotal: 5,
		},
		{
			name: "正常系: ページ番号",
			rc: &entities.RequestContext{
				Filters:    map[string]any{"title": "post"},
				Sorting:    entities.ParseSortKeys([]string{"-position"}),
				PageNumber: 2,
				PageSize:   2,
			},
			want:      []string{"post 3", "post 2"},
			wantTotal: 5,
		},
		{
			name: "正常系: デフォルトのページサイズ",
			rc: &entities.RequestContext{
				Filters:            map[string]any{"title": "post"},
				Sorting:            entities.ParseSortKeys([]string{"position"}),
				StandardPagination: true,
			},
			want:      []string{"post 1", "post 2"},
			wantTotal: 5,
		},
		{
			name: "正常系: 最大ページサイズ",
			rc: &entities.RequestContext{
				Sorting:    entities.ParseSortKeys([]string{"position"}),
				PageNumber: 1,
				PageSize:   50,
			},
			want:      []string{"post 1", "post 2", "post 3"},
			wantTotal: 6,
		},
		{
			name: "正常系: オフセットとリミット",
			rc: &entities.RequestContext{
				Sorting:    entities.ParseSortKeys([]string{"position"}),
				PageOffset: 4,
				PageLimit:  3,
			},
			want:      []string{"post 5", "other"},
			wantTotal: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := d.GetByContext(ctx, "post", tt.rc, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(page.Records))
			assert.Equal(t, tt.wantTotal, page.Total)
		})
	}

	t.Run("異常系: カーソルページネーション", func(t *testing.T) {
		_, err := d.GetByContext(ctx, "post", &entities.RequestContext{PageCursor: "abc"}, nil)
		assert.ErrorIs(t, err, ErrUnsupportedPagination)
	})
}

func TestDataStore_Includes(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDataStore(t)

	author := mustCreate(t, d, "author", map[string]any{"name": "ann"})
	post := mustCreate(t, d, "post", map[string]any{"title": "p", "author_id": author.ID})
	mustCreate(t, d, "comment", map[string]any{"body": "c1", "post_id": post.ID})
	mustCreate(t, d, "comment", map[string]any{"body": "c2", "post_id": post.ID})

	found, err := d.GetByID(ctx, "post", post.ID, []string{"author", "comments.post", "likes"})
	require.NoError(t, err)

	require.Len(t, found.Relations["author"], 1)
	assert.Equal(t, "ann", found.Relations["author"][0].GetString("name"))

	comments := found.Relations["comments"]
	require.Len(t, comments, 2)
	for _, c := range comments {
		require.Len(t, c.Relations["post"], 1)
		assert.Equal(t, post.ID, c.Relations["post"][0].ID)
	}
	assert.NotContains(t, found.Relations, "likes")

	page, err := d.GetByContext(ctx, "author", nil, []string{"posts"})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Len(t, page.Records[0].Relations["posts"], 1)
}

func TestDataStore_RelatedRecords(t *testing.T) {
	ctx := context.Background()
	d, client := newTestDataStore(t)

	post := mustCreate(t, d, "post", map[string]any{"title": "p"})
	tagA := mustCreate(t, d, "tag", map[string]any{"name": "a"})
	tagB := mustCreate(t, d, "tag", map[string]any{"name": "b"})
	tags := d.Schema().GetRelation("post", "tags")

	related := func() []string {
		records, err := client.Related(ctx, post, tags)
		require.NoError(t, err)
		ids := make([]string, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.GetString("name"))
		}
		return ids
	}

	t.Run("正常系: 追加", func(t *testing.T) {
		ok, err := d.AttachRelatedRecords(ctx, post, "tags", []*entities.Record{tagA, tagB}, false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.ElementsMatch(t, []string{"a", "b"}, related())
	})

	t.Run("異常系: 置換は許可されていない", func(t *testing.T) {
		_, err := d.AttachRelatedRecords(ctx, post, "tags", []*entities.Record{tagA}, true)
		assert.ErrorIs(t, err, manipulation.ErrReplaceNotAllowed)
		assert.ElementsMatch(t, []string{"a", "b"}, related())
	})

	t.Run("正常系: 呼び出し単位の置換許可", func(t *testing.T) {
		ok, err := d.AttachRelatedRecords(ctx, post, "tags", []*entities.Record{tagA}, true,
			manipulation.WithOverrides(entities.ManipulationConfig{AllowReplace: map[string]bool{"tags": true}}))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"a"}, related())
	})

	t.Run("正常系: IDで解除", func(t *testing.T) {
		ok, err := d.DetachRelatedRecordsByID(ctx, post, "tags", []string{tagA.ID})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, related())
	})

	t.Run("正常系: レコードで解除", func(t *testing.T) {
		_, err := d.AttachRelatedRecords(ctx, post, "tags", []*entities.Record{tagB}, false)
		require.NoError(t, err)
		ok, err := d.DetachRelatedRecords(ctx, post, "tags", []*entities.Record{tagB})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, related())
	})

	t.Run("異常系: 未知のinclude", func(t *testing.T) {
		_, err := d.AttachRelatedRecords(ctx, post, "likes", nil, false)
		assert.ErrorIs(t, err, manipulation.ErrUnknownRelation)
	})

	t.Run("異常系: 親なし", func(t *testing.T) {
		_, err := d.DetachRelatedRecords(ctx, nil, "tags", nil)
		assert.ErrorIs(t, err, manipulation.ErrInvalidArgument)
	})
}

func TestDataStore_WithoutEngine(t *testing.T) {
	schema := testutil.BlogSchema()
	d := NewDataStore(schema, relational.SetupTestClient(t, schema))
	post := entities.LoadedRecord("post", "1", nil)

	_, err := d.AttachRelatedRecords(context.Background(), post, "tags", nil, false)
	assert.ErrorIs(t, err, ErrManipulationUnsupported)
	_, err = d.DetachRelatedRecordsByID(context.Background(), post, "tags", []string{"1"})
	assert.ErrorIs(t, err, ErrManipulationUnsupported)
}
