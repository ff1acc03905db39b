package manipulation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asakaida/datastore/internal/entities"
)

type fakeRecorder struct {
	calls []string
}

func (r *fakeRecorder) RecordManipulation(operation, kind, outcome string) {
	r.calls = append(r.calls, operation+"/"+kind+"/"+outcome)
}

func replaceComments(deleteOnDetach bool) CallOption {
	return WithOverrides(entities.ManipulationConfig{
		AllowReplace:   map[string]bool{"comments": true},
		DeleteOnDetach: map[string]bool{"comments": deleteOnDetach},
	})
}

func TestEngine_SingularOwning_ReattachIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "first"})
	comment := f.create(t, "comment", map[string]any{"body": "hi", "post_id": post.ID})

	ok, err := f.engine.Attach(ctx, comment, "post", []*entities.Record{post}, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, f.store.writes())
}

func TestEngine_SingularOwned_ReattachIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author := f.create(t, "author", map[string]any{"name": "ann"})
	profile := f.create(t, "profile", map[string]any{"bio": "b", "author_id": author.ID})

	ok, err := f.engine.Attach(ctx, author, "profile", []*entities.Record{profile}, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, f.store.writes())
}

func TestEngine_SingularOwning_AttachUnsavedRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	comment := f.create(t, "comment", map[string]any{"body": "hi"})
	post := entities.NewRecord("post", map[string]any{"title": "new"})

	ok, err := f.engine.Attach(ctx, comment, "post", []*entities.Record{post}, false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, post.Exists())
	assert.Equal(t, post.ID, f.reload(t, comment).GetString("post_id"))
	assert.Equal(t, 2, f.store.saves)
}

func TestEngine_SingularOwning_ReplaceWithDeletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	oldPost := f.create(t, "post", map[string]any{"title": "old"})
	newPost := f.create(t, "post", map[string]any{"title": "new"})
	comment := f.create(t, "comment", map[string]any{"body": "hi", "post_id": oldPost.ID})

	ok, err := f.engine.Attach(ctx, comment, "post", []*entities.Record{newPost}, false,
		WithOverrides(entities.ManipulationConfig{DeleteOnDetach: map[string]bool{"post": true}}))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Nil(t, f.reload(t, oldPost))
	assert.NotNil(t, f.reload(t, newPost))
	assert.Equal(t, ids(newPost), f.related(t, comment, "post"))
}

func TestEngine_SingularOwning_ReplaceKeepsPreviousByDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	oldPost := f.create(t, "post", map[string]any{"title": "old"})
	newPost := f.create(t, "post", map[string]any{"title": "new"})
	comment := f.create(t, "comment", map[string]any{"body": "hi", "post_id": oldPost.ID})

	ok, err := f.engine.Attach(ctx, comment, "post", []*entities.Record{newPost}, false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NotNil(t, f.reload(t, oldPost))
	assert.Equal(t, 1, f.store.saves)
	assert.Zero(t, f.store.deletes)
}

func TestEngine_SingularOwning_OnlyFirstElementIsHonored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.create(t, "post", map[string]any{"title": "first"})
	second := f.create(t, "post", map[string]any{"title": "second"})
	comment := f.create(t, "comment", map[string]any{"body": "hi"})

	ok, err := f.engine.Attach(ctx, comment, "post", []*entities.Record{first, second}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ids(first), f.related(t, comment, "post"))
}

func TestEngine_SingularOwning_AttachEmptyClearsKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	comment := f.create(t, "comment", map[string]any{"body": "hi", "post_id": post.ID})

	ok, err := f.engine.Attach(ctx, comment, "post", nil, false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Nil(t, f.reload(t, comment).Get("post_id"))
	assert.NotNil(t, f.reload(t, post))
}

func TestEngine_SingularOwning_Polymorphic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	video := f.create(t, "video", map[string]any{"title": "v"})
	image := f.create(t, "image", map[string]any{"url": "a.png"})

	ok, err := f.engine.Attach(ctx, image, "imageable", []*entities.Record{video}, false)
	require.NoError(t, err)
	require.True(t, ok)

	stored := f.reload(t, image)
	assert.Equal(t, video.ID, stored.GetString("imageable_id"))
	assert.Equal(t, "video", stored.GetString("imageable_type"))
	assert.Equal(t, ids(image), f.related(t, video, "images"))

	ok, err = f.engine.Detach(ctx, image, "imageable", []*entities.Record{video})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, f.reload(t, image).Get("imageable_type"))
}

func TestEngine_SingularOwning_DetachNonMemberReturnsFalse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	other := f.create(t, "post", map[string]any{"title": "other"})
	comment := f.create(t, "comment", map[string]any{"body": "hi", "post_id": post.ID})

	ok, err := f.engine.Detach(ctx, comment, "post", []*entities.Record{other})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, f.store.writes())
	assert.Equal(t, post.ID, f.reload(t, comment).GetString("post_id"))
}

func TestEngine_SingularOwned_ReplaceUnlinksPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author := f.create(t, "author", map[string]any{"name": "ann"})
	oldProfile := f.create(t, "profile", map[string]any{"bio": "old", "author_id": author.ID})
	newProfile := entities.NewRecord("profile", map[string]any{"bio": "new"})

	ok, err := f.engine.Attach(ctx, author, "profile", []*entities.Record{newProfile}, false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ids(newProfile), f.related(t, author, "profile"))
	stored := f.reload(t, oldProfile)
	require.NotNil(t, stored)
	assert.Nil(t, stored.Get("author_id"))
}

func TestEngine_SingularOwned_ReplaceDeletesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author := f.create(t, "author", map[string]any{"name": "ann"})
	oldProfile := f.create(t, "profile", map[string]any{"bio": "old", "author_id": author.ID})
	newProfile := f.create(t, "profile", map[string]any{"bio": "new"})

	ok, err := f.engine.Attach(ctx, author, "profile", []*entities.Record{newProfile}, false,
		WithOverrides(entities.ManipulationConfig{DeleteOnDetach: map[string]bool{"profile": true}}))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Nil(t, f.reload(t, oldProfile))
	assert.Equal(t, ids(newProfile), f.related(t, author, "profile"))
}

func TestEngine_SingularOwned_Detach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author := f.create(t, "author", map[string]any{"name": "ann"})
	profile := f.create(t, "profile", map[string]any{"bio": "b", "author_id": author.ID})

	ok, err := f.engine.Detach(ctx, author, "profile", []*entities.Record{profile})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, f.related(t, author, "profile"))
	assert.NotNil(t, f.reload(t, profile))
}

func TestEngine_PluralOwned_AdditiveAttach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	existing := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	added := entities.NewRecord("comment", map[string]any{"body": "b"})

	ok, err := f.engine.Attach(ctx, post, "comments", []*entities.Record{added}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.ElementsMatch(t, ids(existing, added), f.related(t, post, "comments"))
}

func TestEngine_PluralOwned_ReplaceGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	b := entities.NewRecord("comment", map[string]any{"body": "b"})

	ok, err := f.engine.Attach(ctx, post, "comments", []*entities.Record{b}, true)
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrReplaceNotAllowed))

	var replaceErr *ReplaceNotAllowedError
	require.ErrorAs(t, err, &replaceErr)
	assert.Equal(t, "comments", replaceErr.Relation)

	assert.Zero(t, f.store.writes())
	assert.False(t, b.Exists())
	assert.Equal(t, ids(a), f.related(t, post, "comments"))
}

func TestEngine_PluralJoin_ReplaceGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	tag := entities.NewRecord("tag", map[string]any{"name": "go"})

	_, err := f.engine.Attach(ctx, post, "tags", []*entities.Record{tag}, true)
	require.ErrorIs(t, err, ErrReplaceNotAllowed)
	assert.False(t, tag.Exists())
	assert.Zero(t, f.store.writes())
}

func TestEngine_PluralOwned_ReplaceWithDeletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	b := f.create(t, "comment", map[string]any{"body": "b", "post_id": post.ID})
	c := f.create(t, "comment", map[string]any{"body": "c", "post_id": post.ID})
	d := entities.NewRecord("comment", map[string]any{"body": "d"})

	ok, err := f.engine.Attach(ctx, post, "comments", []*entities.Record{b, d}, true, replaceComments(true))
	require.NoError(t, err)
	require.True(t, ok)

	assert.ElementsMatch(t, ids(b, d), f.related(t, post, "comments"))
	assert.Nil(t, f.reload(t, a))
	assert.Nil(t, f.reload(t, c))
	require.True(t, d.Exists())
	assert.Equal(t, post.ID, f.reload(t, d).GetString("post_id"))
	assert.Equal(t, "b", f.reload(t, b).GetString("body"))
	assert.Equal(t, 2, f.store.deletes)
}

func TestEngine_PluralOwned_ReplaceWithUnlink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	b := f.create(t, "comment", map[string]any{"body": "b", "post_id": post.ID})
	c := f.create(t, "comment", map[string]any{"body": "c", "post_id": post.ID})
	d := entities.NewRecord("comment", map[string]any{"body": "d"})

	ok, err := f.engine.Attach(ctx, post, "comments", []*entities.Record{b, d}, true, replaceComments(false))
	require.NoError(t, err)
	require.True(t, ok)

	assert.ElementsMatch(t, ids(b, d), f.related(t, post, "comments"))
	for _, r := range []*entities.Record{a, c} {
		stored := f.reload(t, r)
		require.NotNil(t, stored)
		assert.Nil(t, stored.Get("post_id"))
	}
	assert.Zero(t, f.store.deletes)
}

func TestEngine_PluralOwned_GlobalAllowReplace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.schema.AllowRelationshipReplace = true
	engine := NewEngine(f.schema, f.store)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})

	ok, err := engine.Attach(ctx, post, "comments", nil, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, f.related(t, post, "comments"))
	assert.NotNil(t, f.reload(t, a))
}

func TestEngine_PluralOwned_SaveFailureShortCircuits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	d := entities.NewRecord("comment", map[string]any{"body": "d"})
	f.store.rejectSave = func(r *entities.Record) bool { return r == d }

	ok, err := f.engine.Attach(ctx, post, "comments", []*entities.Record{d}, true, replaceComments(true))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, f.reload(t, a))
	assert.Zero(t, f.store.deletes)
}

func TestEngine_PluralOwned_DeleteFailureReportsFalse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	f.store.rejectDelete = func(r *entities.Record) bool { return r.ID == a.ID }

	ok, err := f.engine.Attach(ctx, post, "comments", nil, true, replaceComments(true))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, f.reload(t, a))
}

func TestEngine_PluralOwned_DetachNonMemberIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	other := f.create(t, "post", map[string]any{"title": "other"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	stranger := f.create(t, "comment", map[string]any{"body": "x", "post_id": other.ID})

	ok, err := f.engine.Detach(ctx, post, "comments", []*entities.Record{stranger}, replaceComments(true))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, f.store.writes())
	assert.Equal(t, other.ID, f.reload(t, stranger).GetString("post_id"))
	assert.Equal(t, ids(a), f.related(t, post, "comments"))
}

func TestEngine_PluralOwned_DetachMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	b := f.create(t, "comment", map[string]any{"body": "b", "post_id": post.ID})

	ok, err := f.engine.Detach(ctx, post, "comments", []*entities.Record{a, a})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ids(b), f.related(t, post, "comments"))
	assert.Nil(t, f.reload(t, a).Get("post_id"))
	assert.Equal(t, 1, f.store.saves)
}

func TestEngine_PluralOwned_PolymorphicIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	video := f.create(t, "video", map[string]any{"title": "v"})
	image := entities.NewRecord("image", map[string]any{"url": "a.png"})

	ok, err := f.engine.Attach(ctx, video, "images", []*entities.Record{image}, false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ids(image), f.related(t, video, "images"))
	assert.Empty(t, f.related(t, post, "images"))
	assert.Equal(t, "video", f.reload(t, image).GetString("imageable_type"))
}

func TestEngine_PluralJoin_ReplaceSetEquality(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	t1 := f.create(t, "tag", map[string]any{"name": "go"})
	t2 := f.create(t, "tag", map[string]any{"name": "sql"})

	ok, err := f.engine.Attach(ctx, post, "tags", []*entities.Record{t1, t2}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.ElementsMatch(t, ids(t1, t2), f.related(t, post, "tags"))

	t3 := entities.NewRecord("tag", map[string]any{"name": "grpc"})
	ok, err = f.engine.Attach(ctx, post, "tags", []*entities.Record{t2, t3}, true,
		WithOverrides(entities.ManipulationConfig{AllowReplace: map[string]bool{"tags": true}}))
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, t3.Exists())
	assert.ElementsMatch(t, ids(t2, t3), f.related(t, post, "tags"))
	assert.NotNil(t, f.reload(t, t1))
}

func TestEngine_PluralJoin_AdditiveAttachIsUnion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	t1 := f.create(t, "tag", map[string]any{"name": "go"})
	t2 := f.create(t, "tag", map[string]any{"name": "sql"})

	_, err := f.engine.Attach(ctx, post, "tags", []*entities.Record{t1}, false)
	require.NoError(t, err)
	ok, err := f.engine.Attach(ctx, post, "tags", []*entities.Record{t1, t2}, false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.ElementsMatch(t, ids(t1, t2), f.related(t, post, "tags"))
}

func TestEngine_PluralJoin_ReplaceWithDeletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	t1 := f.create(t, "tag", map[string]any{"name": "go"})
	t2 := f.create(t, "tag", map[string]any{"name": "sql"})

	_, err := f.engine.Attach(ctx, post, "tags", []*entities.Record{t1, t2}, false)
	require.NoError(t, err)

	ok, err := f.engine.Attach(ctx, post, "tags", []*entities.Record{t2}, true,
		WithOverrides(entities.ManipulationConfig{
			AllowReplace:   map[string]bool{"tags": true},
			DeleteOnDetach: map[string]bool{"tags": true},
		}))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, ids(t2), f.related(t, post, "tags"))
	assert.Nil(t, f.reload(t, t1))
}

func TestEngine_PluralJoin_Detach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	t1 := f.create(t, "tag", map[string]any{"name": "go"})
	t2 := f.create(t, "tag", map[string]any{"name": "sql"})
	stranger := f.create(t, "tag", map[string]any{"name": "rust"})

	_, err := f.engine.Attach(ctx, post, "tags", []*entities.Record{t1, t2}, false)
	require.NoError(t, err)
	f.store.reset()

	ok, err := f.engine.Detach(ctx, post, "tags", []*entities.Record{stranger})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, f.store.writes())

	ok, err = f.engine.Detach(ctx, post, "tags", []*entities.Record{t1, stranger})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ids(t2), f.related(t, post, "tags"))
	assert.NotNil(t, f.reload(t, t1))
	assert.NotNil(t, f.reload(t, stranger))
}

func TestEngine_PluralJoin_PolymorphicMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	video := f.create(t, "video", map[string]any{"title": "v"})
	tag := f.create(t, "tag", map[string]any{"name": "go"})

	ok, err := f.engine.Attach(ctx, video, "tags", []*entities.Record{tag}, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ids(tag), f.related(t, video, "tags"))
}

func TestEngine_DetachByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	a := f.create(t, "comment", map[string]any{"body": "a", "post_id": post.ID})
	b := f.create(t, "comment", map[string]any{"body": "b", "post_id": post.ID})

	ok, err := f.engine.DetachByID(ctx, post, "comments", []string{a.ID, "missing"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ids(b), f.related(t, post, "comments"))

	_, err = f.engine.DetachByID(ctx, post, "comments", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEngine_DetachByID_UnresolvedMorphTarget(t *testing.T) {
	f := newFixture(t)
	image := f.create(t, "image", map[string]any{"url": "a.png"})

	_, err := f.engine.DetachByID(context.Background(), image, "imageable", []string{"1"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEngine_RejectsInvalidArguments(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, "post", map[string]any{"title": "p"})

	tests := []struct {
		name     string
		parent   *entities.Record
		relation string
		records  []*entities.Record
		want     error
	}{
		{
			name:     "異常系: 親がnil",
			parent:   nil,
			relation: "comments",
			want:     ErrInvalidArgument,
		},
		{
			name:     "異常系: 親が未保存",
			parent:   entities.NewRecord("post", nil),
			relation: "comments",
			want:     ErrInvalidArgument,
		},
		{
			name:     "異常系: 親の型が空",
			parent:   entities.LoadedRecord("", "1", nil),
			relation: "comments",
			want:     ErrInvalidArgument,
		},
		{
			name:     "異常系: 未定義のリレーション",
			parent:   post,
			relation: "likes",
			want:     ErrUnknownRelation,
		},
		{
			name:     "異常系: nil要素",
			parent:   post,
			relation: "comments",
			records:  []*entities.Record{nil},
			want:     ErrInvalidArgument,
		},
		{
			name:     "異常系: 関連先の型が違う",
			parent:   post,
			relation: "comments",
			records:  []*entities.Record{entities.NewRecord("tag", nil)},
			want:     ErrInvalidArgument,
		},
		{
			name:     "異常系: 単数リレーションの型が違う",
			parent:   post,
			relation: "author",
			records:  []*entities.Record{entities.NewRecord("comment", nil)},
			want:     ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.engine.Attach(context.Background(), tt.parent, tt.relation, tt.records, false)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.want)

			ok, err = f.engine.Detach(context.Background(), tt.parent, tt.relation, tt.records)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.store.writes())
}

func TestEngine_RecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recorder := &fakeRecorder{}
	engine := NewEngine(f.schema, f.store, WithRecorder(recorder))

	post := f.create(t, "post", map[string]any{"title": "p"})
	other := f.create(t, "post", map[string]any{"title": "o"})
	comment := f.create(t, "comment", map[string]any{"body": "c", "post_id": post.ID})

	_, _ = engine.Attach(ctx, comment, "post", []*entities.Record{post}, false)
	_, _ = engine.Detach(ctx, comment, "post", []*entities.Record{other})
	_, _ = engine.Attach(ctx, post, "likes", nil, false)

	assert.Equal(t, []string{
		"attach/singular_owning/success",
		"detach/singular_owning/failed",
		"attach/unknown/error",
	}, recorder.calls)
}

func TestEngine_PluralJoin_StaleRecordIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post := f.create(t, "post", map[string]any{"title": "p"})
	tag := f.create(t, "tag", map[string]any{"name": "go"})
	stale := entities.LoadedRecord("tag", tag.ID, nil)
	ok, err := f.mem.Delete(ctx, tag)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.engine.Attach(ctx, post, "tags", []*entities.Record{stale}, false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.related(t, post, "tags"))
}
