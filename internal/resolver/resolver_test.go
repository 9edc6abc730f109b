package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/thread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookupStub serves rows from in-memory maps.
type lookupStub struct {
	categories map[uint]*models.Category
	tags       map[uint]*models.Tag
	users      map[uint]*models.User
	postTags   map[uint][]uint
	err        error
	tagCalls   int
}

func pick[T any](src map[uint]*T, ids []uint) map[uint]*T {
	out := make(map[uint]*T)
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out
}

func (s *lookupStub) CategoriesByID(_ context.Context, ids []uint) (map[uint]*models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return pick(s.categories, ids), nil
}

func (s *lookupStub) TagsByID(_ context.Context, ids []uint) (map[uint]*models.Tag, error) {
	s.tagCalls++
	return pick(s.tags, ids), nil
}

func (s *lookupStub) UsersByID(_ context.Context, ids []uint) (map[uint]*models.User, error) {
	return pick(s.users, ids), nil
}

func (s *lookupStub) TagIDsByPost(_ context.Context, postIDs []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint)
	for _, id := range postIDs {
		if ids, ok := s.postTags[id]; ok {
			out[id] = ids
		}
	}
	return out, nil
}

func newStub() *lookupStub {
	return &lookupStub{
		categories: map[uint]*models.Category{2: {ID: 2, Name: "News"}},
		tags:       map[uint]*models.Tag{5: {ID: 5, Name: "go"}, 6: {ID: 6, Name: "sql"}},
		users:      map[uint]*models.User{1: {ID: 1, FullName: "Ada Lovelace"}},
		postTags:   map[uint][]uint{10: {5, 6}},
	}
}

func TestResolvePost_Scenario(t *testing.T) {
	t.Parallel()

	r := New(newStub())
	view, err := r.ResolvePost(context.Background(), &models.Post{ID: 10, UserID: 1, CategoryID: 2, Title: "Hello"})
	require.NoError(t, err)

	require.NotNil(t, view.CategoryName)
	assert.Equal(t, "News", *view.CategoryName)
	require.NotNil(t, view.AuthorName)
	assert.Equal(t, "Ada Lovelace", *view.AuthorName)
	assert.Equal(t, []uint{5, 6}, view.TagIDs())
	assert.Equal(t, "go", *view.Tags[0].Name)
	assert.Equal(t, "Hello", view.Title)
}

func TestResolvePost_TagOrderFollowsAssociation(t *testing.T) {
	t.Parallel()

	stub := newStub()
	stub.postTags[10] = []uint{6, 5}
	view, err := New(stub).ResolvePost(context.Background(), &models.Post{ID: 10, UserID: 1, CategoryID: 2})
	require.NoError(t, err)
	assert.Equal(t, []uint{6, 5}, view.TagIDs())
}

func TestResolvePost_DanglingReferences(t *testing.T) {
	t.Parallel()

	stub := newStub()
	delete(stub.categories, 2)
	delete(stub.tags, 6)
	delete(stub.users, 1)

	view, err := New(stub).ResolvePost(context.Background(), &models.Post{ID: 10, UserID: 1, CategoryID: 2})
	require.NoError(t, err)
	assert.Nil(t, view.CategoryName)
	assert.Nil(t, view.AuthorName)
	require.Len(t, view.Tags, 2)
	assert.Equal(t, uint(6), view.Tags[1].ID)
	assert.Nil(t, view.Tags[1].Name)
	assert.NotNil(t, view.Tags[0].Name)
}

func TestResolvePosts_Batches(t *testing.T) {
	t.Parallel()

	stub := newStub()
	posts := []*models.Post{
		{ID: 10, UserID: 1, CategoryID: 2},
		{ID: 11, UserID: 1, CategoryID: 2},
		{ID: 12, UserID: 9, CategoryID: 3},
	}
	views, err := New(stub).ResolvePosts(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, 1, stub.tagCalls)
	assert.Equal(t, []uint{5, 6}, views[0].TagIDs())
	assert.Empty(t, views[1].Tags)
	assert.NotNil(t, views[1].Tags)
	assert.Nil(t, views[2].AuthorName)
	assert.Nil(t, views[2].CategoryName)
}

func TestResolvePosts_Empty(t *testing.T) {
	t.Parallel()

	views, err := New(newStub()).ResolvePosts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestResolvePosts_LookupErrorPropagates(t *testing.T) {
	t.Parallel()

	stub := newStub()
	stub.err = errors.New("db down")
	_, err := New(stub).ResolvePosts(context.Background(), []*models.Post{{ID: 10, CategoryID: 2}})
	assert.ErrorIs(t, err, stub.err)
}

func TestResolveComments(t *testing.T) {
	t.Parallel()

	views, err := New(newStub()).ResolveComments(context.Background(), []*models.Comment{
		{ID: 1, UserID: 1, Content: "a"},
		{ID: 2, UserID: 42, Content: "b"},
	})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Ada Lovelace", *views[0].AuthorName)
	assert.Nil(t, views[1].AuthorName)
}

func TestResolveThread(t *testing.T) {
	t.Parallel()

	now := time.Now()
	parent := uint(1)
	tree := thread.Build([]*models.Comment{
		{ID: 2, ParentID: &parent, UserID: 7, CreatedAt: now.Add(time.Second)},
		{ID: 1, UserID: 1, CreatedAt: now},
	})

	entries, err := New(newStub()).ResolveThread(context.Background(), tree)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(1), entries[0].ID)
	assert.Equal(t, 0, entries[0].Depth)
	assert.Equal(t, "Ada Lovelace", *entries[0].AuthorName)
	assert.Equal(t, uint(2), entries[1].ID)
	assert.Equal(t, 1, entries[1].Depth)
	assert.Nil(t, entries[1].AuthorName)
}

func TestResolveAuthors_ReplacesStaleNames(t *testing.T) {
	t.Parallel()

	stale := "Augusta Byron"
	entries := []models.ThreadEntry{
		{CommentView: models.CommentView{Comment: models.Comment{ID: 1, UserID: 1}, AuthorName: &stale}},
		{CommentView: models.CommentView{Comment: models.Comment{ID: 2, UserID: 7}, AuthorName: &stale}, Depth: 1},
	}

	require.NoError(t, New(newStub()).ResolveAuthors(context.Background(), entries))
	require.NotNil(t, entries[0].AuthorName)
	assert.Equal(t, "Ada Lovelace", *entries[0].AuthorName)
	assert.Nil(t, entries[1].AuthorName)
	assert.Equal(t, "Augusta Byron", stale)
	assert.NoError(t, New(newStub()).ResolveAuthors(context.Background(), nil))
}
