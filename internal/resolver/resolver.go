// Package resolver assembles read views by following foreign keys.
// A reference whose target row is gone resolves to a nil name; only lookup
// failures are returned as errors.
package resolver

import (
	"context"
	"slices"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/thread"
)

// Lookup is the batch read surface the resolver needs. Missing ids are simply
// absent from the returned maps.
type Lookup interface {
	CategoriesByID(ctx context.Context, ids []uint) (map[uint]*models.Category, error)
	TagsByID(ctx context.Context, ids []uint) (map[uint]*models.Tag, error)
	UsersByID(ctx context.Context, ids []uint) (map[uint]*models.User, error)
	// TagIDsByPost returns each post's tag ids in association insertion order.
	TagIDsByPost(ctx context.Context, postIDs []uint) (map[uint][]uint, error)
}

// Resolver builds PostView, CommentView and ThreadEntry values.
type Resolver struct {
	lookup Lookup
}

// New returns a Resolver backed by lookup.
func New(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// ResolvePost resolves a single post.
func (r *Resolver) ResolvePost(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := r.ResolvePosts(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ResolvePosts resolves category names, author names and tag lists for posts
// with one batch lookup per kind. Output order matches input order.
func (r *Resolver) ResolvePosts(ctx context.Context, posts []*models.Post) ([]*models.PostView, error) {
	if len(posts) == 0 {
		return []*models.PostView{}, nil
	}

	postIDs := make([]uint, 0, len(posts))
	categoryIDs := make([]uint, 0, len(posts))
	userIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		categoryIDs = append(categoryIDs, p.CategoryID)
		userIDs = append(userIDs, p.UserID)
	}

	tagIDsByPost, err := r.lookup.TagIDsByPost(ctx, unique(postIDs))
	if err != nil {
		return nil, err
	}
	var tagIDs []uint
	for _, ids := range tagIDsByPost {
		tagIDs = append(tagIDs, ids...)
	}

	categories, err := r.lookup.CategoriesByID(ctx, unique(categoryIDs))
	if err != nil {
		return nil, err
	}
	users, err := r.lookup.UsersByID(ctx, unique(userIDs))
	if err != nil {
		return nil, err
	}
	tags := map[uint]*models.Tag{}
	if len(tagIDs) > 0 {
		if tags, err = r.lookup.TagsByID(ctx, unique(tagIDs)); err != nil {
			return nil, err
		}
	}

	var missingCategories, missingUsers, missingTags int
	views := make([]*models.PostView, len(posts))
	for i, p := range posts {
		v := &models.PostView{Post: *p, Tags: []models.TagRef{}}
		if c, ok := categories[p.CategoryID]; ok {
			v.CategoryName = &c.Name
		} else {
			missingCategories++
		}
		if u, ok := users[p.UserID]; ok {
			v.AuthorName = &u.FullName
		} else {
			missingUsers++
		}
		for _, id := range tagIDsByPost[p.ID] {
			ref := models.TagRef{ID: id}
			if t, ok := tags[id]; ok {
				ref.Name = &t.Name
			} else {
				missingTags++
			}
			v.Tags = append(v.Tags, ref)
		}
		views[i] = v
	}

	observability.RecordDangling(models.EntityCategory, missingCategories)
	observability.RecordDangling(models.EntityUser, missingUsers)
	observability.RecordDangling(models.EntityTag, missingTags)
	return views, nil
}

// ResolveComments attaches author names to comments, preserving order.
func (r *Resolver) ResolveComments(ctx context.Context, comments []*models.Comment) ([]*models.CommentView, error) {
	users, err := r.authors(ctx, comments)
	if err != nil {
		return nil, err
	}
	views := make([]*models.CommentView, len(comments))
	missing := 0
	for i, c := range comments {
		views[i] = commentView(c, users, &missing)
	}
	observability.RecordDangling(models.EntityUser, missing)
	return views, nil
}

// ResolveThread walks tree and returns the rendered discussion with authors resolved.
func (r *Resolver) ResolveThread(ctx context.Context, tree *thread.Tree) ([]models.ThreadEntry, error) {
	entries := tree.Entries()
	if err := r.ResolveAuthors(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ResolveAuthors sets every entry's AuthorName from the current user rows,
// replacing whatever name the entry carried.
func (r *Resolver) ResolveAuthors(ctx context.Context, entries []models.ThreadEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]uint, len(entries))
	for i := range entries {
		ids[i] = entries[i].UserID
	}
	users, err := r.lookup.UsersByID(ctx, unique(ids))
	if err != nil {
		return err
	}
	missing := 0
	for i := range entries {
		entries[i].AuthorName = nil
		if u, ok := users[entries[i].UserID]; ok {
			name := u.FullName
			entries[i].AuthorName = &name
		} else {
			missing++
		}
	}
	observability.RecordDangling(models.EntityUser, missing)
	return nil
}

func (r *Resolver) authors(ctx context.Context, comments []*models.Comment) (map[uint]*models.User, error) {
	if len(comments) == 0 {
		return map[uint]*models.User{}, nil
	}
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.UserID
	}
	return r.lookup.UsersByID(ctx, unique(ids))
}

func commentView(c *models.Comment, users map[uint]*models.User, missing *int) *models.CommentView {
	v := &models.CommentView{Comment: *c}
	if u, ok := users[c.UserID]; ok {
		v.AuthorName = &u.FullName
	} else {
		*missing++
	}
	return v
}

func unique(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
