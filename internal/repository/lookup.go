package repository

import (
	"context"

	"inkpost/internal/models"
)

// Lookup adapts the repositories to the resolver's batch read surface.
type Lookup struct {
	Users      UserRepository
	Categories CategoryRepository
	Tags       TagRepository
	PostTags   PostTagRepository
}

// NewLookup builds a Lookup over db-backed repositories.
func NewLookup(users UserRepository, categories CategoryRepository, tags TagRepository, postTags PostTagRepository) *Lookup {
	return &Lookup{Users: users, Categories: categories, Tags: tags, PostTags: postTags}
}

func (l *Lookup) CategoriesByID(ctx context.Context, ids []uint) (map[uint]*models.Category, error) {
	return l.Categories.CategoriesByID(ctx, ids)
}

func (l *Lookup) TagsByID(ctx context.Context, ids []uint) (map[uint]*models.Tag, error) {
	return l.Tags.TagsByID(ctx, ids)
}

func (l *Lookup) UsersByID(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	return l.Users.UsersByID(ctx, ids)
}

func (l *Lookup) TagIDsByPost(ctx context.Context, postIDs []uint) (map[uint][]uint, error) {
	return l.PostTags.TagIDsByPost(ctx, postIDs)
}
