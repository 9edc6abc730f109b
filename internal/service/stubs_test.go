package service

import (
	"context"
	"errors"
	"testing"

	"inkpost/internal/models"
	"inkpost/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post, []uint) error
	updateFn         func(context.Context, *models.Post, []uint) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	listFn           func(context.Context, int, int) ([]*models.Post, error)
	listByCategoryFn func(context.Context, uint, int, int) ([]*models.Post, error)
	listByUserFn     func(context.Context, uint, int, int) ([]*models.Post, error)
	deleteFn         func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, tagIDs []uint) error {
	return s.createFn(ctx, post, tagIDs)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post, tagIDs []uint) error {
	return s.updateFn(ctx, post, tagIDs)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByCategoryFn(ctx, categoryID, limit, offset)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post, _ []uint) error {
			p.ID = 1
			return nil
		},
		updateFn:  func(_ context.Context, _ *models.Post, _ []uint) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:    func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByCategoryFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		listByUserFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	updateFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UsersByID(_ context.Context, _ []uint) (map[uint]*models.User, error) {
	return map[uint]*models.User{}, nil
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", email)
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	hasRepliesFn func(context.Context, uint) (bool, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) HasReplies(ctx context.Context, id uint) (bool, error) {
	return s.hasRepliesFn(ctx, id)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		hasRepliesFn: func(_ context.Context, _ uint) (bool, error) { return false, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// lookupStub serves fixed rows to the resolver.
type lookupStub struct {
	users      map[uint]*models.User
	categories map[uint]*models.Category
	tags       map[uint]*models.Tag
	postTags   map[uint][]uint
}

func (l *lookupStub) CategoriesByID(_ context.Context, ids []uint) (map[uint]*models.Category, error) {
	out := map[uint]*models.Category{}
	for _, id := range ids {
		if c, ok := l.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}
func (l *lookupStub) TagsByID(_ context.Context, ids []uint) (map[uint]*models.Tag, error) {
	out := map[uint]*models.Tag{}
	for _, id := range ids {
		if t, ok := l.tags[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}
func (l *lookupStub) UsersByID(_ context.Context, ids []uint) (map[uint]*models.User, error) {
	out := map[uint]*models.User{}
	for _, id := range ids {
		if u, ok := l.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
func (l *lookupStub) TagIDsByPost(_ context.Context, postIDs []uint) (map[uint][]uint, error) {
	out := map[uint][]uint{}
	for _, id := range postIDs {
		if ids, ok := l.postTags[id]; ok {
			out[id] = ids
		}
	}
	return out, nil
}

func emptyResolver() *resolver.Resolver {
	return resolver.New(&lookupStub{})
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	return appErr
}
