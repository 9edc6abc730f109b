package service

import (
	"context"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
	"inkpost/internal/resolver"
	"inkpost/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo repository.PostRepository
	resolver *resolver.Resolver
	log      *observability.ServiceLogger
}

// ListPostsInput bounds a post listing.
type ListPostsInput struct {
	Limit  int
	Offset int
}

func NewPostService(postRepo repository.PostRepository, res *resolver.Resolver) *PostService {
	return &PostService{
		postRepo: postRepo,
		resolver: res,
		log:      observability.NewServiceLogger("post"),
	}
}

// Submit decodes raw as a create or edit intent and applies it. The returned
// mode names the branch that ran.
func (s *PostService) Submit(ctx context.Context, raw []byte) (*models.PostView, string, error) {
	in, err := validation.DecodePost(raw)
	if err != nil {
		return nil, "", rejected(ctx, s.log, validation.SchemaPost, err)
	}
	var view *models.PostView
	switch p := in.(type) {
	case validation.EditPost:
		view, err = s.Edit(ctx, p)
	case validation.CreatePost:
		view, err = s.Create(ctx, p)
	default:
		err = models.NewValidationError("unsupported post mode")
	}
	if err != nil {
		return nil, in.Mode(), err
	}
	return view, in.Mode(), nil
}

func (s *PostService) Create(ctx context.Context, in validation.CreatePost) (view *models.PostView, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "PostService.Create")
	defer func() { finish(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, rejected(ctx, s.log, validation.SchemaPost, err)
	}

	post := toPost(in.PostFields)
	if err := s.postRepo.Create(ctx, post, in.TagIDs); err != nil {
		return nil, err
	}
	span.AddAttributes(attribute.Int64("post.id", int64(post.ID)))
	s.log.Info(ctx, "post created", map[string]interface{}{"post_id": post.ID, "tags": len(in.TagIDs)})
	return s.resolver.ResolvePost(ctx, post)
}

// Edit replaces every field of an existing post, including its tag set.
func (s *PostService) Edit(ctx context.Context, in validation.EditPost) (view *models.PostView, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "PostService.Edit",
		attribute.Int64("post.id", int64(in.ID)))
	defer func() { finish(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, rejected(ctx, s.log, validation.SchemaPost, err)
	}

	post := toPost(in.PostFields)
	post.ID = in.ID
	if err := s.postRepo.Update(ctx, post, in.TagIDs); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "post edited", map[string]interface{}{"post_id": post.ID})
	return s.resolver.ResolvePost(ctx, post)
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolvePost(ctx, post)
}

func (s *PostService) List(ctx context.Context, in ListPostsInput) ([]*models.PostView, error) {
	posts, err := s.postRepo.List(ctx, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolvePosts(ctx, posts)
}

func (s *PostService) ListByCategory(ctx context.Context, categoryID uint, in ListPostsInput) ([]*models.PostView, error) {
	posts, err := s.postRepo.ListByCategory(ctx, categoryID, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolvePosts(ctx, posts)
}

func (s *PostService) ListByUser(ctx context.Context, userID uint, in ListPostsInput) ([]*models.PostView, error) {
	posts, err := s.postRepo.ListByUser(ctx, userID, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolvePosts(ctx, posts)
}

// Delete soft-deletes a post.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "post deleted", map[string]interface{}{"post_id": id})
	return nil
}

func toPost(f validation.PostFields) *models.Post {
	short := f.ShortDescription
	return &models.Post{
		Title:            f.Title,
		ShortDescription: &short,
		Content:          f.Content,
		UserID:           f.UserID,
		CategoryID:       f.CategoryID,
	}
}
