package service

import (
	"context"

	"inkpost/internal/cache"
	"inkpost/internal/featureflags"
	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
	"inkpost/internal/resolver"
	"inkpost/internal/thread"
	"inkpost/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	resolver    *resolver.Resolver
	flags       *featureflags.Manager
	log         *observability.ServiceLogger
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	res *resolver.Resolver,
	flags *featureflags.Manager,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		resolver:    res,
		flags:       flags,
		log:         observability.NewServiceLogger("comment"),
	}
}

// Submit decodes raw as a comment and posts it.
func (s *CommentService) Submit(ctx context.Context, raw []byte) (*models.CommentView, error) {
	in, err := validation.DecodeComment(raw)
	if err != nil {
		return nil, rejected(ctx, s.log, validation.SchemaComment, err)
	}
	return s.Post(ctx, in)
}

// Post inserts a comment. The store assigns the id, so a supplied id is ignored.
// The parent is only checked against the post when strict_threads is on for the author.
func (s *CommentService) Post(ctx context.Context, in validation.CommentInput) (view *models.CommentView, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "CommentService.Post",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { finish(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, rejected(ctx, s.log, validation.SchemaComment, err)
	}
	if !in.IsRoot() && s.flags.Enabled(featureflags.StrictThreads, in.UserID) {
		if err := s.checkParent(ctx, in); err != nil {
			return nil, rejected(ctx, s.log, validation.SchemaComment, err)
		}
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		ParentID: in.ParentID,
		UserID:   in.UserID,
		Content:  in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	views, err := s.resolver.ResolveComments(ctx, []*models.Comment{comment})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *CommentService) checkParent(ctx context.Context, in validation.CommentInput) error {
	parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
	if models.IsNotFound(err) {
		return models.NewFieldValidationError(validation.SchemaComment, "", []models.FieldError{
			{Path: "parentId", Message: "must reference an existing comment"},
		})
	}
	if err != nil {
		return err
	}
	if parent.PostID != in.PostID {
		return models.NewFieldValidationError(validation.SchemaComment, "", []models.FieldError{
			{Path: "parentId", Message: "must belong to the same post"},
		})
	}
	return nil
}

// Thread returns the post's comments in depth-first pre-order with depth and
// author names. Comments whose parent chain never reaches a root are left out.
// With thread_cache on, only the walk is cached; author names are looked up on
// every call.
func (s *CommentService) Thread(ctx context.Context, postID uint) (entries []models.ThreadEntry, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "CommentService.Thread",
		attribute.Int64("post.id", int64(postID)))
	defer func() { finish(span, err) }()

	if s.flags.Enabled(featureflags.ThreadCache, 0) {
		err = cache.Aside(ctx, cache.ThreadKey(postID), &entries, cache.ThreadTTL, func() error {
			var fetchErr error
			entries, fetchErr = s.walk(ctx, postID)
			return fetchErr
		})
	} else {
		entries, err = s.walk(ctx, postID)
	}
	if err != nil {
		return nil, err
	}
	if err = s.resolver.ResolveAuthors(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// walk lists the post's comments in thread order without author names.
func (s *CommentService) walk(ctx context.Context, postID uint) ([]models.ThreadEntry, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	tree := thread.Build(comments)
	if detached := tree.Detached(); len(detached) > 0 {
		ids := make([]uint, len(detached))
		for i, c := range detached {
			ids[i] = c.ID
		}
		observability.RecordDangling("comment_parent", len(detached))
		s.log.Warn(ctx, "thread has detached comments", map[string]interface{}{
			"post_id":     postID,
			"comment_ids": ids,
		})
	}
	return tree.Entries(), nil
}

// Delete removes a leaf comment. A comment with replies is a Conflict.
func (s *CommentService) Delete(ctx context.Context, id uint) error {
	hasReplies, err := s.commentRepo.HasReplies(ctx, id)
	if err != nil {
		return err
	}
	if hasReplies {
		return models.NewConflictError("comment has replies and cannot be deleted")
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "comment deleted", map[string]interface{}{"comment_id": id})
	return nil
}
