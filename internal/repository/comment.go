package repository

import (
	"context"

	"inkpost/internal/cache"
	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	HasReplies(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

// Create inserts comment. post_id is not checked; a missing parent or user is
// a ConstraintViolation.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, end := begin(ctx, "Create", "comments")
	defer end()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return writeError("Comment", "comments", err)
	}
	cache.InvalidateThread(ctx, comment.PostID)
	r.log.LogCreate(ctx, map[string]interface{}{"id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	ctx, end := begin(ctx, "GetByID", "comments")
	defer end()

	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, readError("Comment", id, err)
	}
	return &comment, nil
}

// ListByPost returns every comment of postID as flat rows, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	ctx, end := begin(ctx, "ListByPost", "comments")
	defer end()

	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) HasReplies(ctx context.Context, id uint) (bool, error) {
	ctx, end := begin(ctx, "HasReplies", "comments")
	defer end()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Delete removes a comment row. A comment that still has replies is rejected
// by the parent_id constraint and reported as a Conflict.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	ctx, end := begin(ctx, "Delete", "comments")
	defer end()

	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return readError("Comment", id, err)
	}

	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		if isForeignKeyViolation(result.Error) {
			conflict := models.NewConflictError("comment has replies and cannot be deleted")
			conflict.Err = result.Error
			return conflict
		}
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	cache.InvalidateThread(ctx, comment.PostID)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id, "post_id": comment.PostID})
	return nil
}
