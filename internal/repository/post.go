package repository

import (
	"context"

	"inkpost/internal/cache"
	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagIDs []uint) error
	Update(ctx context.Context, post *models.Post, tagIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// Create inserts post and attaches tagIDs in order, all in one transaction.
// A missing or soft-deleted category or tag is a ConstraintViolation.
func (r *postRepository) Create(ctx context.Context, post *models.Post, tagIDs []uint) error {
	ctx, end := begin(ctx, "Create", "posts")
	defer end()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireLive(tx, "Post", "categories", &models.Category{}, post.CategoryID); err != nil {
			return writeError("Post", "posts", err)
		}
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return writeError("Post", "posts", err)
		}
		for _, tagID := range tagIDs {
			if err := joinInsert(tx, post.ID, tagID); err != nil {
				return writeError("Post tag", "post_tags", err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		post.ID = 0
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": post.ID, "tags": len(tagIDs)})
	return nil
}

// Update overwrites the editable fields of an existing post and replaces its
// tag set. A missing or soft-deleted id is NotFound; a soft-deleted category
// or tag is a ConstraintViolation.
func (r *postRepository) Update(ctx context.Context, post *models.Post, tagIDs []uint) error {
	ctx, end := begin(ctx, "Update", "posts")
	defer end()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"title":             post.Title,
				"short_description": post.ShortDescription,
				"content":           post.Content,
				"user_id":           post.UserID,
				"category_id":       post.CategoryID,
			})
		if result.Error != nil {
			return writeError("Post", "posts", result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Post", post.ID)
		}
		if err := requireLive(tx, "Post", "categories", &models.Category{}, post.CategoryID); err != nil {
			return writeError("Post", "posts", err)
		}
		if err := replaceTags(tx, post.ID, tagIDs); err != nil {
			return writeError("Post tag", "post_tags", err)
		}
		return readError("Post", post.ID, tx.First(post, post.ID).Error)
	})
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": post.ID, "tags": len(tagIDs)})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	ctx, end := begin(ctx, "GetByID", "posts")
	defer end()

	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return readError("Post", id, r.db.WithContext(ctx).First(&post, id).Error)
	})
	if err != nil {
		return nil, err
	}
	r.log.LogRead(ctx, map[string]interface{}{"id": id})
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	ctx, end := begin(ctx, "List", "posts")
	defer end()
	return r.list(r.db.WithContext(ctx), limit, offset)
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*models.Post, error) {
	ctx, end := begin(ctx, "ListByCategory", "posts")
	defer end()
	return r.list(r.db.WithContext(ctx).Where("category_id = ?", categoryID), limit, offset)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	ctx, end := begin(ctx, "ListByUser", "posts")
	defer end()
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID), limit, offset)
}

func (r *postRepository) list(q *gorm.DB, limit, offset int) ([]*models.Post, error) {
	limit, offset = page(limit, offset)
	var posts []*models.Post
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Delete soft-deletes a post. Its join rows and comments are left in place.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	ctx, end := begin(ctx, "Delete", "posts")
	defer end()

	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}
