package repository

import (
	"context"

	"inkpost/internal/cache"
	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Delete(ctx context.Context, id uint) error
	CategoriesByID(ctx context.Context, ids []uint) (map[uint]*models.Category, error)
}

type categoryRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db, log: observability.NewRepoLogger("categories")}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	ctx, end := begin(ctx, "Create", "categories")
	defer end()

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return writeError("Category", "categories", err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": category.ID, "name": category.Name})
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	ctx, end := begin(ctx, "GetByID", "categories")
	defer end()

	var category models.Category
	err := cache.Aside(ctx, cache.CategoryKey(id), &category, cache.CategoryTTL, func() error {
		return readError("Category", id, r.db.WithContext(ctx).First(&category, id).Error)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	ctx, end := begin(ctx, "List", "categories")
	defer end()

	var categories []*models.Category
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

// Delete soft-deletes a category. Posts keep their category_id; readers see
// the category name as absent from then on.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	ctx, end := begin(ctx, "Delete", "categories")
	defer end()

	result := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Category", id)
	}
	cache.InvalidateCategory(ctx, id)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *categoryRepository) CategoriesByID(ctx context.Context, ids []uint) (map[uint]*models.Category, error) {
	ctx, end := begin(ctx, "CategoriesByID", "categories")
	defer end()

	out := make(map[uint]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var categories []*models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	List(ctx context.Context) ([]*models.Tag, error)
	Delete(ctx context.Context, id uint) error
	TagsByID(ctx context.Context, ids []uint) (map[uint]*models.Tag, error)
}

type tagRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db, log: observability.NewRepoLogger("tags")}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	ctx, end := begin(ctx, "Create", "tags")
	defer end()

	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return writeError("Tag", "tags", err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": tag.ID, "name": tag.Name})
	return nil
}

func (r *tagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	ctx, end := begin(ctx, "List", "tags")
	defer end()

	var tags []*models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	ctx, end := begin(ctx, "Delete", "tags")
	defer end()

	result := r.db.WithContext(ctx).Delete(&models.Tag{}, id)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Tag", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *tagRepository) TagsByID(ctx context.Context, ids []uint) (map[uint]*models.Tag, error) {
	ctx, end := begin(ctx, "TagsByID", "tags")
	defer end()

	out := make(map[uint]*models.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var tags []*models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, t := range tags {
		out[t.ID] = t
	}
	return out, nil
}
