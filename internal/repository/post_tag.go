package repository

import (
	"context"

	"inkpost/internal/cache"
	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostTagRepository manages the post/tag join rows.
type PostTagRepository interface {
	// JoinInsert attaches tagID to postID. Attaching an existing pair is a no-op.
	JoinInsert(ctx context.Context, postID, tagID uint) error
	// JoinDelete detaches tagID from postID. Detaching an absent pair is a no-op.
	JoinDelete(ctx context.Context, postID, tagID uint) error
	// TagIDsByPost returns each post's tag ids in insertion order.
	TagIDsByPost(ctx context.Context, postIDs []uint) (map[uint][]uint, error)
}

type postTagRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostTagRepository returns a new PostTagRepository implementation.
func NewPostTagRepository(db *gorm.DB) PostTagRepository {
	return &postTagRepository{db: db, log: observability.NewRepoLogger("post_tags")}
}

func (r *postTagRepository) JoinInsert(ctx context.Context, postID, tagID uint) error {
	ctx, end := begin(ctx, "JoinInsert", "post_tags")
	defer end()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return joinInsert(tx, postID, tagID)
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return writeError("PostTag", "post_tags", err)
	}
	cache.InvalidatePost(ctx, postID)
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": postID, "tag_id": tagID})
	return nil
}

func (r *postTagRepository) JoinDelete(ctx context.Context, postID, tagID uint) error {
	ctx, end := begin(ctx, "JoinDelete", "post_tags")
	defer end()

	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND tag_id = ?", postID, tagID).
		Delete(&models.PostTag{}).Error; err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": postID, "tag_id": tagID})
	return nil
}

func (r *postTagRepository) TagIDsByPost(ctx context.Context, postIDs []uint) (map[uint][]uint, error) {
	ctx, end := begin(ctx, "TagIDsByPost", "post_tags")
	defer end()

	out := make(map[uint][]uint, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []models.PostTag
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("post_id ASC, position ASC, tag_id ASC").
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.PostID] = append(out[row.PostID], row.TagID)
	}
	return out, nil
}

// joinInsert appends (postID, tagID) after the post's current last position.
// A soft-deleted tag cannot be attached. It must run inside a transaction.
func joinInsert(tx *gorm.DB, postID, tagID uint) error {
	if err := requireLive(tx, "Post tag", "tags", &models.Tag{}, tagID); err != nil {
		return err
	}
	var next int
	if err := tx.Model(&models.PostTag{}).
		Where("post_id = ?", postID).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error; err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&models.PostTag{PostID: postID, TagID: tagID, Position: next}).Error
}

// replaceTags makes tagIDs the post's tag set. Pairs that survive keep their
// position; new pairs are appended in the given order.
func replaceTags(tx *gorm.DB, postID uint, tagIDs []uint) error {
	del := tx.Where("post_id = ?", postID)
	if len(tagIDs) > 0 {
		del = del.Where("tag_id NOT IN ?", tagIDs)
	}
	if err := del.Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if err := joinInsert(tx, postID, tagID); err != nil {
			return err
		}
	}
	return nil
}
