package seed

import (
	"context"
	"fmt"
	"log/slog"

	"inkpost/internal/models"

	"gorm.io/gorm"
)

// Result counts what a run created.
type Result struct {
	Users      int
	Categories int
	Tags       int
	Posts      int
	Comments   int
}

const maxUserAttempts = 3

// Seed creates the taxonomy, then users, their posts and a threaded discussion
// under each post.
func Seed(ctx context.Context, db *gorm.DB, t *Taxonomy, opts Options) (*Result, error) {
	if db == nil && !opts.DryRun {
		return nil, fmt.Errorf("seed needs a database unless DryRun is set")
	}
	f := NewFactory(db, opts)
	log := f.log

	log.Info("Seeding database",
		slog.Int("users", opts.Users),
		slog.Int("posts_per_user", opts.PostsPerUser),
		slog.Bool("dry_run", opts.DryRun),
	)

	categories, tags, err := f.ensureTaxonomy(ctx, t)
	if err != nil {
		return nil, err
	}
	res := &Result{Categories: len(categories), Tags: len(tags)}

	users := make([]*models.User, 0, opts.Users)
	for range opts.Users {
		user, err := f.createUniqueUser(ctx)
		if err != nil {
			return res, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	res.Users = len(users)

	for _, author := range users {
		for range opts.PostsPerUser {
			category := categories[f.faker.Number(0, len(categories)-1)]
			post, err := f.CreatePost(ctx, f.BuildPost(author, category, tags))
			if err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			res.Posts++

			n, err := f.discuss(ctx, post, users)
			res.Comments += n
			if err != nil {
				return res, fmt.Errorf("create comments: %w", err)
			}
		}
	}

	log.Info("Seeding complete",
		slog.Int("users", res.Users),
		slog.Int("categories", res.Categories),
		slog.Int("tags", res.Tags),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

func (f *Factory) createUniqueUser(ctx context.Context) (*models.User, error) {
	var lastErr error
	for range maxUserAttempts {
		user, err := f.CreateUser(ctx)
		if err == nil {
			return user, nil
		}
		if !models.IsConflict(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// discuss adds up to MaxComments comments to post. Each comment either starts
// a new root or replies to an earlier comment no deeper than MaxDepth.
func (f *Factory) discuss(ctx context.Context, post *models.Post, users []*models.User) (int, error) {
	if f.opts.MaxComments <= 0 || len(users) == 0 {
		return 0, nil
	}
	type node struct {
		comment *models.Comment
		depth   int
	}
	var made []node
	for range f.faker.Number(0, f.opts.MaxComments) {
		author := users[f.faker.Number(0, len(users)-1)]

		var parent *node
		if len(made) > 0 && f.faker.Bool() {
			candidate := made[f.faker.Number(0, len(made)-1)]
			if candidate.depth < f.opts.MaxDepth {
				parent = &candidate
			}
		}

		depth := 0
		var parentComment *models.Comment
		if parent != nil {
			depth = parent.depth + 1
			parentComment = parent.comment
		}
		comment, err := f.CreateComment(ctx, post, author, parentComment)
		if err != nil {
			return len(made), err
		}
		made = append(made, node{comment: comment, depth: depth})
	}
	return len(made), nil
}

// ClearAll removes every content row, children first. Soft-deleted rows are
// removed too. Comments go leaves first since a parent with replies cannot be
// deleted.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()

	for {
		parents := db.WithContext(ctx).Model(&models.Comment{}).Select("parent_id").Where("parent_id IS NOT NULL")
		res := tx.Where("id NOT IN (?)", parents).Delete(&models.Comment{})
		if res.Error != nil {
			return fmt.Errorf("clear comments: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			break
		}
	}

	for _, model := range []any{
		&models.PostTag{},
		&models.Post{},
		&models.Tag{},
		&models.Category{},
		&models.User{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
