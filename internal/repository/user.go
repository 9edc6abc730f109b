package repository

import (
	"context"
	"errors"

	"inkpost/internal/cache"
	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UsersByID(ctx context.Context, ids []uint) (map[uint]*models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, end := begin(ctx, "Create", "users")
	defer end()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return writeError("User", "users", err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": user.ID})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, end := begin(ctx, "GetByID", "users")
	defer end()

	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return readError("User", id, r.db.WithContext(ctx).First(&user, id).Error)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, end := begin(ctx, "GetByEmail", "users")
	defer end()

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", email)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Update writes the profile fields of user. The password and email are not touched.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	ctx, end := begin(ctx, "Update", "users")
	defer end()

	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"full_name": user.FullName,
			"age":       user.Age,
		})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "update")
		return writeError("User", "users", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	cache.InvalidateUser(ctx, user.ID)

	if err := r.db.WithContext(ctx).First(user, user.ID).Error; err != nil {
		return readError("User", user.ID, err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": user.ID})
	return nil
}

// UsersByID returns the live users among ids. Missing and soft-deleted ids are absent.
func (r *userRepository) UsersByID(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	ctx, end := begin(ctx, "UsersByID", "users")
	defer end()

	out := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
