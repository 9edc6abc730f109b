package service

import (
	"context"
	"strings"
	"testing"

	"inkpost/internal/models"
	"inkpost/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_SignUp_HashesPassword(t *testing.T) {
	t.Parallel()

	var stored *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 3
		stored = u
		return nil
	}
	svc := NewUserService(repo, bcrypt.MinCost)

	user, err := svc.SignUp(context.Background(), validation.SignUp{
		FullName: "Ada Lovelace",
		Password: "test",
		Age:      36,
		Email:    "Ada@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.NotEqual(t, "test", stored.Password)
	assert.True(t, CheckPassword(stored, "test"))
	assert.False(t, CheckPassword(stored, "nope"))
}

func TestUserService_SignUp_DuplicateEmailIsConflict(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email}, nil
	}
	repo.createFn = func(_ context.Context, _ *models.User) error {
		t.Fatal("create must not run for a taken email")
		return nil
	}
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.SignUp(context.Background(), validation.SignUp{FullName: "A", Password: "p", Age: 20, Email: "a@b.co"})
	assert.True(t, models.IsConflict(err))
}

func TestUserService_Submit(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo(), bcrypt.MinCost)
	ctx := context.Background()

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()
		_, _, err := svc.Submit(ctx, []byte(`{"mode":"delete","id":1}`))
		appErr := assertValidationError(t, err)
		_, ok := appErr.Field("mode")
		assert.True(t, ok)
	})

	t.Run("password over bcrypt limit", func(t *testing.T) {
		t.Parallel()
		raw := `{"mode":"signUp","fullName":"A","password":"` + strings.Repeat("x", 73) + `","age":30,"email":"a@b.co"}`
		_, _, err := svc.Submit(ctx, []byte(raw))
		appErr := assertValidationError(t, err)
		assert.Equal(t, validation.ModeSignUp, appErr.Branch)
		_, ok := appErr.Field("password")
		assert.True(t, ok)
	})

	t.Run("advisory age still succeeds", func(t *testing.T) {
		t.Parallel()
		user, _, err := svc.Submit(ctx, []byte(`{"mode":"signUp","fullName":"Young","password":"p","age":12,"email":"y@b.co"}`))
		require.NoError(t, err)
		assert.Equal(t, 12, user.Age)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()
		user, mode, err := svc.Submit(ctx, []byte(`{"mode":"update","id":4,"fullName":"Renamed","age":40}`))
		require.NoError(t, err)
		assert.Equal(t, validation.ModeUpdate, mode)
		assert.Equal(t, uint(4), user.ID)
		assert.Equal(t, "Renamed", user.FullName)
	})
}

func TestUserService_UpdateProfile_NotFound(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.updateFn = func(_ context.Context, u *models.User) error {
		return models.NewNotFoundError("User", u.ID)
	}
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.UpdateProfile(context.Background(), validation.UpdateProfile{ID: 9, FullName: "X", Age: 30})
	assert.True(t, models.IsNotFound(err))
}

func TestNewUserService_DefaultCost(t *testing.T) {
	t.Parallel()
	svc := NewUserService(noopUserRepo(), 0)
	assert.Equal(t, bcrypt.DefaultCost, svc.bcryptCost)
}
