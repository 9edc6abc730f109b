package repository

import (
	"context"
	"testing"

	"inkpost/internal/database"
	"inkpost/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type fixture struct {
	user     *models.User
	category *models.Category
	tags     []*models.Tag
}

func seedFixture(t *testing.T, db *gorm.DB, tagNames ...string) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		user:     &models.User{FullName: "Grace Hopper", Email: "grace@example.com", Password: "hash", Age: 45},
		category: &models.Category{Name: "Compilers"},
	}
	require.NoError(t, NewUserRepository(db).Create(ctx, f.user))
	require.NoError(t, NewCategoryRepository(db).Create(ctx, f.category))
	for _, name := range tagNames {
		tag := &models.Tag{Name: name}
		require.NoError(t, NewTagRepository(db).Create(ctx, tag))
		f.tags = append(f.tags, tag)
	}
	return f
}

func (f fixture) post(title string) *models.Post {
	return &models.Post{
		UserID:     f.user.ID,
		CategoryID: f.category.ID,
		Title:      title,
		Content:    "body",
	}
}
