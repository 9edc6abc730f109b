package seed

import (
	"context"
	"testing"

	"inkpost/internal/database"
	"inkpost/internal/models"
	"inkpost/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestDefaultTaxonomy(t *testing.T) {
	tax, err := DefaultTaxonomy()
	require.NoError(t, err)
	assert.NotEmpty(t, tax.Categories)
	assert.NotEmpty(t, tax.Tags)
	assert.Contains(t, tax.Tags, "go")
}

func TestParseTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"trims names", "categories: ['  Go  ']\ntags: [db]", ""},
		{"blank category", "categories: ['Go', '']", "blank"},
		{"duplicate tag ignoring case", "categories: [Go]\ntags: [SQL, sql]", "listed twice"},
		{"no categories", "tags: [a]", "at least one category"},
		{"not yaml", "categories: [unterminated", "parse taxonomy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := ParseTaxonomy([]byte(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"Go"}, tax.Categories)
		})
	}
}

func TestSeed_DryRunNeedsNoDatabase(t *testing.T) {
	tax := &Taxonomy{Categories: []string{"A", "B"}, Tags: []string{"x", "y", "z"}}
	res, err := Seed(context.Background(), nil, tax, Options{
		Users:        3,
		PostsPerUser: 2,
		MaxComments:  4,
		SkipBcrypt:   true,
		DryRun:       true,
		RandSeed:     7,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Users)
	assert.Equal(t, 2, res.Categories)
	assert.Equal(t, 3, res.Tags)
	assert.Equal(t, 6, res.Posts)
	assert.LessOrEqual(t, res.Comments, 6*4)
}

func TestSeed_RequiresDatabaseOutsideDryRun(t *testing.T) {
	_, err := Seed(context.Background(), nil, &Taxonomy{Categories: []string{"A"}}, Options{Users: 1})
	assert.Error(t, err)
}

func TestFactory_SameSeedSameContent(t *testing.T) {
	user := &models.User{ID: 1}
	category := &models.Category{ID: 2}
	tags := []*models.Tag{{ID: 3}, {ID: 4}, {ID: 5}}

	a := NewFactory(nil, Options{DryRun: true, RandSeed: 42}).BuildPost(user, category, tags)
	b := NewFactory(nil, Options{DryRun: true, RandSeed: 42}).BuildPost(user, category, tags)
	assert.Equal(t, a, b)
	assert.NoError(t, a.Validate())
	assert.LessOrEqual(t, len(a.TagIDs), 3)
}

func TestSeed_SQLite(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	tax, err := DefaultTaxonomy()
	require.NoError(t, err)

	res, err := Seed(ctx, db, tax, Options{
		Users:        4,
		PostsPerUser: 2,
		MaxComments:  6,
		MaxDepth:     2,
		BcryptCost:   bcrypt.MinCost,
		RandSeed:     99,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Posts)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 4)
	for _, u := range users {
		assert.GreaterOrEqual(t, u.Age, validation.MinAdvisoryAge)
		assert.LessOrEqual(t, u.Age, validation.MaxAdvisoryAge)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))
	}

	var comments []models.Comment
	require.NoError(t, db.Find(&comments).Error)
	assert.Len(t, comments, res.Comments)
	byID := make(map[uint]models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	for _, c := range comments {
		depth := 0
		for cur := c; cur.ParentID != nil; depth++ {
			parent, ok := byID[*cur.ParentID]
			require.True(t, ok, "comment %d has a dangling parent", c.ID)
			assert.Equal(t, c.PostID, parent.PostID)
			cur = parent
		}
		assert.LessOrEqual(t, depth, 2)
	}

	// seeding again reuses the taxonomy rows
	_, err = Seed(ctx, db, tax, Options{Users: 1, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	var categoryCount int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categoryCount).Error)
	assert.Equal(t, int64(len(tax.Categories)), categoryCount)
}

func TestClearAll(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	tax := &Taxonomy{Categories: []string{"A"}, Tags: []string{"x"}}

	_, err := Seed(ctx, db, tax, Options{Users: 2, PostsPerUser: 2, MaxComments: 8, SkipBcrypt: true, RandSeed: 3})
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Category{}, "name = ?", "A").Error)

	require.NoError(t, ClearAll(ctx, db))

	for _, model := range []any{&models.Comment{}, &models.PostTag{}, &models.Post{}, &models.Tag{}, &models.User{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
	var categories int64
	require.NoError(t, db.Unscoped().Model(&models.Category{}).Count(&categories).Error)
	assert.Zero(t, categories)
}
