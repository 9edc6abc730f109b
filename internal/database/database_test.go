package database

import (
	"context"
	"strings"
	"testing"

	"inkpost/internal/config"
	"inkpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openMigrated(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestConfigurePool(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = Close(db) }()

	cfg := &config.Config{
		DBDriver:                 config.DriverPostgres,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	cfg.DBDriver = config.DriverSQLite
	require.NoError(t, configurePool(db, cfg))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on&_busy_timeout=5000", SQLiteDSN(":memory:"))
	assert.Equal(t, "blog.db?_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("blog.db"))
	assert.Equal(t, "file:blog.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("file:blog.db?mode=rwc"))
}

func TestPostgresDSN_DefaultsSSLMode(t *testing.T) {
	dsn := PostgresDSN(&config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "blog"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=blog sslmode=disable", dsn)
}

func TestPersistentModels_ReferencedTablesFirst(t *testing.T) {
	order := make(map[string]int)
	for i, m := range PersistentModels() {
		tabler, ok := m.(interface{ TableName() string })
		require.True(t, ok)
		order[tabler.TableName()] = i
	}

	require.Len(t, order, 6)
	assert.Less(t, order["users"], order["posts"])
	assert.Less(t, order["categories"], order["posts"])
	assert.Less(t, order["posts"], order["post_tags"])
	assert.Less(t, order["tags"], order["post_tags"])
	assert.Less(t, order["users"], order["comments"])
}

func TestAutoMigrate_EnforcesForeignKeys(t *testing.T) {
	db := openMigrated(t)

	err := db.Create(&models.Post{UserID: 99, CategoryID: 99, Title: "t", Content: "c"}).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	user := models.User{FullName: "Ada", Email: "ada@example.com", Password: "x", Age: 30}
	require.NoError(t, db.Create(&user).Error)

	missingParent := uint(404)
	err = db.Create(&models.Comment{UserID: user.ID, PostID: 1, Content: "hi", ParentID: &missingParent}).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	// post_id has no foreign key
	orphan := models.Comment{UserID: user.ID, PostID: 12345, Content: "orphan"}
	assert.NoError(t, db.Create(&orphan).Error)
}

func TestAutoMigrate_PostTagPairIsUnique(t *testing.T) {
	db := openMigrated(t)

	user := models.User{FullName: "Ada", Email: "ada@example.com", Password: "x", Age: 30}
	require.NoError(t, db.Create(&user).Error)
	category := models.Category{Name: "Go"}
	require.NoError(t, db.Create(&category).Error)
	tag := models.Tag{Name: "gorm"}
	require.NoError(t, db.Create(&tag).Error)
	post := models.Post{UserID: user.ID, CategoryID: category.ID, Title: "t", Content: "c"}
	require.NoError(t, db.Create(&post).Error)

	require.NoError(t, db.Create(&models.PostTag{PostID: post.ID, TagID: tag.ID}).Error)
	err := db.Create(&models.PostTag{PostID: post.ID, TagID: tag.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid development", config.Config{Env: "development", DBDriver: config.DriverPostgres}, true, true, false},
		{"hybrid production", config.Config{Env: "production", DBDriver: config.DriverPostgres, DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBDriver: config.DriverPostgres, DBSchemaMode: "SQL"}, true, false, false},
		{"auto development", config.Config{Env: "test", DBDriver: config.DriverPostgres, DBSchemaMode: "auto"}, false, true, false},
		{"auto refused in staging", config.Config{Env: "staging", DBDriver: config.DriverPostgres, DBSchemaMode: "auto"}, false, false, true},
		{"sqlite always auto", config.Config{Env: "production", DBDriver: config.DriverSQLite, DBSchemaMode: "sql"}, false, true, false},
		{"unknown mode", config.Config{Env: "development", DBDriver: config.DriverPostgres, DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLite(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = Close(db) }()

	cfg := &config.Config{Env: "test", DBDriver: config.DriverSQLite}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"users", "categories", "tags", "posts", "post_tags", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "000001_content_schema", all[0].String())
	assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS comments")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS users")

	// the comment table must not reference posts
	commentsDDL := all[0].UpScript[strings.Index(all[0].UpScript, "CREATE TABLE IF NOT EXISTS comments"):]
	assert.NotContains(t, commentsDDL, "REFERENCES posts")

	assert.Nil(t, GetMigrationByVersion(999))
}

func TestMigrationStore_MissingTableReadsAsEmpty(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = Close(db) }()

	applied, err := NewMigrationStore(db).GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)

	latest, err := LatestAppliedVersion(context.Background(), db)
	require.NoError(t, err)
	assert.Zero(t, latest)

	err = RollbackMigration(context.Background(), db, 1)
	assert.ErrorContains(t, err, "has not been applied")
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 3}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000003, 000007")
}
