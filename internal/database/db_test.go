package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Exec("SELECT 1").Error)
	require.NoError(t, Ping(context.Background(), db))
}

func TestOpenSQLiteMemoryHandlesAreIsolated(t *testing.T) {
	first := openTestDB(t)
	second := openTestDB(t)

	require.NoError(t, Migrate(first))
	require.True(t, first.Migrator().HasTable(&models.Session{}))
	require.False(t, second.Migrator().HasTable(&models.Session{}))
}

func TestOpenSQLiteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "botspace.db")

	db, err := Open(Config{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	require.FileExists(t, path)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrateCreatesIdentityTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	migrator := db.Migrator()
	for _, model := range []any{
		&models.User{},
		&models.Session{},
		&models.CacheEntry{},
		&models.Workspace{},
		&models.WorkspaceMembership{},
	} {
		require.True(t, migrator.HasTable(model), "missing table for %T", model)
	}
	require.True(t, migrator.HasIndex(&models.Session{}, "SessionToken"))
}

func TestMigrateRejectsNilHandle(t *testing.T) {
	require.Error(t, Migrate(nil))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
