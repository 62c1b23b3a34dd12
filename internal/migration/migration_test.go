package migration

import (
	"io/fs"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	files, err := fs.Glob(embeddedMigrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"migrations/000001_create_depot_collections.up.sql",
		"migrations/000001_create_depot_collections.down.sql",
	}, files)
}

func TestMigrateSQLiteCreatesCollectionsTable(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(config.StorageSQLite, conn))
	assert.True(t, conn.Migrator().HasTable("depot_collections"))
}

func TestMigrateRejectsNonSQLBackend(t *testing.T) {
	assert.Error(t, Migrate(config.StorageRedis, nil))
}
