package database

import (
	"testing"

	"recipebox/internal/logging"
	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSQLiteForeignKeys(t *testing.T) {
	assert.Equal(t, "recipebox.db?_foreign_keys=on", withSQLiteForeignKeys("recipebox.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on", withSQLiteForeignKeys("file::memory:?cache=shared"))
	assert.Equal(t, "x.db?_fk=1", withSQLiteForeignKeys("x.db?_fk=1"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenAndMigrate_SQLiteMemory(t *testing.T) {
	db, err := Open("sqlite", "file:migrate_test?mode=memory&cache=shared", logging.Discard())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.Account{}))
	assert.True(t, db.Migrator().HasTable(&models.Recipe{}))
	assert.True(t, db.Migrator().HasIndex(&models.Account{}, "idx_accounts_username"))
}
