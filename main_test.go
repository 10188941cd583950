package main

import (
	"errors"
	"path/filepath"
	"testing"

	"recipebox/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "events")
}

func TestMigrateCommand_SQLite(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "recipebox.db"))

	root := newRootCmd()
	root.SetArgs([]string{"migrate"})
	require.NoError(t, root.Execute())
}

func TestServe_RefusesToStartWithoutSecrets(t *testing.T) {
	t.Setenv("LOG_LEVEL", "panic")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	err := runServe()
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfig))
}

func TestEvents_RequiresBrokerURL(t *testing.T) {
	t.Setenv("LOG_LEVEL", "panic")
	t.Setenv("RABBITMQ_URL", "")

	err := runEvents()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RABBITMQ_URL")
}
