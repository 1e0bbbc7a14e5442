package repository

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/00001_create_users.sql")

	content, err := fs.ReadFile(migrationsFS, "migrations/00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "+goose Up")
	assert.Contains(t, string(content), "users_username_key")
	assert.Contains(t, string(content), "users_email_key")
}

func TestRunMigrations(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("Успешное применение", func(t *testing.T) {
		orig := gooseUpContext
		defer func() { gooseUpContext = orig }()

		var gotDir string
		gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
			gotDir = dir
			return nil
		}

		require.NoError(t, RunMigrations(context.Background(), db))
		assert.Equal(t, migrationsDir, gotDir)
	})

	t.Run("Ошибка применения", func(t *testing.T) {
		orig := gooseUpContext
		defer func() { gooseUpContext = orig }()

		boom := errors.New("boom")
		gooseUpContext = func(_ context.Context, _ *sql.DB, _ string, _ ...goose.OptionsFunc) error {
			return boom
		}

		err := RunMigrations(context.Background(), db)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "ошибка применения миграций")
	})
}
