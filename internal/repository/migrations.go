package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsDir каталог миграций внутри migrationsFS.
const migrationsDir = "migrations"

// gooseUpContext подменяется в тестах.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations применяет встроенные миграции схемы PostgreSQL.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("ошибка установки диалекта миграций: %w", err)
	}

	log.Println("[Repo] Применение миграций...")
	if err := gooseUpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}
	log.Println("[Repo] Миграции применены.")
	return nil
}
