package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = "schema_migrations"

// Migrate applies every embedded *.up.sql file not yet recorded, in name order.
// Each file runs in its own transaction. It returns the names applied.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	return migrate(ctx, db, migrationFiles)
}

func migrate(ctx context.Context, db *sqlx.DB, files fs.FS) ([]string, error) {
	ddl := `CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (name TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}

	var done []string
	if err := db.SelectContext(ctx, &done, `SELECT name FROM `+migrationsTable); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(done))
	for _, name := range done {
		applied[name] = struct{}{}
	}

	names, err := fs.Glob(files, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	var ran []string
	for _, path := range names {
		name := strings.TrimPrefix(path, "migrations/")
		if _, ok := applied[name]; ok {
			continue
		}
		body, err := fs.ReadFile(files, path)
		if err != nil {
			return ran, fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyMigration(ctx, db, name, string(body)); err != nil {
			return ran, err
		}
		ran = append(ran, name)
	}
	return ran, nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, name, body string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO `+migrationsTable+` (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
