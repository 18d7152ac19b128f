package db

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

// Migrate applies the .sql files found in dir of fsys in lexical order.
// It creates a `schema_migrations` table to track applied migrations and skips
// files already recorded there, so it is safe to run on every start.
func Migrate(ctx context.Context, d *DB, fsys fs.FS, dir string) error {
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, fname := range files {
		// use filename (without extension) as migration version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(fsys, path.Join(dir, fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, upSection(string(b))); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
		d.logger.Info("migration applied", slog.String("version", version))
	}

	return nil
}

// upSection returns the statements between "-- +goose Up" and "-- +goose Down"
// so the same annotated files work with goose and with this runner. Files
// without annotations are returned unchanged.
func upSection(src string) string {
	const up, down = "-- +goose Up", "-- +goose Down"
	if i := strings.Index(src, up); i >= 0 {
		src = src[i+len(up):]
	}
	if i := strings.Index(src, down); i >= 0 {
		src = src[:i]
	}
	src = strings.ReplaceAll(src, "-- +goose StatementBegin", "")
	src = strings.ReplaceAll(src, "-- +goose StatementEnd", "")
	return src
}
