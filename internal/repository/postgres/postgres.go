// Package postgres implements the repository interfaces on PostgreSQL through
// the pgx database/sql driver. The schema is managed with goose.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	dbfs "github.com/blocniti/blocniti/db"
	"github.com/blocniti/blocniti/pkg/repository"
)

var _ repository.Store = (*PostgresRepo)(nil)

type PostgresRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, maxConns int, logger *slog.Logger) (*PostgresRepo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return &PostgresRepo{db: db, logger: logger}, nil
}

// Migrate brings the schema up to date using the embedded goose migrations.
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	goose.SetBaseFS(dbfs.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, r.db, dbfs.PostgresDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}
