// Package storage opens the configured repository backend and brings its
// schema up to date.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	dbfs "github.com/blocniti/blocniti/db"
	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/db"
	"github.com/blocniti/blocniti/internal/repository/postgres"
	"github.com/blocniti/blocniti/internal/repository/sqlite"
	"github.com/blocniti/blocniti/pkg/repository"
)

// Open returns a migrated Store for cfg. The caller owns the returned Store
// and must Close it.
func Open(ctx context.Context, cfg config.Database, logger *slog.Logger) (repository.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case "", config.DriverSQLite:
		conn, err := db.New(ctx, cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SQLiteDir); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logger.Info("storage opened", slog.String("driver", config.DriverSQLite), slog.String("path", cfg.Path))
		return sqlite.New(conn, logger), nil

	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, cfg.DSN, cfg.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("storage opened", slog.String("driver", config.DriverPostgres))
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
