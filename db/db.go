package db

import "embed"

// Migrations holds the schema for both supported databases, under
// migrations/sqlite and migrations/postgres.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS

const (
	SQLiteDir   = "migrations/sqlite"
	PostgresDir = "migrations/postgres"
)
