package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/db"
)

// Backs up the SQLite database with VACUUM INTO, which produces a consistent
// copy even while the server is running.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	out := flag.String("out", "", "Backup file (default <database>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.Driver == config.DriverPostgres {
		fmt.Fprintln(os.Stderr, "Backup error: use pg_dump for the postgres driver")
		os.Exit(1)
	}
	src := cfg.Database.Path
	dst := *out
	if dst == "" {
		dst = src + ".bak"
	}
	// VACUUM INTO refuses to overwrite
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := db.New(ctx, src, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if _, err := conn.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", dst)
}
