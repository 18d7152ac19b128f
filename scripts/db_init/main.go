package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/blocniti/blocniti/internal/auth"
	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/storage"
	"github.com/blocniti/blocniti/pkg/models"
)

// Migrates the configured database and seeds a development tenant with a few
// repair issues. It prints a session token for that tenant so the API can be
// exercised with curl.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	userID := flag.String("user", "dev-tenant", "Id of the seeded user")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(ctx, cfg.Database, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	email := *userID + "@example.com"
	first := "Dev"
	if _, err := store.UpsertUser(ctx, &models.UpsertUser{ID: *userID, Email: &email, FirstName: &first}); err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}

	existing, err := store.ListRepairIssuesForUser(ctx, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}
	if len(existing) == 0 {
		for _, in := range seedIssues() {
			if _, err := store.CreateRepairIssue(ctx, *userID, &in); err != nil {
				fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
				os.Exit(1)
			}
		}
	}

	token, err := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionDuration).Issue(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Token error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Database initialized.")
	fmt.Printf("Authorization: Bearer %s\n", token)
}

func seedIssues() []models.NewRepairIssue {
	room := 1
	return []models.NewRepairIssue{
		{RoomNumber: &room, RoomName: "Living room", Area: "Radiator", Status: models.StatusUrgent, IssueDescription: "No heat in the apartment for 3 days, radiator cold"},
		{RoomName: "Bathroom", Area: "Ceiling", Status: models.StatusPriority, IssueDescription: "Water leak from the unit above staining the ceiling"},
		{RoomName: "Bedroom", Area: "Walls", Status: models.StatusNonUrgent, IssueDescription: "Paint peeling near the window frame"},
	}
}
