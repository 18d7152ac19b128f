package repository

import (
	"context"
	"errors"

	"github.com/blocniti/blocniti/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Getters return (nil, nil) when the row does not exist. Mutations that target
// a specific row return ErrNotFound instead.

// ErrNotFound is returned when a mutation targets a row that does not exist or
// is not owned by the caller.
var ErrNotFound = errors.New("not found")

type UserRepo interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, u *models.UpsertUser) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id string, p *models.ProfileUpdate) (*models.User, error)
}

type RepairIssueRepo interface {
	ListRepairIssuesForUser(ctx context.Context, userID string) ([]models.RepairIssue, error)
	GetRepairIssue(ctx context.Context, id int64) (*models.RepairIssue, error)
	CreateRepairIssue(ctx context.Context, userID string, in *models.NewRepairIssue) (*models.RepairIssue, error)
	// ApplyClassification is a no-op when the issue no longer exists.
	ApplyClassification(ctx context.Context, id int64, c models.Classification) error
	DeleteRepairIssue(ctx context.Context, id int64, ownerID string) error
}

type HarassmentReportRepo interface {
	ListHarassmentReportsForUser(ctx context.Context, userID string) ([]models.HarassmentReport, error)
	CreateHarassmentReport(ctx context.Context, userID string, in *models.NewHarassmentReport) (*models.HarassmentReport, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	UserRepo
	RepairIssueRepo
	HarassmentReportRepo
	Ping(ctx context.Context) error
	Close() error
}
