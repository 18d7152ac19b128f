package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository"
)

const userColumns = `id, email, first_name, last_name, profile_image_url, date_of_birth::text, phone, address, unit,
	COALESCE(knows_organizer, false), COALESCE(threatened, false), COALESCE(eviction_case, false), created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.DateOfBirth,
		&u.Phone, &u.Address, &u.Unit, &u.KnowsOrganizer, &u.Threatened, &u.EvictionCase, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *PostgresRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) UpsertUser(ctx context.Context, u *models.UpsertUser) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is nil")
	}
	if u.ID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	query := `INSERT INTO users (id, email, first_name, last_name, profile_image_url, date_of_birth, phone, address, unit, knows_organizer, threatened, eviction_case)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, users.email),
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name = COALESCE(EXCLUDED.last_name, users.last_name),
			profile_image_url = COALESCE(EXCLUDED.profile_image_url, users.profile_image_url),
			date_of_birth = COALESCE(EXCLUDED.date_of_birth, users.date_of_birth),
			phone = COALESCE(EXCLUDED.phone, users.phone),
			address = COALESCE(EXCLUDED.address, users.address),
			unit = COALESCE(EXCLUDED.unit, users.unit),
			knows_organizer = COALESCE(EXCLUDED.knows_organizer, users.knows_organizer),
			threatened = COALESCE(EXCLUDED.threatened, users.threatened),
			eviction_case = COALESCE(EXCLUDED.eviction_case, users.eviction_case),
			updated_at = now()
		RETURNING ` + userColumns

	out, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL, u.DateOfBirth, u.Phone, u.Address, u.Unit,
		u.KnowsOrganizer, u.Threatened, u.EvictionCase))
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) UpdateUserProfile(ctx context.Context, id string, p *models.ProfileUpdate) (*models.User, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is nil")
	}

	query := `UPDATE users SET
			date_of_birth = COALESCE($1::date, date_of_birth),
			phone = COALESCE($2, phone),
			address = COALESCE($3, address),
			unit = COALESCE($4, unit),
			knows_organizer = COALESCE($5, knows_organizer),
			threatened = COALESCE($6, threatened),
			eviction_case = COALESCE($7, eviction_case),
			updated_at = now()
		WHERE id = $8
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		p.DateOfBirth, p.Phone, p.Address, p.Unit, p.KnowsOrganizer, p.Threatened, p.EvictionCase, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
