package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository"
)

const userColumns = `id, email, first_name, last_name, profile_image_url, date_of_birth, phone, address, unit,
	COALESCE(knows_organizer, 0), COALESCE(threatened, 0), COALESCE(eviction_case, 0), created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var created, updated int64
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.DateOfBirth,
		&u.Phone, &u.Address, &u.Unit, &u.KnowsOrganizer, &u.Threatened, &u.EvictionCase, &created, &updated)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return &u, nil
}

func (r *SQLiteRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// UpsertUser inserts the user or, when the id exists, overwrites only the
// fields that are set on u.
func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *models.UpsertUser) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is nil")
	}
	if u.ID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	ts := now()
	row := r.conn.QueryRow(ctx, `INSERT INTO users (id, email, first_name, last_name, profile_image_url, date_of_birth, phone, address, unit, knows_organizer, threatened, eviction_case, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = COALESCE(excluded.email, users.email),
			first_name = COALESCE(excluded.first_name, users.first_name),
			last_name = COALESCE(excluded.last_name, users.last_name),
			profile_image_url = COALESCE(excluded.profile_image_url, users.profile_image_url),
			date_of_birth = COALESCE(excluded.date_of_birth, users.date_of_birth),
			phone = COALESCE(excluded.phone, users.phone),
			address = COALESCE(excluded.address, users.address),
			unit = COALESCE(excluded.unit, users.unit),
			knows_organizer = COALESCE(excluded.knows_organizer, users.knows_organizer),
			threatened = COALESCE(excluded.threatened, users.threatened),
			eviction_case = COALESCE(excluded.eviction_case, users.eviction_case),
			updated_at = excluded.updated_at
		RETURNING `+userColumns,
		u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL, u.DateOfBirth, u.Phone, u.Address, u.Unit,
		u.KnowsOrganizer, u.Threatened, u.EvictionCase, ts, ts)

	out, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepo) UpdateUserProfile(ctx context.Context, id string, p *models.ProfileUpdate) (*models.User, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is nil")
	}

	row := r.conn.QueryRow(ctx, `UPDATE users SET
			date_of_birth = COALESCE(?, date_of_birth),
			phone = COALESCE(?, phone),
			address = COALESCE(?, address),
			unit = COALESCE(?, unit),
			knows_organizer = COALESCE(?, knows_organizer),
			threatened = COALESCE(?, threatened),
			eviction_case = COALESCE(?, eviction_case),
			updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		p.DateOfBirth, p.Phone, p.Address, p.Unit, p.KnowsOrganizer, p.Threatened, p.EvictionCase, now(), id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
