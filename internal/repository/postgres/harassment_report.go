package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blocniti/blocniti/pkg/models"
)

const harassmentColumns = `id, user_id, harassment_types::text, additional_details, created_at`

func scanHarassmentReport(row scanner) (*models.HarassmentReport, error) {
	var hr models.HarassmentReport
	var types string
	if err := row.Scan(&hr.ID, &hr.UserID, &types, &hr.AdditionalDetails, &hr.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(types), &hr.HarassmentTypes); err != nil {
		return nil, fmt.Errorf("decode harassment types: %w", err)
	}
	hr.CreatedAt = hr.CreatedAt.UTC()
	return &hr, nil
}

func (r *PostgresRepo) ListHarassmentReportsForUser(ctx context.Context, userID string) ([]models.HarassmentReport, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+harassmentColumns+` FROM harassment_reports WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	out := []models.HarassmentReport{}
	for rows.Next() {
		hr, err := scanHarassmentReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *hr)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CreateHarassmentReport(ctx context.Context, userID string, in *models.NewHarassmentReport) (*models.HarassmentReport, error) {
	if in == nil {
		return nil, fmt.Errorf("harassment report is nil")
	}
	types, err := json.Marshal(in.HarassmentTypes)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO harassment_reports (user_id, harassment_types, additional_details)
		VALUES ($1, $2::jsonb, $3)
		RETURNING ` + harassmentColumns

	hr, err := scanHarassmentReport(r.db.QueryRowContext(ctx, query, userID, string(types), in.AdditionalDetails))
	if err != nil {
		return nil, fmt.Errorf("insert harassment report: %w", err)
	}
	return hr, nil
}
