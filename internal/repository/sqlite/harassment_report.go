package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blocniti/blocniti/pkg/models"
)

func scanHarassmentReport(row scanner) (*models.HarassmentReport, error) {
	var hr models.HarassmentReport
	var types string
	var created int64
	if err := row.Scan(&hr.ID, &hr.UserID, &types, &hr.AdditionalDetails, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(types), &hr.HarassmentTypes); err != nil {
		return nil, fmt.Errorf("decode harassment types: %w", err)
	}
	hr.CreatedAt = fromMillis(created)
	return &hr, nil
}

func (r *SQLiteRepo) ListHarassmentReportsForUser(ctx context.Context, userID string) ([]models.HarassmentReport, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, harassment_types, additional_details, created_at FROM harassment_reports WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
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

func (r *SQLiteRepo) CreateHarassmentReport(ctx context.Context, userID string, in *models.NewHarassmentReport) (*models.HarassmentReport, error) {
	if in == nil {
		return nil, fmt.Errorf("harassment report is nil")
	}
	types, err := json.Marshal(in.HarassmentTypes)
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(ctx, `INSERT INTO harassment_reports (user_id, harassment_types, additional_details, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id, user_id, harassment_types, additional_details, created_at`,
		userID, string(types), in.AdditionalDetails, now())

	hr, err := scanHarassmentReport(row)
	if err != nil {
		return nil, fmt.Errorf("insert harassment report: %w", err)
	}
	return hr, nil
}
