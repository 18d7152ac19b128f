package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository"
)

const repairIssueColumns = `id, user_id, room_number, room_name, area, status, issue_description, proposed_remediation,
	first_request_date::text, issue_began::text, hpd_violation_class, correction_deadline, ai_analysis, created_at, updated_at`

func scanRepairIssue(row scanner) (*models.RepairIssue, error) {
	var ri models.RepairIssue
	err := row.Scan(&ri.ID, &ri.UserID, &ri.RoomNumber, &ri.RoomName, &ri.Area, &ri.Status, &ri.IssueDescription,
		&ri.ProposedRemediation, &ri.FirstRequestDate, &ri.IssueBegan, &ri.HPDViolationClass, &ri.CorrectionDeadline,
		&ri.AIAnalysis, &ri.CreatedAt, &ri.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ri.CreatedAt = ri.CreatedAt.UTC()
	ri.UpdatedAt = ri.UpdatedAt.UTC()
	return &ri, nil
}

func (r *PostgresRepo) ListRepairIssuesForUser(ctx context.Context, userID string) ([]models.RepairIssue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+repairIssueColumns+` FROM repair_issues WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	out := []models.RepairIssue{}
	for rows.Next() {
		ri, err := scanRepairIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ri)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetRepairIssue(ctx context.Context, id int64) (*models.RepairIssue, error) {
	ri, err := scanRepairIssue(r.db.QueryRowContext(ctx, `SELECT `+repairIssueColumns+` FROM repair_issues WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return ri, nil
}

func (r *PostgresRepo) CreateRepairIssue(ctx context.Context, userID string, in *models.NewRepairIssue) (*models.RepairIssue, error) {
	if in == nil {
		return nil, fmt.Errorf("repair issue is nil")
	}

	query := `INSERT INTO repair_issues (user_id, room_number, room_name, area, status, issue_description, proposed_remediation, first_request_date, issue_began)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9::date)
		RETURNING ` + repairIssueColumns

	ri, err := scanRepairIssue(r.db.QueryRowContext(ctx, query,
		userID, in.RoomNumber, in.RoomName, in.Area, string(in.Status), in.IssueDescription, in.ProposedRemediation,
		in.FirstRequestDate, in.IssueBegan))
	if err != nil {
		return nil, fmt.Errorf("insert repair issue: %w", err)
	}
	return ri, nil
}

func (r *PostgresRepo) ApplyClassification(ctx context.Context, id int64, c models.Classification) error {
	res, err := r.db.ExecContext(ctx, `UPDATE repair_issues SET hpd_violation_class = $1, correction_deadline = $2, ai_analysis = $3, updated_at = now() WHERE id = $4`,
		c.ViolationClass, c.Deadline, c.Analysis, id)
	if err != nil {
		return fmt.Errorf("apply classification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.logger.Debug("classification target no longer exists", slog.Int64("repair_issue_id", id))
	}
	return nil
}

func (r *PostgresRepo) DeleteRepairIssue(ctx context.Context, id int64, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM repair_issues WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
