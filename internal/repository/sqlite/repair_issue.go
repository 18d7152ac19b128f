package sqlite

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
	first_request_date, issue_began, hpd_violation_class, correction_deadline, ai_analysis, created_at, updated_at`

func scanRepairIssue(row scanner) (*models.RepairIssue, error) {
	var ri models.RepairIssue
	var created, updated int64
	err := row.Scan(&ri.ID, &ri.UserID, &ri.RoomNumber, &ri.RoomName, &ri.Area, &ri.Status, &ri.IssueDescription,
		&ri.ProposedRemediation, &ri.FirstRequestDate, &ri.IssueBegan, &ri.HPDViolationClass, &ri.CorrectionDeadline,
		&ri.AIAnalysis, &created, &updated)
	if err != nil {
		return nil, err
	}
	ri.CreatedAt = fromMillis(created)
	ri.UpdatedAt = fromMillis(updated)
	return &ri, nil
}

// ListRepairIssuesForUser returns the user's issues, newest first.
func (r *SQLiteRepo) ListRepairIssuesForUser(ctx context.Context, userID string) ([]models.RepairIssue, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+repairIssueColumns+` FROM repair_issues WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
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

func (r *SQLiteRepo) GetRepairIssue(ctx context.Context, id int64) (*models.RepairIssue, error) {
	ri, err := scanRepairIssue(r.conn.QueryRow(ctx, `SELECT `+repairIssueColumns+` FROM repair_issues WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ri, nil
}

func (r *SQLiteRepo) CreateRepairIssue(ctx context.Context, userID string, in *models.NewRepairIssue) (*models.RepairIssue, error) {
	if in == nil {
		return nil, fmt.Errorf("repair issue is nil")
	}

	ts := now()
	row := r.conn.QueryRow(ctx, `INSERT INTO repair_issues (user_id, room_number, room_name, area, status, issue_description, proposed_remediation, first_request_date, issue_began, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+repairIssueColumns,
		userID, in.RoomNumber, in.RoomName, in.Area, string(in.Status), in.IssueDescription, in.ProposedRemediation,
		in.FirstRequestDate, in.IssueBegan, ts, ts)

	ri, err := scanRepairIssue(row)
	if err != nil {
		return nil, fmt.Errorf("insert repair issue: %w", err)
	}
	return ri, nil
}

func (r *SQLiteRepo) ApplyClassification(ctx context.Context, id int64, c models.Classification) error {
	res, err := r.conn.Exec(ctx, `UPDATE repair_issues SET hpd_violation_class = ?, correction_deadline = ?, ai_analysis = ?, updated_at = ? WHERE id = ?`,
		c.ViolationClass, c.Deadline, c.Analysis, now(), id)
	if err != nil {
		return fmt.Errorf("apply classification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.logger.Debug("classification target no longer exists", slog.Int64("repair_issue_id", id))
	}
	return nil
}

func (r *SQLiteRepo) DeleteRepairIssue(ctx context.Context, id int64, ownerID string) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM repair_issues WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
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
