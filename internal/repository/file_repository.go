package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

const fileColumns = `id, file_number, subject, file_type, department_id, district_id, town_id,
       division_id, created_by, assigned_to, workflow_state_id, sla_deadline, status,
       requires_signature, created_at, updated_at`

// FileRepository persists case files. Assignment, state and SLA columns
// are mutated only through the marking transaction.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository constructs the repository.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// GetByID fetches a file outside any transaction.
func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.CaseFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM case_files WHERE id = $1`, fileColumns)
	var file models.CaseFile
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetForUpdate locks the file row inside the caller's transaction. The
// lock must be taken before eligibility reads so exactly one concurrent
// mover wins.
func (r *FileRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.CaseFile, error) {
	query := fmt.Sprintf(`SELECT %s FROM case_files WHERE id = $1 FOR UPDATE`, fileColumns)
	var file models.CaseFile
	if err := tx.GetContext(ctx, &file, query, id); err != nil {
		return nil, err
	}
	return &file, nil
}

// AssignmentParams carries the columns rewritten on a successful marking.
type AssignmentParams struct {
	FileID          string
	AssignedTo      string
	WorkflowStateID string
	// SLADeadline nil means "keep the stored deadline"; the update uses
	// COALESCE so a failed SLA lookup never clears an existing deadline.
	SLADeadline *time.Time
}

// UpdateAssignment rewrites assignment, workflow reference and deadline in
// the caller's transaction. DRAFT files move to IN_PROGRESS; any later
// status is left alone.
func (r *FileRepository) UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, params AssignmentParams) error {
	const query = `UPDATE case_files
SET assigned_to = $1,
    workflow_state_id = $2,
    sla_deadline = COALESCE($3, sla_deadline),
    status = CASE WHEN status = 'DRAFT' THEN 'IN_PROGRESS' ELSE status END,
    updated_at = $4
WHERE id = $5`
	result, err := exec.ExecContext(ctx, query,
		params.AssignedTo,
		params.WorkflowStateID,
		params.SLADeadline,
		time.Now().UTC(),
		params.FileID,
	)
	if err != nil {
		return fmt.Errorf("update file assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check file assignment rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("file %s not found for assignment", params.FileID)
	}
	return nil
}
