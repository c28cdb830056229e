package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

// WorkflowRepository persists per-file workflow state rows. All methods
// take an ExtContext so they run inside the marking transaction.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository constructs the repository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// GetByFileID returns the file's workflow state or nil when none exists
// yet (states are created lazily on first marking).
func (r *WorkflowRepository) GetByFileID(ctx context.Context, exec sqlx.ExtContext, fileID string) (*models.WorkflowState, error) {
	const query = `SELECT id, file_id, current_state, last_actor_id, tat_active, updated_at
FROM workflow_states WHERE file_id = $1`
	var state models.WorkflowState
	if err := sqlx.GetContext(ctx, exec, &state, query, fileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workflow state: %w", err)
	}
	return &state, nil
}

// Create inserts the lazily-created state row.
func (r *WorkflowRepository) Create(ctx context.Context, exec sqlx.ExtContext, state *models.WorkflowState) error {
	if state.ID == "" {
		state.ID = uuid.NewString()
	}
	state.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO workflow_states (id, file_id, current_state, last_actor_id, tat_active, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := exec.ExecContext(ctx, query, state.ID, state.FileID, state.CurrentState, state.LastActorID, state.TatActive, state.UpdatedAt); err != nil {
		return fmt.Errorf("create workflow state: %w", err)
	}
	return nil
}

// Update rewrites the mutable state columns.
func (r *WorkflowRepository) Update(ctx context.Context, exec sqlx.ExtContext, state *models.WorkflowState) error {
	state.UpdatedAt = time.Now().UTC()
	const query = `UPDATE workflow_states
SET current_state = $1, last_actor_id = $2, tat_active = $3, updated_at = $4
WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, state.CurrentState, state.LastActorID, state.TatActive, state.UpdatedAt, state.ID)
	if err != nil {
		return fmt.Errorf("update workflow state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check workflow state rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
