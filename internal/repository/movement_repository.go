package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

const movementColumns = `id, file_id, from_person_id, to_person_id, from_department_id, to_department_id,
       action_type, remarks, is_team_internal, is_return_to_creator, tat_started,
       from_name, from_designation, from_town_id, from_division_id,
       to_name, to_designation, to_town_id, to_division_id, created_at`

// MovementRepository appends to and reads the custody ledger. The table is
// append-only: there is no update or delete method by design of the
// schema, not just this type.
type MovementRepository struct {
	db *sqlx.DB
}

// NewMovementRepository constructs the repository.
func NewMovementRepository(db *sqlx.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Insert appends a ledger row inside the marking transaction.
func (r *MovementRepository) Insert(ctx context.Context, exec sqlx.ExtContext, movement *models.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.NewString()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO movements
	(id, file_id, from_person_id, to_person_id, from_department_id, to_department_id,
	 action_type, remarks, is_team_internal, is_return_to_creator, tat_started,
	 from_name, from_designation, from_town_id, from_division_id,
	 to_name, to_designation, to_town_id, to_division_id, created_at)
VALUES (:id, :file_id, :from_person_id, :to_person_id, :from_department_id, :to_department_id,
	 :action_type, :remarks, :is_team_internal, :is_return_to_creator, :tat_started,
	 :from_name, :from_designation, :from_town_id, :from_division_id,
	 :to_name, :to_designation, :to_town_id, :to_division_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, movement); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByFile returns the custody trail in chronological order.
func (r *MovementRepository) ListByFile(ctx context.Context, filter models.MovementFilter) ([]models.Movement, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM movements`, movementColumns))

	conditions := make([]string, 0, 3)
	if filter.FileID != "" {
		args = append(args, filter.FileID)
		conditions = append(conditions, fmt.Sprintf("file_id = $%d", len(args)))
	}
	if filter.FromPersonID != "" {
		args = append(args, filter.FromPersonID)
		conditions = append(conditions, fmt.Sprintf("from_person_id = $%d", len(args)))
	}
	if filter.ToPersonID != "" {
		args = append(args, filter.ToPersonID)
		conditions = append(conditions, fmt.Sprintf("to_person_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC")

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var movements []models.Movement
	if err := r.db.SelectContext(ctx, &movements, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// CountByFile returns the ledger row count for a file.
func (r *MovementRepository) CountByFile(ctx context.Context, fileID string) (int, error) {
	const query = `SELECT COUNT(*) FROM movements WHERE file_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, fileID); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return count, nil
}
