package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

// MatrixRepository is the DB-backed default for the organizational routing
// matrix collaborator: it answers "which role holders may receive a file
// of this type, at which scope".
type MatrixRepository struct {
	db *sqlx.DB
}

// NewMatrixRepository constructs the repository.
func NewMatrixRepository(db *sqlx.DB) *MatrixRepository {
	return &MatrixRepository{db: db}
}

// MatrixQuery carries the file context for a matrix lookup. Location
// fields are the resolved file location, not raw file columns.
type MatrixQuery struct {
	FileType        string
	ExcludePersonID string
	DepartmentID    *string
	DistrictID      *string
	TownID          *string
	DivisionID      *string
}

type matrixRow struct {
	PersonID    string              `db:"person_id"`
	DisplayName string              `db:"display_name"`
	RoleCode    string              `db:"role_code"`
	Scope       models.RoutingScope `db:"scope"`
}

// AllowedRecipients returns candidates whose role and geography satisfy
// the file type's routing matrix.
func (r *MatrixRepository) AllowedRecipients(ctx context.Context, q MatrixQuery) ([]models.RecipientCandidate, error) {
	const query = `SELECT p.id AS person_id, p.full_name AS display_name, r.code AS role_code, m.scope
FROM routing_matrix m
JOIN roles r ON r.code = m.role_code
JOIN persons p ON p.role_id = r.id
WHERE m.file_type = $1 AND p.active = TRUE AND p.id <> $2
  AND (
       m.scope = 'global'
    OR (m.scope = 'department' AND $3::text IS NOT NULL AND p.department_id = $3)
    OR (m.scope = 'district'   AND $4::text IS NOT NULL AND p.district_id = $4)
    OR (m.scope = 'town'       AND $5::text IS NOT NULL AND p.town_id = $5)
    OR (m.scope = 'division'   AND $6::text IS NOT NULL AND p.division_id = $6)
  )
ORDER BY p.full_name`
	var rows []matrixRow
	if err := r.db.SelectContext(ctx, &rows, query,
		q.FileType, q.ExcludePersonID, q.DepartmentID, q.DistrictID, q.TownID, q.DivisionID); err != nil {
		return nil, fmt.Errorf("query routing matrix: %w", err)
	}

	candidates := make([]models.RecipientCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, models.RecipientCandidate{
			PersonID:     row.PersonID,
			DisplayName:  row.DisplayName,
			RoleCode:     row.RoleCode,
			AllowedScope: row.Scope,
			Reason:       models.ReasonMatrix,
		})
	}
	return candidates, nil
}
