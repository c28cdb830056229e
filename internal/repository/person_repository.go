package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

const personColumns = `p.id, p.user_id, p.full_name, p.designation, p.role_id,
       r.code AS role_code, r.name AS role_name,
       p.department_id, p.district_id, p.town_id, p.division_id, p.active, p.created_at`

// PersonRepository reads e-filing profiles and their organizational
// relationships.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs the repository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// FindByID fetches a person with joined role metadata.
func (r *PersonRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons p JOIN roles r ON r.id = p.role_id WHERE p.id = $1`, personColumns)
	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		return nil, err
	}
	return &person, nil
}

// FindActiveByUserID resolves the active e-filing profile behind an auth
// account. Used to establish the marking actor.
func (r *PersonRepository) FindActiveByUserID(ctx context.Context, userID string) (*models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons p JOIN roles r ON r.id = p.role_id
WHERE p.user_id = $1 AND p.active = TRUE`, personColumns)
	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, userID); err != nil {
		return nil, err
	}
	return &person, nil
}

// TeamMembers lists direct team members of a person. Membership is always
// offered to the eligibility engine regardless of workflow mode.
func (r *PersonRepository) TeamMembers(ctx context.Context, personID string) ([]models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM team_members tm
JOIN persons p ON p.id = tm.member_person_id
JOIN roles r ON r.id = p.role_id
WHERE tm.owner_person_id = $1 AND p.active = TRUE
ORDER BY p.full_name`, personColumns)
	var members []models.Person
	if err := r.db.SelectContext(ctx, &members, query, personID); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return members, nil
}

// AreTeammates reports whether two persons share a team relationship in
// either direction.
func (r *PersonRepository) AreTeammates(ctx context.Context, a, b string) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM team_members
WHERE (owner_person_id = $1 AND member_person_id = $2)
   OR (owner_person_id = $2 AND member_person_id = $1))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, a, b); err != nil {
		return false, fmt.Errorf("check team relationship: %w", err)
	}
	return exists, nil
}

// superintendentMatch filters roles whose code or name identifies a
// Superintendent Engineer (acronym or case-insensitive substring).
const superintendentMatch = `(UPPER(r.code) = 'SE' OR r.name ILIKE '%superintendent engineer%')`

// SuperintendentsByDepartment lists active Superintendent Engineers in a
// department, excluding the acting person.
func (r *PersonRepository) SuperintendentsByDepartment(ctx context.Context, departmentID, excludePersonID string) ([]models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons p JOIN roles r ON r.id = p.role_id
WHERE p.department_id = $1 AND p.id <> $2 AND p.active = TRUE AND %s
ORDER BY p.full_name`, personColumns, superintendentMatch)
	var result []models.Person
	if err := r.db.SelectContext(ctx, &result, query, departmentID, excludePersonID); err != nil {
		return nil, fmt.Errorf("list department superintendents: %w", err)
	}
	return result, nil
}

// SuperintendentsByDivision lists active Superintendent Engineers scoped
// to a division. Covers roles that carry no department assignment.
func (r *PersonRepository) SuperintendentsByDivision(ctx context.Context, divisionID, excludePersonID string) ([]models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons p JOIN roles r ON r.id = p.role_id
WHERE p.division_id = $1 AND p.id <> $2 AND p.active = TRUE AND %s
ORDER BY p.full_name`, personColumns, superintendentMatch)
	var result []models.Person
	if err := r.db.SelectContext(ctx, &result, query, divisionID, excludePersonID); err != nil {
		return nil, fmt.Errorf("list division superintendents: %w", err)
	}
	return result, nil
}

// AssistantsForManager lists the assistants attached to an SE/CE manager.
// Used only for visibility fan-out notifications, never for the ledger.
func (r *PersonRepository) AssistantsForManager(ctx context.Context, managerPersonID string) ([]models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM manager_assistants ma
JOIN persons p ON p.id = ma.assistant_person_id
JOIN roles r ON r.id = p.role_id
WHERE ma.manager_person_id = $1 AND p.active = TRUE`, personColumns)
	var result []models.Person
	if err := r.db.SelectContext(ctx, &result, query, managerPersonID); err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}
	return result, nil
}
