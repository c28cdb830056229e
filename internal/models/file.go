package models

import "time"

// FileStatus tracks coarse file lifecycle. Files are never deleted; they
// only transition status.
type FileStatus string

const (
	FileStatusDraft      FileStatus = "DRAFT"
	FileStatusInProgress FileStatus = "IN_PROGRESS"
	FileStatusClosed     FileStatus = "CLOSED"
)

// RoutingScope names the eligibility scope a recipient qualified under.
type RoutingScope string

const (
	ScopeDistrict   RoutingScope = "district"
	ScopeTown       RoutingScope = "town"
	ScopeDivision   RoutingScope = "division"
	ScopeDepartment RoutingScope = "department"
	ScopeTeam       RoutingScope = "team"
	ScopeGlobal     RoutingScope = "global"
)

// Geographic reports whether the scope compares location fields. The
// organizational scopes (department, team, global) never do.
func (s RoutingScope) Geographic() bool {
	switch s {
	case ScopeDistrict, ScopeTown, ScopeDivision:
		return true
	}
	return false
}

// CaseFile is a government case file under routing. Exactly one of TownID
// and DivisionID is populated per file (mutually exclusive routing modes).
type CaseFile struct {
	ID                string     `db:"id" json:"id"`
	FileNumber        string     `db:"file_number" json:"file_number"`
	Subject           string     `db:"subject" json:"subject"`
	FileType          string     `db:"file_type" json:"file_type"`
	DepartmentID      *string    `db:"department_id" json:"department_id,omitempty"`
	DistrictID        *string    `db:"district_id" json:"district_id,omitempty"`
	TownID            *string    `db:"town_id" json:"town_id,omitempty"`
	DivisionID        *string    `db:"division_id" json:"division_id,omitempty"`
	CreatedBy         string     `db:"created_by" json:"created_by"`
	AssignedTo        string     `db:"assigned_to" json:"assigned_to"`
	WorkflowStateID   *string    `db:"workflow_state_id" json:"workflow_state_id,omitempty"`
	SLADeadline       *time.Time `db:"sla_deadline" json:"sla_deadline,omitempty"`
	Status            FileStatus `db:"status" json:"status"`
	RequiresSignature bool       `db:"requires_signature" json:"requires_signature"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Geography returns the file's own location fields.
func (f *CaseFile) Geography() Geography {
	return Geography{
		DistrictID: f.DistrictID,
		TownID:     f.TownID,
		DivisionID: f.DivisionID,
	}
}
