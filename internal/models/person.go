package models

import (
	"strings"
	"time"
)

// Role codes treated as external escalation targets. Marking a file to one
// of these (outside team routing) moves the file to the EXTERNAL state and
// starts the TAT clock.
const (
	RoleCodeSE  = "SE"
	RoleCodeCE  = "CE"
	RoleCodeCFO = "CFO"
	RoleCodeCOO = "COO"
	RoleCodeCEO = "CEO"
)

var externalRoleCodes = map[string]struct{}{
	RoleCodeSE:  {},
	RoleCodeCE:  {},
	RoleCodeCFO: {},
	RoleCodeCOO: {},
	RoleCodeCEO: {},
}

// IsExternalRoleCode reports whether a role code escalates routing.
func IsExternalRoleCode(code string) bool {
	_, ok := externalRoleCodes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsGeoExemptRoleCode reports whether an actor role skips geographic
// validation entirely.
func IsGeoExemptRoleCode(code string) bool {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case RoleCodeCEO, RoleCodeCOO:
		return true
	}
	return false
}

// Role is an organizational role held by e-filing users.
type Role struct {
	ID         string `db:"id" json:"id"`
	Code       string `db:"code" json:"code"`
	Name       string `db:"name" json:"name"`
	IsExternal bool   `db:"is_external" json:"is_external"`
}

// RoleLocation is the default geographic assignment of a role, used as a
// fallback when a person carries no personal geography.
type RoleLocation struct {
	RoleID     string  `db:"role_id" json:"role_id"`
	DistrictID *string `db:"district_id" json:"district_id,omitempty"`
	TownID     *string `db:"town_id" json:"town_id,omitempty"`
	DivisionID *string `db:"division_id" json:"division_id,omitempty"`
}

// Geography is a resolved location triple. Nil fields mean "unknown".
type Geography struct {
	DistrictID *string `json:"district_id,omitempty"`
	TownID     *string `json:"town_id,omitempty"`
	DivisionID *string `json:"division_id,omitempty"`
}

// Complete reports whether every field is populated.
func (g Geography) Complete() bool {
	return g.DistrictID != nil && g.TownID != nil && g.DivisionID != nil
}

// Person is an e-filing profile: a role holder inside a department with
// optional personal geography.
type Person struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Designation  string    `db:"designation" json:"designation"`
	RoleID       string    `db:"role_id" json:"role_id"`
	RoleCode     string    `db:"role_code" json:"role_code"`
	RoleName     string    `db:"role_name" json:"role_name"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	DistrictID   *string   `db:"district_id" json:"district_id,omitempty"`
	TownID       *string   `db:"town_id" json:"town_id,omitempty"`
	DivisionID   *string   `db:"division_id" json:"division_id,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PersonalGeography returns the person's own location fields, untouched by
// role fallback.
func (p *Person) PersonalGeography() Geography {
	return Geography{
		DistrictID: p.DistrictID,
		TownID:     p.TownID,
		DivisionID: p.DivisionID,
	}
}
