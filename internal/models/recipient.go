package models

// AllowedReason records which routing rule admitted a candidate.
type AllowedReason string

const (
	ReasonMatrix       AllowedReason = "ROUTING_MATRIX"
	ReasonTeamMember   AllowedReason = "TEAM_MEMBER"
	ReasonDepartmentSE AllowedReason = "DEPARTMENT_SE"
	ReasonDivisionSE   AllowedReason = "DIVISION_SE"
)

// RecipientCandidate is a transient eligibility result. Candidates are
// computed fresh for every request and never cached or persisted.
type RecipientCandidate struct {
	PersonID     string        `json:"person_id"`
	DisplayName  string        `json:"display_name"`
	RoleCode     string        `json:"role_code"`
	AllowedScope RoutingScope  `json:"allowed_level_scope"`
	Reason       AllowedReason `json:"allowed_reason"`
}
