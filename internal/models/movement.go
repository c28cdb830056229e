package models

import "time"

// ActionType labels movement ledger rows.
type ActionType string

const (
	ActionMarkTo          ActionType = "MARK_TO"
	ActionReturnToCreator ActionType = "RETURN_TO_CREATOR"
)

// Movement is an immutable custody-ledger row. Party metadata is copied
// into snapshot columns at the time of the action so later profile edits
// never alter history. Rows are inserted once and never updated.
type Movement struct {
	ID                string     `db:"id" json:"id"`
	FileID            string     `db:"file_id" json:"file_id"`
	FromPersonID      string     `db:"from_person_id" json:"from_person_id"`
	ToPersonID        string     `db:"to_person_id" json:"to_person_id"`
	FromDepartmentID  *string    `db:"from_department_id" json:"from_department_id,omitempty"`
	ToDepartmentID    *string    `db:"to_department_id" json:"to_department_id,omitempty"`
	ActionType        ActionType `db:"action_type" json:"action_type"`
	Remarks           string     `db:"remarks" json:"remarks"`
	IsTeamInternal    bool       `db:"is_team_internal" json:"is_team_internal"`
	IsReturnToCreator bool       `db:"is_return_to_creator" json:"is_return_to_creator"`
	TatStarted        bool       `db:"tat_started" json:"tat_started"`

	FromName        string  `db:"from_name" json:"from_name"`
	FromDesignation string  `db:"from_designation" json:"from_designation"`
	FromTownID      *string `db:"from_town_id" json:"from_town_id,omitempty"`
	FromDivisionID  *string `db:"from_division_id" json:"from_division_id,omitempty"`
	ToName          string  `db:"to_name" json:"to_name"`
	ToDesignation   string  `db:"to_designation" json:"to_designation"`
	ToTownID        *string `db:"to_town_id" json:"to_town_id,omitempty"`
	ToDivisionID    *string `db:"to_division_id" json:"to_division_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MovementFilter constrains ledger listing.
type MovementFilter struct {
	FileID       string
	FromPersonID string
	ToPersonID   string
	Limit        int
	Offset       int
}
