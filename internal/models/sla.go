package models

// SLARule is one row of the role-pair SLA matrix.
type SLARule struct {
	ID           string `db:"id" json:"id"`
	FromRoleCode string `db:"from_role_code" json:"from_role_code"`
	ToRoleCode   string `db:"to_role_code" json:"to_role_code"`
	Hours        int    `db:"hours" json:"hours"`
}

// MatrixRule is one row of the file-type routing matrix: which role may
// receive a file of the given type, and at which scope.
type MatrixRule struct {
	ID       string       `db:"id" json:"id"`
	FileType string       `db:"file_type" json:"file_type"`
	RoleCode string       `db:"role_code" json:"role_code"`
	Scope    RoutingScope `db:"scope" json:"scope"`
}
