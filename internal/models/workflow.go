package models

import "time"

// RoutingState is the per-file workflow state.
type RoutingState string

const (
	StateTeamInternal      RoutingState = "TEAM_INTERNAL"
	StateExternal          RoutingState = "EXTERNAL"
	StateReturnedToCreator RoutingState = "RETURNED_TO_CREATOR"
)

// Valid reports whether the state is one of the known routing states.
func (s RoutingState) Valid() bool {
	switch s {
	case StateTeamInternal, StateExternal, StateReturnedToCreator:
		return true
	}
	return false
}

// MoveEventKind classifies a single marking action. The classifier is a
// pure function over the marking inputs; the transition table maps
// (state, event) to the next state.
type MoveEventKind string

const (
	EventReturnToCreator    MoveEventKind = "RETURN_TO_CREATOR"
	EventExternalEscalation MoveEventKind = "EXTERNAL_ESCALATION"
	EventTeamInternalMove   MoveEventKind = "TEAM_INTERNAL_MOVE"
	EventNoOp               MoveEventKind = "NO_OP"
)

// WorkflowState is the per-file singleton routing record. Created lazily
// on first marking, mutated only by the state machine, never deleted.
type WorkflowState struct {
	ID           string       `db:"id" json:"id"`
	FileID       string       `db:"file_id" json:"file_id"`
	CurrentState RoutingState `db:"current_state" json:"current_state"`
	LastActorID  *string      `db:"last_actor_id" json:"last_actor_id,omitempty"`
	TatActive    bool         `db:"tat_active" json:"tat_active"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}
