package service

import "github.com/noah-isme/efile-routing-api/internal/models"

// MoveContext carries the raw inputs of one marking action. Classification
// and transition are pure so routing decisions stay deterministic and
// testable without a database.
type MoveContext struct {
	CurrentState    models.RoutingState
	TargetIsCreator bool
	TargetRoleCode  string
	TeamInternal    bool
}

// ClassifyMove reduces a marking action to a move event.
//
// Precedence: a move to the file creator while the file is EXTERNAL is a
// return; otherwise a move to an external role outside team routing
// escalates; otherwise a shared team makes it internal; anything else
// leaves the state untouched.
func ClassifyMove(mc MoveContext) models.MoveEventKind {
	if mc.TargetIsCreator && mc.CurrentState == models.StateExternal {
		return models.EventReturnToCreator
	}
	if models.IsExternalRoleCode(mc.TargetRoleCode) && !mc.TeamInternal {
		return models.EventExternalEscalation
	}
	if mc.TeamInternal {
		return models.EventTeamInternalMove
	}
	return models.EventNoOp
}

// transitions maps (state, event) to the next state. Events absent for a
// state leave it unchanged.
var transitions = map[models.RoutingState]map[models.MoveEventKind]models.RoutingState{
	models.StateTeamInternal: {
		models.EventExternalEscalation: models.StateExternal,
		models.EventTeamInternalMove:   models.StateTeamInternal,
	},
	models.StateExternal: {
		models.EventReturnToCreator:    models.StateReturnedToCreator,
		models.EventExternalEscalation: models.StateExternal,
		models.EventTeamInternalMove:   models.StateTeamInternal,
	},
	models.StateReturnedToCreator: {
		models.EventExternalEscalation: models.StateExternal,
		models.EventTeamInternalMove:   models.StateTeamInternal,
	},
}

// NextState applies the transition table. Unknown states normalize to
// TEAM_INTERNAL first, matching the lazy default for files that have never
// been routed.
func NextState(current models.RoutingState, event models.MoveEventKind) models.RoutingState {
	if !current.Valid() {
		current = models.StateTeamInternal
	}
	if next, ok := transitions[current][event]; ok {
		return next
	}
	return current
}

// StartsTat reports whether the event starts the SLA clock. External
// escalation is the only trigger.
func StartsTat(event models.MoveEventKind) bool {
	return event == models.EventExternalEscalation
}

// TatActiveAfter computes the stored tat_active flag following an event.
// Team routing and returns pause the clock; a no-op carries the previous
// value.
func TatActiveAfter(event models.MoveEventKind, previous bool) bool {
	switch event {
	case models.EventExternalEscalation:
		return true
	case models.EventReturnToCreator, models.EventTeamInternalMove:
		return false
	}
	return previous
}
