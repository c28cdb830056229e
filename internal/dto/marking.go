package dto

import "github.com/noah-isme/efile-routing-api/internal/models"

// MarkFileRequest forwards a file to recipients. The engine routes
// single-hop: only the first target id is processed per call.
type MarkFileRequest struct {
	TargetPersonIDs []string `json:"target_person_ids" validate:"required,min=1,dive,required"`
	Remarks         string   `json:"remarks" validate:"max=2000"`
}

// MarkFileResponse reports the outcome of a marking action.
type MarkFileResponse struct {
	State          models.RoutingState         `json:"state"`
	IsTeamInternal bool                        `json:"is_team_internal"`
	TatStarted     bool                        `json:"tat_started"`
	Movement       *models.Movement            `json:"movement"`
	Recipients     []models.RecipientCandidate `json:"recipients"`
}

// RecipientListResponse wraps the eligible-recipient picker payload.
type RecipientListResponse struct {
	FileID     string                      `json:"file_id"`
	Recipients []models.RecipientCandidate `json:"recipients"`
}
