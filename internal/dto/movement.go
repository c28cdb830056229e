package dto

import "github.com/noah-isme/efile-routing-api/internal/models"

// MovementListResponse wraps a file's chronological custody trail.
type MovementListResponse struct {
	FileID     string            `json:"file_id"`
	Movements  []models.Movement `json:"movements"`
	Pagination models.Pagination `json:"pagination"`
}

// ExportResult carries rendered export bytes plus HTTP metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}
