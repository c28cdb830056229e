package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/efile-routing-api/internal/dto"
	"github.com/noah-isme/efile-routing-api/internal/models"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
	"github.com/noah-isme/efile-routing-api/pkg/response"
)

type markingService interface {
	ListRecipients(ctx context.Context, fileID string, claims *models.JWTClaims) (*dto.RecipientListResponse, error)
	MarkFile(ctx context.Context, fileID string, claims *models.JWTClaims, req dto.MarkFileRequest) (*dto.MarkFileResponse, error)
}

// MarkingHandler exposes the file routing endpoints.
type MarkingHandler struct {
	service markingService
}

// NewMarkingHandler builds a new handler.
func NewMarkingHandler(service markingService) *MarkingHandler {
	return &MarkingHandler{service: service}
}

// Recipients godoc
// @Summary List eligible recipients for a file
// @Tags Routing
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/recipients [get]
func (h *MarkingHandler) Recipients(c *gin.Context) {
	claims := claimsFromContext(c)
	result, err := h.service.ListRecipients(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Mark godoc
// @Summary Mark a file to a recipient
// @Tags Routing
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param payload body dto.MarkFileRequest true "Marking payload"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/mark [post]
func (h *MarkingHandler) Mark(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.MarkFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marking payload"))
		return
	}
	result, err := h.service.MarkFile(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
