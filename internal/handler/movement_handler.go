package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/efile-routing-api/internal/dto"
	"github.com/noah-isme/efile-routing-api/pkg/response"
)

type movementService interface {
	ListMovements(ctx context.Context, fileID string, page, pageSize int) (*dto.MovementListResponse, error)
	Export(ctx context.Context, fileID, format string) (*dto.ExportResult, error)
}

// MovementHandler exposes custody-trail endpoints.
type MovementHandler struct {
	service movementService
}

// NewMovementHandler builds a new handler.
func NewMovementHandler(service movementService) *MovementHandler {
	return &MovementHandler{service: service}
}

// List godoc
// @Summary List a file's movement history
// @Tags Movements
// @Produce json
// @Param id path string true "File ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/movements [get]
func (h *MovementHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "200"))

	result, err := h.service.ListMovements(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Movements, &result.Pagination)
}

// Export godoc
// @Summary Export a file's movement register
// @Tags Movements
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "File ID"
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Router /files/{id}/movements/export [get]
func (h *MovementHandler) Export(c *gin.Context) {
	result, err := h.service.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
