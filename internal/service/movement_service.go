package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/efile-routing-api/internal/dto"
	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/pkg/config"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
	"github.com/noah-isme/efile-routing-api/pkg/export"
)

type movementReader interface {
	ListByFile(ctx context.Context, filter models.MovementFilter) ([]models.Movement, error)
	CountByFile(ctx context.Context, fileID string) (int, error)
}

type fileReader interface {
	GetByID(ctx context.Context, id string) (*models.CaseFile, error)
}

// MovementService reads the custody ledger and renders export documents.
type MovementService struct {
	movements movementReader
	files     fileReader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	cfg       config.ExportsConfig
	logger    *zap.Logger
}

// NewMovementService wires the ledger reader.
func NewMovementService(movements movementReader, files fileReader, cfg config.ExportsConfig, logger *zap.Logger) *MovementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovementService{
		movements: movements,
		files:     files,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		cfg:       cfg,
		logger:    logger,
	}
}

// ListMovements returns the chronological custody trail for a file.
func (s *MovementService) ListMovements(ctx context.Context, fileID string, page, pageSize int) (*dto.MovementListResponse, error) {
	file, err := s.loadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 200
	}
	movements, err := s.movements.ListByFile(ctx, models.MovementFilter{
		FileID: file.ID,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list movements")
	}
	total, err := s.movements.CountByFile(ctx, file.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count movements")
	}

	return &dto.MovementListResponse{
		FileID:    file.ID,
		Movements: movements,
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: total,
		},
	}, nil
}

// Export renders the full custody trail as csv or pdf. The audit trail
// for exports is written by route middleware.
func (s *MovementService) Export(ctx context.Context, fileID, format string) (*dto.ExportResult, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	file, err := s.loadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.MaxRows
	if limit <= 0 {
		limit = 1000
	}
	movements, err := s.movements.ListByFile(ctx, models.MovementFilter{FileID: file.ID, Limit: limit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load movements for export")
	}

	dataset := movementDataset(movements)
	title := fmt.Sprintf("Movement Register - %s", file.FileNumber)
	baseName := "movements_" + strings.ReplaceAll(file.FileNumber, "/", "-")

	var result *dto.ExportResult
	switch format {
	case "csv":
		content, renderErr := s.csv.Render(dataset)
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		result = &dto.ExportResult{
			FileName:    baseName + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}
	case "pdf":
		content, renderErr := s.pdf.Render(dataset, title)
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		result = &dto.ExportResult{
			FileName:    baseName + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}
	}

	return result, nil
}

func (s *MovementService) loadFile(ctx context.Context, fileID string) (*models.CaseFile, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	return file, nil
}

var movementHeaders = []string{
	"Date", "Action", "From", "From Designation", "To", "To Designation",
	"Team Internal", "Return To Creator", "TAT Started", "Remarks",
}

func movementDataset(movements []models.Movement) export.Dataset {
	rows := make([]map[string]string, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, map[string]string{
			"Date":              m.CreatedAt.Format(time.RFC3339),
			"Action":            string(m.ActionType),
			"From":              m.FromName,
			"From Designation":  m.FromDesignation,
			"To":                m.ToName,
			"To Designation":    m.ToDesignation,
			"Team Internal":     formatBool(m.IsTeamInternal),
			"Return To Creator": formatBool(m.IsReturnToCreator),
			"TAT Started":       formatBool(m.TatStarted),
			"Remarks":           m.Remarks,
		})
	}
	return export.Dataset{Headers: movementHeaders, Rows: rows}
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
