package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/efile-routing-api/pkg/config"
)

type slaMatrixReader interface {
	GetHours(ctx context.Context, fromRoleCode, toRoleCode string) (int, error)
}

// SLAService turns role-pair SLA hours into deadlines. Lookups are
// fail-soft: a missing or failing matrix entry yields no deadline and the
// marking proceeds, keeping any previously stored deadline.
type SLAService struct {
	matrix slaMatrixReader
	cfg    config.SLAConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewSLAService wires the calculator.
func NewSLAService(matrix slaMatrixReader, cfg config.SLAConfig, logger *zap.Logger) *SLAService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAService{matrix: matrix, cfg: cfg, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ComputeDeadline returns now + SLA hours for the role pair, or nil when
// no hours could be determined.
func (s *SLAService) ComputeDeadline(ctx context.Context, fromRoleCode, toRoleCode string) *time.Time {
	if s.cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LookupTimeout)
		defer cancel()
	}

	hours, err := s.matrix.GetHours(ctx, fromRoleCode, toRoleCode)
	if err != nil {
		if s.cfg.DefaultHours > 0 {
			s.logger.Warn("sla lookup failed, using default hours",
				zap.String("from_role", fromRoleCode),
				zap.String("to_role", toRoleCode),
				zap.Int("default_hours", s.cfg.DefaultHours),
				zap.Error(err))
			hours = s.cfg.DefaultHours
		} else {
			s.logger.Warn("sla lookup failed, keeping existing deadline",
				zap.String("from_role", fromRoleCode),
				zap.String("to_role", toRoleCode),
				zap.Error(err))
			return nil
		}
	}
	if hours <= 0 {
		return nil
	}

	deadline := s.now().Add(time.Duration(hours) * time.Hour)
	return &deadline
}
