package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/pkg/config"
	"github.com/noah-isme/efile-routing-api/pkg/jobs"
)

type notificationSender interface {
	Send(ctx context.Context, notification models.Notification) error
}

// NotificationService is the post-commit outbox. The marking flow hands it
// notifications only after the transaction has committed; dispatch runs on
// queue workers and failures never reach the caller.
type NotificationService struct {
	sender  notificationSender
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool
}

// NewNotificationService builds the service and its worker queue.
func NewNotificationService(sender notificationSender, metrics *MetricsService, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		sender:  sender,
		metrics: metrics,
		logger:  logger,
		enabled: cfg.Enabled,
	}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s.enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if s.enabled {
		s.queue.Stop()
	}
}

// Dispatch enqueues notifications. Enqueue problems are logged and
// swallowed; the marking is already committed.
func (s *NotificationService) Dispatch(notifications []models.Notification) {
	if !s.enabled {
		return
	}
	for _, n := range notifications {
		err := s.queue.Enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    string(n.Type),
			Payload: n,
		})
		if err != nil {
			s.logger.Warn("failed to enqueue notification",
				zap.String("person_id", n.PersonID),
				zap.String("file_id", n.FileID),
				zap.Error(err))
		}
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Error("notification job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.sender.Send(ctx, notification); err != nil {
		s.metrics.RecordNotificationFailure()
		return err
	}
	return nil
}
