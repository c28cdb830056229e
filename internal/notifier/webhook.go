package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/pkg/config"
)

// WebhookNotifier delivers notifications to the external messaging
// gateway (in-app push + WhatsApp bridge). Delivery is strictly
// best-effort: a circuit breaker sheds load when the gateway misbehaves
// and a rate limiter caps outbound volume.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewWebhookNotifier builds the notifier. An empty URL yields a disabled
// notifier whose Send logs and drops.
func NewWebhookNotifier(cfg config.NotificationsConfig, logger *zap.Logger) *WebhookNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "notification-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && counts.TotalFailures*2 >= counts.Requests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Sugar().Warnw("notifier breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 10
	}

	return &WebhookNotifier{
		url:     cfg.WebhookURL,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
	}
}

// Send posts a notification to the gateway.
func (n *WebhookNotifier) Send(ctx context.Context, notification models.Notification) error {
	if n.url == "" {
		n.logger.Debug("webhook notifier disabled, dropping notification",
			zap.String("person_id", notification.PersonID),
			zap.String("type", string(notification.Type)))
		return nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notifier rate limit: %w", err)
	}

	_, err := n.breaker.Execute(func() (struct{}, error) {
		body, err := json.Marshal(notification)
		if err != nil {
			return struct{}{}, fmt.Errorf("encode notification: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, fmt.Errorf("build notification request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("deliver notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return struct{}{}, fmt.Errorf("notification gateway returned %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	return err
}
