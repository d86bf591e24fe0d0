package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/infra/logger"
)

// NotificationDispatcher hands verification credentials to a downstream
// notifier. Email delivery itself lives outside this service.
type NotificationDispatcher interface {
	SendVerificationEmail(ctx context.Context, payload VerificationNotification) error
}

// VerificationNotification captures what a notifier needs to deliver an
// email-verification link.
type VerificationNotification struct {
	Email     string
	DevToken  string
	ExpiresAt time.Time
}

type noopDispatcher struct{}

func (noopDispatcher) SendVerificationEmail(context.Context, VerificationNotification) error {
	return nil
}

// LoggingNotificationDispatcher records dispatch events for observability
// without delivering them.
type LoggingNotificationDispatcher struct {
	logger *zap.Logger
}

// NewLoggingNotificationDispatcher constructs a dispatcher backed by
// structured logging.
func NewLoggingNotificationDispatcher(log *zap.Logger) NotificationDispatcher {
	if log == nil {
		return noopDispatcher{}
	}
	return &LoggingNotificationDispatcher{logger: log}
}

func (d *LoggingNotificationDispatcher) SendVerificationEmail(_ context.Context, payload VerificationNotification) error {
	d.logger.Info("verification email dispatched",
		zap.String("email", logger.MaskEmail(payload.Email)),
		zap.Time("expires_at", payload.ExpiresAt),
	)
	return nil
}
