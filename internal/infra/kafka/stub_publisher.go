package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, subjectID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("subject_id", subjectID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"email":         event.Email,
		"role":          event.Role,
		"status":        event.Status,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishSessionBooked logs booking.created events.
func (p *StubPublisher) PublishSessionBooked(_ context.Context, event domain.SessionBookedEvent) error {
	payload := map[string]any{
		"booking_id": event.BookingID,
		"mentee_id":  event.MenteeID,
		"mentor_id":  event.MentorID,
		"credits":    event.Credits,
		"booked_at":  event.BookedAt,
	}
	p.logEvent("booking.created", event.MenteeID, event.BookedAt, payload)
	return nil
}

// PublishBookingCanceled logs booking.canceled events.
func (p *StubPublisher) PublishBookingCanceled(_ context.Context, event domain.BookingCanceledEvent) error {
	payload := map[string]any{
		"booking_id":  event.BookingID,
		"mentee_id":   event.MenteeID,
		"mentor_id":   event.MentorID,
		"reason":      event.Reason,
		"canceled_at": event.CanceledAt,
	}
	p.logEvent("booking.canceled", event.MenteeID, event.CanceledAt, payload)
	return nil
}

// PublishSessionRevoked logs session.revoked events.
func (p *StubPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	payload := map[string]any{
		"session_id": event.SessionID,
		"user_id":    event.UserID,
		"reason":     event.Reason,
		"revoked_at": event.RevokedAt,
	}
	p.logEvent("session.revoked", event.UserID, event.RevokedAt, payload)
	return nil
}

// PublishCreditsPurchased logs credits.purchased events.
func (p *StubPublisher) PublishCreditsPurchased(_ context.Context, event domain.CreditsPurchasedEvent) error {
	payload := map[string]any{
		"profile_id":      event.ProfileID,
		"organization_id": event.OrganizationID,
		"credits":         event.Credits,
		"purchased_at":    event.PurchasedAt,
	}
	p.logEvent("credits.purchased", event.ProfileID, event.PurchasedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
