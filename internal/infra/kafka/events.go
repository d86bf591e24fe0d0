package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	SubjectID string           `json:"subject_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, subjectID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		SubjectID: subjectID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes platform.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Email        *string        `json:"email,omitempty"`
		Role         string         `json:"role"`
		Status       string         `json:"status"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Email:        event.Email,
		Role:         string(event.Role),
		Status:       event.Status,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishSessionBooked publishes platform.booking.created events.
func (p *EventPublisher) PublishSessionBooked(ctx context.Context, event domain.SessionBookedEvent) error {
	payload := struct {
		BookingID string    `json:"booking_id"`
		MenteeID  string    `json:"mentee_id"`
		MentorID  string    `json:"mentor_id"`
		Credits   int       `json:"credits"`
		BookedAt  time.Time `json:"booked_at"`
	}{
		BookingID: event.BookingID,
		MenteeID:  event.MenteeID,
		MentorID:  event.MentorID,
		Credits:   event.Credits,
		BookedAt:  event.BookedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "booking.created", event.MenteeID, event.BookedAt, payload)
}

// PublishBookingCanceled publishes platform.booking.canceled events.
func (p *EventPublisher) PublishBookingCanceled(ctx context.Context, event domain.BookingCanceledEvent) error {
	payload := struct {
		BookingID  string    `json:"booking_id"`
		MenteeID   string    `json:"mentee_id"`
		MentorID   string    `json:"mentor_id"`
		Reason     string    `json:"reason,omitempty"`
		CanceledAt time.Time `json:"canceled_at"`
	}{
		BookingID:  event.BookingID,
		MenteeID:   event.MenteeID,
		MentorID:   event.MentorID,
		Reason:     event.Reason,
		CanceledAt: event.CanceledAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "booking.canceled", event.MenteeID, event.CanceledAt, payload)
}

// PublishSessionRevoked publishes platform.session.revoked events.
func (p *EventPublisher) PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error {
	payload := struct {
		SessionID string    `json:"session_id"`
		UserID    string    `json:"user_id"`
		Reason    string    `json:"reason,omitempty"`
		RevokedAt time.Time `json:"revoked_at"`
	}{
		SessionID: event.SessionID,
		UserID:    event.UserID,
		Reason:    event.Reason,
		RevokedAt: event.RevokedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "session.revoked", event.UserID, event.RevokedAt, payload)
}

// PublishCreditsPurchased publishes platform.credits.purchased events.
func (p *EventPublisher) PublishCreditsPurchased(ctx context.Context, event domain.CreditsPurchasedEvent) error {
	payload := struct {
		ProfileID      string    `json:"profile_id"`
		OrganizationID *string   `json:"organization_id,omitempty"`
		Credits        int       `json:"credits"`
		PurchasedAt    time.Time `json:"purchased_at"`
	}{
		ProfileID:      event.ProfileID,
		OrganizationID: event.OrganizationID,
		Credits:        event.Credits,
		PurchasedAt:    event.PurchasedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "credits.purchased", event.ProfileID, event.PurchasedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
