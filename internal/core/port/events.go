package port

import (
	"context"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishSessionBooked(ctx context.Context, event domain.SessionBookedEvent) error
	PublishBookingCanceled(ctx context.Context, event domain.BookingCanceledEvent) error
	PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error
	PublishCreditsPurchased(ctx context.Context, event domain.CreditsPurchasedEvent) error
}
