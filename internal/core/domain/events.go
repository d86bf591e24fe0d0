package domain

import "time"

// UserRegisteredEvent is published when a new account completes registration.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        *string
	Role         Role
	Status       string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// SessionBookedEvent is published when a mentoring session booking is created.
type SessionBookedEvent struct {
	EventID   string
	BookingID string
	MenteeID  string
	MentorID  string
	Credits   int
	BookedAt  time.Time
}

// BookingCanceledEvent is published when a booking is canceled and its escrow
// refunded.
type BookingCanceledEvent struct {
	EventID    string
	BookingID  string
	MenteeID   string
	MentorID   string
	Reason     string
	CanceledAt time.Time
}

// SessionRevokedEvent is published when a login session is revoked.
type SessionRevokedEvent struct {
	EventID   string
	SessionID string
	UserID    string
	Reason    string
	RevokedAt time.Time
}

// CreditsPurchasedEvent is published when a team admin purchases credits.
type CreditsPurchasedEvent struct {
	EventID        string
	ProfileID      string
	OrganizationID *string
	Credits        int
	PurchasedAt    time.Time
}
