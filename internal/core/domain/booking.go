package domain

import "time"

// BookingStatus enumerates the lifecycle of a mentoring session booking.
type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// Booking is a paid one-on-one mentoring session between a mentee and a
// mentor. Credits are moved into escrow when the booking is created and
// released by backend accounting procedures when it completes.
type Booking struct {
	ID              string
	MenteeID        string
	MentorID        string
	ScheduledAt     time.Time
	DurationMinutes int
	Credits         int
	Status          BookingStatus
	MeetingURL      *string
	CanceledReason  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreditTransactionType enumerates ledger entry kinds.
type CreditTransactionType string

const (
	CreditTxPurchase CreditTransactionType = "purchase"
	CreditTxSpend    CreditTransactionType = "spend"
	CreditTxEscrow   CreditTransactionType = "escrow"
	CreditTxRelease  CreditTransactionType = "release"
	CreditTxRefund   CreditTransactionType = "refund"
)

// CreditTransaction is a row in the credits ledger. The ledger is written by
// backend accounting procedures; this service only reads it for dashboards.
type CreditTransaction struct {
	ID        string
	ProfileID string
	BookingID *string
	Type      CreditTransactionType
	Amount    int
	Note      *string
	CreatedAt time.Time
}

// EscrowStatus enumerates escrow hold states.
type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "held"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
)

// CreditEscrow is a read-only view of credits held against a booking.
type CreditEscrow struct {
	ID         string
	BookingID  string
	MentorID   string
	Credits    int
	Status     EscrowStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// MentorInvoice summarizes a mentor's payable balance for a period. Invoice
// settlement runs in the process_mentor_invoice database procedure.
type MentorInvoice struct {
	ID          string
	MentorID    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Credits     int
	Status      string
	ProcessedAt *time.Time
	CreatedAt   time.Time
}
