package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

var (
	// ErrBookingNotFound indicates the booking id does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrInsufficientCredits indicates the mentee's balance cannot cover the
	// session rate.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrBookingNotCancelable indicates the booking already left the scheduled
	// state.
	ErrBookingNotCancelable = errors.New("booking cannot be canceled")
	// ErrInvalidBooking indicates missing or inconsistent booking fields.
	ErrInvalidBooking = errors.New("invalid booking")
)

const defaultSessionMinutes = 60

// BookSessionInput carries the fields of a booking request.
type BookSessionInput struct {
	MentorID        string
	ScheduledAt     time.Time
	DurationMinutes int
}

// BookingService owns the booking lifecycle. Credits move through escrow via
// backend accounting procedures; this service never writes the ledger itself.
type BookingService struct {
	bookings   port.BookingRepository
	profiles   port.ProfileRepository
	procedures port.ProcedureCaller
	events     port.EventPublisher
	log        *zap.Logger
}

// NewBookingService constructs a BookingService instance.
func NewBookingService(
	bookings port.BookingRepository,
	profiles port.ProfileRepository,
	procedures port.ProcedureCaller,
	events port.EventPublisher,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		profiles:   profiles,
		procedures: procedures,
		events:     events,
		log:        log,
	}
}

// Book schedules a session and moves the mentor's rate into escrow. Requires
// both canBookSessions and canSpendCredits; mentors hold neither, so a mentor
// account can never book itself.
func (s *BookingService) Book(ctx context.Context, menteeID string, perms domain.PermissionSet, input BookSessionInput) (*domain.Booking, error) {
	if !perms.Has(domain.PermBookSessions) || !perms.Has(domain.PermSpendCredits) {
		return nil, ErrPermissionDenied
	}
	if input.MentorID == "" || input.MentorID == menteeID {
		return nil, fmt.Errorf("%w: bad mentor id", ErrInvalidBooking)
	}
	if input.ScheduledAt.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: session is in the past", ErrInvalidBooking)
	}
	if input.DurationMinutes <= 0 {
		input.DurationMinutes = defaultSessionMinutes
	}

	mentor, err := s.profiles.GetByID(ctx, input.MentorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("load mentor: %w", err)
	}
	if !mentor.IsMentor() || !mentor.Approved {
		return nil, ErrMentorNotFound
	}
	if mentor.SessionRate == nil || *mentor.SessionRate <= 0 {
		return nil, fmt.Errorf("%w: mentor has no session rate", ErrInvalidBooking)
	}
	rate := *mentor.SessionRate

	mentee, err := s.profiles.GetByID(ctx, menteeID)
	if err != nil {
		return nil, fmt.Errorf("load mentee: %w", err)
	}
	if mentee.Credits < rate {
		return nil, ErrInsufficientCredits
	}

	now := time.Now().UTC()
	booking := domain.Booking{
		ID:              uuid.NewString(),
		MenteeID:        menteeID,
		MentorID:        input.MentorID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Credits:         rate,
		Status:          domain.BookingStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	// The procedure debits the mentee and opens the escrow hold atomically.
	// Its balance check is authoritative; the read above only short-circuits
	// the obvious case.
	if err := s.procedures.BookSessionWithEscrow(ctx, booking.ID, menteeID, input.MentorID, rate); err != nil {
		reason := "escrow failed"
		if cancelErr := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCanceled, &reason); cancelErr != nil {
			s.log.Error("booking cleanup after escrow failure",
				zap.String("booking_id", booking.ID),
				zap.Error(cancelErr),
			)
		}
		return nil, fmt.Errorf("book session with escrow: %w", err)
	}

	if err := s.events.PublishSessionBooked(ctx, domain.SessionBookedEvent{
		EventID:   uuid.NewString(),
		BookingID: booking.ID,
		MenteeID:  menteeID,
		MentorID:  input.MentorID,
		Credits:   rate,
		BookedAt:  now,
	}); err != nil {
		s.log.Warn("publish session booked failed", zap.String("booking_id", booking.ID), zap.Error(err))
	}

	s.log.Info("session booked",
		zap.String("booking_id", booking.ID),
		zap.String("mentor_id", input.MentorID),
		zap.Int("credits", rate),
	)

	return &booking, nil
}

// Cancel cancels a scheduled booking and refunds the escrow hold. Either party
// may cancel.
func (s *BookingService) Cancel(ctx context.Context, callerID, bookingID, reason string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("load booking: %w", err)
	}
	if booking.MenteeID != callerID && booking.MentorID != callerID {
		return ErrPermissionDenied
	}
	if booking.Status != domain.BookingStatusScheduled {
		return ErrBookingNotCancelable
	}

	if err := s.procedures.RefundEscrow(ctx, booking.ID); err != nil {
		return fmt.Errorf("refund escrow: %w", err)
	}
	if err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCanceled, &reason); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if err := s.events.PublishBookingCanceled(ctx, domain.BookingCanceledEvent{
		EventID:    uuid.NewString(),
		BookingID:  booking.ID,
		MenteeID:   booking.MenteeID,
		MentorID:   booking.MentorID,
		Reason:     reason,
		CanceledAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warn("publish booking canceled failed", zap.String("booking_id", booking.ID), zap.Error(err))
	}

	return nil
}

// Complete marks a scheduled session as held and releases the escrow to the
// mentor. Only the mentor of the booking may complete it.
func (s *BookingService) Complete(ctx context.Context, mentorID, bookingID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("load booking: %w", err)
	}
	if booking.MentorID != mentorID {
		return ErrPermissionDenied
	}
	if booking.Status != domain.BookingStatusScheduled {
		return fmt.Errorf("%w: booking is %s", ErrInvalidBooking, booking.Status)
	}

	if err := s.procedures.ReleaseEscrow(ctx, booking.ID); err != nil {
		return fmt.Errorf("release escrow: %w", err)
	}
	if err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCompleted, nil); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	s.log.Info("session completed", zap.String("booking_id", booking.ID))
	return nil
}

// Get returns a booking visible to one of its two parties.
func (s *BookingService) Get(ctx context.Context, callerID, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.MenteeID != callerID && booking.MentorID != callerID {
		return nil, ErrPermissionDenied
	}
	return booking, nil
}

// ListForMentee returns the caller's bookings as a mentee.
func (s *BookingService) ListForMentee(ctx context.Context, menteeID string, limit, offset int) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByMentee(ctx, menteeID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// ListForMentor returns the caller's bookings as a mentor.
func (s *BookingService) ListForMentor(ctx context.Context, mentorID string, limit, offset int) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByMentor(ctx, mentorID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Transactions returns the caller's credits ledger for the dashboard.
func (s *BookingService) Transactions(ctx context.Context, profileID string, limit, offset int) ([]domain.CreditTransaction, error) {
	txs, err := s.bookings.ListTransactions(ctx, profileID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// MentorEarnings returns the escrow holds and invoices backing a mentor's
// earnings page.
func (s *BookingService) MentorEarnings(ctx context.Context, mentorID string) ([]domain.CreditEscrow, []domain.MentorInvoice, error) {
	escrow, err := s.bookings.ListEscrowByMentor(ctx, mentorID)
	if err != nil {
		return nil, nil, fmt.Errorf("list escrow: %w", err)
	}
	invoices, err := s.bookings.ListInvoicesByMentor(ctx, mentorID)
	if err != nil {
		return nil, nil, fmt.Errorf("list invoices: %w", err)
	}
	return escrow, invoices, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
