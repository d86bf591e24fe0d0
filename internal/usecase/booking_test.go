package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

type stubBookings struct {
	port.BookingRepository

	mu       sync.Mutex
	bookings map[string]*domain.Booking
}

func (s *stubBookings) Create(_ context.Context, booking domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bookings == nil {
		s.bookings = map[string]*domain.Booking{}
	}
	copied := booking
	s.bookings[booking.ID] = &copied
	return nil
}

func (s *stubBookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (s *stubBookings) UpdateStatus(_ context.Context, id string, status domain.BookingStatus, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.Status = status
	booking.CanceledReason = reason
	return nil
}

type stubProcedures struct {
	bookErr    error
	refundErr  error
	releaseErr error

	mu       sync.Mutex
	booked   []string
	refunded []string
	released []string
}

func (s *stubProcedures) GetMentorRating(_ context.Context, _ string) (float64, int, error) {
	return 4.5, 12, nil
}

func (s *stubProcedures) BookSessionWithEscrow(_ context.Context, bookingID, _, _ string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bookErr != nil {
		return s.bookErr
	}
	s.booked = append(s.booked, bookingID)
	return nil
}

func (s *stubProcedures) ReleaseEscrow(_ context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.releaseErr != nil {
		return s.releaseErr
	}
	s.released = append(s.released, bookingID)
	return nil
}

func (s *stubProcedures) RefundEscrow(_ context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refundErr != nil {
		return s.refundErr
	}
	s.refunded = append(s.refunded, bookingID)
	return nil
}

func (s *stubProcedures) ProcessMentorInvoice(_ context.Context, _ string) error { return nil }

type stubEvents struct {
	mu        sync.Mutex
	booked    int
	canceled  int
	purchased int
}

func (s *stubEvents) PublishUserRegistered(_ context.Context, _ domain.UserRegisteredEvent) error {
	return nil
}

func (s *stubEvents) PublishSessionBooked(_ context.Context, _ domain.SessionBookedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.booked++
	return nil
}

func (s *stubEvents) PublishBookingCanceled(_ context.Context, _ domain.BookingCanceledEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canceled++
	return nil
}

func (s *stubEvents) PublishSessionRevoked(_ context.Context, _ domain.SessionRevokedEvent) error {
	return nil
}

func (s *stubEvents) PublishCreditsPurchased(_ context.Context, _ domain.CreditsPurchasedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchased++
	return nil
}

func intPtr(v int) *int { return &v }

func bookableMentor(id string, rate int) *domain.Profile {
	return &domain.Profile{ID: id, Role: domain.RoleMentor, Approved: true, SessionRate: intPtr(rate)}
}

func newBookingService(t *testing.T, bookings *stubBookings, profiles *stubProfiles, procedures *stubProcedures, events *stubEvents) *BookingService {
	t.Helper()
	return NewBookingService(bookings, profiles, procedures, events, zaptest.NewLogger(t))
}

func TestBookMovesCreditsIntoEscrow(t *testing.T) {
	bookings := &stubBookings{}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"mentor-1": bookableMentor("mentor-1", 50),
		"sub-1":    {ID: "sub-1", Role: domain.RoleSubscriber, Credits: 120},
	}}
	procedures := &stubProcedures{}
	events := &stubEvents{}
	svc := newBookingService(t, bookings, profiles, procedures, events)

	booking, err := svc.Book(context.Background(), "sub-1", domain.PermissionsFor(domain.RoleSubscriber), BookSessionInput{
		MentorID:    "mentor-1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	if booking.Credits != 50 {
		t.Errorf("booking credits = %d, want mentor rate 50", booking.Credits)
	}
	if booking.Status != domain.BookingStatusScheduled {
		t.Errorf("status = %s, want scheduled", booking.Status)
	}
	if len(procedures.booked) != 1 || procedures.booked[0] != booking.ID {
		t.Errorf("escrow procedure calls = %v, want [%s]", procedures.booked, booking.ID)
	}
	if events.booked != 1 {
		t.Errorf("session booked events = %d, want 1", events.booked)
	}
}

func TestBookRequiresBothCapabilityFlags(t *testing.T) {
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"mentor-1": bookableMentor("mentor-1", 50),
		"mentor-2": bookableMentor("mentor-2", 30),
	}}
	svc := newBookingService(t, &stubBookings{}, profiles, &stubProcedures{}, &stubEvents{})

	// Mentors hold neither booking flag, so a mentor cannot book a peer.
	_, err := svc.Book(context.Background(), "mentor-2", domain.PermissionsFor(domain.RoleMentor), BookSessionInput{
		MentorID:    "mentor-1",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestBookRejectsInsufficientCredits(t *testing.T) {
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"mentor-1": bookableMentor("mentor-1", 50),
		"sub-1":    {ID: "sub-1", Role: domain.RoleSubscriber, Credits: 10},
	}}
	procedures := &stubProcedures{}
	svc := newBookingService(t, &stubBookings{}, profiles, procedures, &stubEvents{})

	_, err := svc.Book(context.Background(), "sub-1", domain.PermissionsFor(domain.RoleSubscriber), BookSessionInput{
		MentorID:    "mentor-1",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("error = %v, want ErrInsufficientCredits", err)
	}
	if len(procedures.booked) != 0 {
		t.Error("escrow procedure must not run when the balance is short")
	}
}

func TestBookCancelsBookingWhenEscrowFails(t *testing.T) {
	bookings := &stubBookings{}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"mentor-1": bookableMentor("mentor-1", 50),
		"sub-1":    {ID: "sub-1", Role: domain.RoleSubscriber, Credits: 120},
	}}
	procedures := &stubProcedures{bookErr: errors.New("insufficient balance")}
	events := &stubEvents{}
	svc := newBookingService(t, bookings, profiles, procedures, events)

	_, err := svc.Book(context.Background(), "sub-1", domain.PermissionsFor(domain.RoleSubscriber), BookSessionInput{
		MentorID:    "mentor-1",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected error when escrow procedure fails")
	}

	bookings.mu.Lock()
	defer bookings.mu.Unlock()
	for _, b := range bookings.bookings {
		if b.Status != domain.BookingStatusCanceled {
			t.Errorf("orphaned booking status = %s, want canceled", b.Status)
		}
	}
	if events.booked != 0 {
		t.Error("no booked event should be published on escrow failure")
	}
}

func TestBookRejectsUnapprovedMentor(t *testing.T) {
	pending := bookableMentor("mentor-1", 50)
	pending.Approved = false
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"mentor-1": pending,
		"sub-1":    {ID: "sub-1", Role: domain.RoleSubscriber, Credits: 120},
	}}
	svc := newBookingService(t, &stubBookings{}, profiles, &stubProcedures{}, &stubEvents{})

	_, err := svc.Book(context.Background(), "sub-1", domain.PermissionsFor(domain.RoleSubscriber), BookSessionInput{
		MentorID:    "mentor-1",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if !errors.Is(err, ErrMentorNotFound) {
		t.Fatalf("error = %v, want ErrMentorNotFound", err)
	}
}

func TestCancelRefundsEscrow(t *testing.T) {
	bookings := &stubBookings{bookings: map[string]*domain.Booking{
		"bk-1": {ID: "bk-1", MenteeID: "sub-1", MentorID: "mentor-1", Status: domain.BookingStatusScheduled},
	}}
	procedures := &stubProcedures{}
	events := &stubEvents{}
	svc := newBookingService(t, bookings, &stubProfiles{}, procedures, events)

	if err := svc.Cancel(context.Background(), "sub-1", "bk-1", "schedule conflict"); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	if len(procedures.refunded) != 1 {
		t.Errorf("refund calls = %v, want one", procedures.refunded)
	}
	got, _ := bookings.GetByID(context.Background(), "bk-1")
	if got.Status != domain.BookingStatusCanceled {
		t.Errorf("status = %s, want canceled", got.Status)
	}
	if events.canceled != 1 {
		t.Errorf("canceled events = %d, want 1", events.canceled)
	}
}

func TestCancelRejectsThirdParties(t *testing.T) {
	bookings := &stubBookings{bookings: map[string]*domain.Booking{
		"bk-1": {ID: "bk-1", MenteeID: "sub-1", MentorID: "mentor-1", Status: domain.BookingStatusScheduled},
	}}
	svc := newBookingService(t, bookings, &stubProfiles{}, &stubProcedures{}, &stubEvents{})

	err := svc.Cancel(context.Background(), "stranger", "bk-1", "nope")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestCancelRejectsCompletedBooking(t *testing.T) {
	bookings := &stubBookings{bookings: map[string]*domain.Booking{
		"bk-1": {ID: "bk-1", MenteeID: "sub-1", MentorID: "mentor-1", Status: domain.BookingStatusCompleted},
	}}
	svc := newBookingService(t, bookings, &stubProfiles{}, &stubProcedures{}, &stubEvents{})

	err := svc.Cancel(context.Background(), "sub-1", "bk-1", "too late")
	if !errors.Is(err, ErrBookingNotCancelable) {
		t.Fatalf("error = %v, want ErrBookingNotCancelable", err)
	}
}

func TestCompleteReleasesEscrowToMentor(t *testing.T) {
	bookings := &stubBookings{bookings: map[string]*domain.Booking{
		"bk-1": {ID: "bk-1", MenteeID: "sub-1", MentorID: "mentor-1", Status: domain.BookingStatusScheduled},
	}}
	procedures := &stubProcedures{}
	svc := newBookingService(t, bookings, &stubProfiles{}, procedures, &stubEvents{})

	if err := svc.Complete(context.Background(), "mentor-1", "bk-1"); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if len(procedures.released) != 1 {
		t.Errorf("release calls = %v, want one", procedures.released)
	}

	// The mentee cannot complete a session on the mentor's behalf.
	bookings.bookings["bk-1"].Status = domain.BookingStatusScheduled
	if err := svc.Complete(context.Background(), "sub-1", "bk-1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
}
