package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

func (s *stubProfiles) SearchMentors(_ context.Context, filter domain.MentorSearchFilter) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter

	mentors := make([]domain.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		if profile.IsMentor() && profile.Approved {
			mentors = append(mentors, *profile)
		}
	}
	return mentors, nil
}

func (s *stubProfiles) CountMentors(_ context.Context, _ domain.MentorSearchFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, profile := range s.profiles {
		if profile.IsMentor() && profile.Approved {
			count++
		}
	}
	return count, nil
}

func (s *stubProfiles) CreateReview(_ context.Context, review domain.MentorReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, review)
	return nil
}

func newTestMentorService(t *testing.T, profiles *stubProfiles, bookings *stubBookings) *MentorService {
	t.Helper()
	return NewMentorService(profiles, bookings, &stubProcedures{}, zaptest.NewLogger(t))
}

func TestSearchClampsPageSize(t *testing.T) {
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"mentor-1": bookableMentor("mentor-1", 3),
	}}
	svc := newTestMentorService(t, profiles, &stubBookings{})

	page, err := svc.Search(context.Background(), domain.MentorSearchFilter{Limit: 10_000, Offset: -5})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}
	if profiles.lastFilter.Limit != 100 {
		t.Errorf("limit = %d, want clamped to 100", profiles.lastFilter.Limit)
	}
	if profiles.lastFilter.Offset != 0 {
		t.Errorf("offset = %d, want clamped to 0", profiles.lastFilter.Offset)
	}
}

func TestGetHidesUnapprovedMentors(t *testing.T) {
	pending := bookableMentor("mentor-1", 3)
	pending.Approved = false
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"mentor-1": pending}}
	svc := newTestMentorService(t, profiles, &stubBookings{})

	if _, err := svc.Get(context.Background(), "mentor-1"); !errors.Is(err, ErrMentorNotFound) {
		t.Fatalf("err = %v, want ErrMentorNotFound", err)
	}
}

func TestGetRejectsNonMentorProfiles(t *testing.T) {
	subscriber := &domain.Profile{ID: "sub-1", Role: domain.RoleSubscriber, Approved: true}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"sub-1": subscriber}}
	svc := newTestMentorService(t, profiles, &stubBookings{})

	if _, err := svc.Get(context.Background(), "sub-1"); !errors.Is(err, ErrMentorNotFound) {
		t.Fatalf("err = %v, want ErrMentorNotFound", err)
	}
}

func TestLeaveReviewRequiresCompletedBookingMentee(t *testing.T) {
	bookings := &stubBookings{bookings: map[string]*domain.Booking{
		"booking-1": {ID: "booking-1", MenteeID: "sub-1", MentorID: "mentor-1", Status: domain.BookingStatusCompleted},
		"booking-2": {ID: "booking-2", MenteeID: "sub-1", MentorID: "mentor-1", Status: domain.BookingStatusScheduled},
	}}
	profiles := &stubProfiles{}
	svc := newTestMentorService(t, profiles, bookings)

	if _, err := svc.LeaveReview(context.Background(), "stranger", "booking-1", 5, nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("stranger review err = %v, want ErrPermissionDenied", err)
	}

	if _, err := svc.LeaveReview(context.Background(), "sub-1", "booking-2", 5, nil); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("scheduled booking review err = %v, want ErrInvalidRating", err)
	}

	review, err := svc.LeaveReview(context.Background(), "sub-1", "booking-1", 4, strPtr("great session"))
	if err != nil {
		t.Fatalf("LeaveReview returned error: %v", err)
	}
	if review.MentorID != "mentor-1" || review.SessionID != "booking-1" {
		t.Errorf("review linked wrong records: %+v", review)
	}
	if len(profiles.reviews) != 1 {
		t.Errorf("stored reviews = %d, want 1", len(profiles.reviews))
	}
}

func TestLeaveReviewRejectsOutOfRangeRating(t *testing.T) {
	svc := newTestMentorService(t, &stubProfiles{}, &stubBookings{})

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.LeaveReview(context.Background(), "sub-1", "booking-1", rating, nil); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d err = %v, want ErrInvalidRating", rating, err)
		}
	}
}
