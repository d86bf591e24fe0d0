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
	// ErrMentorNotFound indicates the id does not belong to an approved mentor.
	ErrMentorNotFound = errors.New("mentor not found")
	// ErrInvalidRating indicates a review rating outside the 1-5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxReviewsShown    = 50
)

// MentorPage is one page of mentor search results with the total match count
// for pagination.
type MentorPage struct {
	Mentors []domain.Profile
	Total   int
}

// MentorRating is the aggregated review score computed by the backend.
type MentorRating struct {
	Average float64
	Count   int
}

// MentorService serves the mentor directory: search, detail pages, ratings,
// calendars, and post-session reviews.
type MentorService struct {
	profiles   port.ProfileRepository
	bookings   port.BookingRepository
	procedures port.ProcedureCaller
	log        *zap.Logger
}

// NewMentorService constructs a MentorService instance.
func NewMentorService(
	profiles port.ProfileRepository,
	bookings port.BookingRepository,
	procedures port.ProcedureCaller,
	log *zap.Logger,
) *MentorService {
	return &MentorService{
		profiles:   profiles,
		bookings:   bookings,
		procedures: procedures,
		log:        log,
	}
}

// Search returns approved mentors matching the filter. Results and the total
// count come from the same filter so pagination stays consistent.
func (s *MentorService) Search(ctx context.Context, filter domain.MentorSearchFilter) (*MentorPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultSearchLimit
	}
	if filter.Limit > maxSearchLimit {
		filter.Limit = maxSearchLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	mentors, err := s.profiles.SearchMentors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search mentors: %w", err)
	}

	total, err := s.profiles.CountMentors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count mentors: %w", err)
	}

	return &MentorPage{Mentors: mentors, Total: total}, nil
}

// Get returns one approved mentor profile.
func (s *MentorService) Get(ctx context.Context, mentorID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if !profile.IsMentor() || !profile.Approved {
		return nil, ErrMentorNotFound
	}
	return profile, nil
}

// Rating returns the mentor's aggregated review score. Aggregation runs in the
// get_mentor_rating database procedure; a mentor with no reviews yields a zero
// average with a zero count, not an error.
func (s *MentorService) Rating(ctx context.Context, mentorID string) (*MentorRating, error) {
	avg, count, err := s.procedures.GetMentorRating(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor rating: %w", err)
	}
	return &MentorRating{Average: avg, Count: count}, nil
}

// Calendar returns the mentor's scheduling handle for the booking embed. A
// mentor without a configured calendar yields nil without error so the page
// can render a fallback.
func (s *MentorService) Calendar(ctx context.Context, mentorID string) (*domain.MentorCalendar, error) {
	calendar, err := s.profiles.GetCalendar(ctx, mentorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	return calendar, nil
}

// Reviews lists the most recent reviews for a mentor.
func (s *MentorService) Reviews(ctx context.Context, mentorID string) ([]domain.MentorReview, error) {
	reviews, err := s.profiles.ListReviews(ctx, mentorID, maxReviewsShown)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// LeaveReview records a post-session rating. Only the mentee of a completed
// booking with this mentor may review it.
func (s *MentorService) LeaveReview(ctx context.Context, authorID, bookingID string, rating int, comment *string) (*domain.MentorReview, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.MenteeID != authorID {
		return nil, ErrPermissionDenied
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidRating, booking.Status)
	}

	review := domain.MentorReview{
		ID:        uuid.NewString(),
		MentorID:  booking.MentorID,
		AuthorID:  authorID,
		SessionID: booking.ID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.profiles.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("mentor review created",
		zap.String("mentor_id", review.MentorID),
		zap.String("booking_id", booking.ID),
		zap.Int("rating", rating),
	)

	return &review, nil
}
