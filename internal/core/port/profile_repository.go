package port

import (
	"context"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

// ProfileRepository exposes persistence behavior for profiles and mentor
// records. The profiles table is externally authoritative for role and
// credits; writes here never touch the credits column directly.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, profile domain.Profile) error
	SearchMentors(ctx context.Context, filter domain.MentorSearchFilter) ([]domain.Profile, error)
	CountMentors(ctx context.Context, filter domain.MentorSearchFilter) (int, error)
	ListPendingApproval(ctx context.Context, limit, offset int) ([]domain.Profile, error)
	SetApproved(ctx context.Context, id string, approved bool) error

	GetCalendar(ctx context.Context, mentorID string) (*domain.MentorCalendar, error)
	UpsertCalendar(ctx context.Context, calendar domain.MentorCalendar) error
	CreateReview(ctx context.Context, review domain.MentorReview) error
	ListReviews(ctx context.Context, mentorID string, limit int) ([]domain.MentorReview, error)
}

// ProcedureCaller invokes named database procedures whose internals are owned
// by the backend (credit escrow settlement, rating aggregation, invoice
// processing). This service treats them as opaque remote calls.
type ProcedureCaller interface {
	GetMentorRating(ctx context.Context, mentorID string) (avg float64, count int, err error)
	BookSessionWithEscrow(ctx context.Context, bookingID, menteeID, mentorID string, credits int) error
	ReleaseEscrow(ctx context.Context, bookingID string) error
	RefundEscrow(ctx context.Context, bookingID string) error
	ProcessMentorInvoice(ctx context.Context, invoiceID string) error
}
