package port

import (
	"context"
	"time"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

// BookingRepository persists mentoring session bookings and exposes read
// access to the credits ledger.
type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByMentee(ctx context.Context, menteeID string, limit, offset int) ([]domain.Booking, error)
	ListByMentor(ctx context.Context, mentorID string, limit, offset int) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, reason *string) error

	ListTransactions(ctx context.Context, profileID string, limit, offset int) ([]domain.CreditTransaction, error)
	ListEscrowByMentor(ctx context.Context, mentorID string) ([]domain.CreditEscrow, error)
	ListInvoicesByMentor(ctx context.Context, mentorID string) ([]domain.MentorInvoice, error)
}

// DiscussionRepository persists Coffee Talk threads and replies.
type DiscussionRepository interface {
	Create(ctx context.Context, discussion domain.Discussion) error
	GetByID(ctx context.Context, id string) (*domain.Discussion, error)
	List(ctx context.Context, category string, limit, offset int) ([]domain.Discussion, error)
	Update(ctx context.Context, discussion domain.Discussion) error
	Delete(ctx context.Context, id string) error
	CreateReply(ctx context.Context, reply domain.DiscussionReply) error
	ListReplies(ctx context.Context, discussionID string) ([]domain.DiscussionReply, error)
	DeleteReply(ctx context.Context, id string) error
}

// GatheringRepository persists fireside chats and masterclasses along with
// their registrations.
type GatheringRepository interface {
	CreateFireside(ctx context.Context, chat domain.FiresideChat) error
	GetFireside(ctx context.Context, id string) (*domain.FiresideChat, error)
	ListUpcomingFiresides(ctx context.Context, after time.Time, limit, offset int) ([]domain.FiresideChat, error)
	ListFiresidesByHost(ctx context.Context, hostID string) ([]domain.FiresideChat, error)
	RegisterFireside(ctx context.Context, reg domain.FiresideRegistration) error
	UnregisterFireside(ctx context.Context, chatID, profileID string) error
	IsFiresideRegistered(ctx context.Context, chatID, profileID string) (bool, error)

	CreateMasterclass(ctx context.Context, class domain.Masterclass) error
	GetMasterclass(ctx context.Context, id string) (*domain.Masterclass, error)
	ListMasterclasses(ctx context.Context, limit, offset int) ([]domain.Masterclass, error)
	RegisterMasterclass(ctx context.Context, reg domain.MasterclassRegistration) error
	IsMasterclassRegistered(ctx context.Context, classID, profileID string) (bool, error)
}

// MessageRepository persists direct messages and announcements.
type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListThread(ctx context.Context, profileID, counterpartID string, limit, offset int) ([]domain.Message, error)
	ListInbox(ctx context.Context, profileID string) ([]domain.MessageThread, error)
	ListAnnouncements(ctx context.Context, limit int) ([]domain.Message, error)
	MarkRead(ctx context.Context, profileID, counterpartID string, at time.Time) error
}

// VaultRepository persists vault resources, requests, and responses.
type VaultRepository interface {
	CreateResource(ctx context.Context, resource domain.VaultResource) error
	GetResource(ctx context.Context, id string) (*domain.VaultResource, error)
	ListResources(ctx context.Context, category string, approvedOnly bool, limit, offset int) ([]domain.VaultResource, error)
	SetResourceApproved(ctx context.Context, id string, approved bool) error
	CreateRequest(ctx context.Context, request domain.ResourceRequest) error
	ListRequests(ctx context.Context, openOnly bool, limit, offset int) ([]domain.ResourceRequest, error)
	ResolveRequest(ctx context.Context, id string) error
	CreateResponse(ctx context.Context, response domain.ResourceResponse) error
	ListResponses(ctx context.Context, requestID string) ([]domain.ResourceResponse, error)
}

// DirectoryRepository persists the third-party product directory.
type DirectoryRepository interface {
	CreateProduct(ctx context.Context, product domain.DirectoryProduct) error
	GetProduct(ctx context.Context, id string) (*domain.DirectoryProduct, error)
	ListProducts(ctx context.Context, category string, approvedOnly bool, limit, offset int) ([]domain.DirectoryProduct, error)
	SetProductApproved(ctx context.Context, id string, approved bool) error
	CreateRating(ctx context.Context, rating domain.ProductRating) error
	ListRatings(ctx context.Context, productID string, limit int) ([]domain.ProductRating, error)
}

// TeamRepository persists organizations, memberships, and subscription tiers.
type TeamRepository interface {
	CreateOrganization(ctx context.Context, org domain.Organization) error
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	AddMember(ctx context.Context, member domain.OrganizationMember) error
	RemoveMember(ctx context.Context, organizationID, profileID string) error
	ListMembers(ctx context.Context, organizationID string) ([]domain.OrganizationMember, error)
	GetMembership(ctx context.Context, organizationID, profileID string) (*domain.OrganizationMember, error)
	ListTeamTransactions(ctx context.Context, organizationID string, limit, offset int) ([]domain.CreditTransaction, error)
	ListTiers(ctx context.Context) ([]domain.SubscriptionTier, error)
}
