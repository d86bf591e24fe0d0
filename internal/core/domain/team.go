package domain

import "time"

// Organization groups team members under a shared subscription.
type Organization struct {
	ID               string
	Name             string
	OwnerID          string
	SubscriptionID   *string
	StripeCustomerID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrgMemberRole enumerates membership levels within an organization.
type OrgMemberRole string

const (
	OrgMemberAdmin   OrgMemberRole = "admin"
	OrgMemberRegular OrgMemberRole = "member"
)

// OrganizationMember links a profile to an organization.
type OrganizationMember struct {
	OrganizationID string
	ProfileID      string
	Role           OrgMemberRole
	CreatedAt      time.Time
}

// SubscriptionTier describes a purchasable plan. Pricing and billing run in
// the external payment processor; the stripe price id is stored opaque.
type SubscriptionTier struct {
	ID            string
	Name          string
	Description   *string
	PriceCents    int
	Credits       int
	Features      []string
	StripePriceID *string
}

// SubscriptionStatus enumerates billing states reported by the payment
// processor.
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
)

// Subscription ties a profile or organization to a tier.
type Subscription struct {
	ID                   string
	ProfileID            string
	TierID               string
	Status               SubscriptionStatus
	StripeSubscriptionID *string
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAt             *time.Time
	CanceledAt           *time.Time
}
