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
	// ErrOrganizationNotFound indicates the organization does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrNotTeamMember indicates the profile is not a member of the
	// organization.
	ErrNotTeamMember = errors.New("not a team member")
	// ErrAlreadyTeamMember indicates the profile already belongs to the
	// organization.
	ErrAlreadyTeamMember = errors.New("already a team member")
	// ErrInvalidPurchase indicates a credit purchase with a non-positive
	// amount.
	ErrInvalidPurchase = errors.New("invalid credit purchase")
)

// TeamService owns organizations: membership, pooled credit purchases, and the
// team usage dashboard. Management operations require canManageTeam plus admin
// membership in the target organization.
type TeamService struct {
	teams    port.TeamRepository
	profiles port.ProfileRepository
	cache    port.ProfileCache
	events   port.EventPublisher
	log      *zap.Logger
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(
	teams port.TeamRepository,
	profiles port.ProfileRepository,
	cache port.ProfileCache,
	events port.EventPublisher,
	log *zap.Logger,
) *TeamService {
	return &TeamService{
		teams:    teams,
		profiles: profiles,
		cache:    cache,
		events:   events,
		log:      log,
	}
}

// Get returns the organization visible to one of its members.
func (s *TeamService) Get(ctx context.Context, callerID, organizationID string) (*domain.Organization, error) {
	if err := s.requireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	org, err := s.teams.GetOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// Members lists the organization roster for one of its members.
func (s *TeamService) Members(ctx context.Context, callerID, organizationID string) ([]domain.OrganizationMember, error) {
	if err := s.requireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	members, err := s.teams.ListMembers(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// AddMember attaches an existing profile to the organization as a team member.
// The member's profile row is re-pointed at the organization so their role
// resolves to team_member on the next request.
func (s *TeamService) AddMember(ctx context.Context, callerID string, perms domain.PermissionSet, organizationID, profileID string) error {
	if err := s.requireAdmin(ctx, perms, organizationID, callerID); err != nil {
		return err
	}

	if _, err := s.teams.GetMembership(ctx, organizationID, profileID); err == nil {
		return ErrAlreadyTeamMember
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check membership: %w", err)
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("load profile: %w", err)
	}

	if err := s.teams.AddMember(ctx, domain.OrganizationMember{
		OrganizationID: organizationID,
		ProfileID:      profileID,
		Role:           domain.OrgMemberRegular,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	profile.OrganizationID = &organizationID
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, *profile); err != nil {
		return fmt.Errorf("link profile to organization: %w", err)
	}
	if err := s.cache.Invalidate(ctx, profileID); err != nil {
		s.log.Warn("profile cache invalidation failed", zap.String("user_id", profileID), zap.Error(err))
	}

	s.log.Info("team member added",
		zap.String("organization_id", organizationID),
		zap.String("profile_id", profileID),
	)
	return nil
}

// RemoveMember detaches a profile from the organization. The organization
// owner cannot be removed.
func (s *TeamService) RemoveMember(ctx context.Context, callerID string, perms domain.PermissionSet, organizationID, profileID string) error {
	if err := s.requireAdmin(ctx, perms, organizationID, callerID); err != nil {
		return err
	}

	org, err := s.teams.GetOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("get organization: %w", err)
	}
	if org.OwnerID == profileID {
		return ErrPermissionDenied
	}

	if err := s.teams.RemoveMember(ctx, organizationID, profileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotTeamMember
		}
		return fmt.Errorf("remove member: %w", err)
	}

	if profile, err := s.profiles.GetByID(ctx, profileID); err == nil {
		profile.OrganizationID = nil
		profile.UpdatedAt = time.Now().UTC()
		if err := s.profiles.Update(ctx, *profile); err != nil {
			s.log.Warn("unlink profile from organization failed", zap.String("profile_id", profileID), zap.Error(err))
		}
	}
	if err := s.cache.Invalidate(ctx, profileID); err != nil {
		s.log.Warn("profile cache invalidation failed", zap.String("user_id", profileID), zap.Error(err))
	}

	return nil
}

// PurchaseCredits records a pooled credit purchase for the organization.
// Payment capture happens in the external processor; this call runs after a
// confirmed charge. Requires canPurchaseCredits.
func (s *TeamService) PurchaseCredits(ctx context.Context, callerID string, perms domain.PermissionSet, organizationID string, credits int) error {
	if !perms.Has(domain.PermPurchaseCredits) {
		return ErrPermissionDenied
	}
	if credits <= 0 {
		return ErrInvalidPurchase
	}
	if err := s.requireMembership(ctx, organizationID, callerID); err != nil {
		return err
	}

	if err := s.events.PublishCreditsPurchased(ctx, domain.CreditsPurchasedEvent{
		EventID:        uuid.NewString(),
		ProfileID:      callerID,
		OrganizationID: &organizationID,
		Credits:        credits,
		PurchasedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("publish credits purchased: %w", err)
	}

	s.log.Info("credits purchased",
		zap.String("organization_id", organizationID),
		zap.Int("credits", credits),
	)
	return nil
}

// Usage returns the team's combined credits ledger for the usage dashboard.
// Requires canViewTeamUsage.
func (s *TeamService) Usage(ctx context.Context, callerID string, perms domain.PermissionSet, organizationID string, limit, offset int) ([]domain.CreditTransaction, error) {
	if !perms.Has(domain.PermViewTeamUsage) {
		return nil, ErrPermissionDenied
	}
	if err := s.requireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	txs, err := s.teams.ListTeamTransactions(ctx, organizationID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list team transactions: %w", err)
	}
	return txs, nil
}

// Tiers lists the purchasable subscription tiers.
func (s *TeamService) Tiers(ctx context.Context) ([]domain.SubscriptionTier, error) {
	tiers, err := s.teams.ListTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

func (s *TeamService) requireMembership(ctx context.Context, organizationID, profileID string) error {
	if _, err := s.teams.GetMembership(ctx, organizationID, profileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotTeamMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func (s *TeamService) requireAdmin(ctx context.Context, perms domain.PermissionSet, organizationID, profileID string) error {
	if !perms.Has(domain.PermManageTeam) {
		return ErrPermissionDenied
	}
	member, err := s.teams.GetMembership(ctx, organizationID, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotTeamMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	if member.Role != domain.OrgMemberAdmin {
		return ErrPermissionDenied
	}
	return nil
}
