package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/repository"
)

func (s *stubTeams) GetOrganization(_ context.Context, id string) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *org
	return &copied, nil
}

func (s *stubTeams) RemoveMember(_ context.Context, organizationID, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.members[organizationID]
	for i, member := range members {
		if member.ProfileID == profileID {
			s.members[organizationID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.Profile, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, domain.Profile, time.Duration) error   { return nil }
func (noopCache) Invalidate(context.Context, string) error                   { return nil }

func seededTeam(t *testing.T) (*stubTeams, *stubProfiles) {
	t.Helper()

	teams := &stubTeams{}
	if err := teams.CreateOrganization(context.Background(), domain.Organization{ID: "org-1", Name: "Springfield", OwnerID: "ta-1"}); err != nil {
		t.Fatal(err)
	}
	if err := teams.AddMember(context.Background(), domain.OrganizationMember{OrganizationID: "org-1", ProfileID: "ta-1", Role: domain.OrgMemberAdmin}); err != nil {
		t.Fatal(err)
	}

	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"ta-1":  {ID: "ta-1", Role: domain.RoleTeamAdmin},
		"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber},
	}}
	return teams, profiles
}

func TestAddMemberLinksProfileToOrganization(t *testing.T) {
	teams, profiles := seededTeam(t)
	svc := NewTeamService(teams, profiles, noopCache{}, &stubEvents{}, zaptest.NewLogger(t))
	adminPerms := domain.PermissionsFor(domain.RoleTeamAdmin)

	if err := svc.AddMember(context.Background(), "ta-1", adminPerms, "org-1", "sub-1"); err != nil {
		t.Fatalf("AddMember returned error: %v", err)
	}

	member, err := teams.GetMembership(context.Background(), "org-1", "sub-1")
	if err != nil {
		t.Fatalf("membership missing: %v", err)
	}
	if member.Role != domain.OrgMemberRegular {
		t.Errorf("member role = %s, want member", member.Role)
	}

	profile, _ := profiles.GetByID(context.Background(), "sub-1")
	if profile.OrganizationID == nil || *profile.OrganizationID != "org-1" {
		t.Error("profile not linked to organization")
	}

	if err := svc.AddMember(context.Background(), "ta-1", adminPerms, "org-1", "sub-1"); !errors.Is(err, ErrAlreadyTeamMember) {
		t.Errorf("repeat add error = %v, want ErrAlreadyTeamMember", err)
	}
}

func TestAddMemberRequiresAdminMembership(t *testing.T) {
	teams, profiles := seededTeam(t)
	svc := NewTeamService(teams, profiles, noopCache{}, &stubEvents{}, zaptest.NewLogger(t))

	// canManageTeam alone is not enough: the caller must also be an admin
	// member of the target organization.
	err := svc.AddMember(context.Background(), "outsider", domain.PermissionsFor(domain.RoleTeamAdmin), "org-1", "sub-1")
	if !errors.Is(err, ErrNotTeamMember) {
		t.Fatalf("error = %v, want ErrNotTeamMember", err)
	}

	err = svc.AddMember(context.Background(), "sub-1", domain.PermissionsFor(domain.RoleSubscriber), "org-1", "sub-1")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestRemoveMemberProtectsOwner(t *testing.T) {
	teams, profiles := seededTeam(t)
	svc := NewTeamService(teams, profiles, noopCache{}, &stubEvents{}, zaptest.NewLogger(t))

	err := svc.RemoveMember(context.Background(), "ta-1", domain.PermissionsFor(domain.RoleTeamAdmin), "org-1", "ta-1")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestPurchaseCreditsRequiresFlagAndMembership(t *testing.T) {
	teams, profiles := seededTeam(t)
	events := &stubEvents{}
	svc := NewTeamService(teams, profiles, noopCache{}, events, zaptest.NewLogger(t))

	err := svc.PurchaseCredits(context.Background(), "sub-1", domain.PermissionsFor(domain.RoleSubscriber), "org-1", 100)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("subscriber purchase error = %v, want ErrPermissionDenied", err)
	}

	if err := svc.PurchaseCredits(context.Background(), "ta-1", domain.PermissionsFor(domain.RoleTeamAdmin), "org-1", 100); err != nil {
		t.Fatalf("PurchaseCredits returned error: %v", err)
	}
	if events.purchased != 1 {
		t.Errorf("purchase events = %d, want 1", events.purchased)
	}

	if err := svc.PurchaseCredits(context.Background(), "ta-1", domain.PermissionsFor(domain.RoleTeamAdmin), "org-1", 0); !errors.Is(err, ErrInvalidPurchase) {
		t.Errorf("zero-credit purchase error = %v, want ErrInvalidPurchase", err)
	}
}

func TestRemoveMissingMember(t *testing.T) {
	teams, profiles := seededTeam(t)
	svc := NewTeamService(teams, profiles, noopCache{}, &stubEvents{}, zaptest.NewLogger(t))

	err := svc.RemoveMember(context.Background(), "ta-1", domain.PermissionsFor(domain.RoleTeamAdmin), "org-1", "sub-1")
	if !errors.Is(err, ErrNotTeamMember) {
		t.Fatalf("error = %v, want ErrNotTeamMember", err)
	}
}
