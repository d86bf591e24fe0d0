package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

func (s *stubProfiles) Create(_ context.Context, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profiles == nil {
		s.profiles = map[string]*domain.Profile{}
	}
	copied := profile
	s.profiles[profile.ID] = &copied
	return nil
}

func (s *stubProfiles) Update(_ context.Context, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := profile
	s.profiles[profile.ID] = &copied
	return nil
}

type stubUsers struct {
	port.UserRepository

	mu      sync.Mutex
	byEmail map[string]*domain.User
	created []domain.User
}

func (s *stubUsers) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmail == nil {
		s.byEmail = map[string]*domain.User{}
	}
	copied := user
	s.byEmail[user.Email] = &copied
	s.created = append(s.created, user)
	return nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

type stubTokens struct {
	port.TokenRepository

	mu            sync.Mutex
	verifications []domain.VerificationToken
}

func (s *stubTokens) CreateVerification(_ context.Context, token domain.VerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications = append(s.verifications, token)
	return nil
}

type stubTeams struct {
	port.TeamRepository

	mu      sync.Mutex
	orgs    map[string]*domain.Organization
	members map[string][]domain.OrganizationMember
}

func (s *stubTeams) CreateOrganization(_ context.Context, org domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orgs == nil {
		s.orgs = map[string]*domain.Organization{}
	}
	copied := org
	s.orgs[org.ID] = &copied
	return nil
}

func (s *stubTeams) AddMember(_ context.Context, member domain.OrganizationMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members == nil {
		s.members = map[string][]domain.OrganizationMember{}
	}
	s.members[member.OrganizationID] = append(s.members[member.OrganizationID], member)
	return nil
}

func (s *stubTeams) GetMembership(_ context.Context, organizationID, profileID string) (*domain.OrganizationMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, member := range s.members[organizationID] {
		if member.ProfileID == profileID {
			copied := member
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newRegistrationService(t *testing.T, users *stubUsers, profiles *stubProfiles, teams *stubTeams) (*RegistrationService, *stubTokens) {
	t.Helper()
	tokens := &stubTokens{}
	svc := NewRegistrationService(users, tokens, profiles, teams, &stubEvents{}, zaptest.NewLogger(t))
	return svc, tokens
}

func TestRegisterCreatesPendingSubscriber(t *testing.T) {
	users := &stubUsers{}
	profiles := &stubProfiles{}
	svc, tokens := newRegistrationService(t, users, profiles, &stubTeams{})

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    " Leader@Example.COM ",
		Password: "long-enough-pw",
		FullName: "Pat Leader",
		Role:     domain.RoleSubscriber,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if result.Email != "leader@example.com" {
		t.Errorf("email = %q, want normalized lowercase", result.Email)
	}
	if result.VerificationToken == "" {
		t.Error("expected a verification token")
	}

	users.mu.Lock()
	user := users.created[0]
	users.mu.Unlock()
	if user.Status != domain.UserStatusPending {
		t.Errorf("status = %s, want pending", user.Status)
	}

	profile, err := profiles.GetByID(context.Background(), result.UserID)
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if profile.Role != domain.RoleSubscriber || !profile.Approved {
		t.Errorf("subscriber profile = role %s approved %v, want subscriber/approved", profile.Role, profile.Approved)
	}

	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	if len(tokens.verifications) != 1 {
		t.Fatalf("verification tokens = %d, want 1", len(tokens.verifications))
	}
	if tokens.verifications[0].TokenHash == result.VerificationToken {
		t.Error("verification token must be stored hashed, not raw")
	}
}

func TestRegisterMentorStartsUnapproved(t *testing.T) {
	profiles := &stubProfiles{}
	svc, _ := newRegistrationService(t, &stubUsers{}, profiles, &stubTeams{})

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:          "mentor@example.com",
		Password:       "long-enough-pw",
		FullName:       "Morgan Mentor",
		Role:           domain.RoleMentor,
		ExpertiseAreas: []string{"Curriculum"},
		SessionRate:    intPtr(40),
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	profile, err := profiles.GetByID(context.Background(), result.UserID)
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if profile.Approved {
		t.Error("mentor must wait for approval before listing")
	}
	if len(profile.ExpertiseAreas) != 1 || profile.SessionRate == nil {
		t.Errorf("mentor fields dropped: %+v", profile)
	}
}

func TestRegisterOrganizationCreatesOrgAndOwnerMembership(t *testing.T) {
	teams := &stubTeams{}
	profiles := &stubProfiles{}
	svc, _ := newRegistrationService(t, &stubUsers{}, profiles, teams)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:            "admin@district.org",
		Password:         "long-enough-pw",
		FullName:         "Dana District",
		Role:             domain.RoleTeamAdmin,
		OrganizationName: "Springfield District",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.OrganizationID == nil {
		t.Fatal("expected an organization id")
	}

	member, err := teams.GetMembership(context.Background(), *result.OrganizationID, result.UserID)
	if err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if member.Role != domain.OrgMemberAdmin {
		t.Errorf("owner membership role = %s, want admin", member.Role)
	}

	profile, err := profiles.GetByID(context.Background(), result.UserID)
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if profile.OrganizationID == nil || *profile.OrganizationID != *result.OrganizationID {
		t.Error("profile not linked to the new organization")
	}
}

func TestResendVerificationIssuesFreshToken(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{
		"pending@example.com": {ID: "u-1", Email: "pending@example.com", Status: domain.UserStatusPending},
	}}
	svc, tokens := newRegistrationService(t, users, &stubProfiles{}, &stubTeams{})

	result, err := svc.ResendVerification(context.Background(), " Pending@Example.COM ")
	if err != nil {
		t.Fatalf("ResendVerification returned error: %v", err)
	}
	if result.Email != "pending@example.com" {
		t.Errorf("email = %q, want normalized lowercase", result.Email)
	}
	if result.VerificationToken == "" {
		t.Fatal("expected a verification token")
	}

	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	if len(tokens.verifications) != 1 {
		t.Fatalf("verification tokens = %d, want 1", len(tokens.verifications))
	}
	stored := tokens.verifications[0]
	if stored.UserID != "u-1" || stored.Purpose != "email_verification" {
		t.Errorf("stored token = %+v, want user u-1 with email_verification purpose", stored)
	}
	if stored.TokenHash == result.VerificationToken {
		t.Error("verification token must be stored hashed, not raw")
	}
	if !stored.ExpiresAt.Equal(result.ExpiresAt) {
		t.Errorf("expiry mismatch: stored %v, reported %v", stored.ExpiresAt, result.ExpiresAt)
	}
}

func TestResendVerificationUnknownEmail(t *testing.T) {
	svc, tokens := newRegistrationService(t, &stubUsers{}, &stubProfiles{}, &stubTeams{})

	if _, err := svc.ResendVerification(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUnknownEmail) {
		t.Fatalf("error = %v, want ErrUnknownEmail", err)
	}

	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	if len(tokens.verifications) != 0 {
		t.Errorf("verification tokens = %d, want none for unknown email", len(tokens.verifications))
	}
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{
		"active@example.com": {ID: "u-2", Email: "active@example.com", Status: domain.UserStatusActive},
	}}
	svc, tokens := newRegistrationService(t, users, &stubProfiles{}, &stubTeams{})

	if _, err := svc.ResendVerification(context.Background(), "active@example.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("error = %v, want ErrAlreadyVerified", err)
	}

	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	if len(tokens.verifications) != 0 {
		t.Errorf("verification tokens = %d, want none for verified account", len(tokens.verifications))
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{
		"taken@example.com": {ID: "u-1", Email: "taken@example.com"},
	}}
	svc, _ := newRegistrationService(t, users, &stubProfiles{}, &stubTeams{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Taken@example.com",
		Password: "long-enough-pw",
		FullName: "Copy Cat",
		Role:     domain.RoleSubscriber,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newRegistrationService(t, &stubUsers{}, &stubProfiles{}, &stubTeams{})
	base := RegisterInput{
		Email:    "ok@example.com",
		Password: "long-enough-pw",
		FullName: "Ok Person",
		Role:     domain.RoleSubscriber,
	}

	short := base
	short.Password = "short"
	if _, err := svc.Register(context.Background(), short); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("short password error = %v, want ErrWeakPassword", err)
	}

	admin := base
	admin.Role = domain.RoleSystemAdmin
	if _, err := svc.Register(context.Background(), admin); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("system admin signup error = %v, want ErrInvalidRegistration", err)
	}

	orgless := base
	orgless.Role = domain.RoleTeamAdmin
	if _, err := svc.Register(context.Background(), orgless); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("missing org name error = %v, want ErrInvalidRegistration", err)
	}

	badRole := base
	badRole.Role = domain.Role("owner")
	if _, err := svc.Register(context.Background(), badRole); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("unknown role error = %v, want ErrInvalidRegistration", err)
	}
}
