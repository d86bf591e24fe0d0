package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/infra/logger"
	"github.com/linkedleaders/platform-api/internal/infra/security"
	"github.com/linkedleaders/platform-api/internal/repository"
)

var (
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrWeakPassword indicates the password fails the minimum length policy.
	ErrWeakPassword = errors.New("password too weak")
	// ErrInvalidRegistration indicates required registration fields are missing.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrUnknownEmail indicates no account exists for the email.
	ErrUnknownEmail = errors.New("unknown email")
	// ErrAlreadyVerified indicates the account no longer needs verification.
	ErrAlreadyVerified = errors.New("account already verified")
)

const (
	minPasswordLength      = 8
	verificationTokenBytes = 32
	verificationTTL        = 48 * time.Hour
)

// RegisterInput captures the shared fields of every registration flow.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role

	// Mentor fields, used when Role is mentor.
	Bio                    *string
	MentorExperience       []string
	ExpertiseAreas         []string
	LanguagesSpoken        []string
	YearsOfExperience      *int
	SessionRate            *int
	ProfessionalBackground *string

	// Organization fields, used when Role is team_admin.
	OrganizationName string
}

// RegisterResult reports the created account and, for organization signups,
// the new organization.
type RegisterResult struct {
	UserID            string
	Email             string
	OrganizationID    *string
	VerificationToken string
}

// RegistrationService owns the three signup flows: individual subscriber,
// mentor application, and organization with a team admin.
type RegistrationService struct {
	users    port.UserRepository
	tokens   port.TokenRepository
	profiles port.ProfileRepository
	teams    port.TeamRepository
	events   port.EventPublisher
	log      *zap.Logger
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	users port.UserRepository,
	tokens port.TokenRepository,
	profiles port.ProfileRepository,
	teams port.TeamRepository,
	events port.EventPublisher,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:    users,
		tokens:   tokens,
		profiles: profiles,
		teams:    teams,
		events:   events,
		log:      log,
	}
}

// Register creates the account, its profile, and (for organization signups)
// the organization. New accounts start pending until email verification.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRegistration)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidRegistration)
	}
	if _, err := domain.ParseRole(string(input.Role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
	}
	if input.Role == domain.RoleSystemAdmin {
		return nil, fmt.Errorf("%w: system admin accounts are provisioned manually", ErrInvalidRegistration)
	}
	if input.Role == domain.RoleTeamAdmin && strings.TrimSpace(input.OrganizationName) == "" {
		return nil, fmt.Errorf("%w: organization name is required", ErrInvalidRegistration)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:                 uuid.NewString(),
		Email:              email,
		PasswordHash:       hash,
		PasswordAlgo:       "argon2id",
		Status:             domain.UserStatusPending,
		RegisteredAt:       now,
		LastPasswordChange: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	result := &RegisterResult{UserID: user.ID, Email: email}

	if input.Role == domain.RoleTeamAdmin {
		orgID, err := s.createOrganization(ctx, user.ID, input.OrganizationName, now)
		if err != nil {
			return nil, err
		}
		result.OrganizationID = &orgID
	}

	if err := s.EnsureProfile(ctx, user.ID, email, input, result.OrganizationID); err != nil {
		// The account exists; the profile is re-created on first sign-in
		// rather than failing the whole registration.
		s.log.Error("profile creation failed, deferred to first sign-in",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	verificationRaw, err := security.GenerateSecureToken(verificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	if err := s.tokens.CreateVerification(ctx, domain.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(verificationRaw),
		Purpose:   "email_verification",
		CreatedAt: now,
		ExpiresAt: now.Add(verificationTTL),
	}); err != nil {
		return nil, fmt.Errorf("persist verification token: %w", err)
	}
	result.VerificationToken = verificationRaw

	if err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        &email,
		Role:         input.Role,
		Status:       string(user.Status),
		RegisteredAt: now,
	}); err != nil {
		s.log.Warn("publish user registered failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(email)),
		zap.String("role", string(input.Role)),
	)

	return result, nil
}

// ResendResult carries the fresh verification token issued by a resend.
type ResendResult struct {
	Email             string
	VerificationToken string
	ExpiresAt         time.Time
}

// ResendVerification issues a fresh verification token for an account that is
// still pending. Callers are expected to collapse ErrUnknownEmail and
// ErrAlreadyVerified into a generic accepted response.
func (s *RegistrationService) ResendVerification(ctx context.Context, email string) (*ResendResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrUnknownEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if user.Status != domain.UserStatusPending {
		return nil, ErrAlreadyVerified
	}

	raw, err := security.GenerateSecureToken(verificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(verificationTTL)
	if err := s.tokens.CreateVerification(ctx, domain.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(raw),
		Purpose:   "email_verification",
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("persist verification token: %w", err)
	}

	s.log.Info("verification token reissued",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return &ResendResult{Email: email, VerificationToken: raw, ExpiresAt: expiresAt}, nil
}

func (s *RegistrationService) createOrganization(ctx context.Context, ownerID, name string, now time.Time) (string, error) {
	org := domain.Organization{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.teams.CreateOrganization(ctx, org); err != nil {
		return "", fmt.Errorf("create organization: %w", err)
	}

	if err := s.teams.AddMember(ctx, domain.OrganizationMember{
		OrganizationID: org.ID,
		ProfileID:      ownerID,
		Role:           domain.OrgMemberAdmin,
		CreatedAt:      now,
	}); err != nil {
		return "", fmt.Errorf("add owner membership: %w", err)
	}

	return org.ID, nil
}

// EnsureProfile creates the profile row for an account that lacks one. Called
// during registration and again on sign-in when the registration-time insert
// failed.
func (s *RegistrationService) EnsureProfile(ctx context.Context, userID, email string, input RegisterInput, organizationID *string) error {
	if _, err := s.profiles.GetByID(ctx, userID); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check profile: %w", err)
	}

	now := time.Now().UTC()
	fullName := strings.TrimSpace(input.FullName)

	profile := domain.Profile{
		ID:                     userID,
		Email:                  email,
		FullName:               &fullName,
		Bio:                    input.Bio,
		Role:                   input.Role,
		MentorExperience:       input.MentorExperience,
		ExpertiseAreas:         input.ExpertiseAreas,
		LanguagesSpoken:        input.LanguagesSpoken,
		YearsOfExperience:      input.YearsOfExperience,
		SessionRate:            input.SessionRate,
		ProfessionalBackground: input.ProfessionalBackground,
		// Mentors wait for admin approval before appearing in search.
		Approved:       input.Role != domain.RoleMentor,
		OrganizationID: organizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}
