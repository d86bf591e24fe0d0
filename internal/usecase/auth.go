package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/infra/config"
	"github.com/linkedleaders/platform-api/internal/infra/logger"
	"github.com/linkedleaders/platform-api/internal/infra/security"
	"github.com/linkedleaders/platform-api/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account is disabled.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrAccountPending indicates the account requires email verification before login.
	ErrAccountPending = errors.New("account pending verification")
	// ErrInvalidRefreshToken indicates the provided refresh token does not exist or was revoked.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrExpiredRefreshToken indicates the provided refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
	// ErrInvalidAccessToken indicates the provided access token is malformed or signature validation failed.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the provided access token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
	// ErrInvalidVerificationToken indicates the email verification token is unknown, used, or expired.
	ErrInvalidVerificationToken = errors.New("invalid verification token")
)

const refreshTokenBytes = 32

// LoginResult carries everything issued on a successful sign-in.
type LoginResult struct {
	User         domain.User
	SessionID    string
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AuthService owns credential verification, token issuance, and the auth-state
// event stream other components subscribe to.
type AuthService struct {
	cfg      *config.AppConfig
	users    port.UserRepository
	tokens   port.TokenRepository
	sessions port.SessionRepository
	jwt      *security.JWTManager
	events   port.EventPublisher
	log      *zap.Logger

	mu       sync.RWMutex
	handlers []func(domain.AuthStateEvent)

	dispatchOnce sync.Once
	authEvents   chan domain.AuthStateEvent
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	cfg *config.AppConfig,
	users port.UserRepository,
	tokens port.TokenRepository,
	sessions port.SessionRepository,
	jwtManager *security.JWTManager,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		jwt:      jwtManager,
		events:   events,
		log:      log,
	}
}

// authEventBuffer bounds the queue between request goroutines and the
// subscriber dispatch goroutine.
const authEventBuffer = 64

// Subscribe registers a handler for auth-state change events. Handlers run in
// registration order on a dedicated dispatch goroutine, one event at a time,
// so slow subscribers never stall the request that triggered the change.
func (s *AuthService) Subscribe(handler func(domain.AuthStateEvent)) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	s.handlers = append(s.handlers, handler)
	s.mu.Unlock()
}

func (s *AuthService) broadcast(event domain.AuthStateEvent) {
	s.dispatchOnce.Do(func() {
		s.authEvents = make(chan domain.AuthStateEvent, authEventBuffer)
		go s.dispatchAuthEvents()
	})
	s.authEvents <- event
}

// dispatchAuthEvents delivers events in emission order for the life of the
// process. Ordering matters: a signed-out event must never be overtaken by an
// earlier signed-in event, or a cleared session could resurrect.
func (s *AuthService) dispatchAuthEvents() {
	for event := range s.authEvents {
		s.mu.RLock()
		handlers := make([]func(domain.AuthStateEvent), len(s.handlers))
		copy(handlers, s.handlers)
		s.mu.RUnlock()

		for _, handler := range handlers {
			handler(event)
		}
	}
}

// SignInWithPassword verifies credentials without issuing tokens. The session
// store uses this surface directly; HTTP login goes through Login.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (port.IdentityHandle, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return port.IdentityHandle{}, err
	}

	return port.IdentityHandle{UserID: user.ID, Email: user.Email}, nil
}

func (s *AuthService) verifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case domain.UserStatusActive:
	case domain.UserStatusPending:
		return nil, ErrAccountPending
	default:
		return nil, ErrInactiveAccount
	}

	return user, nil
}

// Login verifies credentials, opens a login session, and issues an access and
// refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string, ip, userAgent *string) (*LoginResult, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	refreshRaw, err := security.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshToken := domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(refreshRaw),
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.JWT.RefreshTokenTTL),
	}
	if err := s.tokens.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	session := domain.LoginSession{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		RefreshTokenID: &refreshToken.ID,
		IPFirst:        ip,
		IPLast:         ip,
		UserAgent:      userAgent,
		CreatedAt:      now,
		LastSeen:       now,
		ExpiresAt:      now.Add(s.cfg.JWT.RefreshTokenTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	accessToken, err := s.jwt.Issue(user.ID, user.Email, "", now)
	if err != nil {
		return nil, err
	}

	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("record login failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	s.log.Info("user signed in",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	s.broadcast(domain.AuthStateEvent{
		Kind:      domain.AuthEventSignedIn,
		UserID:    user.ID,
		SessionID: session.ID,
		At:        now,
	})

	return &LoginResult{
		User:         *user,
		SessionID:    session.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshRaw,
		ExpiresIn:    s.jwt.TTL(),
	}, nil
}

// IssueAccessToken issues an access token carrying the caller's current role
// claim. Handlers call this after resolving the profile so the token reflects
// the role at issuance; per-request checks still re-read the profile row.
func (s *AuthService) IssueAccessToken(userID, email string, role domain.Role) (string, error) {
	return s.jwt.Issue(userID, email, role, time.Now().UTC())
}

// Refresh rotates the refresh token and issues a fresh access token. The old
// refresh token is revoked in the same step so replays fail.
func (s *AuthService) Refresh(ctx context.Context, refreshRaw string) (*LoginResult, error) {
	if refreshRaw == "" {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.tokens.GetRefreshTokenByHash(ctx, security.HashToken(refreshRaw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	now := time.Now().UTC()

	if stored.RevokedAt != nil {
		return nil, ErrInvalidRefreshToken
	}
	if !stored.ExpiresAt.After(now) {
		return nil, ErrExpiredRefreshToken
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, ErrInactiveAccount
	}

	if err := s.tokens.RevokeRefreshToken(ctx, stored.ID); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	nextRaw, err := security.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	next := domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(nextRaw),
		IP:        stored.IP,
		UserAgent: stored.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.JWT.RefreshTokenTTL),
	}
	if err := s.tokens.CreateRefreshToken(ctx, next); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	accessToken, err := s.jwt.Issue(user.ID, user.Email, "", now)
	if err != nil {
		return nil, err
	}

	s.broadcast(domain.AuthStateEvent{
		Kind:   domain.AuthEventTokenRefreshed,
		UserID: user.ID,
		At:     now,
	})

	return &LoginResult{
		User:         *user,
		AccessToken:  accessToken,
		RefreshToken: nextRaw,
		ExpiresIn:    s.jwt.TTL(),
	}, nil
}

// SignOutUser revokes every live session and refresh token for the user. The
// call is idempotent: signing out an already signed-out user succeeds without
// side effects beyond the broadcast.
func (s *AuthService) SignOutUser(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	now := time.Now().UTC()

	revoked, err := s.sessions.RevokeAllForUser(ctx, userID, "signed_out")
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	if err := s.tokens.RevokeRefreshTokensForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	if revoked > 0 {
		if err := s.events.PublishSessionRevoked(ctx, domain.SessionRevokedEvent{
			EventID:   uuid.NewString(),
			UserID:    userID,
			Reason:    "signed_out",
			RevokedAt: now,
		}); err != nil {
			s.log.Warn("publish session revoked failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	s.broadcast(domain.AuthStateEvent{
		Kind: domain.AuthEventSignedOut,
		At:   now,
	})

	return nil
}

// ParseAccessToken validates a bearer token and returns its claims.
func (s *AuthService) ParseAccessToken(raw string) (*security.AccessClaims, error) {
	claims, err := s.jwt.Parse(raw)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// VerifyEmail consumes a verification token and activates the account.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenRaw string) error {
	if tokenRaw == "" {
		return ErrInvalidVerificationToken
	}

	token, err := s.tokens.GetVerificationByHash(ctx, security.HashToken(tokenRaw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("lookup verification token: %w", err)
	}

	now := time.Now().UTC()
	if token.UsedAt != nil || token.RevokedAt != nil || !token.ExpiresAt.After(now) {
		return ErrInvalidVerificationToken
	}

	if err := s.tokens.ConsumeVerification(ctx, token.ID); err != nil {
		return fmt.Errorf("consume verification token: %w", err)
	}

	if err := s.users.UpdateStatus(ctx, token.UserID, domain.UserStatusActive); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	return nil
}

var (
	_ port.IdentityProvider    = (*AuthService)(nil)
	_ port.AuthStateSubscriber = (*AuthService)(nil)
)
