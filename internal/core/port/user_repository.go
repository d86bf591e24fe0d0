package port

import (
	"context"
	"time"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

// UserRepository exposes persistence behavior for auth accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, passwordAlgo string, changedAt time.Time) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// TokenRepository persists refresh and verification token hashes.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
	RevokeRefreshTokensForUser(ctx context.Context, userID string) error
	CreateVerification(ctx context.Context, token domain.VerificationToken) error
	GetVerificationByHash(ctx context.Context, hash string) (*domain.VerificationToken, error)
	ConsumeVerification(ctx context.Context, id string) error
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session domain.LoginSession) error
	GetByID(ctx context.Context, id string) (*domain.LoginSession, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.LoginSession, error)
	Touch(ctx context.Context, id string, at time.Time, ip, userAgent *string) error
	Revoke(ctx context.Context, id string, reason string) error
	RevokeAllForUser(ctx context.Context, userID string, reason string) (int, error)
}
