package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User mirrors the persisted auth account in the users table. The profile row
// carries everything user-facing; the user row only owns credentials and
// account state.
type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	PasswordAlgo       string
	Status             UserStatus
	RegisteredAt       time.Time
	LastLogin          *time.Time
	LastPasswordChange time.Time
}

// RefreshToken represents a persisted refresh token (stored as a hash).
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	IP        *string
	UserAgent *string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	Metadata  map[string]any
}

// VerificationToken captures the email verification flow for new accounts.
type VerificationToken struct {
	ID        string
	UserID    string
	TokenHash string
	Purpose   string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
	RevokedAt *time.Time
}

// AuthEventKind enumerates identity-state changes emitted by the auth layer.
type AuthEventKind string

const (
	AuthEventSignedIn       AuthEventKind = "signed_in"
	AuthEventSignedOut      AuthEventKind = "signed_out"
	AuthEventTokenRefreshed AuthEventKind = "token_refreshed"
)

// AuthStateEvent is delivered to subscribers whenever the identity state
// changes. UserID is empty for signed_out events.
type AuthStateEvent struct {
	Kind      AuthEventKind
	UserID    string
	SessionID string
	At        time.Time
}
