package domain

import "time"

// LoginSession represents a persisted login session bound to a refresh token
// family.
type LoginSession struct {
	ID             string
	UserID         string
	RefreshTokenID *string
	IPFirst        *string
	IPLast         *string
	UserAgent      *string
	CreatedAt      time.Time
	LastSeen       time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	RevokeReason   *string
}

// IsActive reports whether the session is still valid at the supplied moment.
func (s LoginSession) IsActive(at time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	return s.ExpiresAt.After(at)
}

// Touch updates last-seen metadata for the session when activity occurs.
func (s *LoginSession) Touch(at time.Time, ip, userAgent *string) {
	s.LastSeen = at
	if s.IPFirst == nil && ip != nil {
		ipCopy := *ip
		s.IPFirst = &ipCopy
	}
	if ip != nil {
		ipCopy := *ip
		s.IPLast = &ipCopy
	}
	if userAgent != nil {
		uaCopy := *userAgent
		s.UserAgent = &uaCopy
	}
}

// Revoke marks the session as revoked. Returns true when the session changed
// state, so callers can keep sign-out idempotent.
func (s *LoginSession) Revoke(at time.Time, reason string) bool {
	if s.RevokedAt != nil {
		return false
	}
	s.RevokedAt = &at
	s.RevokeReason = &reason
	return true
}
