package port

import (
	"context"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

// IdentityHandle is the raw account reference returned by credential checks so
// callers can continue a multi-step flow before the profile is resolved.
type IdentityHandle struct {
	UserID string
	Email  string
}

// IdentityProvider exposes the credential operations the session store
// delegates to. The concrete implementation lives in the usecase layer; the
// session store only depends on this surface plus the auth-state event stream.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (IdentityHandle, error)
	SignOutUser(ctx context.Context, userID string) error
}

// AuthStateSubscriber receives identity-state change events. Subscribe is
// called once at startup; handlers must tolerate overlapping deliveries.
type AuthStateSubscriber interface {
	Subscribe(handler func(domain.AuthStateEvent))
}
