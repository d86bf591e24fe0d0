package port

import (
	"context"
	"time"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

// ProfileCache is a short-TTL cache in front of the profiles table used by
// per-request guard checks. A miss is not an error; callers fall through to
// the repository.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*domain.Profile, bool, error)
	Set(ctx context.Context, profile domain.Profile, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
