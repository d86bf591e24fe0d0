package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/infra/config"
	"github.com/linkedleaders/platform-api/internal/repository"
)

// SessionState enumerates what the store currently knows about the caller's
// identity.
type SessionState int

const (
	// SessionUnresolved means no resolution attempt has completed yet.
	// Consumers must treat this as "unknown", never as "signed out".
	SessionUnresolved SessionState = iota
	// SessionAuthenticated means a user and their profile were loaded together.
	SessionAuthenticated
	// SessionAnonymous means resolution completed and found no signed-in user.
	SessionAnonymous
	// SessionUnreachable means the profile backend could not be reached after
	// bounded retries. Only reported when distinguish_unreachable is enabled;
	// otherwise unreachable collapses into SessionAnonymous.
	SessionUnreachable
)

// String implements fmt.Stringer for log output.
func (s SessionState) String() string {
	switch s {
	case SessionUnresolved:
		return "unresolved"
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	case SessionUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// SessionSnapshot is an immutable view of the resolved session. UserID,
// Profile, and Permissions were read in the same resolution step, so they are
// mutually consistent.
type SessionSnapshot struct {
	State       SessionState
	UserID      string
	Profile     *domain.Profile
	Permissions domain.PermissionSet
	ResolvedAt  time.Time
}

// IsAuthenticated reports whether the snapshot carries a signed-in user.
func (s SessionSnapshot) IsAuthenticated() bool {
	return s.State == SessionAuthenticated
}

// HasPermission reports whether the snapshot's role grants the named flag.
// Pure read: no I/O, no mutation. Anything other than an authenticated
// snapshot answers false.
func (s SessionSnapshot) HasPermission(perm domain.Permission) bool {
	if s.State != SessionAuthenticated {
		return false
	}
	return s.Permissions.Has(perm)
}

// SessionStore tracks the caller's identity state. It resolves the profile
// behind a signed-in user with bounded retries, keeps role and profile reads
// atomic, and applies auth-state events one at a time.
type SessionStore struct {
	identity port.IdentityProvider
	profiles port.ProfileRepository
	cfg      config.AuthSettings
	log      *zap.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error

	// eventMu serializes event application so concurrent deliveries cannot
	// interleave their state writes.
	eventMu sync.Mutex

	mu       sync.RWMutex
	snapshot SessionSnapshot
}

// NewSessionStore constructs a session store in the unresolved state.
func NewSessionStore(
	identity port.IdentityProvider,
	profiles port.ProfileRepository,
	cfg config.AuthSettings,
	log *zap.Logger,
) *SessionStore {
	if cfg.ProfileFetchAttempts <= 0 {
		cfg.ProfileFetchAttempts = 3
	}
	if cfg.ProfileFetchDelay <= 0 {
		cfg.ProfileFetchDelay = time.Second
	}

	return &SessionStore{
		identity: identity,
		profiles: profiles,
		cfg:      cfg,
		log:      log,
		sleep:    sleepContext,
		snapshot: SessionSnapshot{State: SessionUnresolved},
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Bind subscribes the store to the auth-state event stream.
func (s *SessionStore) Bind(subscriber port.AuthStateSubscriber) {
	subscriber.Subscribe(func(event domain.AuthStateEvent) {
		s.handleAuthEvent(context.Background(), event)
	})
}

// Current returns the latest snapshot.
func (s *SessionStore) Current() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// SignIn authenticates with the identity provider and resolves the profile.
// On rejection the previous state is preserved.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) (SessionSnapshot, error) {
	handle, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return s.Current(), err
	}

	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	s.resolveUser(ctx, handle.UserID)
	return s.Current(), nil
}

// SignOut revokes the user's sessions and settles into the anonymous state.
// Local state clears before the revocation call and regardless of its result:
// a failed backend must never leave a snapshot that still grants permissions.
// Idempotent: signing out while anonymous is a no-op that still reports
// anonymous, and no later event can resurrect the previous session.
func (s *SessionStore) SignOut(ctx context.Context) error {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	current := s.Current()
	s.setSnapshot(SessionSnapshot{State: SessionAnonymous, ResolvedAt: time.Now().UTC()})

	if current.State != SessionAuthenticated {
		return nil
	}

	if err := s.identity.SignOutUser(ctx, current.UserID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Resolve performs the initial resolution for a known user id, used at startup
// when a persisted session exists. An empty user id settles into anonymous.
func (s *SessionStore) Resolve(ctx context.Context, userID string) SessionSnapshot {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	if userID == "" {
		s.setSnapshot(SessionSnapshot{State: SessionAnonymous, ResolvedAt: time.Now().UTC()})
	} else {
		s.resolveUser(ctx, userID)
	}
	return s.Current()
}

// handleAuthEvent applies one auth-state event. Events are processed strictly
// one at a time; reapplying the same event is harmless.
func (s *SessionStore) handleAuthEvent(ctx context.Context, event domain.AuthStateEvent) {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	switch event.Kind {
	case domain.AuthEventSignedIn, domain.AuthEventTokenRefreshed:
		current := s.Current()
		if current.State == SessionAuthenticated && current.UserID == event.UserID {
			// Same user already resolved; nothing to redo.
			return
		}
		s.resolveUser(ctx, event.UserID)
	case domain.AuthEventSignedOut:
		s.setSnapshot(SessionSnapshot{State: SessionAnonymous, ResolvedAt: event.At})
	default:
		s.log.Warn("unknown auth event kind", zap.String("kind", string(event.Kind)))
	}
}

// resolveUser loads the profile for the signed-in user. Role and profile come
// from a single read so permissions can never reflect a different profile
// version. Callers must hold eventMu.
func (s *SessionStore) resolveUser(ctx context.Context, userID string) {
	profile, err := s.fetchProfileWithRetry(ctx, userID)
	now := time.Now().UTC()

	switch {
	case err == nil:
		s.setSnapshot(SessionSnapshot{
			State:       SessionAuthenticated,
			UserID:      userID,
			Profile:     profile,
			Permissions: domain.PermissionsFor(profile.Role),
			ResolvedAt:  now,
		})
	case errors.Is(err, repository.ErrNotFound):
		// The account exists but its profile row is gone; the session is
		// unusable and treated as signed out.
		s.log.Warn("profile missing for signed-in user", zap.String("user_id", userID))
		s.setSnapshot(SessionSnapshot{State: SessionAnonymous, ResolvedAt: now})
	default:
		s.log.Error("profile resolution failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		state := SessionAnonymous
		if s.cfg.DistinguishUnreachable {
			state = SessionUnreachable
		}
		s.setSnapshot(SessionSnapshot{State: state, ResolvedAt: now})
	}
}

// fetchProfileWithRetry retries transient failures with a linearly growing
// delay: the first retry waits one delay unit, the second two, and so on.
// ErrNotFound is definitive and never retried.
func (s *SessionStore) fetchProfileWithRetry(ctx context.Context, userID string) (*domain.Profile, error) {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.ProfileFetchAttempts; attempt++ {
		profile, err := s.profiles.GetByID(ctx, userID)
		if err == nil {
			return profile, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		lastErr = err
		if attempt == s.cfg.ProfileFetchAttempts {
			break
		}

		delay := time.Duration(attempt) * s.cfg.ProfileFetchDelay
		s.log.Warn("profile fetch failed, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := s.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("fetch profile after %d attempts: %w", s.cfg.ProfileFetchAttempts, lastErr)
}

func (s *SessionStore) setSnapshot(snapshot SessionSnapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}
