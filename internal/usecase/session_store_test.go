package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/infra/config"
	"github.com/linkedleaders/platform-api/internal/repository"
)

type stubIdentity struct {
	handle  port.IdentityHandle
	signIn  error
	signOut error

	mu          sync.Mutex
	signOutTo   []string
	signInCalls int
}

func (s *stubIdentity) SignInWithPassword(_ context.Context, _, _ string) (port.IdentityHandle, error) {
	s.mu.Lock()
	s.signInCalls++
	s.mu.Unlock()
	if s.signIn != nil {
		return port.IdentityHandle{}, s.signIn
	}
	return s.handle, nil
}

func (s *stubIdentity) SignOutUser(_ context.Context, userID string) error {
	s.mu.Lock()
	s.signOutTo = append(s.signOutTo, userID)
	s.mu.Unlock()
	return s.signOut
}

type stubProfiles struct {
	port.ProfileRepository

	mu         sync.Mutex
	profiles   map[string]*domain.Profile
	failures   int
	err        error
	calls      int
	lastFilter domain.MentorSearchFilter
	reviews    []domain.MentorReview
}

func (s *stubProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failures > 0 {
		s.failures--
		return nil, s.err
	}

	profile, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func newTestStore(t *testing.T, identity *stubIdentity, profiles *stubProfiles, cfg config.AuthSettings) *SessionStore {
	t.Helper()

	store := NewSessionStore(identity, profiles, cfg, zaptest.NewLogger(t))
	store.sleep = func(context.Context, time.Duration) error { return nil }
	return store
}

func mentorProfile(id string) *domain.Profile {
	return &domain.Profile{ID: id, Role: domain.RoleMentor, Approved: true}
}

func TestSessionStoreStartsUnresolved(t *testing.T) {
	store := newTestStore(t, &stubIdentity{}, &stubProfiles{}, config.AuthSettings{})

	snap := store.Current()
	if snap.State != SessionUnresolved {
		t.Fatalf("state = %v, want unresolved", snap.State)
	}
	if snap.IsAuthenticated() {
		t.Error("unresolved snapshot must not report authenticated")
	}
	if snap.HasPermission(domain.PermBookSessions) {
		t.Error("unresolved snapshot must not grant permissions")
	}
}

func TestSessionStoreSignInResolvesProfileAtomically(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "mentor-1", Email: "m@example.com"}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"mentor-1": mentorProfile("mentor-1")}}
	store := newTestStore(t, identity, profiles, config.AuthSettings{})

	snap, err := store.SignIn(context.Background(), "m@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if !snap.IsAuthenticated() {
		t.Fatal("expected authenticated state")
	}
	if snap.Profile == nil || snap.Profile.Role != domain.RoleMentor {
		t.Fatalf("unexpected profile: %+v", snap.Profile)
	}

	// Mentor capability matrix: host/availability/rates yes, booking no.
	if !snap.HasPermission(domain.PermHostMasterclasses) {
		t.Error("mentor should host masterclasses")
	}
	if !snap.HasPermission(domain.PermManageAvailability) {
		t.Error("mentor should manage availability")
	}
	if snap.HasPermission(domain.PermBookSessions) {
		t.Error("mentor must not book sessions")
	}
	if snap.HasPermission(domain.PermSpendCredits) {
		t.Error("mentor must not spend credits")
	}
}

func TestSessionStoreHasPermissionIsPure(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "mentor-1"}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"mentor-1": mentorProfile("mentor-1")}}
	store := newTestStore(t, identity, profiles, config.AuthSettings{})

	if _, err := store.SignIn(context.Background(), "m@example.com", "pw"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	snap := store.Current()
	profiles.mu.Lock()
	before := profiles.calls
	profiles.mu.Unlock()

	for i := 0; i < 100; i++ {
		snap.HasPermission(domain.PermSendMessages)
		snap.HasPermission(domain.PermViewAnalytics)
	}

	profiles.mu.Lock()
	after := profiles.calls
	profiles.mu.Unlock()

	if before != after {
		t.Errorf("permission checks performed %d profile reads", after-before)
	}
}

func TestSessionStoreRejectedSignInPreservesState(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "sub-1"}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}}}
	store := newTestStore(t, identity, profiles, config.AuthSettings{})

	if _, err := store.SignIn(context.Background(), "s@example.com", "pw"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	identity.signIn = ErrInvalidCredentials
	snap, err := store.SignIn(context.Background(), "s@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}

	if !snap.IsAuthenticated() || snap.UserID != "sub-1" {
		t.Errorf("rejected sign-in disturbed state: %+v", snap)
	}
}

func TestSessionStoreSignOutIsIdempotentAndTerminal(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "sub-1"}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}}}
	store := newTestStore(t, identity, profiles, config.AuthSettings{})

	if _, err := store.SignIn(context.Background(), "s@example.com", "pw"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if err := store.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if state := store.Current().State; state != SessionAnonymous {
		t.Fatalf("state after sign-out = %v, want anonymous", state)
	}

	// Second sign-out is a no-op, not an error, and does not call the
	// identity provider again.
	if err := store.SignOut(context.Background()); err != nil {
		t.Fatalf("second SignOut returned error: %v", err)
	}
	identity.mu.Lock()
	signOuts := len(identity.signOutTo)
	identity.mu.Unlock()
	if signOuts != 1 {
		t.Errorf("identity sign-out called %d times, want 1", signOuts)
	}

	if store.Current().HasPermission(domain.PermSendMessages) {
		t.Error("signed-out snapshot must not grant permissions")
	}
}

func TestSessionStoreSignOutClearsStateWhenRevocationFails(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "sub-1"}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}}}
	store := newTestStore(t, identity, profiles, config.AuthSettings{})

	if _, err := store.SignIn(context.Background(), "s@example.com", "pw"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	identity.signOut = errors.New("backend unavailable")
	err := store.SignOut(context.Background())
	if err == nil {
		t.Fatal("SignOut swallowed the revocation failure")
	}

	// The local session clears even though the remote call failed.
	snap := store.Current()
	if snap.State != SessionAnonymous {
		t.Fatalf("state after failed remote sign-out = %v, want anonymous", snap.State)
	}
	if snap.HasPermission(domain.PermSendMessages) {
		t.Error("permissions still granted after sign-out")
	}
	if snap.Profile != nil {
		t.Error("profile still cached after sign-out")
	}
}

func TestSessionStoreRetriesTransientFailures(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "sub-1"}}
	profiles := &stubProfiles{
		profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}},
		failures: 2,
		err:      errors.New("connection refused"),
	}
	store := newTestStore(t, identity, profiles, config.AuthSettings{ProfileFetchAttempts: 3})

	snap, err := store.SignIn(context.Background(), "s@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if !snap.IsAuthenticated() {
		t.Fatal("expected recovery within retry budget")
	}
	profiles.mu.Lock()
	calls := profiles.calls
	profiles.mu.Unlock()
	if calls != 3 {
		t.Errorf("profile fetch attempts = %d, want 3", calls)
	}
}

func TestSessionStoreRetryDelaysGrowLinearly(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "sub-1"}}
	profiles := &stubProfiles{
		profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}},
		failures: 2,
		err:      errors.New("connection refused"),
	}
	store := NewSessionStore(identity, profiles, config.AuthSettings{
		ProfileFetchAttempts: 3,
		ProfileFetchDelay:    time.Second,
	}, zaptest.NewLogger(t))

	var delays []time.Duration
	store.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	if _, err := store.SignIn(context.Background(), "s@example.com", "pw"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestSessionStoreExhaustedRetriesCollapseToAnonymous(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "sub-1"}}
	profiles := &stubProfiles{
		profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}},
		failures: 10,
		err:      errors.New("connection refused"),
	}
	store := newTestStore(t, identity, profiles, config.AuthSettings{ProfileFetchAttempts: 3})

	snap, err := store.SignIn(context.Background(), "s@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if snap.State != SessionAnonymous {
		t.Fatalf("state = %v, want anonymous", snap.State)
	}
}

func TestSessionStoreDistinguishesUnreachableWhenConfigured(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "sub-1"}}
	profiles := &stubProfiles{
		profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}},
		failures: 10,
		err:      errors.New("connection refused"),
	}
	store := newTestStore(t, identity, profiles, config.AuthSettings{
		ProfileFetchAttempts:   3,
		DistinguishUnreachable: true,
	})

	snap, _ := store.SignIn(context.Background(), "s@example.com", "pw")
	if snap.State != SessionUnreachable {
		t.Fatalf("state = %v, want unreachable", snap.State)
	}
	if snap.HasPermission(domain.PermBookSessions) {
		t.Error("unreachable snapshot must not grant permissions")
	}
}

func TestSessionStoreMissingProfileIsAnonymousWithoutRetry(t *testing.T) {
	identity := &stubIdentity{handle: port.IdentityHandle{UserID: "ghost"}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{}}
	store := newTestStore(t, identity, profiles, config.AuthSettings{ProfileFetchAttempts: 3})

	snap, err := store.SignIn(context.Background(), "g@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if snap.State != SessionAnonymous {
		t.Fatalf("state = %v, want anonymous", snap.State)
	}
	profiles.mu.Lock()
	calls := profiles.calls
	profiles.mu.Unlock()
	if calls != 1 {
		t.Errorf("missing profile fetched %d times, want 1", calls)
	}
}

func TestSessionStoreAppliesEventsFromSubscription(t *testing.T) {
	identity := &stubIdentity{}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"admin-1": {ID: "admin-1", Role: domain.RoleSystemAdmin}}}
	store := newTestStore(t, identity, profiles, config.AuthSettings{})

	var handler func(domain.AuthStateEvent)
	store.Bind(subscriberFunc(func(h func(domain.AuthStateEvent)) { handler = h }))
	if handler == nil {
		t.Fatal("Bind did not subscribe")
	}

	handler(domain.AuthStateEvent{Kind: domain.AuthEventSignedIn, UserID: "admin-1", At: time.Now()})

	snap := store.Current()
	if !snap.IsAuthenticated() {
		t.Fatal("expected authenticated after signed_in event")
	}
	if !snap.HasPermission(domain.PermApproveUsers) {
		t.Error("system admin should approve users")
	}

	// Redelivering the same event is harmless and does not refetch.
	profiles.mu.Lock()
	before := profiles.calls
	profiles.mu.Unlock()
	handler(domain.AuthStateEvent{Kind: domain.AuthEventSignedIn, UserID: "admin-1", At: time.Now()})
	profiles.mu.Lock()
	after := profiles.calls
	profiles.mu.Unlock()
	if before != after {
		t.Errorf("duplicate event triggered %d extra fetches", after-before)
	}

	handler(domain.AuthStateEvent{Kind: domain.AuthEventSignedOut, At: time.Now()})
	if store.Current().State != SessionAnonymous {
		t.Error("expected anonymous after signed_out event")
	}
}

type subscriberFunc func(func(domain.AuthStateEvent))

func (f subscriberFunc) Subscribe(handler func(domain.AuthStateEvent)) { f(handler) }

func TestSessionStoreResolveEmptyUserSettlesAnonymous(t *testing.T) {
	store := newTestStore(t, &stubIdentity{}, &stubProfiles{}, config.AuthSettings{})

	snap := store.Resolve(context.Background(), "")
	if snap.State != SessionAnonymous {
		t.Fatalf("state = %v, want anonymous", snap.State)
	}
}
