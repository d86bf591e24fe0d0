package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

type recordingCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.Profile
	sets        int
	invalidated []string
}

func (c *recordingCache) Get(_ context.Context, userID string) (*domain.Profile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	profile, ok := c.entries[userID]
	if !ok {
		return nil, false, nil
	}
	copied := *profile
	return &copied, true, nil
}

func (c *recordingCache) Set(_ context.Context, profile domain.Profile, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]*domain.Profile{}
	}
	copied := profile
	c.entries[profile.ID] = &copied
	c.sets++
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func TestGetServesFromCacheWithoutRepositoryRead(t *testing.T) {
	cached := mentorProfile("mentor-1")
	cache := &recordingCache{entries: map[string]*domain.Profile{"mentor-1": cached}}
	profiles := &stubProfiles{}
	svc := NewProfileService(profiles, cache, time.Minute, zaptest.NewLogger(t))

	got, err := svc.Get(context.Background(), "mentor-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != "mentor-1" {
		t.Fatalf("got profile %s, want mentor-1", got.ID)
	}
	if profiles.calls != 0 {
		t.Errorf("repository reads = %d, want 0 on cache hit", profiles.calls)
	}
}

func TestGetFillsCacheOnMiss(t *testing.T) {
	cache := &recordingCache{}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"mentor-1": mentorProfile("mentor-1")}}
	svc := NewProfileService(profiles, cache, time.Minute, zaptest.NewLogger(t))

	if _, err := svc.Get(context.Background(), "mentor-1"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}
}

func TestGetFreshBypassesCache(t *testing.T) {
	stale := mentorProfile("mentor-1")
	stale.Role = domain.RoleSubscriber
	cache := &recordingCache{entries: map[string]*domain.Profile{"mentor-1": stale}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"mentor-1": mentorProfile("mentor-1")}}
	svc := NewProfileService(profiles, cache, time.Minute, zaptest.NewLogger(t))

	got, err := svc.GetFresh(context.Background(), "mentor-1")
	if err != nil {
		t.Fatalf("GetFresh returned error: %v", err)
	}
	if got.Role != domain.RoleMentor {
		t.Fatalf("role = %s, want the repository copy", got.Role)
	}
}

func TestUpdateSessionRateRequiresRateFlag(t *testing.T) {
	cache := &recordingCache{}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"sub-1": {ID: "sub-1", Role: domain.RoleSubscriber}}}
	svc := NewProfileService(profiles, cache, time.Minute, zaptest.NewLogger(t))

	_, err := svc.Update(context.Background(), "sub-1", UpdateProfileInput{SessionRate: intPtr(5)}, domain.PermissionsFor(domain.RoleSubscriber))
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestUpdateInvalidatesCachedProfile(t *testing.T) {
	cache := &recordingCache{entries: map[string]*domain.Profile{"mentor-1": mentorProfile("mentor-1")}}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{"mentor-1": mentorProfile("mentor-1")}}
	svc := NewProfileService(profiles, cache, time.Minute, zaptest.NewLogger(t))

	updated, err := svc.Update(context.Background(), "mentor-1", UpdateProfileInput{
		FullName:    strPtr("  Pat Doe  "),
		SessionRate: intPtr(4),
	}, domain.PermissionsFor(domain.RoleMentor))
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.FullName == nil || *updated.FullName != "Pat Doe" {
		t.Errorf("full name not trimmed: %v", updated.FullName)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "mentor-1" {
		t.Errorf("invalidated = %v, want [mentor-1]", cache.invalidated)
	}
}

func TestUpdateUnknownProfile(t *testing.T) {
	svc := NewProfileService(&stubProfiles{}, &recordingCache{}, time.Minute, zaptest.NewLogger(t))

	_, err := svc.Update(context.Background(), "ghost", UpdateProfileInput{Bio: strPtr("hi")}, domain.PermissionSet{})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}
