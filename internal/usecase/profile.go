package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

// ErrProfileNotFound indicates no profile row exists for the user id.
var ErrProfileNotFound = errors.New("profile not found")

// UpdateProfileInput carries the member-editable profile fields. Role and
// credits are deliberately absent: those columns belong to the backend.
type UpdateProfileInput struct {
	FullName               *string
	AvatarURL              *string
	Bio                    *string
	MentorExperience       []string
	ExpertiseAreas         []string
	LanguagesSpoken        []string
	YearsOfExperience      *int
	SessionRate            *int
	ProfessionalBackground *string
	CalUsername            *string
}

// ProfileService reads and updates member profiles, keeping the Redis copy in
// step with Postgres.
type ProfileService struct {
	profiles port.ProfileRepository
	cache    port.ProfileCache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(profiles port.ProfileRepository, cache port.ProfileCache, cacheTTL time.Duration, log *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Get returns the profile, serving from cache when a fresh copy exists.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	if cached, ok, err := s.cache.Get(ctx, userID); err != nil {
		s.log.Warn("profile cache read failed", zap.String("user_id", userID), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if err := s.cache.Set(ctx, *profile, s.cacheTTL); err != nil {
		s.log.Warn("profile cache write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return profile, nil
}

// GetFresh bypasses the cache. Guard middleware uses it when a stale role
// would change an authorization decision.
func (s *ProfileService) GetFresh(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// Update applies the member-editable fields and invalidates the cached copy.
// Rate changes require the canSetRates flag, enforced here because the field
// travels in the same payload as unrestricted edits.
func (s *ProfileService) Update(ctx context.Context, userID string, input UpdateProfileInput, perms domain.PermissionSet) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if input.FullName != nil {
		trimmed := strings.TrimSpace(*input.FullName)
		profile.FullName = &trimmed
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = input.AvatarURL
	}
	if input.Bio != nil {
		profile.Bio = input.Bio
	}
	if input.MentorExperience != nil {
		profile.MentorExperience = input.MentorExperience
	}
	if input.ExpertiseAreas != nil {
		profile.ExpertiseAreas = input.ExpertiseAreas
	}
	if input.LanguagesSpoken != nil {
		profile.LanguagesSpoken = input.LanguagesSpoken
	}
	if input.YearsOfExperience != nil {
		profile.YearsOfExperience = input.YearsOfExperience
	}
	if input.ProfessionalBackground != nil {
		profile.ProfessionalBackground = input.ProfessionalBackground
	}
	if input.SessionRate != nil {
		if !perms.Has(domain.PermSetRates) {
			return nil, ErrPermissionDenied
		}
		profile.SessionRate = input.SessionRate
	}

	profile.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Update(ctx, *profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if input.CalUsername != nil {
		if !perms.Has(domain.PermManageAvailability) {
			return nil, ErrPermissionDenied
		}
		if err := s.profiles.UpsertCalendar(ctx, domain.MentorCalendar{
			MentorID:    userID,
			CalUsername: strings.TrimSpace(*input.CalUsername),
			Platform:    "cal.com",
			UpdatedAt:   profile.UpdatedAt,
		}); err != nil {
			return nil, fmt.Errorf("upsert calendar: %w", err)
		}
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("profile cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}

	return profile, nil
}
