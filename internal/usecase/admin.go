package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

// PlatformStats aggregates the counters shown on the admin analytics page.
type PlatformStats struct {
	PendingMentors    int
	UpcomingFiresides int
}

// AdminService owns moderation surfaces: the mentor approval queue, invoice
// processing, and platform analytics. Every operation requires a capability
// flag held only by system admins.
type AdminService struct {
	profiles   port.ProfileRepository
	gatherings port.GatheringRepository
	procedures port.ProcedureCaller
	cache      port.ProfileCache
	log        *zap.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(
	profiles port.ProfileRepository,
	gatherings port.GatheringRepository,
	procedures port.ProcedureCaller,
	cache port.ProfileCache,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		profiles:   profiles,
		gatherings: gatherings,
		procedures: procedures,
		cache:      cache,
		log:        log,
	}
}

// PendingMentors lists mentor applications awaiting approval. Requires
// canApproveUsers.
func (s *AdminService) PendingMentors(ctx context.Context, perms domain.PermissionSet, limit, offset int) ([]domain.Profile, error) {
	if !perms.Has(domain.PermApproveUsers) {
		return nil, ErrPermissionDenied
	}

	profiles, err := s.profiles.ListPendingApproval(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list pending mentors: %w", err)
	}
	return profiles, nil
}

// SetMentorApproval approves or rejects a mentor application and drops the
// cached profile so the decision takes effect on the mentor's next request.
// Requires canApproveUsers.
func (s *AdminService) SetMentorApproval(ctx context.Context, perms domain.PermissionSet, mentorID string, approved bool) error {
	if !perms.Has(domain.PermApproveUsers) {
		return ErrPermissionDenied
	}

	if err := s.profiles.SetApproved(ctx, mentorID, approved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("set mentor approval: %w", err)
	}
	if err := s.cache.Invalidate(ctx, mentorID); err != nil {
		s.log.Warn("profile cache invalidation failed", zap.String("user_id", mentorID), zap.Error(err))
	}

	s.log.Info("mentor approval updated",
		zap.String("mentor_id", mentorID),
		zap.Bool("approved", approved),
	)
	return nil
}

// ProcessInvoice settles a mentor invoice through the backend accounting
// procedure. Requires canViewAnalytics, the admin-only billing flag.
func (s *AdminService) ProcessInvoice(ctx context.Context, perms domain.PermissionSet, invoiceID string) error {
	if !perms.Has(domain.PermViewAnalytics) {
		return ErrPermissionDenied
	}

	if err := s.procedures.ProcessMentorInvoice(ctx, invoiceID); err != nil {
		return fmt.Errorf("process mentor invoice: %w", err)
	}

	s.log.Info("mentor invoice processed", zap.String("invoice_id", invoiceID))
	return nil
}

// Stats returns the counters on the admin analytics page. Requires
// canViewAnalytics.
func (s *AdminService) Stats(ctx context.Context, perms domain.PermissionSet) (*PlatformStats, error) {
	if !perms.Has(domain.PermViewAnalytics) {
		return nil, ErrPermissionDenied
	}

	pending, err := s.profiles.ListPendingApproval(ctx, maxSearchLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list pending mentors: %w", err)
	}

	firesides, err := s.gatherings.ListUpcomingFiresides(ctx, time.Now().UTC(), maxSearchLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list firesides: %w", err)
	}

	return &PlatformStats{
		PendingMentors:    len(pending),
		UpcomingFiresides: len(firesides),
	}, nil
}
