package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

var (
	// ErrGatheringNotFound indicates the fireside chat or masterclass id does
	// not exist.
	ErrGatheringNotFound = errors.New("gathering not found")
	// ErrGatheringFull indicates registration has reached capacity.
	ErrGatheringFull = errors.New("gathering is full")
	// ErrInvalidGathering indicates missing or inconsistent gathering fields.
	ErrInvalidGathering = errors.New("invalid gathering")
	// ErrRecordingRestricted indicates the recording is only visible to
	// registered members.
	ErrRecordingRestricted = errors.New("recording restricted to registrants")
)

// CreateFiresideInput carries the fields of a new fireside chat.
type CreateFiresideInput struct {
	Title           string
	Description     *string
	ScheduledAt     time.Time
	DurationMinutes int
	Capacity        int
	MeetingURL      *string
}

// CreateMasterclassInput carries the fields of a new masterclass.
type CreateMasterclassInput struct {
	Title       string
	Description *string
	ScheduledAt time.Time
}

// GatheringService owns fireside chats and masterclasses. Hosting requires the
// canHostMasterclasses flag; attending only requires a signed-in member.
type GatheringService struct {
	gatherings port.GatheringRepository
	log        *zap.Logger
}

// NewGatheringService constructs a GatheringService instance.
func NewGatheringService(gatherings port.GatheringRepository, log *zap.Logger) *GatheringService {
	return &GatheringService{gatherings: gatherings, log: log}
}

// CreateFireside schedules a fireside chat hosted by the caller.
func (s *GatheringService) CreateFireside(ctx context.Context, hostID string, perms domain.PermissionSet, input CreateFiresideInput) (*domain.FiresideChat, error) {
	if !perms.Has(domain.PermHostMasterclasses) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidGathering)
	}
	if input.ScheduledAt.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: scheduled in the past", ErrInvalidGathering)
	}
	if input.Capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity", ErrInvalidGathering)
	}
	if input.DurationMinutes <= 0 {
		input.DurationMinutes = defaultSessionMinutes
	}

	chat := domain.FiresideChat{
		ID:              uuid.NewString(),
		HostID:          hostID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Capacity:        input.Capacity,
		MeetingURL:      input.MeetingURL,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.gatherings.CreateFireside(ctx, chat); err != nil {
		return nil, fmt.Errorf("create fireside: %w", err)
	}

	s.log.Info("fireside chat created", zap.String("chat_id", chat.ID), zap.String("host_id", hostID))
	return &chat, nil
}

// ListUpcomingFiresides returns fireside chats that have not started yet.
func (s *GatheringService) ListUpcomingFiresides(ctx context.Context, limit, offset int) ([]domain.FiresideChat, error) {
	chats, err := s.gatherings.ListUpcomingFiresides(ctx, time.Now().UTC(), normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list firesides: %w", err)
	}
	return chats, nil
}

// GetFireside returns one fireside chat with the caller's registration status.
func (s *GatheringService) GetFireside(ctx context.Context, callerID, chatID string) (*domain.FiresideChat, bool, error) {
	chat, err := s.gatherings.GetFireside(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrGatheringNotFound
		}
		return nil, false, fmt.Errorf("get fireside: %w", err)
	}

	registered, err := s.gatherings.IsFiresideRegistered(ctx, chatID, callerID)
	if err != nil {
		return nil, false, fmt.Errorf("check registration: %w", err)
	}

	return chat, registered, nil
}

// RegisterFireside reserves a seat. Registration is idempotent: re-registering
// an already held seat succeeds without consuming capacity.
func (s *GatheringService) RegisterFireside(ctx context.Context, callerID, chatID string) error {
	chat, err := s.gatherings.GetFireside(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGatheringNotFound
		}
		return fmt.Errorf("get fireside: %w", err)
	}

	registered, err := s.gatherings.IsFiresideRegistered(ctx, chatID, callerID)
	if err != nil {
		return fmt.Errorf("check registration: %w", err)
	}
	if registered {
		return nil
	}
	if chat.IsFull() {
		return ErrGatheringFull
	}

	if err := s.gatherings.RegisterFireside(ctx, domain.FiresideRegistration{
		ChatID:       chatID,
		ProfileID:    callerID,
		RegisteredAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("register fireside: %w", err)
	}

	return nil
}

// UnregisterFireside releases the caller's seat. A missing registration is not
// an error.
func (s *GatheringService) UnregisterFireside(ctx context.Context, callerID, chatID string) error {
	if err := s.gatherings.UnregisterFireside(ctx, chatID, callerID); err != nil {
		return fmt.Errorf("unregister fireside: %w", err)
	}
	return nil
}

// CreateMasterclass schedules a masterclass hosted by the caller.
func (s *GatheringService) CreateMasterclass(ctx context.Context, hostID string, perms domain.PermissionSet, input CreateMasterclassInput) (*domain.Masterclass, error) {
	if !perms.Has(domain.PermHostMasterclasses) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidGathering)
	}

	class := domain.Masterclass{
		ID:          uuid.NewString(),
		HostID:      hostID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ScheduledAt: input.ScheduledAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.gatherings.CreateMasterclass(ctx, class); err != nil {
		return nil, fmt.Errorf("create masterclass: %w", err)
	}

	s.log.Info("masterclass created", zap.String("class_id", class.ID), zap.String("host_id", hostID))
	return &class, nil
}

// ListMasterclasses returns upcoming and past masterclasses. Recording URLs
// are stripped for callers who never registered.
func (s *GatheringService) ListMasterclasses(ctx context.Context, callerID string, limit, offset int) ([]domain.Masterclass, error) {
	classes, err := s.gatherings.ListMasterclasses(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list masterclasses: %w", err)
	}

	for i := range classes {
		if !classes[i].IsRecorded() {
			continue
		}
		registered, err := s.gatherings.IsMasterclassRegistered(ctx, classes[i].ID, callerID)
		if err != nil {
			return nil, fmt.Errorf("check registration: %w", err)
		}
		if !registered {
			classes[i].RecordingURL = nil
		}
	}

	return classes, nil
}

// RegisterMasterclass records attendance intent. Idempotent.
func (s *GatheringService) RegisterMasterclass(ctx context.Context, callerID, classID string) error {
	if _, err := s.gatherings.GetMasterclass(ctx, classID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGatheringNotFound
		}
		return fmt.Errorf("get masterclass: %w", err)
	}

	if err := s.gatherings.RegisterMasterclass(ctx, domain.MasterclassRegistration{
		MasterclassID: classID,
		ProfileID:     callerID,
		RegisteredAt:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("register masterclass: %w", err)
	}

	return nil
}

// Recording returns the recording URL of a past masterclass for a registered
// caller.
func (s *GatheringService) Recording(ctx context.Context, callerID, classID string) (string, error) {
	class, err := s.gatherings.GetMasterclass(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrGatheringNotFound
		}
		return "", fmt.Errorf("get masterclass: %w", err)
	}
	if !class.IsRecorded() {
		return "", ErrGatheringNotFound
	}

	registered, err := s.gatherings.IsMasterclassRegistered(ctx, classID, callerID)
	if err != nil {
		return "", fmt.Errorf("check registration: %w", err)
	}
	if !registered {
		return "", ErrRecordingRestricted
	}

	return *class.RecordingURL, nil
}
