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
	"github.com/linkedleaders/platform-api/internal/repository"
)

type stubGatherings struct {
	port.GatheringRepository

	mu           sync.Mutex
	firesides    map[string]*domain.FiresideChat
	firesideRegs map[string]map[string]bool
	classes      map[string]*domain.Masterclass
	classRegs    map[string]map[string]bool
}

func (s *stubGatherings) CreateFireside(_ context.Context, chat domain.FiresideChat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firesides == nil {
		s.firesides = map[string]*domain.FiresideChat{}
	}
	copied := chat
	s.firesides[chat.ID] = &copied
	return nil
}

func (s *stubGatherings) GetFireside(_ context.Context, id string) (*domain.FiresideChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.firesides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *chat
	copied.Registered = len(s.firesideRegs[id])
	return &copied, nil
}

func (s *stubGatherings) RegisterFireside(_ context.Context, reg domain.FiresideRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firesideRegs == nil {
		s.firesideRegs = map[string]map[string]bool{}
	}
	if s.firesideRegs[reg.ChatID] == nil {
		s.firesideRegs[reg.ChatID] = map[string]bool{}
	}
	s.firesideRegs[reg.ChatID][reg.ProfileID] = true
	return nil
}

func (s *stubGatherings) IsFiresideRegistered(_ context.Context, chatID, profileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firesideRegs[chatID][profileID], nil
}

func (s *stubGatherings) GetMasterclass(_ context.Context, id string) (*domain.Masterclass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	class, ok := s.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *class
	return &copied, nil
}

func (s *stubGatherings) RegisterMasterclass(_ context.Context, reg domain.MasterclassRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.classRegs == nil {
		s.classRegs = map[string]map[string]bool{}
	}
	if s.classRegs[reg.MasterclassID] == nil {
		s.classRegs[reg.MasterclassID] = map[string]bool{}
	}
	s.classRegs[reg.MasterclassID][reg.ProfileID] = true
	return nil
}

func (s *stubGatherings) IsMasterclassRegistered(_ context.Context, classID, profileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classRegs[classID][profileID], nil
}

func strPtr(v string) *string { return &v }

func TestCreateFiresideRequiresHostFlag(t *testing.T) {
	svc := NewGatheringService(&stubGatherings{}, zaptest.NewLogger(t))

	_, err := svc.CreateFireside(context.Background(), "sub-1", domain.PermissionsFor(domain.RoleSubscriber), CreateFiresideInput{
		Title:       "Leading through change",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Capacity:    10,
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}

	chat, err := svc.CreateFireside(context.Background(), "mentor-1", domain.PermissionsFor(domain.RoleMentor), CreateFiresideInput{
		Title:       "Leading through change",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Capacity:    10,
	})
	if err != nil {
		t.Fatalf("CreateFireside returned error: %v", err)
	}
	if chat.HostID != "mentor-1" {
		t.Errorf("host = %s, want mentor-1", chat.HostID)
	}
}

func TestRegisterFiresideEnforcesCapacity(t *testing.T) {
	gatherings := &stubGatherings{
		firesides: map[string]*domain.FiresideChat{
			"fs-1": {ID: "fs-1", HostID: "mentor-1", Title: "Office hours", Capacity: 2, ScheduledAt: time.Now().Add(time.Hour)},
		},
	}
	svc := NewGatheringService(gatherings, zaptest.NewLogger(t))

	for _, member := range []string{"sub-1", "sub-2"} {
		if err := svc.RegisterFireside(context.Background(), member, "fs-1"); err != nil {
			t.Fatalf("RegisterFireside(%s) returned error: %v", member, err)
		}
	}

	if err := svc.RegisterFireside(context.Background(), "sub-3", "fs-1"); !errors.Is(err, ErrGatheringFull) {
		t.Fatalf("error = %v, want ErrGatheringFull", err)
	}

	// Re-registering a held seat is a no-op, not a capacity violation.
	if err := svc.RegisterFireside(context.Background(), "sub-1", "fs-1"); err != nil {
		t.Fatalf("repeat registration returned error: %v", err)
	}
}

func TestRegisterFiresideUnknownChat(t *testing.T) {
	svc := NewGatheringService(&stubGatherings{}, zaptest.NewLogger(t))

	if err := svc.RegisterFireside(context.Background(), "sub-1", "missing"); !errors.Is(err, ErrGatheringNotFound) {
		t.Fatalf("error = %v, want ErrGatheringNotFound", err)
	}
}

func TestRecordingVisibleOnlyToRegistrants(t *testing.T) {
	gatherings := &stubGatherings{
		classes: map[string]*domain.Masterclass{
			"mc-1": {
				ID:           "mc-1",
				HostID:       "mentor-1",
				Title:        "Budget season",
				ScheduledAt:  time.Now().Add(-72 * time.Hour),
				RecordingURL: strPtr("https://recordings.example.com/mc-1"),
			},
		},
	}
	svc := NewGatheringService(gatherings, zaptest.NewLogger(t))

	if _, err := svc.Recording(context.Background(), "sub-1", "mc-1"); !errors.Is(err, ErrRecordingRestricted) {
		t.Fatalf("error = %v, want ErrRecordingRestricted", err)
	}

	if err := svc.RegisterMasterclass(context.Background(), "sub-1", "mc-1"); err != nil {
		t.Fatalf("RegisterMasterclass returned error: %v", err)
	}

	url, err := svc.Recording(context.Background(), "sub-1", "mc-1")
	if err != nil {
		t.Fatalf("Recording returned error: %v", err)
	}
	if url != "https://recordings.example.com/mc-1" {
		t.Errorf("url = %q", url)
	}
}
