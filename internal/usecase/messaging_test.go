package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
)

type stubMessages struct {
	port.MessageRepository

	mu      sync.Mutex
	created []domain.Message
}

func (s *stubMessages) Create(_ context.Context, message domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, message)
	return nil
}

func TestSendRequiresRecipientProfile(t *testing.T) {
	messages := &stubMessages{}
	profiles := &stubProfiles{profiles: map[string]*domain.Profile{
		"sub-2": {ID: "sub-2", Role: domain.RoleSubscriber},
	}}
	svc := NewMessagingService(messages, profiles, zaptest.NewLogger(t))
	perms := domain.PermissionsFor(domain.RoleSubscriber)

	if _, err := svc.Send(context.Background(), "sub-1", perms, "ghost", nil, "hello"); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("error = %v, want ErrRecipientNotFound", err)
	}

	msg, err := svc.Send(context.Background(), "sub-1", perms, "sub-2", nil, "hello")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if msg.Global {
		t.Error("direct message must not be global")
	}
	if msg.RecipientID == nil || *msg.RecipientID != "sub-2" {
		t.Errorf("recipient = %v, want sub-2", msg.RecipientID)
	}
}

func TestAnnounceRequiresGlobalFlag(t *testing.T) {
	messages := &stubMessages{}
	svc := NewMessagingService(messages, &stubProfiles{}, zaptest.NewLogger(t))

	// Team admins can message but cannot broadcast.
	_, err := svc.Announce(context.Background(), "ta-1", domain.PermissionsFor(domain.RoleTeamAdmin), nil, "maintenance window")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}

	msg, err := svc.Announce(context.Background(), "admin-1", domain.PermissionsFor(domain.RoleSystemAdmin), nil, "maintenance window")
	if err != nil {
		t.Fatalf("Announce returned error: %v", err)
	}
	if !msg.Global || msg.RecipientID != nil {
		t.Errorf("announcement shape wrong: %+v", msg)
	}
}

func TestSendRejectsEmptyBodyAndSelf(t *testing.T) {
	svc := NewMessagingService(&stubMessages{}, &stubProfiles{}, zaptest.NewLogger(t))
	perms := domain.PermissionsFor(domain.RoleSubscriber)

	if _, err := svc.Send(context.Background(), "sub-1", perms, "sub-2", nil, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty body error = %v, want ErrEmptyMessage", err)
	}
	if _, err := svc.Send(context.Background(), "sub-1", perms, "sub-1", nil, "hi me"); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("self-send error = %v, want ErrRecipientNotFound", err)
	}
}
