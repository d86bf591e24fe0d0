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
	// ErrRecipientNotFound indicates the recipient profile does not exist.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrEmptyMessage indicates a message without content.
	ErrEmptyMessage = errors.New("message body is required")
)

const announcementFeedLimit = 25

// MessagingService owns direct messages and platform-wide announcements.
// Sending requires canSendMessages; announcements require canSendGlobalMessages
// on top.
type MessagingService struct {
	messages port.MessageRepository
	profiles port.ProfileRepository
	log      *zap.Logger
}

// NewMessagingService constructs a MessagingService instance.
func NewMessagingService(messages port.MessageRepository, profiles port.ProfileRepository, log *zap.Logger) *MessagingService {
	return &MessagingService{messages: messages, profiles: profiles, log: log}
}

// Send delivers a direct message to another member.
func (s *MessagingService) Send(ctx context.Context, senderID string, perms domain.PermissionSet, recipientID string, subject *string, body string) (*domain.Message, error) {
	if !perms.Has(domain.PermSendMessages) {
		return nil, ErrPermissionDenied
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if recipientID == "" || recipientID == senderID {
		return nil, ErrRecipientNotFound
	}

	if _, err := s.profiles.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("load recipient: %w", err)
	}

	message := domain.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: &recipientID,
		Subject:     subject,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	return &message, nil
}

// Announce publishes a platform-wide announcement visible to every member.
func (s *MessagingService) Announce(ctx context.Context, senderID string, perms domain.PermissionSet, subject *string, body string) (*domain.Message, error) {
	if !perms.Has(domain.PermSendGlobalMessages) {
		return nil, ErrPermissionDenied
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	message := domain.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Subject:   subject,
		Body:      body,
		Global:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}

	s.log.Info("announcement published", zap.String("message_id", message.ID), zap.String("sender_id", senderID))
	return &message, nil
}

// Inbox returns the caller's conversations, newest first, with unread counts.
func (s *MessagingService) Inbox(ctx context.Context, profileID string) ([]domain.MessageThread, error) {
	threads, err := s.messages.ListInbox(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return threads, nil
}

// Thread returns the message history with one counterpart and marks the
// counterpart's messages as read.
func (s *MessagingService) Thread(ctx context.Context, profileID, counterpartID string, limit, offset int) ([]domain.Message, error) {
	messages, err := s.messages.ListThread(ctx, profileID, counterpartID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}

	if err := s.messages.MarkRead(ctx, profileID, counterpartID, time.Now().UTC()); err != nil {
		s.log.Warn("mark read failed",
			zap.String("profile_id", profileID),
			zap.String("counterpart_id", counterpartID),
			zap.Error(err),
		)
	}

	return messages, nil
}

// Announcements returns the latest platform-wide announcements.
func (s *MessagingService) Announcements(ctx context.Context) ([]domain.Message, error) {
	messages, err := s.messages.ListAnnouncements(ctx, announcementFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return messages, nil
}
