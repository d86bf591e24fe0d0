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
	// ErrDiscussionNotFound indicates the thread id does not exist.
	ErrDiscussionNotFound = errors.New("discussion not found")
	// ErrEmptyPost indicates a post or reply without content.
	ErrEmptyPost = errors.New("post body is required")
)

// CommunityService owns Coffee Talk threads and replies. Every member may post;
// authors and system admins may edit or delete.
type CommunityService struct {
	discussions port.DiscussionRepository
	log         *zap.Logger
}

// NewCommunityService constructs a CommunityService instance.
func NewCommunityService(discussions port.DiscussionRepository, log *zap.Logger) *CommunityService {
	return &CommunityService{discussions: discussions, log: log}
}

// StartDiscussion opens a new thread.
func (s *CommunityService) StartDiscussion(ctx context.Context, authorID, title, body string, category *string) (*domain.Discussion, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, ErrEmptyPost
	}

	now := time.Now().UTC()
	discussion := domain.Discussion{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.discussions.Create(ctx, discussion); err != nil {
		return nil, fmt.Errorf("create discussion: %w", err)
	}

	return &discussion, nil
}

// ListDiscussions returns threads, optionally restricted to a category.
func (s *CommunityService) ListDiscussions(ctx context.Context, category string, limit, offset int) ([]domain.Discussion, error) {
	discussions, err := s.discussions.List(ctx, category, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	return discussions, nil
}

// GetDiscussion returns a thread with its replies.
func (s *CommunityService) GetDiscussion(ctx context.Context, id string) (*domain.Discussion, []domain.DiscussionReply, error) {
	discussion, err := s.discussions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrDiscussionNotFound
		}
		return nil, nil, fmt.Errorf("get discussion: %w", err)
	}

	replies, err := s.discussions.ListReplies(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list replies: %w", err)
	}

	return discussion, replies, nil
}

// UpdateDiscussion edits a thread. Only the author or a moderator may edit.
func (s *CommunityService) UpdateDiscussion(ctx context.Context, callerID string, moderator bool, id, title, body string) (*domain.Discussion, error) {
	discussion, err := s.discussions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, fmt.Errorf("get discussion: %w", err)
	}
	if discussion.AuthorID != callerID && !moderator {
		return nil, ErrPermissionDenied
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, ErrEmptyPost
	}

	discussion.Title = title
	discussion.Body = body
	discussion.UpdatedAt = time.Now().UTC()

	if err := s.discussions.Update(ctx, *discussion); err != nil {
		return nil, fmt.Errorf("update discussion: %w", err)
	}

	return discussion, nil
}

// DeleteDiscussion removes a thread and its replies. Only the author or a
// moderator may delete.
func (s *CommunityService) DeleteDiscussion(ctx context.Context, callerID string, moderator bool, id string) error {
	discussion, err := s.discussions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDiscussionNotFound
		}
		return fmt.Errorf("get discussion: %w", err)
	}
	if discussion.AuthorID != callerID && !moderator {
		return ErrPermissionDenied
	}

	if err := s.discussions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete discussion: %w", err)
	}

	s.log.Info("discussion deleted", zap.String("discussion_id", id), zap.Bool("by_moderator", discussion.AuthorID != callerID))
	return nil
}

// Reply adds a response to a thread and bumps its reply counter.
func (s *CommunityService) Reply(ctx context.Context, authorID, discussionID, body string) (*domain.DiscussionReply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyPost
	}

	if _, err := s.discussions.GetByID(ctx, discussionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, fmt.Errorf("get discussion: %w", err)
	}

	now := time.Now().UTC()
	reply := domain.DiscussionReply{
		ID:           uuid.NewString(),
		DiscussionID: discussionID,
		AuthorID:     authorID,
		Body:         body,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.discussions.CreateReply(ctx, reply); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}

	return &reply, nil
}

// DeleteReply removes a reply. Only the author or a moderator may delete.
func (s *CommunityService) DeleteReply(ctx context.Context, callerID string, moderator bool, discussionID, replyID string) error {
	replies, err := s.discussions.ListReplies(ctx, discussionID)
	if err != nil {
		return fmt.Errorf("list replies: %w", err)
	}

	for _, reply := range replies {
		if reply.ID != replyID {
			continue
		}
		if reply.AuthorID != callerID && !moderator {
			return ErrPermissionDenied
		}
		if err := s.discussions.DeleteReply(ctx, replyID); err != nil {
			return fmt.Errorf("delete reply: %w", err)
		}
		return nil
	}

	return ErrDiscussionNotFound
}
