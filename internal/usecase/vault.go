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
	// ErrResourceNotFound indicates the vault resource or request does not
	// exist.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInvalidResource indicates missing required resource fields.
	ErrInvalidResource = errors.New("invalid resource")
)

// UploadResourceInput carries the fields of a vault upload.
type UploadResourceInput struct {
	Title       string
	Description *string
	Category    *string
	FileURL     string
}

// VaultService owns the shared document vault: uploads, the approval queue,
// and the request board.
type VaultService struct {
	vault port.VaultRepository
	log   *zap.Logger
}

// NewVaultService constructs a VaultService instance.
func NewVaultService(vault port.VaultRepository, log *zap.Logger) *VaultService {
	return &VaultService{vault: vault, log: log}
}

// Upload submits a resource into the approval queue. The file itself lives in
// external storage; only its URL is recorded here.
func (s *VaultService) Upload(ctx context.Context, uploaderID string, input UploadResourceInput) (*domain.VaultResource, error) {
	title := strings.TrimSpace(input.Title)
	fileURL := strings.TrimSpace(input.FileURL)
	if title == "" || fileURL == "" {
		return nil, fmt.Errorf("%w: title and file url are required", ErrInvalidResource)
	}

	resource := domain.VaultResource{
		ID:          uuid.NewString(),
		UploaderID:  uploaderID,
		Title:       title,
		Description: input.Description,
		Category:    input.Category,
		FileURL:     fileURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.vault.CreateResource(ctx, resource); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	s.log.Info("vault resource submitted", zap.String("resource_id", resource.ID), zap.String("uploader_id", uploaderID))
	return &resource, nil
}

// List returns approved resources, optionally restricted to a category.
// Moderators may include unapproved submissions.
func (s *VaultService) List(ctx context.Context, category string, includeUnapproved bool, perms domain.PermissionSet, limit, offset int) ([]domain.VaultResource, error) {
	approvedOnly := true
	if includeUnapproved && perms.Has(domain.PermApproveUsers) {
		approvedOnly = false
	}

	resources, err := s.vault.ListResources(ctx, category, approvedOnly, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// Get returns one resource. Unapproved resources are visible only to their
// uploader and moderators.
func (s *VaultService) Get(ctx context.Context, callerID string, perms domain.PermissionSet, id string) (*domain.VaultResource, error) {
	resource, err := s.vault.GetResource(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	if !resource.Approved && resource.UploaderID != callerID && !perms.Has(domain.PermApproveUsers) {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}

// Approve moves a resource out of the approval queue.
func (s *VaultService) Approve(ctx context.Context, perms domain.PermissionSet, id string, approved bool) error {
	if !perms.Has(domain.PermApproveUsers) {
		return ErrPermissionDenied
	}
	if err := s.vault.SetResourceApproved(ctx, id, approved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("set resource approved: %w", err)
	}
	return nil
}

// Request posts an open ask for a document the vault does not yet hold.
func (s *VaultService) Request(ctx context.Context, requesterID, title string, details *string) (*domain.ResourceRequest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidResource)
	}

	request := domain.ResourceRequest{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		Title:       title,
		Details:     details,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.vault.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return &request, nil
}

// ListRequests returns resource requests, open ones first when openOnly is
// set.
func (s *VaultService) ListRequests(ctx context.Context, openOnly bool, limit, offset int) ([]domain.ResourceRequest, error) {
	requests, err := s.vault.ListRequests(ctx, openOnly, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// Respond attaches a fulfilling resource or note to an open request. A
// response carrying a resource marks the request resolved.
func (s *VaultService) Respond(ctx context.Context, authorID, requestID string, resourceID, note *string) (*domain.ResourceResponse, error) {
	if resourceID == nil && (note == nil || strings.TrimSpace(*note) == "") {
		return nil, fmt.Errorf("%w: a resource or note is required", ErrInvalidResource)
	}

	response := domain.ResourceResponse{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		AuthorID:   authorID,
		ResourceID: resourceID,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.vault.CreateResponse(ctx, response); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("create response: %w", err)
	}

	if resourceID != nil {
		if err := s.vault.ResolveRequest(ctx, requestID); err != nil {
			s.log.Warn("resolve request failed", zap.String("request_id", requestID), zap.Error(err))
		}
	}

	return &response, nil
}

// Responses lists everything posted against a request.
func (s *VaultService) Responses(ctx context.Context, requestID string) ([]domain.ResourceResponse, error) {
	responses, err := s.vault.ListResponses(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}
