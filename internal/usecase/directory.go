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
	// ErrProductNotFound indicates the directory product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct indicates missing required product fields.
	ErrInvalidProduct = errors.New("invalid product")
)

const productRatingsShown = 50

// SubmitProductInput carries the fields of a directory submission.
type SubmitProductInput struct {
	Name        string
	Description *string
	Category    *string
	WebsiteURL  *string
}

// DirectoryService owns the third-party product directory: submissions, the
// approval queue, and member ratings.
type DirectoryService struct {
	directory port.DirectoryRepository
	log       *zap.Logger
}

// NewDirectoryService constructs a DirectoryService instance.
func NewDirectoryService(directory port.DirectoryRepository, log *zap.Logger) *DirectoryService {
	return &DirectoryService{directory: directory, log: log}
}

// Submit adds a product into the approval queue.
func (s *DirectoryService) Submit(ctx context.Context, submitterID string, input SubmitProductInput) (*domain.DirectoryProduct, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}

	product := domain.DirectoryProduct{
		ID:          uuid.NewString(),
		SubmitterID: submitterID,
		Name:        name,
		Description: input.Description,
		Category:    input.Category,
		WebsiteURL:  input.WebsiteURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.directory.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info("directory product submitted", zap.String("product_id", product.ID), zap.String("submitter_id", submitterID))
	return &product, nil
}

// List returns approved products, optionally restricted to a category.
// Moderators may include unapproved submissions.
func (s *DirectoryService) List(ctx context.Context, category string, includeUnapproved bool, perms domain.PermissionSet, limit, offset int) ([]domain.DirectoryProduct, error) {
	approvedOnly := true
	if includeUnapproved && perms.Has(domain.PermApproveUsers) {
		approvedOnly = false
	}

	products, err := s.directory.ListProducts(ctx, category, approvedOnly, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns one product with its rating summary and recent ratings.
func (s *DirectoryService) Get(ctx context.Context, id string) (*domain.DirectoryProduct, []domain.ProductRating, error) {
	product, err := s.directory.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, fmt.Errorf("get product: %w", err)
	}

	ratings, err := s.directory.ListRatings(ctx, id, productRatingsShown)
	if err != nil {
		return nil, nil, fmt.Errorf("list ratings: %w", err)
	}

	return product, ratings, nil
}

// Approve moves a product out of the approval queue.
func (s *DirectoryService) Approve(ctx context.Context, perms domain.PermissionSet, id string, approved bool) error {
	if !perms.Has(domain.PermApproveUsers) {
		return ErrPermissionDenied
	}
	if err := s.directory.SetProductApproved(ctx, id, approved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("set product approved: %w", err)
	}
	return nil
}

// Rate records the caller's 1-5 rating of a product. A repeat rating replaces
// the previous one.
func (s *DirectoryService) Rate(ctx context.Context, authorID, productID string, rating int, comment *string) (*domain.ProductRating, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.directory.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	productRating := domain.ProductRating{
		ID:        uuid.NewString(),
		ProductID: productID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.directory.CreateRating(ctx, productRating); err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}

	return &productRating, nil
}
