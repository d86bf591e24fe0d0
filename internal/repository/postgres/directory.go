package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

// DirectoryRepository implements port.DirectoryRepository using PostgreSQL.
type DirectoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDirectoryRepository wires a PostgreSQL-backed directory repository.
func NewDirectoryRepository(exec pgExecutor) *DirectoryRepository {
	return &DirectoryRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var productColumns = []string{
	"p.id",
	"p.submitter_id",
	"p.name",
	"p.description",
	"p.category",
	"p.website_url",
	"p.approved",
	"(SELECT AVG(rating) FROM product_ratings pr WHERE pr.product_id = p.id)",
	"(SELECT COUNT(*) FROM product_ratings pr WHERE pr.product_id = p.id)",
	"p.created_at",
}

// CreateProduct inserts a directory listing pending approval.
func (r *DirectoryRepository) CreateProduct(ctx context.Context, product domain.DirectoryProduct) error {
	stmt, args, err := r.builder.
		Insert("directory_products").
		Columns("id", "submitter_id", "name", "description", "category", "website_url", "approved", "created_at").
		Values(product.ID, product.SubmitterID, product.Name, product.Description, product.Category, product.WebsiteURL, product.Approved, product.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetProduct retrieves a directory listing with its aggregated rating.
func (r *DirectoryRepository) GetProduct(ctx context.Context, id string) (*domain.DirectoryProduct, error) {
	stmt, args, err := r.builder.
		Select(productColumns...).
		From("directory_products p").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}

	return scanProduct(r.exec.QueryRow(ctx, stmt, args...))
}

// ListProducts lists directory listings, optionally restricted by category and
// approval state.
func (r *DirectoryRepository) ListProducts(ctx context.Context, category string, approvedOnly bool, limit, offset int) ([]domain.DirectoryProduct, error) {
	query := r.builder.
		Select(productColumns...).
		From("directory_products p").
		OrderBy("p.name ASC")

	if category != "" {
		query = query.Where(squirrel.Eq{"p.category": category})
	}
	if approvedOnly {
		query = query.Where(squirrel.Eq{"p.approved": true})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.DirectoryProduct
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// SetProductApproved flips the approval flag on a listing.
func (r *DirectoryRepository) SetProductApproved(ctx context.Context, id string, approved bool) error {
	stmt, args, err := r.builder.
		Update("directory_products").
		Set("approved", approved).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build approve product sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("approve product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CreateRating inserts a member rating; one rating per member per product.
func (r *DirectoryRepository) CreateRating(ctx context.Context, rating domain.ProductRating) error {
	stmt, args, err := r.builder.
		Insert("product_ratings").
		Columns("id", "product_id", "author_id", "rating", "comment", "created_at").
		Values(rating.ID, rating.ProductID, rating.AuthorID, rating.Rating, rating.Comment, rating.CreatedAt).
		Suffix("ON CONFLICT (product_id, author_id) DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert rating sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}

	return nil
}

// ListRatings lists recent ratings for a listing.
func (r *DirectoryRepository) ListRatings(ctx context.Context, productID string, limit int) ([]domain.ProductRating, error) {
	query := r.builder.
		Select("id", "product_id", "author_id", "rating", "comment", "created_at").
		From("product_ratings").
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ratings sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []domain.ProductRating
	for rows.Next() {
		var rating domain.ProductRating
		if err := rows.Scan(&rating.ID, &rating.ProductID, &rating.AuthorID, &rating.Rating, &rating.Comment, &rating.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	return ratings, nil
}

func scanProduct(row pgx.Row) (*domain.DirectoryProduct, error) {
	var product domain.DirectoryProduct

	if err := row.Scan(
		&product.ID,
		&product.SubmitterID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.WebsiteURL,
		&product.Approved,
		&product.AvgRating,
		&product.RatingCount,
		&product.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &product, nil
}

var _ port.DirectoryRepository = (*DirectoryRepository)(nil)
