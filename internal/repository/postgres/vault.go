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

// VaultRepository implements port.VaultRepository using PostgreSQL.
type VaultRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVaultRepository wires a PostgreSQL-backed vault repository.
func NewVaultRepository(exec pgExecutor) *VaultRepository {
	return &VaultRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateResource inserts a vault resource pending approval.
func (r *VaultRepository) CreateResource(ctx context.Context, resource domain.VaultResource) error {
	stmt, args, err := r.builder.
		Insert("vault_resources").
		Columns("id", "uploader_id", "title", "description", "category", "file_url", "approved", "created_at").
		Values(resource.ID, resource.UploaderID, resource.Title, resource.Description, resource.Category, resource.FileURL, resource.Approved, resource.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert resource sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}

	return nil
}

// GetResource retrieves a vault resource by identifier.
func (r *VaultRepository) GetResource(ctx context.Context, id string) (*domain.VaultResource, error) {
	stmt, args, err := r.builder.
		Select("id", "uploader_id", "title", "description", "category", "file_url", "approved", "created_at").
		From("vault_resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select resource sql: %w", err)
	}

	var resource domain.VaultResource
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&resource.ID,
		&resource.UploaderID,
		&resource.Title,
		&resource.Description,
		&resource.Category,
		&resource.FileURL,
		&resource.Approved,
		&resource.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan resource: %w", err)
	}

	return &resource, nil
}

// ListResources lists vault resources, optionally restricted to a category and
// approved entries only.
func (r *VaultRepository) ListResources(ctx context.Context, category string, approvedOnly bool, limit, offset int) ([]domain.VaultResource, error) {
	query := r.builder.
		Select("id", "uploader_id", "title", "description", "category", "file_url", "approved", "created_at").
		From("vault_resources").
		OrderBy("created_at DESC")

	if category != "" {
		query = query.Where(squirrel.Eq{"category": category})
	}
	if approvedOnly {
		query = query.Where(squirrel.Eq{"approved": true})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list resources sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []domain.VaultResource
	for rows.Next() {
		var resource domain.VaultResource
		if err := rows.Scan(
			&resource.ID,
			&resource.UploaderID,
			&resource.Title,
			&resource.Description,
			&resource.Category,
			&resource.FileURL,
			&resource.Approved,
			&resource.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}

	return resources, nil
}

// SetResourceApproved flips the approval flag on a vault resource.
func (r *VaultRepository) SetResourceApproved(ctx context.Context, id string, approved bool) error {
	stmt, args, err := r.builder.
		Update("vault_resources").
		Set("approved", approved).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build approve resource sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("approve resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CreateRequest inserts an open resource request.
func (r *VaultRepository) CreateRequest(ctx context.Context, request domain.ResourceRequest) error {
	stmt, args, err := r.builder.
		Insert("resource_requests").
		Columns("id", "requester_id", "title", "details", "resolved", "created_at").
		Values(request.ID, request.RequesterID, request.Title, request.Details, request.Resolved, request.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert request sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	return nil
}

// ListRequests lists resource requests, optionally only open ones.
func (r *VaultRepository) ListRequests(ctx context.Context, openOnly bool, limit, offset int) ([]domain.ResourceRequest, error) {
	query := r.builder.
		Select("id", "requester_id", "title", "details", "resolved", "created_at").
		From("resource_requests").
		OrderBy("created_at DESC")

	if openOnly {
		query = query.Where(squirrel.Eq{"resolved": false})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list requests sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.ResourceRequest
	for rows.Next() {
		var request domain.ResourceRequest
		if err := rows.Scan(&request.ID, &request.RequesterID, &request.Title, &request.Details, &request.Resolved, &request.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}

// ResolveRequest marks a resource request fulfilled.
func (r *VaultRepository) ResolveRequest(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Update("resource_requests").
		Set("resolved", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build resolve request sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CreateResponse inserts a response to a resource request.
func (r *VaultRepository) CreateResponse(ctx context.Context, response domain.ResourceResponse) error {
	stmt, args, err := r.builder.
		Insert("resource_responses").
		Columns("id", "request_id", "author_id", "resource_id", "note", "created_at").
		Values(response.ID, response.RequestID, response.AuthorID, response.ResourceID, response.Note, response.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert response sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}

	return nil
}

// ListResponses lists responses to a resource request, oldest first.
func (r *VaultRepository) ListResponses(ctx context.Context, requestID string) ([]domain.ResourceResponse, error) {
	stmt, args, err := r.builder.
		Select("id", "request_id", "author_id", "resource_id", "note", "created_at").
		From("resource_responses").
		Where(squirrel.Eq{"request_id": requestID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list responses sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []domain.ResourceResponse
	for rows.Next() {
		var response domain.ResourceResponse
		if err := rows.Scan(&response.ID, &response.RequestID, &response.AuthorID, &response.ResourceID, &response.Note, &response.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}

	return responses, nil
}

var _ port.VaultRepository = (*VaultRepository)(nil)
