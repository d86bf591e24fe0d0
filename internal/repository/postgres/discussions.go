package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

// DiscussionRepository implements port.DiscussionRepository using PostgreSQL.
type DiscussionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDiscussionRepository wires a PostgreSQL-backed discussion repository.
func NewDiscussionRepository(exec pgExecutor) *DiscussionRepository {
	return &DiscussionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var discussionColumns = []string{
	"id",
	"author_id",
	"title",
	"body",
	"category",
	"reply_count",
	"created_at",
	"updated_at",
}

// Create inserts a discussion thread.
func (r *DiscussionRepository) Create(ctx context.Context, discussion domain.Discussion) error {
	stmt, args, err := r.builder.
		Insert("discussions").
		Columns(discussionColumns...).
		Values(
			discussion.ID,
			discussion.AuthorID,
			discussion.Title,
			discussion.Body,
			discussion.Category,
			discussion.ReplyCount,
			discussion.CreatedAt,
			discussion.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert discussion sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert discussion: %w", err)
	}

	return nil
}

// GetByID retrieves a discussion by identifier.
func (r *DiscussionRepository) GetByID(ctx context.Context, id string) (*domain.Discussion, error) {
	stmt, args, err := r.builder.
		Select(discussionColumns...).
		From("discussions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select discussion sql: %w", err)
	}

	var discussion domain.Discussion
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&discussion.ID,
		&discussion.AuthorID,
		&discussion.Title,
		&discussion.Body,
		&discussion.Category,
		&discussion.ReplyCount,
		&discussion.CreatedAt,
		&discussion.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan discussion: %w", err)
	}

	return &discussion, nil
}

// List lists discussions, optionally filtered by category, newest first.
func (r *DiscussionRepository) List(ctx context.Context, category string, limit, offset int) ([]domain.Discussion, error) {
	query := r.builder.
		Select(discussionColumns...).
		From("discussions").
		OrderBy("updated_at DESC")

	if category != "" {
		query = query.Where(squirrel.Eq{"category": category})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list discussions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	defer rows.Close()

	var discussions []domain.Discussion
	for rows.Next() {
		var discussion domain.Discussion
		if err := rows.Scan(
			&discussion.ID,
			&discussion.AuthorID,
			&discussion.Title,
			&discussion.Body,
			&discussion.Category,
			&discussion.ReplyCount,
			&discussion.CreatedAt,
			&discussion.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan discussion: %w", err)
		}
		discussions = append(discussions, discussion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discussions: %w", err)
	}

	return discussions, nil
}

// Update replaces a discussion's editable fields.
func (r *DiscussionRepository) Update(ctx context.Context, discussion domain.Discussion) error {
	stmt, args, err := r.builder.
		Update("discussions").
		Set("title", discussion.Title).
		Set("body", discussion.Body).
		Set("category", discussion.Category).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": discussion.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update discussion sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update discussion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a discussion and cascades to its replies.
func (r *DiscussionRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete("discussions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete discussion sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete discussion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CreateReply inserts a reply and bumps the parent thread's reply count.
func (r *DiscussionRepository) CreateReply(ctx context.Context, reply domain.DiscussionReply) error {
	stmt, args, err := r.builder.
		Insert("discussion_replies").
		Columns("id", "discussion_id", "author_id", "body", "created_at", "updated_at").
		Values(reply.ID, reply.DiscussionID, reply.AuthorID, reply.Body, reply.CreatedAt, reply.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reply sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}

	bump, bumpArgs, err := r.builder.
		Update("discussions").
		Set("reply_count", squirrel.Expr("reply_count + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": reply.DiscussionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build bump reply count sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, bump, bumpArgs...); err != nil {
		return fmt.Errorf("bump reply count: %w", err)
	}

	return nil
}

// ListReplies lists replies for a thread, oldest first.
func (r *DiscussionRepository) ListReplies(ctx context.Context, discussionID string) ([]domain.DiscussionReply, error) {
	stmt, args, err := r.builder.
		Select("id", "discussion_id", "author_id", "body", "created_at", "updated_at").
		From("discussion_replies").
		Where(squirrel.Eq{"discussion_id": discussionID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list replies sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.DiscussionReply
	for rows.Next() {
		var reply domain.DiscussionReply
		if err := rows.Scan(&reply.ID, &reply.DiscussionID, &reply.AuthorID, &reply.Body, &reply.CreatedAt, &reply.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replies: %w", err)
	}

	return replies, nil
}

// DeleteReply removes a single reply.
func (r *DiscussionRepository) DeleteReply(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete("discussion_replies").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete reply sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.DiscussionRepository = (*DiscussionRepository)(nil)
