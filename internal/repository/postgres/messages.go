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

// MessageRepository implements port.MessageRepository using PostgreSQL.
type MessageRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMessageRepository wires a PostgreSQL-backed message repository.
func NewMessageRepository(exec pgExecutor) *MessageRepository {
	return &MessageRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var messageColumns = []string{
	"id",
	"sender_id",
	"recipient_id",
	"subject",
	"body",
	"is_global",
	"read_at",
	"created_at",
}

// Create inserts a direct message or announcement.
func (r *MessageRepository) Create(ctx context.Context, message domain.Message) error {
	stmt, args, err := r.builder.
		Insert("messages").
		Columns(messageColumns...).
		Values(
			message.ID,
			message.SenderID,
			message.RecipientID,
			message.Subject,
			message.Body,
			message.Global,
			message.ReadAt,
			message.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert message sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by identifier.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	stmt, args, err := r.builder.
		Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select message sql: %w", err)
	}

	return scanMessage(r.exec.QueryRow(ctx, stmt, args...))
}

// ListThread lists messages exchanged between two members, newest first.
func (r *MessageRepository) ListThread(ctx context.Context, profileID, counterpartID string, limit, offset int) ([]domain.Message, error) {
	query := r.builder.
		Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"is_global": false}).
		Where(squirrel.Or{
			squirrel.Eq{"sender_id": profileID, "recipient_id": counterpartID},
			squirrel.Eq{"sender_id": counterpartID, "recipient_id": profileID},
		}).
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list thread sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ListInbox summarizes each conversation involving the member, most recent
// first, with unread counts.
func (r *MessageRepository) ListInbox(ctx context.Context, profileID string) ([]domain.MessageThread, error) {
	// DISTINCT ON keeps the latest message per counterpart.
	const query = `
SELECT DISTINCT ON (counterpart)
    CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS counterpart,
    id, sender_id, recipient_id, subject, body, is_global, read_at, created_at,
    (SELECT COUNT(*) FROM messages u
       WHERE u.is_global = FALSE
         AND u.recipient_id = $1
         AND u.sender_id = CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END
         AND u.read_at IS NULL) AS unread_count
FROM messages m
WHERE m.is_global = FALSE AND (m.sender_id = $1 OR m.recipient_id = $1)
ORDER BY counterpart, m.created_at DESC`

	rows, err := r.exec.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()

	var threads []domain.MessageThread
	for rows.Next() {
		var (
			thread  domain.MessageThread
			message domain.Message
		)
		if err := rows.Scan(
			&thread.CounterpartID,
			&message.ID,
			&message.SenderID,
			&message.RecipientID,
			&message.Subject,
			&message.Body,
			&message.Global,
			&message.ReadAt,
			&message.CreatedAt,
			&thread.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan inbox thread: %w", err)
		}
		thread.LastMessage = message
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inbox: %w", err)
	}

	return threads, nil
}

// ListAnnouncements lists platform-wide announcements, newest first.
func (r *MessageRepository) ListAnnouncements(ctx context.Context, limit int) ([]domain.Message, error) {
	query := r.builder.
		Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"is_global": true}).
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list announcements sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// MarkRead stamps every unread message from the counterpart to the member.
func (r *MessageRepository) MarkRead(ctx context.Context, profileID, counterpartID string, at time.Time) error {
	stmt, args, err := r.builder.
		Update("messages").
		Set("read_at", at).
		Where(squirrel.Eq{"recipient_id": profileID, "sender_id": counterpartID, "is_global": false}).
		Where("read_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark read sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	return nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var message domain.Message

	if err := row.Scan(
		&message.ID,
		&message.SenderID,
		&message.RecipientID,
		&message.Subject,
		&message.Body,
		&message.Global,
		&message.ReadAt,
		&message.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}

	return &message, nil
}

func collectMessages(rows pgx.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

var _ port.MessageRepository = (*MessageRepository)(nil)
