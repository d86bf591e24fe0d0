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

// SessionRepository implements port.SessionRepository backed by PostgreSQL.
type SessionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewSessionRepository(exec pgExecutor) *SessionRepository {
	return &SessionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var sessionColumns = []string{
	"id",
	"user_id",
	"refresh_token_id",
	"ip_first",
	"ip_last",
	"user_agent",
	"created_at",
	"last_seen",
	"expires_at",
	"revoked_at",
	"revoke_reason",
}

// Create inserts a login session row.
func (r *SessionRepository) Create(ctx context.Context, session domain.LoginSession) error {
	stmt, args, err := r.builder.
		Insert("login_sessions").
		Columns(sessionColumns...).
		Values(
			session.ID,
			session.UserID,
			session.RefreshTokenID,
			session.IPFirst,
			session.IPLast,
			session.UserAgent,
			session.CreatedAt,
			session.LastSeen,
			session.ExpiresAt,
			session.RevokedAt,
			session.RevokeReason,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.LoginSession, error) {
	stmt, args, err := r.builder.
		Select(sessionColumns...).
		From("login_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	session, err := scanSession(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	return session, nil
}

// ListActiveByUser returns sessions that are neither revoked nor expired.
func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.LoginSession, error) {
	stmt, args, err := r.builder.
		Select(sessionColumns...).
		From("login_sessions").
		Where(squirrel.Eq{"user_id": userID}).
		Where("revoked_at IS NULL").
		Where(squirrel.Gt{"expires_at": time.Now().UTC()}).
		OrderBy("last_seen DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.LoginSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// Touch updates last-seen metadata for the session.
func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time, ip, userAgent *string) error {
	update := r.builder.
		Update("login_sessions").
		Set("last_seen", at).
		Where(squirrel.Eq{"id": id}).
		Where("revoked_at IS NULL")

	if ip != nil {
		update = update.Set("ip_last", *ip)
	}
	if userAgent != nil {
		update = update.Set("user_agent", *userAgent)
	}

	stmt, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build touch session sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Revoke marks a session revoked. Already-revoked sessions are left untouched
// so sign-out stays idempotent.
func (r *SessionRepository) Revoke(ctx context.Context, id string, reason string) error {
	stmt, args, err := r.builder.
		Update("login_sessions").
		Set("revoked_at", time.Now().UTC()).
		Set("revoke_reason", reason).
		Where(squirrel.Eq{"id": id}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke session sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

// RevokeAllForUser revokes every live session for the user and reports how
// many rows changed.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string, reason string) (int, error) {
	stmt, args, err := r.builder.
		Update("login_sessions").
		Set("revoked_at", time.Now().UTC()).
		Set("revoke_reason", reason).
		Where(squirrel.Eq{"user_id": userID}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build revoke user sessions sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func scanSession(row pgx.Row) (*domain.LoginSession, error) {
	var session domain.LoginSession

	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshTokenID,
		&session.IPFirst,
		&session.IPLast,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastSeen,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.RevokeReason,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &session, nil
}

var _ port.SessionRepository = (*SessionRepository)(nil)
