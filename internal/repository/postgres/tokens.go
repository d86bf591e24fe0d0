package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/repository"
)

// TokenRepository implements port.TokenRepository using PostgreSQL.
type TokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository wires a PostgreSQL-backed token repository.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	return &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateRefreshToken inserts a refresh token hash row.
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	var metadataValue any
	if len(token.Metadata) > 0 {
		encoded, err := json.Marshal(token.Metadata)
		if err != nil {
			return fmt.Errorf("marshal refresh token metadata: %w", err)
		}
		metadataValue = encoded
	}

	stmt, args, err := r.builder.
		Insert("refresh_tokens").
		Columns("id", "user_id", "token_hash", "ip", "user_agent", "created_at", "expires_at", "revoked_at", "metadata").
		Values(token.ID, token.UserID, token.TokenHash, token.IP, token.UserAgent, token.CreatedAt, token.ExpiresAt, token.RevokedAt, metadataValue).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetRefreshTokenByHash finds a refresh token by its stored hash.
func (r *TokenRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "token_hash", "ip", "user_agent", "created_at", "expires_at", "revoked_at", "metadata").
		From("refresh_tokens").
		Where(squirrel.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select refresh token sql: %w", err)
	}

	var (
		token    domain.RefreshToken
		metadata []byte
	)

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.IP,
		&token.UserAgent,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.RevokedAt,
		&metadata,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &token.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal refresh token metadata: %w", err)
		}
	}

	return &token, nil
}

// RevokeRefreshToken marks a single refresh token revoked.
func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Update("refresh_tokens").
		Set("revoked_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke refresh token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

// RevokeRefreshTokensForUser revokes every live refresh token for the user.
func (r *TokenRepository) RevokeRefreshTokensForUser(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.
		Update("refresh_tokens").
		Set("revoked_at", time.Now().UTC()).
		Where(squirrel.Eq{"user_id": userID}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke user refresh tokens sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}

	return nil
}

// CreateVerification inserts an email verification token row.
func (r *TokenRepository) CreateVerification(ctx context.Context, token domain.VerificationToken) error {
	stmt, args, err := r.builder.
		Insert("verification_tokens").
		Columns("id", "user_id", "token_hash", "purpose", "created_at", "expires_at", "used_at", "revoked_at").
		Values(token.ID, token.UserID, token.TokenHash, token.Purpose, token.CreatedAt, token.ExpiresAt, token.UsedAt, token.RevokedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert verification token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert verification token: %w", err)
	}

	return nil
}

// GetVerificationByHash finds a verification token by its stored hash.
func (r *TokenRepository) GetVerificationByHash(ctx context.Context, hash string) (*domain.VerificationToken, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "token_hash", "purpose", "created_at", "expires_at", "used_at", "revoked_at").
		From("verification_tokens").
		Where(squirrel.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select verification token sql: %w", err)
	}

	var token domain.VerificationToken

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.Purpose,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.RevokedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan verification token: %w", err)
	}

	return &token, nil
}

// ConsumeVerification stamps a verification token used.
func (r *TokenRepository) ConsumeVerification(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Update("verification_tokens").
		Set("used_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Where("used_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume verification token sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("consume verification token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
