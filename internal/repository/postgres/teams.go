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

// TeamRepository implements port.TeamRepository using PostgreSQL.
type TeamRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTeamRepository wires a PostgreSQL-backed team repository.
func NewTeamRepository(exec pgExecutor) *TeamRepository {
	return &TeamRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateOrganization inserts an organization row.
func (r *TeamRepository) CreateOrganization(ctx context.Context, org domain.Organization) error {
	stmt, args, err := r.builder.
		Insert("organizations").
		Columns("id", "name", "owner_id", "subscription_id", "stripe_customer_id", "created_at", "updated_at").
		Values(org.ID, org.Name, org.OwnerID, org.SubscriptionID, org.StripeCustomerID, org.CreatedAt, org.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert organization sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}

	return nil
}

// GetOrganization retrieves an organization by identifier.
func (r *TeamRepository) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "owner_id", "subscription_id", "stripe_customer_id", "created_at", "updated_at").
		From("organizations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select organization sql: %w", err)
	}

	var org domain.Organization
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&org.ID,
		&org.Name,
		&org.OwnerID,
		&org.SubscriptionID,
		&org.StripeCustomerID,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}

	return &org, nil
}

// AddMember links a profile to an organization.
func (r *TeamRepository) AddMember(ctx context.Context, member domain.OrganizationMember) error {
	stmt, args, err := r.builder.
		Insert("organization_members").
		Columns("organization_id", "profile_id", "role", "created_at").
		Values(member.OrganizationID, member.ProfileID, member.Role, member.CreatedAt).
		Suffix("ON CONFLICT (organization_id, profile_id) DO UPDATE SET role = EXCLUDED.role").
		ToSql()
	if err != nil {
		return fmt.Errorf("build add member sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	return nil
}

// RemoveMember unlinks a profile from an organization.
func (r *TeamRepository) RemoveMember(ctx context.Context, organizationID, profileID string) error {
	stmt, args, err := r.builder.
		Delete("organization_members").
		Where(squirrel.Eq{"organization_id": organizationID, "profile_id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove member sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListMembers lists an organization's members.
func (r *TeamRepository) ListMembers(ctx context.Context, organizationID string) ([]domain.OrganizationMember, error) {
	stmt, args, err := r.builder.
		Select("organization_id", "profile_id", "role", "created_at").
		From("organization_members").
		Where(squirrel.Eq{"organization_id": organizationID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list members sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.OrganizationMember
	for rows.Next() {
		var member domain.OrganizationMember
		if err := rows.Scan(&member.OrganizationID, &member.ProfileID, &member.Role, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

// GetMembership retrieves a single membership link.
func (r *TeamRepository) GetMembership(ctx context.Context, organizationID, profileID string) (*domain.OrganizationMember, error) {
	stmt, args, err := r.builder.
		Select("organization_id", "profile_id", "role", "created_at").
		From("organization_members").
		Where(squirrel.Eq{"organization_id": organizationID, "profile_id": profileID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select membership sql: %w", err)
	}

	var member domain.OrganizationMember
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&member.OrganizationID,
		&member.ProfileID,
		&member.Role,
		&member.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan membership: %w", err)
	}

	return &member, nil
}

// ListTeamTransactions lists credit ledger entries across an organization's
// members, newest first.
func (r *TeamRepository) ListTeamTransactions(ctx context.Context, organizationID string, limit, offset int) ([]domain.CreditTransaction, error) {
	query := r.builder.
		Select("t.id", "t.profile_id", "t.booking_id", "t.type", "t.amount", "t.note", "t.created_at").
		From("credit_transactions t").
		Join("organization_members m ON m.profile_id = t.profile_id").
		Where(squirrel.Eq{"m.organization_id": organizationID}).
		OrderBy("t.created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list team transactions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list team transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.CreditTransaction
	for rows.Next() {
		var tx domain.CreditTransaction
		if err := rows.Scan(&tx.ID, &tx.ProfileID, &tx.BookingID, &tx.Type, &tx.Amount, &tx.Note, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team transactions: %w", err)
	}

	return transactions, nil
}

// ListTiers lists purchasable subscription tiers.
func (r *TeamRepository) ListTiers(ctx context.Context) ([]domain.SubscriptionTier, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "description", "price_cents", "credits", "features", "stripe_price_id").
		From("subscription_tiers").
		OrderBy("price_cents ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tiers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []domain.SubscriptionTier
	for rows.Next() {
		var tier domain.SubscriptionTier
		if err := rows.Scan(&tier.ID, &tier.Name, &tier.Description, &tier.PriceCents, &tier.Credits, &tier.Features, &tier.StripePriceID); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tiers: %w", err)
	}

	return tiers, nil
}

var _ port.TeamRepository = (*TeamRepository)(nil)
