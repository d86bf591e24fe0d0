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

// BookingRepository implements port.BookingRepository using PostgreSQL.
//
// Booking rows are inserted by the book_session_with_escrow procedure together
// with their escrow hold; Create exists for that procedure's fallback path and
// for tests.
type BookingRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewBookingRepository wires a PostgreSQL-backed booking repository.
func NewBookingRepository(exec pgExecutor) *BookingRepository {
	return &BookingRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var bookingColumns = []string{
	"id",
	"mentee_id",
	"mentor_id",
	"scheduled_at",
	"duration_minutes",
	"credits",
	"status",
	"meeting_url",
	"canceled_reason",
	"created_at",
	"updated_at",
}

// Create inserts a booking row.
func (r *BookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	stmt, args, err := r.builder.
		Insert("bookings").
		Columns(bookingColumns...).
		Values(
			booking.ID,
			booking.MenteeID,
			booking.MentorID,
			booking.ScheduledAt,
			booking.DurationMinutes,
			booking.Credits,
			booking.Status,
			booking.MeetingURL,
			booking.CanceledReason,
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by identifier.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	stmt, args, err := r.builder.
		Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select booking sql: %w", err)
	}

	return scanBooking(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByMentee lists bookings made by a mentee, newest first.
func (r *BookingRepository) ListByMentee(ctx context.Context, menteeID string, limit, offset int) ([]domain.Booking, error) {
	return r.listBookings(ctx, squirrel.Eq{"mentee_id": menteeID}, limit, offset)
}

// ListByMentor lists bookings held with a mentor, newest first.
func (r *BookingRepository) ListByMentor(ctx context.Context, mentorID string, limit, offset int) ([]domain.Booking, error) {
	return r.listBookings(ctx, squirrel.Eq{"mentor_id": mentorID}, limit, offset)
}

func (r *BookingRepository) listBookings(ctx context.Context, where squirrel.Eq, limit, offset int) ([]domain.Booking, error) {
	query := r.builder.
		Select(bookingColumns...).
		From("bookings").
		Where(where).
		OrderBy("scheduled_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus transitions a booking's lifecycle state.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, reason *string) error {
	update := r.builder.
		Update("bookings").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})

	if reason != nil {
		update = update.Set("canceled_reason", *reason)
	}

	stmt, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListTransactions lists credit ledger entries for a profile, newest first.
func (r *BookingRepository) ListTransactions(ctx context.Context, profileID string, limit, offset int) ([]domain.CreditTransaction, error) {
	query := r.builder.
		Select("id", "profile_id", "booking_id", "type", "amount", "note", "created_at").
		From("credit_transactions").
		Where(squirrel.Eq{"profile_id": profileID}).
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list transactions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.CreditTransaction
	for rows.Next() {
		var tx domain.CreditTransaction
		if err := rows.Scan(&tx.ID, &tx.ProfileID, &tx.BookingID, &tx.Type, &tx.Amount, &tx.Note, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

// ListEscrowByMentor lists escrow holds against a mentor's bookings.
func (r *BookingRepository) ListEscrowByMentor(ctx context.Context, mentorID string) ([]domain.CreditEscrow, error) {
	stmt, args, err := r.builder.
		Select("id", "booking_id", "mentor_id", "credits", "status", "created_at", "resolved_at").
		From("credit_escrow").
		Where(squirrel.Eq{"mentor_id": mentorID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list escrow sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list escrow: %w", err)
	}
	defer rows.Close()

	var holds []domain.CreditEscrow
	for rows.Next() {
		var hold domain.CreditEscrow
		if err := rows.Scan(&hold.ID, &hold.BookingID, &hold.MentorID, &hold.Credits, &hold.Status, &hold.CreatedAt, &hold.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan escrow: %w", err)
		}
		holds = append(holds, hold)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate escrow: %w", err)
	}

	return holds, nil
}

// ListInvoicesByMentor lists payout invoices for a mentor.
func (r *BookingRepository) ListInvoicesByMentor(ctx context.Context, mentorID string) ([]domain.MentorInvoice, error) {
	stmt, args, err := r.builder.
		Select("id", "mentor_id", "period_start", "period_end", "credits", "status", "processed_at", "created_at").
		From("mentor_invoices").
		Where(squirrel.Eq{"mentor_id": mentorID}).
		OrderBy("period_start DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invoices sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.MentorInvoice
	for rows.Next() {
		var invoice domain.MentorInvoice
		if err := rows.Scan(
			&invoice.ID,
			&invoice.MentorID,
			&invoice.PeriodStart,
			&invoice.PeriodEnd,
			&invoice.Credits,
			&invoice.Status,
			&invoice.ProcessedAt,
			&invoice.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	return invoices, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking

	if err := row.Scan(
		&booking.ID,
		&booking.MenteeID,
		&booking.MentorID,
		&booking.ScheduledAt,
		&booking.DurationMinutes,
		&booking.Credits,
		&booking.Status,
		&booking.MeetingURL,
		&booking.CanceledReason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	return &booking, nil
}

var _ port.BookingRepository = (*BookingRepository)(nil)
