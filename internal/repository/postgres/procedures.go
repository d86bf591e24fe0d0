package postgres

import (
	"context"
	"fmt"

	"github.com/linkedleaders/platform-api/internal/core/port"
)

// ProcedureCaller invokes database procedures that own credit accounting and
// rating aggregation. Their bodies live in migrations owned by the data team;
// this service only calls them.
type ProcedureCaller struct {
	exec pgExecutor
}

// NewProcedureCaller wires a procedure caller over the supplied executor.
func NewProcedureCaller(exec pgExecutor) *ProcedureCaller {
	return &ProcedureCaller{exec: exec}
}

// GetMentorRating returns the aggregated rating for a mentor.
func (c *ProcedureCaller) GetMentorRating(ctx context.Context, mentorID string) (float64, int, error) {
	var (
		avg   float64
		count int
	)

	row := c.exec.QueryRow(ctx, "SELECT avg_rating, rating_count FROM get_mentor_rating($1)", mentorID)
	if err := row.Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("call get_mentor_rating: %w", err)
	}

	return avg, count, nil
}

// BookSessionWithEscrow atomically creates a booking, debits the mentee, and
// holds the credits in escrow.
func (c *ProcedureCaller) BookSessionWithEscrow(ctx context.Context, bookingID, menteeID, mentorID string, credits int) error {
	if _, err := c.exec.Exec(ctx, "SELECT book_session_with_escrow($1, $2, $3, $4)", bookingID, menteeID, mentorID, credits); err != nil {
		return fmt.Errorf("call book_session_with_escrow: %w", err)
	}
	return nil
}

// ReleaseEscrow pays held credits out to the mentor after a completed session.
func (c *ProcedureCaller) ReleaseEscrow(ctx context.Context, bookingID string) error {
	if _, err := c.exec.Exec(ctx, "SELECT release_escrow($1)", bookingID); err != nil {
		return fmt.Errorf("call release_escrow: %w", err)
	}
	return nil
}

// RefundEscrow returns held credits to the mentee after a cancellation.
func (c *ProcedureCaller) RefundEscrow(ctx context.Context, bookingID string) error {
	if _, err := c.exec.Exec(ctx, "SELECT refund_escrow($1)", bookingID); err != nil {
		return fmt.Errorf("call refund_escrow: %w", err)
	}
	return nil
}

// ProcessMentorInvoice settles a mentor's payable invoice.
func (c *ProcedureCaller) ProcessMentorInvoice(ctx context.Context, invoiceID string) error {
	if _, err := c.exec.Exec(ctx, "SELECT process_mentor_invoice($1)", invoiceID); err != nil {
		return fmt.Errorf("call process_mentor_invoice: %w", err)
	}
	return nil
}

var _ port.ProcedureCaller = (*ProcedureCaller)(nil)
