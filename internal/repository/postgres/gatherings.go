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

// GatheringRepository implements port.GatheringRepository using PostgreSQL.
type GatheringRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGatheringRepository wires a PostgreSQL-backed gathering repository.
func NewGatheringRepository(exec pgExecutor) *GatheringRepository {
	return &GatheringRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var firesideColumns = []string{
	"f.id",
	"f.host_id",
	"f.title",
	"f.description",
	"f.scheduled_at",
	"f.duration_minutes",
	"f.capacity",
	"(SELECT COUNT(*) FROM fireside_registrations fr WHERE fr.chat_id = f.id)",
	"f.meeting_url",
	"f.created_at",
}

// CreateFireside inserts a fireside chat.
func (r *GatheringRepository) CreateFireside(ctx context.Context, chat domain.FiresideChat) error {
	stmt, args, err := r.builder.
		Insert("fireside_chats").
		Columns("id", "host_id", "title", "description", "scheduled_at", "duration_minutes", "capacity", "meeting_url", "created_at").
		Values(chat.ID, chat.HostID, chat.Title, chat.Description, chat.ScheduledAt, chat.DurationMinutes, chat.Capacity, chat.MeetingURL, chat.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert fireside sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert fireside: %w", err)
	}

	return nil
}

// GetFireside retrieves a fireside chat with its registration count.
func (r *GatheringRepository) GetFireside(ctx context.Context, id string) (*domain.FiresideChat, error) {
	stmt, args, err := r.builder.
		Select(firesideColumns...).
		From("fireside_chats f").
		Where(squirrel.Eq{"f.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select fireside sql: %w", err)
	}

	return scanFireside(r.exec.QueryRow(ctx, stmt, args...))
}

// ListUpcomingFiresides lists fireside chats scheduled after the supplied moment.
func (r *GatheringRepository) ListUpcomingFiresides(ctx context.Context, after time.Time, limit, offset int) ([]domain.FiresideChat, error) {
	query := r.builder.
		Select(firesideColumns...).
		From("fireside_chats f").
		Where(squirrel.Gt{"f.scheduled_at": after}).
		OrderBy("f.scheduled_at ASC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list firesides sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list firesides: %w", err)
	}
	defer rows.Close()

	return collectFiresides(rows)
}

// ListFiresidesByHost lists fireside chats hosted by a mentor.
func (r *GatheringRepository) ListFiresidesByHost(ctx context.Context, hostID string) ([]domain.FiresideChat, error) {
	stmt, args, err := r.builder.
		Select(firesideColumns...).
		From("fireside_chats f").
		Where(squirrel.Eq{"f.host_id": hostID}).
		OrderBy("f.scheduled_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list host firesides sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list host firesides: %w", err)
	}
	defer rows.Close()

	return collectFiresides(rows)
}

// RegisterFireside records a seat in a fireside chat.
func (r *GatheringRepository) RegisterFireside(ctx context.Context, reg domain.FiresideRegistration) error {
	stmt, args, err := r.builder.
		Insert("fireside_registrations").
		Columns("chat_id", "profile_id", "registered_at").
		Values(reg.ChatID, reg.ProfileID, reg.RegisteredAt).
		Suffix("ON CONFLICT (chat_id, profile_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build register fireside sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("register fireside: %w", err)
	}

	return nil
}

// UnregisterFireside releases a seat in a fireside chat.
func (r *GatheringRepository) UnregisterFireside(ctx context.Context, chatID, profileID string) error {
	stmt, args, err := r.builder.
		Delete("fireside_registrations").
		Where(squirrel.Eq{"chat_id": chatID, "profile_id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unregister fireside sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("unregister fireside: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IsFiresideRegistered reports whether a member holds a seat.
func (r *GatheringRepository) IsFiresideRegistered(ctx context.Context, chatID, profileID string) (bool, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("fireside_registrations").
		Where(squirrel.Eq{"chat_id": chatID, "profile_id": profileID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build fireside registration check sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check fireside registration: %w", err)
	}

	return count > 0, nil
}

// CreateMasterclass inserts a masterclass.
func (r *GatheringRepository) CreateMasterclass(ctx context.Context, class domain.Masterclass) error {
	stmt, args, err := r.builder.
		Insert("masterclasses").
		Columns("id", "host_id", "title", "description", "scheduled_at", "recording_url", "created_at").
		Values(class.ID, class.HostID, class.Title, class.Description, class.ScheduledAt, class.RecordingURL, class.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert masterclass sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert masterclass: %w", err)
	}

	return nil
}

// GetMasterclass retrieves a masterclass by identifier.
func (r *GatheringRepository) GetMasterclass(ctx context.Context, id string) (*domain.Masterclass, error) {
	stmt, args, err := r.builder.
		Select("id", "host_id", "title", "description", "scheduled_at", "recording_url", "created_at").
		From("masterclasses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select masterclass sql: %w", err)
	}

	var class domain.Masterclass
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&class.ID,
		&class.HostID,
		&class.Title,
		&class.Description,
		&class.ScheduledAt,
		&class.RecordingURL,
		&class.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan masterclass: %w", err)
	}

	return &class, nil
}

// ListMasterclasses lists masterclasses, upcoming first, then recorded.
func (r *GatheringRepository) ListMasterclasses(ctx context.Context, limit, offset int) ([]domain.Masterclass, error) {
	query := r.builder.
		Select("id", "host_id", "title", "description", "scheduled_at", "recording_url", "created_at").
		From("masterclasses").
		OrderBy("scheduled_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list masterclasses sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list masterclasses: %w", err)
	}
	defer rows.Close()

	var classes []domain.Masterclass
	for rows.Next() {
		var class domain.Masterclass
		if err := rows.Scan(
			&class.ID,
			&class.HostID,
			&class.Title,
			&class.Description,
			&class.ScheduledAt,
			&class.RecordingURL,
			&class.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan masterclass: %w", err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate masterclasses: %w", err)
	}

	return classes, nil
}

// RegisterMasterclass records attendance intent for a masterclass.
func (r *GatheringRepository) RegisterMasterclass(ctx context.Context, reg domain.MasterclassRegistration) error {
	stmt, args, err := r.builder.
		Insert("masterclass_registrations").
		Columns("masterclass_id", "profile_id", "registered_at").
		Values(reg.MasterclassID, reg.ProfileID, reg.RegisteredAt).
		Suffix("ON CONFLICT (masterclass_id, profile_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build register masterclass sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("register masterclass: %w", err)
	}

	return nil
}

// IsMasterclassRegistered reports whether a member registered for a masterclass.
func (r *GatheringRepository) IsMasterclassRegistered(ctx context.Context, classID, profileID string) (bool, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("masterclass_registrations").
		Where(squirrel.Eq{"masterclass_id": classID, "profile_id": profileID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build masterclass registration check sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check masterclass registration: %w", err)
	}

	return count > 0, nil
}

func scanFireside(row pgx.Row) (*domain.FiresideChat, error) {
	var chat domain.FiresideChat

	if err := row.Scan(
		&chat.ID,
		&chat.HostID,
		&chat.Title,
		&chat.Description,
		&chat.ScheduledAt,
		&chat.DurationMinutes,
		&chat.Capacity,
		&chat.Registered,
		&chat.MeetingURL,
		&chat.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan fireside: %w", err)
	}

	return &chat, nil
}

func collectFiresides(rows pgx.Rows) ([]domain.FiresideChat, error) {
	var chats []domain.FiresideChat
	for rows.Next() {
		chat, err := scanFireside(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firesides: %w", err)
	}

	return chats, nil
}

var _ port.GatheringRepository = (*GatheringRepository)(nil)
