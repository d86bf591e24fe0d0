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

// ProfileRepository implements port.ProfileRepository using PostgreSQL.
//
// The credits column is settled exclusively by database procedures; this
// repository reads it but never writes it.
type ProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProfileRepository wires a PostgreSQL-backed profile repository.
func NewProfileRepository(exec pgExecutor) *ProfileRepository {
	return &ProfileRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var profileColumns = []string{
	"id",
	"email",
	"full_name",
	"avatar_url",
	"bio",
	"role",
	"credits",
	"mentor_experience",
	"expertise_areas",
	"years_of_experience",
	"languages_spoken",
	"session_rate",
	"professional_background",
	"approved",
	"organization_id",
	"created_at",
	"updated_at",
}

// Create inserts a profile row keyed by the auth user id.
func (r *ProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	stmt, args, err := r.builder.
		Insert("profiles").
		Columns(profileColumns...).
		Values(
			profile.ID,
			profile.Email,
			profile.FullName,
			profile.AvatarURL,
			profile.Bio,
			profile.Role,
			profile.Credits,
			profile.MentorExperience,
			profile.ExpertiseAreas,
			profile.YearsOfExperience,
			profile.LanguagesSpoken,
			profile.SessionRate,
			profile.ProfessionalBackground,
			profile.Approved,
			profile.OrganizationID,
			profile.CreatedAt,
			profile.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by user identifier.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	stmt, args, err := r.builder.
		Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	return scanProfile(r.exec.QueryRow(ctx, stmt, args...))
}

// Update replaces profile fields owned by the user. Role and credits are
// deliberately excluded; role changes go through the admin flow and credits
// through procedures.
func (r *ProfileRepository) Update(ctx context.Context, profile domain.Profile) error {
	stmt, args, err := r.builder.
		Update("profiles").
		Set("full_name", profile.FullName).
		Set("avatar_url", profile.AvatarURL).
		Set("bio", profile.Bio).
		Set("mentor_experience", profile.MentorExperience).
		Set("expertise_areas", profile.ExpertiseAreas).
		Set("years_of_experience", profile.YearsOfExperience).
		Set("languages_spoken", profile.LanguagesSpoken).
		Set("session_rate", profile.SessionRate).
		Set("professional_background", profile.ProfessionalBackground).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": profile.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update profile sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ProfileRepository) mentorQuery(filter domain.MentorSearchFilter) squirrel.SelectBuilder {
	query := r.builder.
		Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"role": domain.RoleMentor}).
		Where(squirrel.Eq{"approved": true})

	if filter.ExpertiseArea != "" {
		query = query.Where("? = ANY(expertise_areas)", filter.ExpertiseArea)
	}
	if filter.MentorExperience != "" {
		query = query.Where("? = ANY(mentor_experience)", filter.MentorExperience)
	}
	if filter.Language != "" {
		query = query.Where("? = ANY(languages_spoken)", filter.Language)
	}
	if filter.MinRate != nil {
		query = query.Where(squirrel.GtOrEq{"session_rate": *filter.MinRate})
	}
	if filter.MaxRate != nil {
		query = query.Where(squirrel.LtOrEq{"session_rate": *filter.MaxRate})
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"bio": pattern},
			squirrel.ILike{"professional_background": pattern},
		})
	}

	return query
}

// SearchMentors lists approved mentors matching the filter.
func (r *ProfileRepository) SearchMentors(ctx context.Context, filter domain.MentorSearchFilter) ([]domain.Profile, error) {
	query := r.mentorQuery(filter).OrderBy("full_name ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search mentors sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("search mentors: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// CountMentors counts approved mentors matching the filter.
func (r *ProfileRepository) CountMentors(ctx context.Context, filter domain.MentorSearchFilter) (int, error) {
	filter.Limit = 0
	filter.Offset = 0

	stmt, args, err := r.mentorQuery(filter).
		RemoveColumns().
		Columns("COUNT(*)").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count mentors sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count mentors: %w", err)
	}

	return count, nil
}

// ListPendingApproval lists mentor profiles awaiting admin review.
func (r *ProfileRepository) ListPendingApproval(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	query := r.builder.
		Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"role": domain.RoleMentor}).
		Where(squirrel.Eq{"approved": false}).
		OrderBy("created_at ASC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list pending approval sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending approval: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// SetApproved flips the mentor approval flag.
func (r *ProfileRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	stmt, args, err := r.builder.
		Update("profiles").
		Set("approved", approved).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set approved sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetCalendar retrieves a mentor's scheduling handle.
func (r *ProfileRepository) GetCalendar(ctx context.Context, mentorID string) (*domain.MentorCalendar, error) {
	stmt, args, err := r.builder.
		Select("mentor_id", "cal_username", "platform", "updated_at").
		From("mentor_calendars").
		Where(squirrel.Eq{"mentor_id": mentorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select calendar sql: %w", err)
	}

	var calendar domain.MentorCalendar
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&calendar.MentorID,
		&calendar.CalUsername,
		&calendar.Platform,
		&calendar.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan calendar: %w", err)
	}

	return &calendar, nil
}

// UpsertCalendar creates or replaces a mentor's scheduling handle.
func (r *ProfileRepository) UpsertCalendar(ctx context.Context, calendar domain.MentorCalendar) error {
	stmt, args, err := r.builder.
		Insert("mentor_calendars").
		Columns("mentor_id", "cal_username", "platform", "updated_at").
		Values(calendar.MentorID, calendar.CalUsername, calendar.Platform, calendar.UpdatedAt).
		Suffix("ON CONFLICT (mentor_id) DO UPDATE SET cal_username = EXCLUDED.cal_username, platform = EXCLUDED.platform, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert calendar sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert calendar: %w", err)
	}

	return nil
}

// CreateReview inserts a post-session mentor review.
func (r *ProfileRepository) CreateReview(ctx context.Context, review domain.MentorReview) error {
	stmt, args, err := r.builder.
		Insert("mentor_reviews").
		Columns("id", "mentor_id", "author_id", "session_id", "rating", "comment", "created_at").
		Values(review.ID, review.MentorID, review.AuthorID, review.SessionID, review.Rating, review.Comment, review.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert review sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListReviews lists recent reviews for a mentor.
func (r *ProfileRepository) ListReviews(ctx context.Context, mentorID string, limit int) ([]domain.MentorReview, error) {
	query := r.builder.
		Select("id", "mentor_id", "author_id", "session_id", "rating", "comment", "created_at").
		From("mentor_reviews").
		Where(squirrel.Eq{"mentor_id": mentorID}).
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.MentorReview
	for rows.Next() {
		var review domain.MentorReview
		if err := rows.Scan(
			&review.ID,
			&review.MentorID,
			&review.AuthorID,
			&review.SessionID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile

	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.Role,
		&profile.Credits,
		&profile.MentorExperience,
		&profile.ExpertiseAreas,
		&profile.YearsOfExperience,
		&profile.LanguagesSpoken,
		&profile.SessionRate,
		&profile.ProfessionalBackground,
		&profile.Approved,
		&profile.OrganizationID,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	return &profile, nil
}

func collectProfiles(rows pgx.Rows) ([]domain.Profile, error) {
	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
