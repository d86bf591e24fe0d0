package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/repository"
)

func TestSessionRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	createdAt := time.Now().UTC()
	ip := "198.51.100.10"
	session := domain.LoginSession{
		ID:        "session-123",
		UserID:    "user-123",
		IPFirst:   &ip,
		IPLast:    &ip,
		CreatedAt: createdAt,
		LastSeen:  createdAt,
		ExpiresAt: createdAt.Add(24 * time.Hour),
	}

	mock.ExpectExec(`INSERT INTO login_sessions`).
		WithArgs(
			session.ID,
			session.UserID,
			(*string)(nil),
			&ip,
			&ip,
			(*string)(nil),
			session.CreatedAt,
			session.LastSeen,
			session.ExpiresAt,
			(*time.Time)(nil),
			(*string)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	createdAt := time.Now().UTC()
	expiresAt := createdAt.Add(30 * time.Minute)
	refreshID := "refresh-1"
	ip := "198.51.100.10"
	ua := "UA"

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "refresh_token_id", "ip_first", "ip_last", "user_agent", "created_at", "last_seen", "expires_at", "revoked_at", "revoke_reason",
	}).AddRow(
		"session-1", "user-1", &refreshID, &ip, &ip, &ua, createdAt, createdAt, expiresAt, nil, nil,
	)

	mock.ExpectQuery(`SELECT .+ FROM login_sessions`).
		WithArgs("session-1").
		WillReturnRows(rows)

	session, err := repo.GetByID(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	if session.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", session.UserID)
	}
	if !session.IsActive(createdAt) {
		t.Error("expected session to be active")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM login_sessions`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "refresh_token_id", "ip_first", "ip_last", "user_agent", "created_at", "last_seen", "expires_at", "revoked_at", "revoke_reason",
		}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_RevokeAllForUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewSessionRepository(mock)

	mock.ExpectExec(`UPDATE login_sessions`).
		WithArgs(pgxmock.AnyArg(), "signed_out", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	count, err := repo.RevokeAllForUser(context.Background(), "user-1", "signed_out")
	if err != nil {
		t.Fatalf("RevokeAllForUser returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("revoked count = %d, want 2", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
