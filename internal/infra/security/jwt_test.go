package security

import (
	"errors"
	"testing"
	"time"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

func TestJWTManagerIssueAndParse(t *testing.T) {
	mgr, err := NewJWTManager("test-secret", "linkedleaders-api", time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}

	raw, err := mgr.Issue("user-1", "leader@example.com", domain.RoleMentor, time.Now())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := mgr.Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Email != "leader@example.com" {
		t.Errorf("email = %q, want leader@example.com", claims.Email)
	}
	if claims.Role != string(domain.RoleMentor) {
		t.Errorf("role = %q, want %q", claims.Role, domain.RoleMentor)
	}
}

func TestJWTManagerRejectsExpiredToken(t *testing.T) {
	mgr, err := NewJWTManager("test-secret", "linkedleaders-api", time.Minute)
	if err != nil {
		t.Fatalf("NewJWTManager returned error: %v", err)
	}

	raw, err := mgr.Issue("user-1", "leader@example.com", domain.RoleSubscriber, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := mgr.Parse(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Parse error = %v, want ErrTokenExpired", err)
	}
}

func TestJWTManagerRejectsForeignSignature(t *testing.T) {
	issuer, _ := NewJWTManager("secret-a", "linkedleaders-api", time.Minute)
	verifier, _ := NewJWTManager("secret-b", "linkedleaders-api", time.Minute)

	raw, err := issuer.Issue("user-1", "leader@example.com", domain.RoleSubscriber, time.Now())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifier.Parse(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Parse error = %v, want ErrTokenInvalid", err)
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager("", "linkedleaders-api", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
