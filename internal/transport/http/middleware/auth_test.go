package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/infra/security"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

type fakeParser struct {
	subjects map[string]string
}

func (f fakeParser) ParseAccessToken(raw string) (*security.AccessClaims, error) {
	subject, ok := f.subjects[raw]
	if !ok {
		return nil, usecase.ErrInvalidAccessToken
	}
	return &security.AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}, nil
}

type fakeResolver struct {
	profiles map[string]*domain.Profile
}

func (f fakeResolver) Get(_ context.Context, userID string) (*domain.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, usecase.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func newTestGuard() *Guard {
	parser := fakeParser{subjects: map[string]string{
		"mentor-token": "mentor-1",
		"sub-token":    "sub-1",
	}}
	resolver := fakeResolver{profiles: map[string]*domain.Profile{
		"mentor-1": {ID: "mentor-1", Role: domain.RoleMentor, Approved: true},
		"sub-1":    {ID: "sub-1", Role: domain.RoleSubscriber},
	}}
	return NewGuard(parser, resolver, "/login", "/dashboard", nil)
}

func newGuardRouter(guard *Guard, chain ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{guard.Authenticate()}, chain...)
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/mentors", handlers...)
	return r
}

func performRequest(r *gin.Engine, token, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/mentors?page=2", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuardRejectsMissingTokenForAPI(t *testing.T) {
	r := newGuardRouter(newTestGuard())

	w := performRequest(r, "", "application/json")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGuardRedirectsBrowserToLoginWithReturnPath(t *testing.T) {
	r := newGuardRouter(newTestGuard())

	w := performRequest(r, "", "text/html")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	location := w.Header().Get("Location")
	if location != "/login?from=%2Fmentors%3Fpage%3D2" {
		t.Errorf("location = %q, want login redirect preserving the original path", location)
	}
}

func TestGuardLoginOutranksRoleMismatch(t *testing.T) {
	guard := newTestGuard()
	r := newGuardRouter(guard, guard.RequireRole(domain.RoleSystemAdmin))

	// No token at all: the browser goes to login, not to the dashboard,
	// even though the route also has a role requirement.
	w := performRequest(r, "", "text/html")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if location := w.Header().Get("Location"); location == "/dashboard" {
		t.Error("unauthenticated caller must be sent to login, not dashboard")
	}
}

func TestGuardRoleMismatchRedirectsToDashboard(t *testing.T) {
	guard := newTestGuard()
	r := newGuardRouter(guard, guard.RequireRole(domain.RoleSystemAdmin))

	w := performRequest(r, "sub-token", "text/html")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if location := w.Header().Get("Location"); location != "/dashboard" {
		t.Errorf("location = %q, want /dashboard", location)
	}

	// API callers get a bare 403 instead of a redirect.
	w = performRequest(r, "sub-token", "application/json")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestGuardPermissionCheckUsesProfileRole(t *testing.T) {
	guard := newTestGuard()
	r := newGuardRouter(guard, guard.RequirePermissions(domain.PermHostMasterclasses))

	// Mentors hold the hosting flag, subscribers do not.
	if w := performRequest(r, "mentor-token", "application/json"); w.Code != http.StatusOK {
		t.Errorf("mentor status = %d, want 200", w.Code)
	}
	if w := performRequest(r, "sub-token", "application/json"); w.Code != http.StatusForbidden {
		t.Errorf("subscriber status = %d, want 403", w.Code)
	}
}

func TestGuardRequiresEveryListedPermission(t *testing.T) {
	guard := newTestGuard()
	r := newGuardRouter(guard, guard.RequirePermissions(domain.PermSendMessages, domain.PermBookSessions))

	// Mentors can message but cannot book, so the combined requirement fails.
	if w := performRequest(r, "mentor-token", "application/json"); w.Code != http.StatusForbidden {
		t.Errorf("mentor status = %d, want 403", w.Code)
	}
	if w := performRequest(r, "sub-token", "application/json"); w.Code != http.StatusOK {
		t.Errorf("subscriber status = %d, want 200", w.Code)
	}
}

func TestGuardMissingProfileIsUnauthenticated(t *testing.T) {
	parser := fakeParser{subjects: map[string]string{"orphan-token": "orphan"}}
	guard := NewGuard(parser, fakeResolver{}, "/login", "/dashboard", nil)
	r := newGuardRouter(guard)

	w := performRequest(r, "orphan-token", "application/json")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
