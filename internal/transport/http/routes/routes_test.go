package routes_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/infra/config"
	"github.com/linkedleaders/platform-api/internal/infra/security"
	"github.com/linkedleaders/platform-api/internal/repository"
	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	httproutes "github.com/linkedleaders/platform-api/internal/transport/http/routes"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

type deniedParser struct{}

func (deniedParser) ParseAccessToken(string) (*security.AccessClaims, error) {
	return nil, errors.New("invalid token")
}

type emptyResolver struct{}

func (emptyResolver) Get(context.Context, string) (*domain.Profile, error) {
	return nil, usecase.ErrProfileNotFound
}

type memberParser struct {
	subjects map[string]string
}

func (p memberParser) ParseAccessToken(raw string) (*security.AccessClaims, error) {
	subject, ok := p.subjects[raw]
	if !ok {
		return nil, usecase.ErrInvalidAccessToken
	}
	return &security.AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}, nil
}

type memberResolver struct {
	profiles map[string]*domain.Profile
}

func (r memberResolver) Get(_ context.Context, userID string) (*domain.Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, usecase.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

type memberProfileRepo struct {
	port.ProfileRepository

	profiles map[string]*domain.Profile
}

func (r memberProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

type quietIdentity struct{}

func (quietIdentity) SignInWithPassword(context.Context, string, string) (port.IdentityHandle, error) {
	return port.IdentityHandle{}, errors.New("not supported")
}

func (quietIdentity) SignOutUser(context.Context, string) error { return nil }

func testDependencies(t *testing.T) httproutes.Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	return httproutes.Dependencies{
		Config: &config.AppConfig{App: config.AppSettings{Env: "test"}},
		Logger: logger,
		Guard:  middleware.NewGuard(deniedParser{}, emptyResolver{}, "/login", "/dashboard", logger),
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestProtectedRouteRejectsAnonymousAPIClient(t *testing.T) {
	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/profiles/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestProtectedRouteRedirectsAnonymousBrowser(t *testing.T) {
	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/mentors", nil)
	req.Header.Set("Accept", "text/html")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?from=%2Fapi%2Fv1%2Fmentors" {
		t.Fatalf("unexpected redirect target: %s", loc)
	}
}

func memberDependencies(t *testing.T) httproutes.Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	profiles := map[string]*domain.Profile{
		"sub-1": {ID: "sub-1", Email: "sub@example.com", Role: domain.RoleSubscriber},
	}
	parser := memberParser{subjects: map[string]string{"sub-token": "sub-1"}}

	sessions := usecase.NewSessionStore(
		quietIdentity{},
		memberProfileRepo{profiles: profiles},
		config.AuthSettings{},
		logger,
	)

	return httproutes.Dependencies{
		Config:   &config.AppConfig{App: config.AppSettings{Env: "test"}},
		Logger:   logger,
		Guard:    middleware.NewGuard(parser, memberResolver{profiles: profiles}, "/login", "/dashboard", logger),
		Services: httproutes.ServiceSet{Sessions: sessions},
	}
}

func TestAnnouncementPublishForbiddenWithoutGlobalMessagePermission(t *testing.T) {
	r := httproutes.Register(memberDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/messages/announcements", strings.NewReader(`{"body":"hello"}`))
	req.Header.Set("Authorization", "Bearer sub-token")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestSessionEndpointReportsAuthenticatedCaller(t *testing.T) {
	r := httproutes.Register(memberDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", "Bearer sub-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		State   string `json:"state"`
		Profile *struct {
			ID string `json:"id"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.State != "authenticated" {
		t.Errorf("state = %q, want authenticated", resp.State)
	}
	if resp.Profile == nil || resp.Profile.ID != "sub-1" {
		t.Errorf("profile = %+v, want sub-1", resp.Profile)
	}
}

func TestSessionEndpointRejectsAnonymousCaller(t *testing.T) {
	r := httproutes.Register(memberDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
