package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/infra/security"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// TokenParser validates raw access tokens.
type TokenParser interface {
	ParseAccessToken(raw string) (*security.AccessClaims, error)
}

// ProfileResolver loads the caller's current profile.
type ProfileResolver interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

// Guard authenticates requests and enforces role capability checks. The role
// behind a permission decision is re-read from the profile store on every
// request, so a role change server-side takes effect on the next request
// without waiting for token expiry.
type Guard struct {
	auth          TokenParser
	profiles      ProfileResolver
	loginPath     string
	dashboardPath string
	log           *zap.Logger
}

// NewGuard constructs the route guard.
func NewGuard(auth TokenParser, profiles ProfileResolver, loginPath, dashboardPath string, log *zap.Logger) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	if dashboardPath == "" {
		dashboardPath = "/dashboard"
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Guard{
		auth:          auth,
		profiles:      profiles,
		loginPath:     loginPath,
		dashboardPath: dashboardPath,
		log:           log,
	}
}

// Authenticate validates the bearer token and resolves the caller's profile.
// Browser requests bounce to the login page carrying the original path in the
// "from" parameter so the client can return after sign-in; API requests get a
// 401.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			g.rejectUnauthenticated(c, "missing authorization")
			return
		}

		claims, err := g.auth.ParseAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredAccessToken):
				g.rejectUnauthenticated(c, "access token expired")
			case errors.Is(err, usecase.ErrInvalidAccessToken):
				g.rejectUnauthenticated(c, "invalid access token")
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		// Authorization always reads the current profile row, never the role
		// claim baked into the token.
		profile, err := g.profiles.Get(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, usecase.ErrProfileNotFound) {
				g.rejectUnauthenticated(c, "account profile missing")
				return
			}
			g.log.Error("guard profile resolution failed",
				zap.String("user_id", claims.Subject),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		c.Set(UserIDKey, profile.ID)
		c.Set(ProfileKey, profile)
		c.Set(PermissionsKey, domain.PermissionsFor(profile.Role))

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = profile.ID
		}

		c.Next()
	}
}

// RequireRole allows only the named roles past. An unauthenticated caller is
// sent to login, never to the dashboard: missing identity outranks a role
// mismatch.
func (g *Guard) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		profile, ok := GetAuthenticatedProfile(c)
		if !ok {
			g.rejectUnauthenticated(c, "authentication required")
			return
		}

		if len(allowed) > 0 && !allowed[profile.Role] {
			g.rejectForbidden(c)
			return
		}

		c.Next()
	}
}

// RequirePermissions allows the request through only when the caller's role
// grants every named flag.
func (g *Guard) RequirePermissions(perms ...domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := GetAuthenticatedProfile(c)
		if !ok {
			g.rejectUnauthenticated(c, "authentication required")
			return
		}

		set := domain.PermissionsFor(profile.Role)
		for _, perm := range perms {
			if !set.Has(perm) {
				g.rejectForbidden(c)
				return
			}
		}

		c.Next()
	}
}

func (g *Guard) rejectUnauthenticated(c *gin.Context, message string) {
	if wantsHTML(c) {
		target := g.loginPath + "?from=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, message))
}

func (g *Guard) rejectForbidden(c *gin.Context) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, g.dashboardPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "insufficient permissions"))
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html")
}

// GetAuthenticatedUserID retrieves the user id stored by Authenticate.
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetAuthenticatedProfile retrieves the profile stored by Authenticate.
func GetAuthenticatedProfile(c *gin.Context) (*domain.Profile, bool) {
	value, exists := c.Get(ProfileKey)
	if !exists {
		return nil, false
	}
	profile, ok := value.(*domain.Profile)
	return profile, ok
}

// GetPermissions retrieves the permission set stored by Authenticate. Callers
// without an authenticated profile get the zero set, which denies everything.
func GetPermissions(c *gin.Context) domain.PermissionSet {
	value, exists := c.Get(PermissionsKey)
	if !exists {
		return domain.PermissionSet{}
	}
	if set, ok := value.(domain.PermissionSet); ok {
		return set
	}
	return domain.PermissionSet{}
}
