package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/infra/config"
	"github.com/linkedleaders/platform-api/internal/transport/http/handlers"
	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Profiles     *usecase.ProfileService
	Sessions     *usecase.SessionStore
	Mentors      *usecase.MentorService
	Bookings     *usecase.BookingService
	Community    *usecase.CommunityService
	Gatherings   *usecase.GatheringService
	Messaging    *usecase.MessagingService
	Vault        *usecase.VaultService
	Directory    *usecase.DirectoryService
	Teams        *usecase.TeamService
	Admin        *usecase.AdminService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Guard       *middleware.Guard
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := deps.Guard.Authenticate()

	api := r.Group("/api/v1")
	{
		isDev := deps.Config.App.Env == "development"

		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(
			deps.Services.Auth,
			deps.Services.Registration,
			deps.Services.Profiles,
			deps.Services.Sessions,
			handlers.NewLoggingNotificationDispatcher(deps.Logger),
			isDev,
		)
		authHandler.RegisterRoutes(authGroup, buildLoginMiddlewares(deps), buildRegisterMiddlewares(deps))

		protectedAuth := api.Group("/auth")
		protectedAuth.Use(authenticated)
		authHandler.RegisterProtectedRoutes(protectedAuth)

		profileGroup := api.Group("/profiles")
		profileGroup.Use(authenticated)
		handlers.NewProfileHandler(deps.Services.Profiles).RegisterRoutes(profileGroup)

		mentorGroup := api.Group("/mentors")
		mentorGroup.Use(authenticated)
		handlers.NewMentorHandler(deps.Services.Mentors).RegisterRoutes(mentorGroup)

		// Booking requires both the booking and spending flags up front; the
		// service re-checks them against the freshly loaded profile.
		bookingGroup := api.Group("/bookings")
		bookingGroup.Use(authenticated)
		handlers.NewBookingHandler(deps.Services.Bookings).RegisterRoutes(bookingGroup)

		discussionGroup := api.Group("/discussions")
		discussionGroup.Use(authenticated)
		handlers.NewDiscussionHandler(deps.Services.Community).RegisterRoutes(discussionGroup)

		gatheringHandler := handlers.NewGatheringHandler(deps.Services.Gatherings)

		firesideGroup := api.Group("/firesides")
		firesideGroup.Use(authenticated)
		gatheringHandler.RegisterFiresideRoutes(firesideGroup)

		masterclassGroup := api.Group("/masterclasses")
		masterclassGroup.Use(authenticated)
		gatheringHandler.RegisterMasterclassRoutes(masterclassGroup)

		// Announcements are gated at the route so unprivileged members never
		// reach the handler; the service re-checks the flag as well.
		messageGroup := api.Group("/messages")
		messageGroup.Use(authenticated)
		handlers.NewMessageHandler(deps.Services.Messaging).RegisterRoutes(
			messageGroup,
			deps.Guard.RequirePermissions(domain.PermSendGlobalMessages),
		)

		vaultGroup := api.Group("/vault")
		vaultGroup.Use(authenticated)
		handlers.NewVaultHandler(deps.Services.Vault).RegisterRoutes(vaultGroup)

		directoryGroup := api.Group("/directory")
		directoryGroup.Use(authenticated)
		handlers.NewDirectoryHandler(deps.Services.Directory).RegisterRoutes(directoryGroup)

		teamGroup := api.Group("/teams")
		teamGroup.Use(authenticated)
		handlers.NewTeamHandler(deps.Services.Teams).RegisterRoutes(teamGroup)

		adminGroup := api.Group("/admin")
		adminGroup.Use(authenticated, deps.Guard.RequireRole(domain.RoleSystemAdmin))
		handlers.NewAdminHandler(deps.Services.Admin).RegisterRoutes(adminGroup)
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	return buildRateLimitMiddlewares(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts)
}

func buildRegisterMiddlewares(deps Dependencies) []gin.HandlerFunc {
	return buildRateLimitMiddlewares(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts)
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
