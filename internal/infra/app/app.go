package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/linkedleaders/platform-api/internal/core/port"
	"github.com/linkedleaders/platform-api/internal/infra/config"
	"github.com/linkedleaders/platform-api/internal/infra/database"
	kafkainfra "github.com/linkedleaders/platform-api/internal/infra/kafka"
	"github.com/linkedleaders/platform-api/internal/infra/logger"
	redisinfra "github.com/linkedleaders/platform-api/internal/infra/redis"
	"github.com/linkedleaders/platform-api/internal/infra/security"
	"github.com/linkedleaders/platform-api/internal/infra/telemetry"
	postgresrepo "github.com/linkedleaders/platform-api/internal/repository/postgres"
	redisrepo "github.com/linkedleaders/platform-api/internal/repository/redis"
	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/transport/http/routes"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// Application bundles the wired HTTP engine with the resources it owns.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

// New wires configuration into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	jwtManager, err := security.NewJWTManager(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.AccessTokenTTL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init jwt manager: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	profileCache := redisrepo.NewProfileCache(redisClient.Client(), cfg.Redis.ProfileCachePrefix)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("kafka producer unavailable, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	authService := usecase.NewAuthService(cfg, repos.Users, repos.Tokens, repos.Sessions, jwtManager, eventPublisher, log)
	registrationService := usecase.NewRegistrationService(repos.Users, repos.Tokens, repos.Profiles, repos.Teams, eventPublisher, log)
	profileService := usecase.NewProfileService(repos.Profiles, profileCache, cfg.Auth.ProfileCacheTTL, log)
	mentorService := usecase.NewMentorService(repos.Profiles, repos.Bookings, repos.Procedures, log)
	bookingService := usecase.NewBookingService(repos.Bookings, repos.Profiles, repos.Procedures, eventPublisher, log)
	communityService := usecase.NewCommunityService(repos.Discussions, log)
	gatheringService := usecase.NewGatheringService(repos.Gatherings, log)
	messagingService := usecase.NewMessagingService(repos.Messages, repos.Profiles, log)
	vaultService := usecase.NewVaultService(repos.Vault, log)
	directoryService := usecase.NewDirectoryService(repos.Directory, log)
	teamService := usecase.NewTeamService(repos.Teams, repos.Profiles, profileCache, eventPublisher, log)
	adminService := usecase.NewAdminService(repos.Profiles, repos.Gatherings, repos.Procedures, profileCache, log)

	sessionStore := usecase.NewSessionStore(authService, repos.Profiles, cfg.Auth, log)
	sessionStore.Bind(authService)

	guard := middleware.NewGuard(authService, profileService, cfg.App.LoginPath, cfg.App.DashboardPath, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Guard:       guard,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Profiles:     profileService,
			Sessions:     sessionStore,
			Mentors:      mentorService,
			Bookings:     bookingService,
			Community:    communityService,
			Gatherings:   gatheringService,
			Messaging:    messagingService,
			Vault:        vaultService,
			Directory:    directoryService,
			Teams:        teamService,
			Admin:        adminService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	addr := fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting http server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("run http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return <-errCh
}
