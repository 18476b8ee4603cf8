package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/raksha-app/raksha/internal/alert"
	"github.com/raksha-app/raksha/internal/auth"
	"github.com/raksha-app/raksha/internal/config"
	"github.com/raksha-app/raksha/internal/contacts"
	"github.com/raksha-app/raksha/internal/dashboard"
	"github.com/raksha-app/raksha/internal/identity"
	"github.com/raksha-app/raksha/internal/idverify"
	"github.com/raksha-app/raksha/internal/kyc"
	"github.com/raksha-app/raksha/internal/metrics"
	"github.com/raksha-app/raksha/internal/middleware"
	"github.com/raksha-app/raksha/internal/notification"
	"github.com/raksha-app/raksha/internal/onboarding"
	"github.com/raksha-app/raksha/internal/otp"
)

// Deps aggregates shared dependencies required to wire routes. Nil optional
// fields get a default: the logger notifier, the simulated verifier, a fresh
// metrics registry and an OTP store matching the cache.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Notifier notification.Notifier
	Verifier idverify.Verifier
	Metrics  *metrics.Metrics
	OTPStore otp.Store
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Notifier == nil {
		d.Notifier = notification.NewLoggerNotifier(d.Logger)
	}
	if d.Verifier == nil {
		d.Verifier = idverify.NewSimulated(d.Cfg.IDVerifySentinel, d.Cfg.IDVerifyPassRate)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.OTPStore == nil {
		d.OTPStore = DefaultOTPStore(d.Cfg, d.Cache)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger, d.Metrics))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	app.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var (
		identityRepo  identity.Repository
		kycRepo       kyc.Repository
		dashboardRepo dashboard.Repository
		contactRepo   contacts.Repository
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		kycRepo = kyc.NewPostgresRepository(d.DB)
		dashboardRepo = dashboard.NewPostgresRepository(d.DB)
		contactRepo = contacts.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		kycRepo = kyc.NewMemoryRepository()
		dashboardRepo = dashboard.NewMemoryRepository()
		contactRepo = contacts.NewMemoryRepository()
	}

	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	dashboardSvc := dashboard.NewService(dashboardRepo)
	contactSvc := contacts.NewService(contactRepo)
	otpSvc := otp.NewService(d.OTPStore, d.Notifier, otp.Options{
		Expiry:    d.Cfg.OTPExpiry,
		SingleUse: d.Cfg.OTPSingleUse,
		Logger:    d.Logger,
		Metrics:   d.Metrics,
	})
	flow := onboarding.New(onboarding.Deps{
		Identities: identitySvc,
		Tokens:     authSvc,
		KYC:        kycRepo,
		Dashboards: dashboardSvc,
		OTP:        otpSvc,
		Verifier:   d.Verifier,
		Metrics:    d.Metrics,
		Logger:     d.Logger,
	})
	alertSvc := alert.NewService(kycRepo, contactRepo, d.Notifier, d.Metrics, d.Logger)

	onboardingHandler := onboarding.NewHandler(flow, identitySvc)
	authHandler := auth.NewHandler(identitySvc, authSvc)

	// Public routes
	loginLimiter := middleware.RateLimit(d.Cache, "login", d.Cfg.LoginRateLimit, middleware.ByUsername)
	RegisterAuthRoutes(app, authHandler, onboardingHandler, loginLimiter)

	// Protected routes
	protected := app.Group("", middleware.JWTAuth(authSvc))
	protected.Post("/logout", authHandler.Logout)
	protected.Get("/me", onboardingHandler.Me)
	otpLimiter := middleware.RateLimit(d.Cache, "otp", d.Cfg.OTPRateLimit, middleware.ByUser)
	RegisterKYCRoutes(protected, onboardingHandler, otpLimiter)
	RegisterContactRoutes(protected, contacts.NewHandler(contactSvc))
	RegisterDashboardRoutes(protected, dashboard.NewHandler(dashboardSvc))
	idempotent := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	RegisterAlertRoutes(protected, alert.NewHandler(alertSvc), idempotent)

	return nil
}

// DefaultOTPStore keeps codes in Redis when a cache is configured, otherwise
// in process memory.
func DefaultOTPStore(cfg config.Config, cache *redis.Client) otp.Store {
	if cache != nil {
		return otp.NewRedisStore(cache, cfg.OTPExpiry)
	}
	return otp.NewMemoryStore()
}
