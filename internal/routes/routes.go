package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/otpgate/otpgate/internal/auth"
	"github.com/otpgate/otpgate/internal/config"
	"github.com/otpgate/otpgate/internal/identity"
	"github.com/otpgate/otpgate/internal/middleware"
	"github.com/otpgate/otpgate/internal/notification"
	"github.com/otpgate/otpgate/internal/otp"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Outside of dev the
// Postgres user store and the Redis challenge store are mandatory; in dev a
// missing backend falls back to its in-memory counterpart.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var userRepo identity.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
	}
	ids := identity.NewService(userRepo)

	var challenges otp.Store
	if d.Cache != nil {
		challenges = otp.NewRedisStore(d.Cache)
	} else {
		challenges = otp.NewMemoryStore()
	}
	registry := otp.NewRegistry(challenges)

	var emailNotifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
	if d.Cfg.SMTP.Configured() {
		emailNotifier = notification.NewSMTPNotifier(d.Cfg.SMTP)
	}
	var smsNotifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
	if d.Cfg.Twilio.Configured() {
		smsNotifier = notification.NewTwilioNotifier(d.Cfg.Twilio)
	}

	svc := auth.NewService(ids, registry, emailNotifier, smsNotifier, d.Logger)
	handler := auth.NewHandler(svc, d.Logger)
	RegisterAuthRoutes(app, handler)

	return nil
}
