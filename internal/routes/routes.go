package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cartera-app/cartera_backend/internal/config"
	"github.com/cartera-app/cartera_backend/internal/middleware"
	"github.com/cartera-app/cartera_backend/internal/store"
	"github.com/cartera-app/cartera_backend/internal/stripe"
	"github.com/cartera-app/cartera_backend/internal/wallet"
	"github.com/cartera-app/cartera_backend/internal/webhook"
)

// Deps aggregates the shared dependencies routes are wired with. Cache may
// be nil; everything else is required.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Stripe *stripe.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.DB == nil {
		return fmt.Errorf("database pool is required")
	}
	if d.Stripe == nil {
		return fmt.Errorf("stripe client is required")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.FrontendURL,
		AllowCredentials: true,
	}))
	app.Use(middleware.Audit(d.Logger))

	st := store.NewPostgres(d.DB)

	walletSvc := wallet.NewService(st, d.Stripe)
	walletHandler := wallet.NewHandler(walletSvc)
	webhookHandler := webhook.NewHandler(
		st, d.Cfg.StripeWebhookSecret, d.Cache, d.Cfg.WebhookDedupTTL, d.Logger)

	api := app.Group("/api")

	RegisterHealthRoute(api)
	RegisterStripeRoutes(api, webhookHandler)

	authGate := middleware.Auth(d.Cfg.SupabaseJWTSecret)
	RegisterWalletRoutes(api, walletHandler, authGate)

	return nil
}
