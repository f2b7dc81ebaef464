package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/statement_ledger/internal/account"
	"github.com/congo-pay/statement_ledger/internal/config"
	"github.com/congo-pay/statement_ledger/internal/ledger"
	"github.com/congo-pay/statement_ledger/internal/metrics"
	"github.com/congo-pay/statement_ledger/internal/middleware"
	"github.com/congo-pay/statement_ledger/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Cache    *redis.Client
	Logger   *slog.Logger
	Notifier notification.Notifier
	Registry *prometheus.Registry
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Logger == nil {
		return errors.New("logger is required")
	}
	if d.Cache == nil && !d.Cfg.IsDev() {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger, account.ExternalKeyHeader))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", metrics.Handler(d.Registry))

	engine := ledger.NewEngine(ledger.WithLocation(d.Cfg.Location))
	accountSvc := account.NewService(account.NewMemoryRepository(), engine, account.Deps{
		Notifier: notifier,
		Metrics:  metrics.NewLedger(d.Registry),
		Logger:   d.Logger,
	})
	accountHandler := account.NewHandler(accountSvc)

	var writeGuards []fiber.Handler
	if d.Cache != nil {
		writeGuards = append(writeGuards,
			middleware.WriteRateLimit(d.Cache, account.ExternalKeyHeader, d.Cfg.WriteRateLimit),
			middleware.Idempotency(middleware.IdempotencyConfig{
				Cache:       d.Cache,
				TTL:         d.Cfg.IdempotencyTTL,
				Logger:      d.Logger,
				ScopeHeader: account.ExternalKeyHeader,
			}),
		)
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDLocal).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	RegisterAccountRoutes(api, accountHandler, writeGuards...)

	return nil
}

// ErrorHandler renders errors as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
