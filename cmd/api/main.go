package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/Howzley/EEIRS-14-SP2025/docs"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/analytics"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/auth"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/live"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/memory"
	infrapdf "github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/pdf"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/postgres"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/rbac"
	infraredis "github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/redis"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/scanner"
	httpRouter "github.com/Howzley/EEIRS-14-SP2025/internal/interfaces/http"
	"github.com/Howzley/EEIRS-14-SP2025/pkg/config"
	"github.com/Howzley/EEIRS-14-SP2025/pkg/logger"
)

// @title        EERIS API
// @version      1.0
// @description  Expense reporting: records, live summaries and receipt scanning.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Str("live", cfg.Live.Transport).
		Msg("starting")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		pool     *pgxpool.Pool
		userRepo repository.UserRepository
		expRepo  repository.ExpenseRepository
	)
	// ── Store ───────────────────────────────────────────────────────────────
	switch cfg.App.StoreDriver {
	case "memory":
		log.Warn().Msg("in-memory store: data is lost on restart")
		userRepo = memory.NewUserStore()
		expRepo = memory.NewExpenseStore()
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migrate")
			}
		}
		userRepo = postgres.NewUserRepository(pool)
		expRepo = postgres.NewExpenseRepository(pool)
	}

	var changes ports.ChangeNotifier
	// ── Live change transport ───────────────────────────────────────────────
	switch cfg.Live.Transport {
	case "postgres":
		n := postgres.NewNotifier(pool, cfg.Live.Channel, log.Component("live"))
		go n.Run(ctx)
		changes = n
	case "redis":
		rdb, err := infraredis.Connect(ctx, cfg.Redis, 5, log.Component("redis"))
		if err != nil {
			log.Fatal().Err(err).Msg("connect to Redis")
		}
		defer rdb.Close()
		n := infraredis.NewNotifier(rdb, cfg.Live.Channel, log.Component("live"))
		go n.Run(ctx)
		changes = n
	default:
		changes = memory.NewBroker()
	}

	// ── Use cases ───────────────────────────────────────────────────────────
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		log.Fatal().Err(err).Msg("load permissions")
	}

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	expenseUC := usecase.NewExpenseUseCase(expRepo, changes, log.Component("expenses"))
	var receiptScanner ports.ReceiptScanner
	switch cfg.Scanner.Driver {
	case "gemini":
		receiptScanner = scanner.NewGeminiScanner(cfg.Scanner.GeminiAPIKey, cfg.Scanner.GeminiModel, cfg.Scanner.Timeout)
	case "anthropic":
		receiptScanner = scanner.NewAnthropicScanner(cfg.Scanner.AnthropicAPIKey, cfg.Scanner.AnthropicModel, cfg.Scanner.Timeout)
	default:
		receiptScanner = scanner.NewClient(cfg.Scanner.BaseURL, cfg.Scanner.Timeout)
	}
	receiptUC := usecase.NewReceiptUseCase(receiptScanner, cfg.Scanner.Timeout)
	summaryUC := analytics.NewSummaryUseCase(expRepo, infrapdf.NewMarotoPDFGenerator())
	feed := live.NewFeed(expRepo, changes, log.Component("live"))

	// ── HTTP ────────────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// no WriteTimeout: live summary streams stay open
		IdleTimeout: time.Second * 60,
		BodyLimit:   usecase.MaxReceiptBytes + 1<<20,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "EERIS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Context:     ctx,
		AuthUC:      authUC,
		Roles:       usecase.NewRoleResolver(userRepo),
		Permissions: enforcer,
		Expenses:    expenseUC,
		Receipts:    receiptUC,
		Summary:     summaryUC,
		Feed:        feed,
		Session: httpRouter.SessionConfig{
			Secret:       cfg.JWT.Secret,
			CookieName:   cfg.JWT.CookieName,
			CookieSecure: cfg.JWT.CookieSecure,
			TTL:          time.Duration(cfg.JWT.Expiration) * time.Minute,
		},
		Heartbeat:   cfg.Live.Heartbeat,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	// ends the change listeners and every open live stream
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("stopped")
}
