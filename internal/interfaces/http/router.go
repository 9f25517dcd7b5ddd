package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/analytics"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/auth"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/live"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/rbac"
)

// RouterDeps router dependencies.
type RouterDeps struct {
	// Context bounds long-lived responses (live streams); nil means never.
	Context     context.Context
	AuthUC      *auth.AuthUseCase
	Roles       roleResolver
	Permissions permissionChecker
	Expenses    *usecase.ExpenseUseCase
	Receipts    *usecase.ReceiptUseCase
	Summary     *analytics.SummaryUseCase
	Feed        *live.Feed
	Session     SessionConfig
	Heartbeat   time.Duration
	CORSOrigins string
	Log         zerolog.Logger
}

// Router registers the API and the navigation screens.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestObserver(deps.Log))
	if deps.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: true,
		}))
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authHandler := NewAuthHandler(deps.AuthUC, deps.Session)
	expenseHandler := NewExpenseHandler(deps.Context, deps.Expenses, deps.Summary, deps.Feed, deps.Heartbeat, deps.Log)
	receiptHandler := NewReceiptHandler(deps.Receipts)
	reportHandler := NewReportHandler(deps.Summary)
	screens := NewScreenHandler(deps.AuthUC, deps.Expenses, deps.Receipts, deps.Summary, deps.Session, deps.Log)

	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.SignUp)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)

	// Protected: session, then the role looked up for this request
	protected := api.Group("/", AuthMiddleware(deps.Session), ResolveRole(deps.Roles, deps.Log))
	protected.Get("/me", authHandler.Me)

	expenses := protected.Group("/expenses", RequireScope())
	expenses.Get("/", RequirePermission(deps.Permissions, rbac.ResourceExpenses, rbac.ActionRead), expenseHandler.List)
	expenses.Post("/", RequirePermission(deps.Permissions, rbac.ResourceExpenses, rbac.ActionWrite), expenseHandler.Create)
	expenses.Get("/summary", RequirePermission(deps.Permissions, rbac.ResourceSummary, rbac.ActionRead), expenseHandler.Summary)
	expenses.Get("/live", RequirePermission(deps.Permissions, rbac.ResourceSummary, rbac.ActionRead), expenseHandler.Live)
	expenses.Get("/:id", RequirePermission(deps.Permissions, rbac.ResourceExpenses, rbac.ActionRead), expenseHandler.Get)
	expenses.Put("/:id", RequirePermission(deps.Permissions, rbac.ResourceExpenses, rbac.ActionWrite), expenseHandler.Update)
	expenses.Delete("/:id", RequirePermission(deps.Permissions, rbac.ResourceExpenses, rbac.ActionWrite), expenseHandler.Delete)

	receipts := protected.Group("/receipts", RequirePermission(deps.Permissions, rbac.ResourceReceipts, rbac.ActionScan))
	receipts.Post("/scan", receiptHandler.Scan)
	receipts.Post("/skip", receiptHandler.Skip)

	reports := protected.Group("/reports", RequirePermission(deps.Permissions, rbac.ResourceReports, rbac.ActionExport))
	reports.Get("/summary.pdf", reportHandler.SummaryPDF)

	// Navigation screens
	app.Get("/login", screens.LoginView)
	app.Post("/login", screens.Login)
	app.Get("/signup", screens.SignUpView)
	app.Post("/signup", screens.SignUp)
	app.Post("/logout", screens.Logout)

	guarded := app.Group("/", ScreenGuard(deps.Session), ResolveRole(deps.Roles, deps.Log))
	guarded.Get("/", screens.Menu)

	// every screen past the menu needs an expense scope, same as the API
	canRead := RequirePermission(deps.Permissions, rbac.ResourceExpenses, rbac.ActionRead)
	canWrite := RequirePermission(deps.Permissions, rbac.ResourceExpenses, rbac.ActionWrite)
	canScan := RequirePermission(deps.Permissions, rbac.ResourceReceipts, rbac.ActionScan)

	scoped := guarded.Group("/", RequireScope())
	scoped.Get("/add", canWrite, screens.AddView)
	scoped.Post("/add", canWrite, screens.Add)
	scoped.Get("/upload", canScan, screens.UploadView)
	scoped.Post("/upload", canScan, screens.Upload)
	scoped.Get("/edit", canRead, screens.EditView)
	scoped.Post("/edit/:id", canWrite, screens.Save)
	scoped.Post("/edit/:id/delete", canWrite, screens.Remove)
	scoped.Get("/summary", RequirePermission(deps.Permissions, rbac.ResourceSummary, rbac.ActionRead), screens.SummaryView)
}
