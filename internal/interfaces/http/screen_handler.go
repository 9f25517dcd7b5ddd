package http

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/analytics"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/auth"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/metrics"
)

// ScreenHandler navigation surface. Every screen answers with a JSON view model.
type ScreenHandler struct {
	auth     *auth.AuthUseCase
	expenses *usecase.ExpenseUseCase
	receipts *usecase.ReceiptUseCase
	summary  *analytics.SummaryUseCase
	session  SessionConfig
	log      zerolog.Logger
}

// NewScreenHandler builds the handler.
func NewScreenHandler(
	authUC *auth.AuthUseCase,
	expenses *usecase.ExpenseUseCase,
	receipts *usecase.ReceiptUseCase,
	summary *analytics.SummaryUseCase,
	session SessionConfig,
	log zerolog.Logger,
) *ScreenHandler {
	return &ScreenHandler{auth: authUC, expenses: expenses, receipts: receipts, summary: summary, session: session, log: log}
}

func post(label, href string) dto.NavAction {
	return dto.NavAction{Label: label, Href: href, Method: fiber.MethodPost}
}
func link(label, href string) dto.NavAction {
	return dto.NavAction{Label: label, Href: href, Method: fiber.MethodGet}
}

func categoryOptions() []dto.CategoryOption {
	out := make([]dto.CategoryOption, 0, len(entity.Categories))
	for _, c := range entity.Categories {
		out = append(out, dto.CategoryOption{Value: c, Label: entity.CategoryLabel(c)})
	}
	return out
}

// ── Auth screens ─────────────────────────────────────────────────────────────

// LoginView GET /login
func (h *ScreenHandler) LoginView(c *fiber.Ctx) error {
	return c.JSON(dto.AuthView{
		Screen:  "login",
		Actions: []dto.NavAction{post("Log in", "/login"), link("Sign up", "/signup")},
	})
}

// SignUpView GET /signup
func (h *ScreenHandler) SignUpView(c *fiber.Ctx) error {
	return c.JSON(dto.AuthView{
		Screen:  "signup",
		Actions: []dto.NavAction{post("Sign up", "/signup"), link("Log in", "/login")},
	})
}

// Login POST /login. Success sets the session cookie and goes to the menu.
func (h *ScreenHandler) Login(c *fiber.Ctx) error {
	fail := func() error {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.AuthView{
			Screen:  "login",
			Error:   msgLoginFailed,
			Actions: []dto.NavAction{post("Log in", "/login"), link("Sign up", "/signup")},
		})
	}
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		h.log.Debug().Err(err).Msg("screen login: unreadable form")
		return fail()
	}
	out, err := h.auth.Login(c.UserContext(), in)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) && !errors.Is(err, domain.ErrInvalidInput) {
			h.log.Error().Err(err).Msg("screen login")
		}
		return fail()
	}
	setSessionCookie(c, h.session, out.Token, out.ExpiresAt)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// SignUp POST /signup. The new account is logged in right away.
func (h *ScreenHandler) SignUp(c *fiber.Ctx) error {
	fail := func(status int) error {
		return c.Status(status).JSON(dto.AuthView{
			Screen:  "signup",
			Error:   msgSignUpFailed,
			Actions: []dto.NavAction{post("Sign up", "/signup"), link("Log in", "/login")},
		})
	}
	var in dto.SignUpRequest
	if err := c.BodyParser(&in); err != nil {
		h.log.Debug().Err(err).Msg("screen sign-up: unreadable form")
		return fail(fiber.StatusBadRequest)
	}
	if _, err := h.auth.SignUp(c.UserContext(), in); err != nil {
		status, _ := errorResponse(err)
		if status == fiber.StatusInternalServerError {
			h.log.Error().Err(err).Msg("screen sign-up")
		}
		return fail(status)
	}
	out, err := h.auth.Login(c.UserContext(), dto.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		h.log.Error().Err(err).Msg("login after sign-up")
		return fail(fiber.StatusInternalServerError)
	}
	setSessionCookie(c, h.session, out.Token, out.ExpiresAt)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout POST /logout
func (h *ScreenHandler) Logout(c *fiber.Ctx) error {
	clearSessionCookie(c, h.session)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// ── Menu ─────────────────────────────────────────────────────────────────────

// Menu GET /
func (h *ScreenHandler) Menu(c *fiber.Ctx) error {
	role := GetRole(c)
	actions := []dto.NavAction{
		link("Add expense", "/add"),
		link("Upload receipt", "/upload"),
		link("Edit expenses", "/edit"),
		link("Expense summary", "/summary"),
	}
	if role == entity.RoleSupervisor {
		actions = append(actions, link("Export summary PDF", "/api/reports/summary.pdf"))
	}
	actions = append(actions, post("Log out", "/logout"))
	return c.JSON(dto.MenuView{Screen: "menu", Email: GetEmail(c), Role: string(role), Actions: actions})
}

// ── Add ──────────────────────────────────────────────────────────────────────

// AddView GET /add[?data=<prefill>|?scan=failed]. An unreadable prefill opens a blank form.
func (h *ScreenHandler) AddView(c *fiber.Ctx) error {
	view := dto.AddView{
		Screen:     "add",
		Categories: categoryOptions(),
		ScanFailed: c.Query("scan") == "failed",
		Actions:    []dto.NavAction{post("Add expense", "/add"), link("Back", "/")},
	}
	if raw := c.Query("data"); raw != "" {
		// fiber already unescaped the query value
		prefill, err := usecase.DecodePrefill(raw)
		if err != nil {
			view.Notice = "The scanned data could not be read. Please enter the expense manually."
		} else {
			view.Prefill = prefill
		}
	}
	if view.ScanFailed {
		view.Notice = "The receipt could not be scanned. Please enter the expense manually."
	}
	return c.JSON(view)
}

// Add POST /add
func (h *ScreenHandler) Add(c *fiber.Ctx) error {
	var in dto.CreateExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FormResult{Screen: "add", Message: "invalid form"})
	}
	_, err := h.expenses.Create(c.UserContext(), GetIdentity(c), in)
	metrics.CountMutation("created", err)
	if err != nil {
		return h.formFailure(c, "add", err, in)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FormResult{
		Screen: "add",
		OK:     true,
		Message: fmt.Sprintf("Expense added:\nDescription: %s\nAmount: $%.2f\nCategory: %s",
			in.Description, *in.Amount, in.Category),
	})
}

// ── Edit ─────────────────────────────────────────────────────────────────────

// EditView GET /edit. Every row carries its own draft; saving one never touches the others.
func (h *ScreenHandler) EditView(c *fiber.Ctx) error {
	records, err := h.expenses.List(c.UserContext(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	rows := make([]dto.EditRow, 0, len(records))
	for _, r := range records {
		d := expense.DraftOf(r)
		path := "/edit/" + url.PathEscape(r.ID)
		rows = append(rows, dto.EditRow{
			Record: dto.NewExpenseResponse(r),
			Draft:  dto.DraftResponse{Description: d.Description, Amount: d.Amount, Category: d.Category},
			Save:   post("Save", path),
			Delete: post("Delete", path+"/delete"),
		})
	}
	return c.JSON(dto.EditView{Screen: "edit", Role: string(GetRole(c)), Categories: categoryOptions(), Rows: rows})
}

// Save POST /edit/:id
func (h *ScreenHandler) Save(c *fiber.Ctx) error {
	var in dto.UpdateExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.FormResult{Screen: "edit", Message: "invalid form"})
	}
	err := h.expenses.Update(c.UserContext(), GetScope(c), c.Params("id"), in)
	metrics.CountMutation("updated", err)
	if err != nil {
		return h.formFailure(c, "edit", err, in)
	}
	return c.JSON(dto.FormResult{Screen: "edit", OK: true, Message: "Expense updated successfully."})
}

// Remove POST /edit/:id/delete
func (h *ScreenHandler) Remove(c *fiber.Ctx) error {
	err := h.expenses.Delete(c.UserContext(), GetScope(c), c.Params("id"))
	metrics.CountMutation("deleted", err)
	if err != nil {
		return h.formFailure(c, "edit", err, nil)
	}
	return c.JSON(dto.FormResult{Screen: "edit", OK: true, Message: "Expense deleted successfully."})
}

// ── Summary ──────────────────────────────────────────────────────────────────

// SummaryView GET /summary[?period=]
func (h *ScreenHandler) SummaryView(c *fiber.Ctx) error {
	period, err := expense.ParsePeriod(c.Query("period"))
	if err != nil {
		return writeError(c, err)
	}
	s, err := h.summary.Summary(c.UserContext(), GetScope(c), period)
	if err != nil {
		return writeError(c, err)
	}
	live := "/api/expenses/live"
	if period != expense.PeriodAll {
		live += "?period=" + string(period)
	}
	return c.JSON(dto.SummaryView{Screen: "summary", Role: string(GetRole(c)), Summary: s, Live: live})
}

// ── Receipt upload ───────────────────────────────────────────────────────────

// UploadView GET /upload
func (h *ScreenHandler) UploadView(c *fiber.Ctx) error {
	return c.JSON(dto.UploadView{
		Screen:   "upload",
		MaxBytes: usecase.MaxReceiptBytes,
		Actions: []dto.NavAction{
			post("Scan receipt", "/upload?action=scan"),
			post("Skip", "/upload?action=skip"),
			link("Back", "/"),
		},
	})
}

// Upload POST /upload. Both outcomes end on the creation form; a failed scan
// opens it blank with the failure flagged.
func (h *ScreenHandler) Upload(c *fiber.Ctx) error {
	action := c.Query("action", c.FormValue("action"))
	switch action {
	case "skip":
		metrics.CountScan(metrics.ScanSkipped)
		return c.Redirect(h.receipts.Skip(), fiber.StatusSeeOther)
	case "scan", "":
	default:
		return writeError(c, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action))
	}

	upload, err := captureUpload(c, h.receipts)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.receipts.Scan(c.UserContext(), upload)
	if err != nil {
		if out == nil {
			return writeError(c, err)
		}
		h.log.Warn().Err(err).Str("user_id", GetUserID(c)).Msg("receipt scan failed, falling back to manual entry")
		metrics.CountScan(metrics.ScanFailed)
		return c.Redirect(out.AddURL, fiber.StatusSeeOther)
	}
	metrics.CountScan(metrics.ScanScanned)
	return c.Redirect(out.AddURL, fiber.StatusSeeOther)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// formFailure store failures get the generic message and the form back for a retry.
func (h *ScreenHandler) formFailure(c *fiber.Ctx, screen string, err error, form interface{}) error {
	status, body := errorResponse(err)
	msg := body.Message
	if status == fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("screen", screen).Msg("store request failed")
		msg = msgStoreFailed
	}
	return c.Status(status).JSON(dto.FormResult{Screen: screen, Message: msg, Form: form})
}
