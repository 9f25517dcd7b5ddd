package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/analytics"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/live"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/metrics"
)

// ExpenseHandler expense records, summaries and the live stream.
type ExpenseHandler struct {
	base      context.Context
	uc        *usecase.ExpenseUseCase
	summary   *analytics.SummaryUseCase
	feed      *live.Feed
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewExpenseHandler builds the handler. Live streams end when base is done.
func NewExpenseHandler(base context.Context, uc *usecase.ExpenseUseCase, summary *analytics.SummaryUseCase, feed *live.Feed, heartbeat time.Duration, log zerolog.Logger) *ExpenseHandler {
	if base == nil {
		base = context.Background()
	}
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &ExpenseHandler{base: base, uc: uc, summary: summary, feed: feed, heartbeat: heartbeat, log: log}
}

// ── Records ──────────────────────────────────────────────────────────────────

// List godoc
// @Summary      Expenses in scope
// @Description  Supervisors get every record, employees their own.
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ExpenseListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	records, err := h.uc.List(c.UserContext(), GetScope(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewExpenseList(records))
}

// Create godoc
// @Summary      Add an expense
// @Description  The caller becomes the owner. Invalid input never reaches the store.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateExpenseRequest  true  "description, amount, category"
// @Success      201   {object}  dto.CreateExpenseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/expenses [post]
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.Create(c.UserContext(), GetIdentity(c), in)
	metrics.CountMutation("created", err)
	if err != nil {
		return writeMutationError(c, err, in)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      One expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "expense id"
// @Success      200  {object}  dto.ExpenseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetScope(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Save an edit draft
// @Description  Overwrites description, amount and category. Last writer wins.
// @Tags         expenses
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                    true  "expense id"
// @Param        body  body  dto.UpdateExpenseRequest  true  "draft"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	err := h.uc.Update(c.UserContext(), GetScope(c), c.Params("id"), in)
	metrics.CountMutation("updated", err)
	if err != nil {
		return writeMutationError(c, err, in)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete godoc
// @Summary      Delete an expense
// @Description  Unconditional; unknown ids are not reported.
// @Tags         expenses
// @Security     BearerAuth
// @Param        id   path  string  true  "expense id"
// @Success      204
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	err := h.uc.Delete(c.UserContext(), GetScope(c), c.Params("id"))
	metrics.CountMutation("deleted", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Summaries ────────────────────────────────────────────────────────────────

// Summary godoc
// @Summary      Totals by category
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        period  query  string  false  "all, week, month or year"
// @Success      200     {object}  dto.SummaryResponse
// @Router       /api/expenses/summary [get]
func (h *ExpenseHandler) Summary(c *fiber.Ctx) error {
	period, err := expense.ParsePeriod(c.Query("period"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.summary.Summary(c.UserContext(), GetScope(c), period)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Live godoc
// @Summary      Live summary stream
// @Description  Server-Sent Events. One "snapshot" event with the full summary on connect and after every change.
// @Tags         expenses
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        period  query  string  false  "all, week, month or year"
// @Success      200
// @Router       /api/expenses/live [get]
func (h *ExpenseHandler) Live(c *fiber.Ctx) error {
	period, err := expense.ParsePeriod(c.Query("period"))
	if err != nil {
		return writeError(c, err)
	}

	// the stream outlives the handler, so it cannot use the request context
	ctx, stop := context.WithCancel(h.base)
	snaps, cancel, err := h.feed.Subscribe(ctx, GetScope(c), period)
	if err != nil {
		stop()
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	userID := GetUserID(c)
	metrics.LiveOpened()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer metrics.LiveClosed()
		defer stop()
		defer cancel()

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		if err := streamSnapshots(w, snaps, ticker.C); err != nil {
			h.log.Debug().Err(err).Str("user_id", userID).Msg("live stream closed")
		}
	}))
	return nil
}

// streamSnapshots writes SSE frames until snaps closes or the client goes away.
func streamSnapshots(w *bufio.Writer, snaps <-chan live.Snapshot, heartbeat <-chan time.Time) error {
	for {
		select {
		case s, ok := <-snaps:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(dto.NewSummaryResponse(s.Scope, s.Period, s.Records, s.Summary, s.Seq, s.At))
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", s.Seq, payload); err != nil {
				return err
			}
		case <-heartbeat:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
}

// writeMutationError like writeError, but a store failure echoes the form back so it can be resubmitted.
// ── helpers ──────────────────────────────────────────────────────────────────

func writeMutationError(c *fiber.Ctx, err error, form interface{}) error {
	status, body := errorResponse(err)
	if status == fiber.StatusInternalServerError {
		body.Details = fiber.Map{"form": form}
	}
	return c.Status(status).JSON(body)
}
