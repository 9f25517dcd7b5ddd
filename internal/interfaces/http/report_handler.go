package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/analytics"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
)

// ReportHandler exported expense reports.
type ReportHandler struct {
	uc *analytics.SummaryUseCase
}

// NewReportHandler builds the handler.
func NewReportHandler(uc *analytics.SummaryUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// SummaryPDF godoc
// @Summary      Summary report as PDF
// @Description  Supervisors only. Totals by category and the records they were computed from.
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        period  query  string  false  "all, week, month or year"
// @Success      200
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/summary.pdf [get]
func (h *ReportHandler) SummaryPDF(c *fiber.Ctx) error {
	period, err := expense.ParsePeriod(c.Query("period"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ExportPDF(c.UserContext(), GetScope(c), period, GetIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	name := "expense-summary"
	if period != "" {
		name += "-" + string(period)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
	return c.Send(out)
}
