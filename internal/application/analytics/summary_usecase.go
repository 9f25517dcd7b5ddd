// Package analytics one-shot expense summaries and the exported report.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository"
)

// SummaryUseCase computes totals from a single read of the scope.
// The live feed produces the same figures continuously; this is the
// request/response variant and the source of the PDF report.
type SummaryUseCase struct {
	repo repository.ExpenseRepository
	pdf  ports.SummaryPDFGenerator
	now  func() time.Time
}

// NewSummaryUseCase builds the use case. pdf may be nil when exports are disabled.
func NewSummaryUseCase(repo repository.ExpenseRepository, pdf ports.SummaryPDFGenerator) *SummaryUseCase {
	return &SummaryUseCase{repo: repo, pdf: pdf, now: time.Now}
}

// Summary reads the scope once and totals the records inside period.
func (uc *SummaryUseCase) Summary(ctx context.Context, scope expense.QuerySpec, period expense.Period) (*dto.SummaryResponse, error) {
	if scope.Empty() {
		return nil, domain.ErrForbidden
	}
	records, err := uc.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	at := uc.now()
	visible := period.Filter(records, at)
	return dto.NewSummaryResponse(scope, period, visible, expense.Summarize(visible), 0, at), nil
}

// ExportPDF renders the summary of scope as a PDF.
func (uc *SummaryUseCase) ExportPDF(ctx context.Context, scope expense.QuerySpec, period expense.Period, requestedBy entity.Identity) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("summary: pdf export is not configured")
	}
	s, err := uc.Summary(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	out, err := uc.pdf.GenerateSummaryPDF(ctx, s, requestedBy.Email)
	if err != nil {
		return nil, fmt.Errorf("summary: render pdf: %w", err)
	}
	return out, nil
}
