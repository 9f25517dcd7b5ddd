package ports

import (
	"context"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
)

// SummaryPDFGenerator renders a summary report.
type SummaryPDFGenerator interface {
	GenerateSummaryPDF(ctx context.Context, report *dto.SummaryResponse, requestedBy string) ([]byte, error)
}
