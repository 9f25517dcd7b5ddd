package ports

import (
	"context"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
)

// ReceiptScanner external service that extracts expense fields from a receipt image.
// Implementations perform exactly one outbound request and never retry.
type ReceiptScanner interface {
	Scan(ctx context.Context, filename string, content []byte) (*dto.ReceiptFields, error)
}
