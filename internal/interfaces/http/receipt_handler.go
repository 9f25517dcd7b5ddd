package http

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/metrics"
)

// ReceiptHandler receipt upload and scan.
type ReceiptHandler struct {
	uc *usecase.ReceiptUseCase
}

// NewReceiptHandler builds the handler.
func NewReceiptHandler(uc *usecase.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Scan godoc
// @Summary      Scan a receipt
// @Description  Sends the uploaded file to the scanning service once. On failure the add_url points at the blank form.
// @Tags         receipts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "receipt image or PDF"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/receipts/scan [post]
func (h *ReceiptHandler) Scan(c *fiber.Ctx) error {
	upload, err := captureUpload(c, h.uc)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Scan(c.UserContext(), upload)
	if err != nil {
		if errors.Is(err, domain.ErrScanFailed) && out != nil {
			metrics.CountScan(metrics.ScanFailed)
			status, body := errorResponse(err)
			body.Details = out
			return c.Status(status).JSON(body)
		}
		return writeError(c, err)
	}
	metrics.CountScan(metrics.ScanScanned)
	return c.JSON(out)
}

// Skip godoc
// @Summary      Skip scanning
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /api/receipts/skip [post]
func (h *ReceiptHandler) Skip(c *fiber.Ctx) error {
	metrics.CountScan(metrics.ScanSkipped)
	return c.JSON(fiber.Map{"add_url": h.uc.Skip()})
}

// captureUpload reads the multipart "file" field.
func captureUpload(c *fiber.Ctx, uc *usecase.ReceiptUseCase) (*usecase.Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
	}
	if fh.Size > usecase.MaxReceiptBytes {
		return nil, fmt.Errorf("%w: receipt file exceeds %d bytes", domain.ErrInvalidInput, usecase.MaxReceiptBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, usecase.MaxReceiptBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return uc.Capture(fh.Filename, content)
}
