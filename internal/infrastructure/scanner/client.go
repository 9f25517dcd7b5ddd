// Package scanner is the HTTP adapter of the external receipt scanning service.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
)

var _ ports.ReceiptScanner = (*Client)(nil)

const (
	scanPath         = "/scan-receipt/"
	maxResponseBytes = 64 * 1024
)

// Client posts receipts to {baseURL}/scan-receipt/ as multipart field "file".
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds the adapter. The use case bounds each call with its own
// context deadline; timeout here is the transport-level ceiling.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// scanResponse body returned by the scanner. Older deployments return the
// raw OCR keys (Store, Total) instead of description/amount.
type scanResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

// Scan sends content in a single request; no retry.
func (c *Client) Scan(ctx context.Context, filename string, content []byte) (*dto.ReceiptFields, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("scanner: SCANNER_URL is not configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("scanner: build multipart: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("scanner: write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("scanner: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scanPath, &body)
	if err != nil {
		return nil, fmt.Errorf("scanner: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("scanner: timeout or cancellation: %w", ctx.Err())
		}
		return nil, fmt.Errorf("scanner: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("scanner: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scanner: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed scanResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("scanner: decode response: %w", err)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("scanner: response has no data")
	}
	return fieldsFrom(parsed.Data), nil
}

func fieldsFrom(data map[string]json.RawMessage) *dto.ReceiptFields {
	f := &dto.ReceiptFields{}
	f.Description = firstString(data, "description", "Store")
	if a, ok := firstNumber(data, "amount", "Total"); ok {
		f.Amount = &a
	}
	if c := strings.ToLower(firstString(data, "category")); entity.IsValidCategory(c) {
		f.Category = c
	}
	return f
}

// firstString value of the first key holding a usable string. The OCR service
// fills misses with "Unknown ...", which counts as absent.
func firstString(data map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := data[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" && !strings.HasPrefix(s, "Unknown") {
			return s
		}
	}
	return ""
}

// firstNumber accepts JSON numbers and numeric strings such as "12.50" or "$12.50".
func firstNumber(data map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, k := range keys {
		raw, ok := data[k]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		s = strings.TrimPrefix(strings.TrimSpace(s), "$")
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
