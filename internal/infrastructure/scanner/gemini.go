package scanner

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
)

var _ ports.ReceiptScanner = (*GeminiScanner)(nil)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// receiptPrompt asks the LLM scanners for the data object the scanning service returns.
var receiptPrompt = `You read expense receipts. Return ONLY a JSON object, no other text:
{"description": "<store or merchant name>", "amount": <total paid as a number>, "category": "<one of: ` +
	strings.Join(entity.Categories, ", ") + `>"}
Omit a field you cannot read. Never guess the amount.`

// GeminiScanner extracts receipt fields with the Gemini generateContent API,
// sending the image inline. Used when no scanning service is deployed.
type GeminiScanner struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiScanner builds the adapter. model is usually "gemini-1.5-flash".
func NewGeminiScanner(apiKey, model string, timeout time.Duration) *GeminiScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiScanner{
		apiKey:     apiKey,
		model:      model,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── generateContent wire types ───────────────────────────────────────────────

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Scan ─────────────────────────────────────────────────────────────────────

// Scan sends one generateContent request; no retry.
func (s *GeminiScanner) Scan(ctx context.Context, _ string, content []byte) (*dto.ReceiptFields, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("scanner: GEMINI_API_KEY is not configured")
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: receiptPrompt},
				{InlineData: &inlineData{
					MIMEType: mimetype.Detect(content).String(),
					Data:     base64.StdEncoding.EncodeToString(content),
				}},
			},
		}},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0,
			MaxOutputTokens:  256,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("scanner: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scanner: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("scanner: timeout or cancellation: %w", ctx.Err())
		}
		// the URL carries the key; keep it out of the error
		return nil, fmt.Errorf("scanner: gemini request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("scanner: read response: %w", err)
	}

	var parsed geminiResponse
	if resp.StatusCode != http.StatusOK {
		if jsonErr := json.Unmarshal(raw, &parsed); jsonErr == nil && parsed.Error != nil {
			return nil, fmt.Errorf("scanner: gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
		}
		return nil, fmt.Errorf("scanner: gemini HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("scanner: decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("scanner: gemini returned no candidates")
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("scanner: model output is not JSON: %w", err)
	}
	return fieldsFrom(data), nil
}
