package scanner

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
)

var _ ports.ReceiptScanner = (*AnthropicScanner)(nil)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// AnthropicScanner extracts receipt fields with the Anthropic Messages API.
// Images go as an image block, PDFs as a document block.
type AnthropicScanner struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicScanner builds the adapter. model is usually "claude-3-5-haiku-20241022".
// With an empty apiKey every scan fails with a descriptive error.
func NewAnthropicScanner(apiKey, model string, timeout time.Duration) *AnthropicScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnthropicScanner{
		apiKey:     apiKey,
		model:      model,
		baseURL:    anthropicBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Messages API wire types ───────────────────────────────────────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ── Scan ──────────────────────────────────────────────────────────────────────

// Scan sends one Messages request with the receipt attached; no retry.
func (s *AnthropicScanner) Scan(ctx context.Context, _ string, content []byte) (*dto.ReceiptFields, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("scanner: ANTHROPIC_API_KEY is not configured")
	}

	media := mimetype.Detect(content).String()
	attachment := anthropicBlock{
		Type:   "image",
		Source: &anthropicSource{Type: "base64", MediaType: media, Data: base64.StdEncoding.EncodeToString(content)},
	}
	if media == "application/pdf" {
		attachment.Type = "document"
	}

	payload := anthropicRequest{
		Model:     s.model,
		MaxTokens: 256,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: []anthropicBlock{attachment, {Type: "text", Text: receiptPrompt}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("scanner: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scanner: create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("scanner: timeout or cancellation: %w", ctx.Err())
		}
		return nil, fmt.Errorf("scanner: anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("scanner: read response: %w", err)
	}

	var parsed anthropicResponse
	if resp.StatusCode != http.StatusOK {
		if jsonErr := json.Unmarshal(raw, &parsed); jsonErr == nil && parsed.Error != nil {
			return nil, fmt.Errorf("scanner: anthropic error (%s): %s", parsed.Error.Type, parsed.Error.Message)
		}
		return nil, fmt.Errorf("scanner: anthropic HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("scanner: decode anthropic response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("scanner: anthropic returned an empty message")
	}

	clean := extractJSON(parsed.Content[0].Text)
	if clean == "" {
		return nil, fmt.Errorf("scanner: model output is not JSON")
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &data); err != nil {
		return nil, fmt.Errorf("scanner: model output is not JSON: %w", err)
	}
	return fieldsFrom(data), nil
}

// extractJSON strips a markdown fence if present, then takes the outermost {...}.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
