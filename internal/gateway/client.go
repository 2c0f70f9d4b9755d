// Package gateway provides the HTTP client for the GLM-OCR layout-parsing
// endpoint. Files are transmitted inline as base64 data URIs; the
// heterogeneous response shapes are resolved by an ordered list of
// extraction strategies.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ocrdesk/ocrdesk/internal/config"
)

// Request describes one recognition call. Endpoint and APIKey override the
// client's configured defaults when set; all settings travel explicitly
// with the request rather than through ambient state.
type Request struct {
	Data     []byte
	MimeType string
	APIKey   string
	Endpoint string
}

// Client calls the OCR provider. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	model   string
	apiKey  string
	logger  *slog.Logger
}

// New creates a gateway client from configuration.
func New(cfg *config.GatewayConfig, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		logger:  logger.With("system", "gateway"),
	}
}

type recognizeBody struct {
	Model string `json:"model"`
	File  string `json:"file"`
}

// errorEnvelope is the provider's error response shape.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Recognize submits the file for layout parsing and returns the extracted
// Markdown with line endings normalized. Non-2xx responses surface as
// *StatusError; a 2xx response with no recognizable content and no success
// indicator fails with ErrUnexpectedFormat.
func (c *Client) Recognize(ctx context.Context, req Request) (string, error) {
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = c.baseURL
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = c.apiKey
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", req.MimeType, base64.StdEncoding.EncodeToString(req.Data))

	payload, err := json.Marshal(recognizeBody{Model: c.model, File: dataURI})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	c.logger.Info("recognition request", "endpoint", endpoint, "mime_type", req.MimeType, "size", len(req.Data))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		// Best effort; an unparseable error body falls back to the
		// generic status message.
		json.Unmarshal(body, &envelope)

		c.logger.Error("provider error", "status", resp.StatusCode, "message", envelope.Error.Message)
		return "", &StatusError{Status: resp.StatusCode, Message: envelope.Error.Message}
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedFormat, truncate(body, 500))
	}

	text, ok := extract(&parsed)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedFormat, truncate(body, 500))
	}

	return normalizeNewlines(text), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
