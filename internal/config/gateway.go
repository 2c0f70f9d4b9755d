package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

const (
	// EnvGatewayAPIKey supplies the default OCR provider API key when a
	// request omits one.
	EnvGatewayAPIKey = "GLM_OCR_API_KEY"

	// EnvGatewayBaseURL overrides the OCR provider endpoint.
	EnvGatewayBaseURL = "GLM_OCR_BASE_URL"

	// EnvGatewayTimeout overrides the OCR request timeout.
	EnvGatewayTimeout = "GLM_OCR_TIMEOUT"
)

// DefaultGatewayBaseURL is the documented GLM-OCR layout parsing endpoint.
const DefaultGatewayBaseURL = "https://open.bigmodel.cn/api/paas/v4/layout_parsing"

// GatewayConfig contains OCR provider configuration. APIKey is a fallback
// only; callers may supply a key per request.
type GatewayConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration parses and returns the request timeout as a time.Duration.
func (c *GatewayConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates
// the gateway configuration.
func (c *GatewayConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *GatewayConfig) Merge(overlay *GatewayConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *GatewayConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultGatewayBaseURL
	}
	if c.Model == "" {
		c.Model = "glm-ocr"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
}

func (c *GatewayConfig) loadEnv() {
	if v := os.Getenv(EnvGatewayAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvGatewayBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvGatewayTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *GatewayConfig) validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
