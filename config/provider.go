package config

import (
	"strings"
	"time"
)

// DefaultProviderBaseURL is the BrightLocal citation-builder endpoint.
const DefaultProviderBaseURL = "https://api.brightlocal.com/manage/v1/citation-builder"

// ProviderConfig configures the citation lookup status provider.
type ProviderConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://api.brightlocal.com/manage/v1/citation-builder"`
	APIKey  string `env:"API_KEY"`

	// Timeout bounds a single status request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// RateLimit is requests per second; Burst defaults to RateLimit.
	RateLimit int `env:"RATE_LIMIT" envDefault:"5"`
	Burst     int `env:"BURST"      envDefault:"0"`
}

// Sanitize trims the base URL and clamps throttling values.
func (c *ProviderConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultProviderBaseURL
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit < 1 {
		c.RateLimit = 1
	}
	if c.Burst < 1 {
		c.Burst = c.RateLimit
	}
}
