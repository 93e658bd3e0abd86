// Package llm provides the text-generation collaborator used for summaries,
// mood analyses and motivational messages.
package llm

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned when OPENAI_API_KEY is not set.
var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY environment variable")

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Config holds API configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LoadConfig reads configuration from environment variables.
// Returns ErrMissingAPIKey if OPENAI_API_KEY is not set.
func LoadConfig() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &Config{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Model:   defaultModel,
		Timeout: defaultTimeout,
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}
	return cfg, nil
}
