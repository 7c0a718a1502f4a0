package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DEEPL_API_KEY may be left empty at load time; the adapter reports
	// the missing key on the first translation attempt instead.
	DeepLAPIKey         string `envconfig:"DEEPL_API_KEY" default:""`
	DeepLEndpoint       string `envconfig:"DEEPL_ENDPOINT" default:""`
	TranslateTimeoutSec int    `envconfig:"TRANSLATE_TIMEOUT_SECONDS" default:"30"`

	RateLimitEnabled   bool    `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitRefillTPS float64 `envconfig:"RATE_LIMIT_REFILL_TPS" default:"5"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"5"`

	HTTPHost           string `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort           int    `envconfig:"HTTP_PORT" default:"8090"`
	APITokenHash       string `envconfig:"API_TOKEN_HASH" default:""`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	// Optional translation history/cache store. Empty disables it.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.TranslateTimeoutSec < 1 {
		return fmt.Errorf("TRANSLATE_TIMEOUT_SECONDS must be >= 1")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.RateLimitEnabled {
		if c.RateLimitRefillTPS <= 0 {
			return fmt.Errorf("RATE_LIMIT_REFILL_TPS must be positive")
		}
		if c.RateLimitBurst < 1 {
			return fmt.Errorf("RATE_LIMIT_BURST must be >= 1")
		}
	}
	return nil
}

// TranslateTimeout returns the provider call deadline.
func (c *Config) TranslateTimeout() time.Duration {
	return time.Duration(c.TranslateTimeoutSec) * time.Second
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
