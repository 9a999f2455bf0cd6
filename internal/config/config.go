// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"BYCEPS_DB_PATH" envDefault:"./data/byceps.db"`
	ServerHost string `env:"BYCEPS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BYCEPS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BYCEPS_ENV" envDefault:"development"`
	LogLevel   string `env:"BYCEPS_LOG_LEVEL" envDefault:"info"`

	// Localization
	DefaultLanguage    string   `env:"BYCEPS_DEFAULT_LANGUAGE" envDefault:"en"`
	SupportedLanguages []string `env:"BYCEPS_SUPPORTED_LANGUAGES" envSeparator:"," envDefault:"en,de"`

	// Webhook configuration
	WebhookURLs   []string `env:"BYCEPS_WEBHOOK_URLS" envSeparator:","` // Optional announcement endpoints
	WebhookSecret string   `env:"BYCEPS_WEBHOOK_SECRET"`                // Shared secret for request signing

	// Event log retention, in days. Entries older than this are pruned nightly.
	EventRetentionDays int `env:"BYCEPS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// API rate limiting
	APIRateLimit float64 `env:"BYCEPS_API_RATE_LIMIT" envDefault:"10"` // Requests per second per client
	APIRateBurst int     `env:"BYCEPS_API_RATE_BURST" envDefault:"20"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// WebhooksEnabled returns true if at least one webhook endpoint is configured.
func (c Config) WebhooksEnabled() bool {
	return len(c.WebhookURLs) > 0
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DefaultLanguage == "" {
		return nil, fmt.Errorf("BYCEPS_DEFAULT_LANGUAGE must not be empty")
	}
	if len(cfg.SupportedLanguages) == 0 {
		return nil, fmt.Errorf("BYCEPS_SUPPORTED_LANGUAGES must name at least one language")
	}
	if !slices.Contains(cfg.SupportedLanguages, cfg.DefaultLanguage) {
		return nil, fmt.Errorf("BYCEPS_DEFAULT_LANGUAGE %q is not among the supported languages %v",
			cfg.DefaultLanguage, cfg.SupportedLanguages)
	}
	if cfg.EventRetentionDays < 1 {
		return nil, fmt.Errorf("BYCEPS_EVENT_RETENTION_DAYS must be at least 1, got %d",
			cfg.EventRetentionDays)
	}
	if cfg.APIRateLimit <= 0 {
		return nil, fmt.Errorf("BYCEPS_API_RATE_LIMIT must be positive, got %v", cfg.APIRateLimit)
	}

	return cfg, nil
}
