// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/byceps.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/byceps.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want %q", cfg.DefaultLanguage, "en")
	}
	if len(cfg.SupportedLanguages) != 2 {
		t.Errorf("SupportedLanguages = %v, want [en de]", cfg.SupportedLanguages)
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d, want 90", cfg.EventRetentionDays)
	}
	if cfg.WebhooksEnabled() {
		t.Error("WebhooksEnabled() = true, want false")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BYCEPS_DB_PATH", "/var/lib/byceps/byceps.db")
	setEnv(t, "BYCEPS_SERVER_HOST", "0.0.0.0")
	setEnv(t, "BYCEPS_SERVER_PORT", "3000")
	setEnv(t, "BYCEPS_ENV", "production")
	setEnv(t, "BYCEPS_DEFAULT_LANGUAGE", "de")
	setEnv(t, "BYCEPS_SUPPORTED_LANGUAGES", "de,en,fr")
	setEnv(t, "BYCEPS_WEBHOOK_URLS", "https://chat.example/hooks/a,https://chat.example/hooks/b")
	setEnv(t, "BYCEPS_WEBHOOK_SECRET", "s3cr3t")
	setEnv(t, "BYCEPS_EVENT_RETENTION_DAYS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/var/lib/byceps/byceps.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/var/lib/byceps/byceps.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.DefaultLanguage != "de" {
		t.Errorf("DefaultLanguage = %q, want %q", cfg.DefaultLanguage, "de")
	}
	if len(cfg.SupportedLanguages) != 3 {
		t.Errorf("SupportedLanguages = %v, want 3 entries", cfg.SupportedLanguages)
	}
	if len(cfg.WebhookURLs) != 2 {
		t.Errorf("WebhookURLs = %v, want 2 entries", cfg.WebhookURLs)
	}
	if !cfg.WebhooksEnabled() {
		t.Error("WebhooksEnabled() = false, want true")
	}
	if cfg.EventRetentionDays != 30 {
		t.Errorf("EventRetentionDays = %d, want 30", cfg.EventRetentionDays)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"default language not supported", "BYCEPS_DEFAULT_LANGUAGE", "fr"},
		{"zero retention", "BYCEPS_EVENT_RETENTION_DAYS", "0"},
		{"negative rate limit", "BYCEPS_API_RATE_LIMIT", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
