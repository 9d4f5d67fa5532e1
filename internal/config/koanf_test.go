// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Auth.Mode != AuthModeSession {
		t.Errorf("Auth.Mode = %q, want session", cfg.Auth.Mode)
	}
	if cfg.Analyzer.Mode != "metadata" {
		t.Errorf("Analyzer.Mode = %q, want metadata", cfg.Analyzer.Mode)
	}
	if cfg.Analyzer.CacheTTL != 15*time.Minute {
		t.Errorf("Analyzer.CacheTTL = %v, want 15m", cfg.Analyzer.CacheTTL)
	}
	if cfg.Model.Configured() {
		t.Error("Model.Configured() = true with no API key")
	}
	if cfg.Model.Name != "mistral-medium" {
		t.Errorf("Model.Name = %q", cfg.Model.Name)
	}
	if cfg.Provider.Kind != "ytdlp" {
		t.Errorf("Provider.Kind = %q", cfg.Provider.Kind)
	}
	if cfg.History.RetentionDays != 90 {
		t.Errorf("History.RetentionDays = %d, want 90", cfg.History.RetentionDays)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"*"}) {
		t.Errorf("CORS.AllowedOrigins = %v, want [*]", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("ANALYZER_MODE", "transcript")
	t.Setenv("MODEL_API_KEY", "sk-test-abc123")
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("HISTORY_RETENTION_DAYS", "7")
	t.Setenv("DISABLE_RATE_LIMIT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Analyzer.Mode != "transcript" {
		t.Errorf("Analyzer.Mode = %q, want transcript", cfg.Analyzer.Mode)
	}
	if !cfg.Model.Configured() {
		t.Error("Model.Configured() = false with a real key")
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("History.RetentionDays = %d, want 7", cfg.History.RetentionDays)
	}
	if !cfg.Auth.RateLimitDisabled {
		t.Error("Auth.RateLimitDisabled = false, want true")
	}
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "sk-legacy-key-123")
	t.Setenv("YTDLP_BASE_URL", "http://sidecar:5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model.APIKey != "sk-legacy-key-123" {
		t.Errorf("Model.APIKey = %q", cfg.Model.APIKey)
	}
	if cfg.Provider.BaseURL != "http://sidecar:5000" {
		t.Errorf("Provider.BaseURL = %q", cfg.Provider.BaseURL)
	}
}

func TestLoadPlaceholderKeyTreatedAsAbsent(t *testing.T) {
	t.Setenv("MODEL_API_KEY", PlaceholderAPIKey)
	// With the placeholder the model section is skipped by validation even
	// when the rest of it is nonsense.
	t.Setenv("MODEL_BASE_URL", "not-a-url")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model.Configured() {
		t.Error("placeholder API key must count as absent")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 7777
analyzer:
  mode: transcript
  cache_ttl: 5m
cors:
  allowed_origins:
    - https://app.example.com
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 from file", cfg.Server.Port)
	}
	if cfg.Analyzer.CacheTTL != 5*time.Minute {
		t.Errorf("Analyzer.CacheTTL = %v, want 5m from file", cfg.Analyzer.CacheTTL)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://app.example.com"}) {
		t.Errorf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.Path != "/data/vidsift.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7777\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want env override 9999", cfg.Server.Port)
	}
}

func TestLoadCORSOriginsFromEnvSplits(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Errorf("CORS.AllowedOrigins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
}

func TestLoadUnmappedEnvIgnored(t *testing.T) {
	t.Setenv("RANDOM_UNRELATED_VAR", "whatever")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestLoadInvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad analyzer mode", "ANALYZER_MODE", "psychic"},
		{"bad auth mode", "AUTH_MODE", "oauth"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad provider url", "PROVIDER_BASE_URL", "ftp://example.com"},
		{"bad environment", "ENVIRONMENT", "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() succeeded with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestJWTModeRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_MODE", "jwt")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without JWT_SECRET in jwt mode")
	}

	t.Setenv("JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a too-short JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Auth.Mode != AuthModeJWT {
		t.Errorf("Auth.Mode = %q, want jwt", cfg.Auth.Mode)
	}
}
