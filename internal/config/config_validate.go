// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if err := c.validateModel(); err != nil {
		return err
	}

	if err := c.validateProvider(); err != nil {
		return err
	}

	if err := c.validateAnalyzer(); err != nil {
		return err
	}

	if err := c.validateLimits(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
}

// validateDatabase validates DuckDB settings
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

// minJWTSecretLen is the minimum accepted HMAC secret length. Shorter secrets
// make offline brute force practical.
const minJWTSecretLen = 32

// validateAuth validates the authentication mode and its mode-specific
// requirements
func (c *Config) validateAuth() error {
	switch c.Auth.Mode {
	case AuthModeNone, AuthModeSession, AuthModeJWT:
	default:
		return fmt.Errorf("AUTH_MODE must be none, session, or jwt, got %q", c.Auth.Mode)
	}

	if c.Auth.Mode == AuthModeJWT {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
		if len(c.Auth.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLen)
		}
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	// Bootstrap credentials come as a pair: one without the other is a
	// deployment mistake, not a partial feature.
	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if c.Auth.AdminPassword != "" && len(c.Auth.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	if c.Server.IsProduction() && c.Auth.AdminPassword != "" && strings.EqualFold(c.Auth.AdminPassword, PlaceholderAPIKey) {
		return fmt.Errorf("ADMIN_PASSWORD must not be the placeholder value in production")
	}

	if !c.Auth.RateLimitDisabled {
		if c.Auth.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive (or set DISABLE_RATE_LIMIT=true)")
		}
		if c.Auth.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}

	return nil
}

// validateModel validates external-model settings (only when a usable key is
// configured; without one the engine runs heuristic-only and the remaining
// fields are never used)
func (c *Config) validateModel() error {
	if !c.Model.Configured() {
		return nil
	}

	if err := validateHTTPURL(c.Model.BaseURL, "MODEL_BASE_URL"); err != nil {
		return fmt.Errorf("MODEL_BASE_URL is invalid: %w", err)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("MODEL_NAME is required when an API key is configured")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("MODEL_TEMPERATURE must be between 0 and 2, got %v", c.Model.Temperature)
	}
	if c.Model.MaxTokens < 1 || c.Model.MaxTokens > 32768 {
		return fmt.Errorf("MODEL_MAX_TOKENS must be between 1 and 32768, got %d", c.Model.MaxTokens)
	}
	if c.Model.Timeout <= 0 || c.Model.TranscriptTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT and MODEL_TRANSCRIPT_TIMEOUT must be positive")
	}
	if c.Model.RateLimitRPS < 0 {
		return fmt.Errorf("MODEL_RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// validateProvider validates the extraction sidecar settings
func (c *Config) validateProvider() error {
	if c.Provider.Kind != "ytdlp" {
		return fmt.Errorf("PROVIDER_KIND must be ytdlp, got %q", c.Provider.Kind)
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("PROVIDER_BASE_URL is required")
	}
	if err := validateHTTPURL(c.Provider.BaseURL, "PROVIDER_BASE_URL"); err != nil {
		return fmt.Errorf("PROVIDER_BASE_URL is invalid: %w", err)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

// validateAnalyzer validates the analysis-variant selection
func (c *Config) validateAnalyzer() error {
	switch strings.ToLower(strings.TrimSpace(c.Analyzer.Mode)) {
	case "metadata", "transcript":
	default:
		return fmt.Errorf("ANALYZER_MODE must be metadata or transcript, got %q", c.Analyzer.Mode)
	}
	if c.Analyzer.CacheTTL < 0 {
		return fmt.Errorf("ANALYSIS_CACHE_TTL must not be negative (0 disables caching)")
	}
	return nil
}

// validateLimits validates history, events, and pagination bounds
func (c *Config) validateLimits() error {
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative (0 keeps records forever)")
	}
	if c.Events.Buffer < 1 {
		return fmt.Errorf("EVENTS_BUFFER must be at least 1")
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

// validateLogging validates the logging settings
func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
