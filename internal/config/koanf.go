// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vidsift/config.yaml",
	"/etc/vidsift/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second, // transcript-mode analyses can hold a request past a minute
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:        "/data/vidsift.duckdb",
			MemoryLimit: "1GB",
			Threads:     0, // 0 = use runtime.NumCPU()
		},
		Auth: AuthConfig{
			Mode:              AuthModeSession,
			AdminUsername:     "",
			AdminPassword:     "",
			JWTSecret:         "",
			SessionTTL:        24 * time.Hour,
			SessionStorePath:  "/data/sessions",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Model: ModelConfig{
			BaseURL:           "https://api.mistral.ai/v1",
			APIKey:            "", // heuristic-only until a real key is supplied
			Name:              "mistral-medium",
			Temperature:       0.7,
			MaxTokens:         1000,
			Timeout:           30 * time.Second,
			TranscriptTimeout: 60 * time.Second,
			RateLimitRPS:      1,
		},
		Provider: ProviderConfig{
			Kind:    "ytdlp",
			BaseURL: "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Analyzer: AnalyzerConfig{
			Mode:     "metadata",
			CacheTTL: 15 * time.Minute,
		},
		Taxonomy: TaxonomyConfig{
			Path: "",
		},
		History: HistoryConfig{
			RetentionDays: 90,
		},
		Events: EventsConfig{
			Buffer: 256,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// A .env file in the working directory is read into the process environment
// first, so env-style deployments and local development share one mechanism.
//
// This provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func Load() (*Config, error) {
	// Optional .env; a missing file is the normal case.
	_ = godotenv.Load()

	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// HTTP_PORT -> server.port
	// MISTRAL_API_KEY -> model.api_key
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"cors.allowed_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - MISTRAL_API_KEY -> model.api_key
//   - ANALYZER_MODE -> analyzer.mode
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_read_timeout":     "server.read_timeout",
		"http_write_timeout":    "server.write_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"environment":           "server.environment",

		// Database mappings
		"duckdb_path":         "database.path",
		"duckdb_memory_limit": "database.memory_limit",
		"duckdb_threads":      "database.threads",

		// Auth mappings
		"auth_mode":           "auth.mode",
		"admin_username":      "auth.admin_username",
		"admin_password":      "auth.admin_password",
		"jwt_secret":          "auth.jwt_secret",
		"session_ttl":         "auth.session_ttl",
		"session_store_path":  "auth.session_store_path",
		"rate_limit_requests": "auth.rate_limit_reqs",
		"rate_limit_window":   "auth.rate_limit_window",
		"disable_rate_limit":  "auth.rate_limit_disabled",

		// Model mappings (MISTRAL_API_KEY kept for deployments that predate
		// the generic names)
		"model_base_url":           "model.base_url",
		"model_api_key":            "model.api_key",
		"mistral_api_key":          "model.api_key",
		"model_name":               "model.name",
		"model_temperature":        "model.temperature",
		"model_max_tokens":         "model.max_tokens",
		"model_timeout":            "model.timeout",
		"model_transcript_timeout": "model.transcript_timeout",
		"model_rate_limit_rps":     "model.rate_limit_rps",

		// Provider mappings
		"provider_kind":     "provider.kind",
		"provider_base_url": "provider.base_url",
		"ytdlp_base_url":    "provider.base_url",
		"provider_timeout":  "provider.timeout",

		// Analyzer mappings
		"analyzer_mode":      "analyzer.mode",
		"analysis_cache_ttl": "analyzer.cache_ttl",

		// Taxonomy mappings
		"taxonomy_path": "taxonomy.path",

		// History mappings
		"history_retention_days": "history.retention_days",

		// Events mappings
		"events_buffer": "events.buffer",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// CORS mappings
		"cors_origins": "cors.allowed_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
