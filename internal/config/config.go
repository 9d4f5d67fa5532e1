// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Analysis Pipeline:
//     - Analyzer: variant selection (metadata/transcript) and verdict caching
//     - Model: external chat-completion model (optional; heuristic-only without it)
//     - Provider: video info/transcript extraction sidecar
//     - Taxonomy: keyword-table overrides
//
//  2. Infrastructure:
//     - Database: DuckDB configuration (path, memory, threads)
//     - Server: HTTP server configuration (host, port, timeouts)
//     - Events: in-process event bus sizing
//
//  3. API & Security:
//     - API: pagination limits
//     - Auth: authentication mode, sessions, JWT, rate limiting
//     - CORS: allowed origins
//
//  4. Observability:
//     - Logging: log levels and output formats
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Model    ModelConfig    `koanf:"model"`
	Provider ProviderConfig `koanf:"provider"`
	Analyzer AnalyzerConfig `koanf:"analyzer"`
	Taxonomy TaxonomyConfig `koanf:"taxonomy"`
	History  HistoryConfig  `koanf:"history"`
	Events   EventsConfig   `koanf:"events"`
	API      APIConfig      `koanf:"api"`
	CORS     CORSConfig     `koanf:"cors"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_READ_TIMEOUT: Request read timeout (default: 30s)
//   - HTTP_WRITE_TIMEOUT: Response write timeout (default: 90s)
//   - HTTP_SHUTDOWN_TIMEOUT: Graceful shutdown grace period (default: 10s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode. Production
// mode tightens validation (e.g. rejects default secrets).
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/vidsift.duckdb)
//   - DUCKDB_MEMORY_LIMIT: Memory limit passed to DuckDB (default: 1GB)
//   - DUCKDB_THREADS: Worker threads, 0 = NumCPU (default: 0)
type DatabaseConfig struct {
	Path        string `koanf:"path"`
	MemoryLimit string `koanf:"memory_limit"`
	Threads     int    `koanf:"threads"`
}

// AuthConfig holds authentication and API protection settings.
//
// Modes:
//   - none: every request is anonymous; preference and history endpoints
//     operate on a shared anonymous account. Suitable for single-user or
//     trusted-network deployments only.
//   - session: cookie sessions backed by the session store. Sessions persist
//     across restarts when SessionStorePath is set (BadgerDB), otherwise they
//     are held in memory.
//   - jwt: stateless bearer tokens signed with JWTSecret.
//
// Environment Variables:
//   - AUTH_MODE: none, session, or jwt (default: session)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: bootstrap account created at startup
//     when it does not exist yet (optional; both must be set together)
//   - JWT_SECRET: HMAC signing secret, required in jwt mode (32+ chars)
//   - SESSION_TTL: Session/token lifetime (default: 24h)
//   - SESSION_STORE_PATH: BadgerDB directory for persistent sessions
//     (default: /data/sessions; empty = in-memory)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: API rate limit (default: 100/1m)
//   - DISABLE_RATE_LIMIT: Turn off rate limiting (default: false)
type AuthConfig struct {
	Mode              string        `koanf:"mode"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
	SessionStorePath  string        `koanf:"session_store_path"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Auth mode values.
const (
	AuthModeNone    = "none"
	AuthModeSession = "session"
	AuthModeJWT     = "jwt"
)

// PlaceholderAPIKey is the well-known placeholder shipped in sample configs.
// It is treated exactly like an absent key so a copied template never sends
// a bogus credential upstream.
const PlaceholderAPIKey = "changeme"

// ModelConfig holds external chat-completion model settings. The model is
// optional: with no usable API key the engine runs heuristic-only and every
// analysis falls through to the deterministic scorer.
//
// Environment Variables:
//   - MODEL_BASE_URL: API base URL (default: https://api.mistral.ai/v1)
//   - MODEL_API_KEY (or legacy MISTRAL_API_KEY): API credential;
//     empty or "changeme" disables the model
//   - MODEL_NAME: Model identifier (default: mistral-medium)
//   - MODEL_TEMPERATURE: Sampling temperature (default: 0.7)
//   - MODEL_MAX_TOKENS: Reply token cap (default: 1000)
//   - MODEL_TIMEOUT: Per-call timeout, metadata mode (default: 30s)
//   - MODEL_TRANSCRIPT_TIMEOUT: Per-call timeout, transcript mode (default: 60s)
//   - MODEL_RATE_LIMIT_RPS: Client-side request rate cap, 0 = unlimited
//     (default: 1)
type ModelConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Name              string        `koanf:"name"`
	Temperature       float64       `koanf:"temperature"`
	MaxTokens         int           `koanf:"max_tokens"`
	Timeout           time.Duration `koanf:"timeout"`
	TranscriptTimeout time.Duration `koanf:"transcript_timeout"`
	RateLimitRPS      float64       `koanf:"rate_limit_rps"`
}

// Configured reports whether a usable API key is present. The placeholder
// value counts as absent.
func (m ModelConfig) Configured() bool {
	return m.APIKey != "" && m.APIKey != PlaceholderAPIKey
}

// ProviderConfig holds video info/transcript extraction settings. The
// provider is a yt-dlp sidecar reached over HTTP.
//
// Environment Variables:
//   - PROVIDER_KIND: Extraction backend, currently only "ytdlp" (default: ytdlp)
//   - PROVIDER_BASE_URL (or legacy YTDLP_BASE_URL): Sidecar base URL
//     (default: http://localhost:5000)
//   - PROVIDER_TIMEOUT: Per-request timeout (default: 30s)
type ProviderConfig struct {
	Kind    string        `koanf:"kind"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// AnalyzerConfig selects the analysis variant and verdict caching.
//
// Environment Variables:
//   - ANALYZER_MODE: metadata or transcript (default: metadata)
//   - ANALYSIS_CACHE_TTL: Verdict cache lifetime, 0 disables caching
//     (default: 15m)
type AnalyzerConfig struct {
	Mode     string        `koanf:"mode"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// TaxonomyConfig points at an optional YAML keyword-table override.
//
// Environment Variables:
//   - TAXONOMY_PATH: YAML file merged over the built-in keyword tables
//     (default: empty = built-ins only)
type TaxonomyConfig struct {
	Path string `koanf:"path"`
}

// HistoryConfig controls analysis-history retention.
//
// Environment Variables:
//   - HISTORY_RETENTION_DAYS: Days to keep analysis records, 0 = forever
//     (default: 90)
type HistoryConfig struct {
	RetentionDays int `koanf:"retention_days"`
}

// EventsConfig sizes the in-process event bus.
//
// Environment Variables:
//   - EVENTS_BUFFER: Per-subscriber channel buffer (default: 256)
type EventsConfig struct {
	Buffer int `koanf:"buffer"`
}

// APIConfig holds pagination limits.
//
// Environment Variables:
//   - API_DEFAULT_PAGE_SIZE: Rows returned when no limit given (default: 20)
//   - API_MAX_PAGE_SIZE: Upper bound on requested limits (default: 100)
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// CORSConfig holds cross-origin settings.
//
// Environment Variables:
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error, fatal (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
