// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package modelclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/vidsift/vidsift/internal/analysis"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/metrics"
)

const (
	completionsPath = "/chat/completions"
	breakerName     = "model-api"

	// maxErrorBodySize caps how much of an error response body is read for
	// diagnostics. Upstream error pages can be arbitrarily large.
	maxErrorBodySize = 64 * 1024
)

// ErrNotConfigured is returned by Complete when no usable API key is present.
var ErrNotConfigured = errors.New("model API key not configured")

// Client is a chat-completions client for an OpenAI-compatible endpoint.
// It implements analysis.ModelClient.
//
// Outbound calls are paced by a client-side rate limiter and guarded by a
// circuit breaker so a degraded upstream cannot stall every analysis for its
// full timeout. HTTP 429 responses are retried with exponential backoff,
// honoring Retry-After when the upstream sends one.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int

	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]

	maxRetries     int
	retryBaseDelay time.Duration
}

// New creates a chat-completions client from model configuration.
//
// The HTTP client timeout is the larger of the metadata and transcript
// timeouts; per-call deadlines are enforced by the caller's context, so this
// only backstops requests issued without one.
func New(cfg config.ModelConfig) *Client {
	timeout := cfg.Timeout
	if cfg.TranscriptTimeout > timeout {
		timeout = cfg.TranscriptTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		// Burst of 1: requests are evenly paced rather than front-loaded.
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Name,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		client:         &http.Client{Timeout: timeout},
		limiter:        limiter,
		breaker:        newBreaker(),
		maxRetries:     5,
		retryBaseDelay: 1 * time.Second,
	}
}

// newBreaker builds the circuit breaker guarding the completions endpoint:
// max 3 concurrent requests in half-open state, 1 minute measurement window,
// 2 minute recovery timeout, opens at a 60% failure rate over at least 10
// requests.
func newBreaker() *gobreaker.CircuitBreaker[string] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Too few requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[MODEL] Opening circuit breaker")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[MODEL] Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

// Configured implements analysis.ModelClient.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiKey != config.PlaceholderAPIKey
}

// Complete implements analysis.ModelClient. It sends the messages to the
// completions endpoint and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []analysis.ChatMessage) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	start := time.Now()

	reply, err := c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, messages)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			metrics.RecordModelRequest(c.model, "rejected", time.Since(start))
			logging.Warn().Err(err).Msg("[MODEL] Request rejected by circuit breaker")
			return "", err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.RecordModelRequest(c.model, "error", time.Since(start))
		return "", err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.RecordModelRequest(c.model, "success", time.Since(start))

	return reply, nil
}

// chatRequest is the completions request body. response_format pins the
// reply to a single JSON object so the verdict parser never sees prose.
type chatRequest struct {
	Model          string                 `json:"model"`
	Messages       []analysis.ChatMessage `json:"messages"`
	Temperature    float64                `json:"temperature"`
	MaxTokens      int                    `json:"max_tokens"`
	ResponseFormat responseFormat         `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int                  `json:"index"`
	Message      analysis.ChatMessage `json:"message"`
	FinishReason string               `json:"finish_reason"`
}

// complete performs the HTTP exchange with 429 retry handling.
func (c *Client) complete(ctx context.Context, messages []analysis.ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completions request: %w", err)
	}

	resp, err := c.doRequestWithRateLimit(ctx, body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errBody := readBodyForError(resp.Body)
		return "", fmt.Errorf("model API returned status %d: %s", resp.StatusCode, errBody)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completions response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model reply contained no choices")
	}

	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("model reply was empty")
	}

	return content, nil
}

// doRequestWithRateLimit executes the POST with exponential backoff on
// HTTP 429. Each attempt sends a fresh request; the response body of a 429 is
// drained and closed before waiting.
func (c *Client) doRequestWithRateLimit(ctx context.Context, body []byte) (*http.Response, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request cancelled: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create completions request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute completions request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay << attempt
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if parsed, parseErr := time.ParseDuration(retryAfter + "s"); parseErr == nil {
				delay = parsed
			}
		}

		logging.Warn().Int("attempt", attempt+1).Dur("delay", delay).Msg("[MODEL] Rate limited by upstream, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("request cancelled during backoff: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
}

// readBodyForError reads a bounded amount of a response body for inclusion in
// an error message.
func readBodyForError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	s := strings.TrimSpace(string(data))
	if len(data) == maxErrorBodySize {
		s += "\n... (truncated)"
	}
	if s == "" {
		return "(empty response body)"
	}
	return s
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
