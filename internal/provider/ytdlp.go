// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/models"
)

const (
	infoPath       = "/api/info"
	transcriptPath = "/api/transcript"
	healthPath     = "/api/health"

	providerName = "ytdlp"

	// maxErrorBodySize caps how much of an error response body is read for
	// diagnostics.
	maxErrorBodySize = 64 * 1024
)

// YtdlpClient talks to a yt-dlp sidecar over HTTP. The sidecar wraps the
// yt-dlp extractor behind two POST endpoints: /api/info resolves a video URL
// to its metadata, /api/transcript additionally pulls subtitles and returns
// the plain transcript text.
//
// Extraction is slow (the sidecar shells out to yt-dlp) and platforms rate
// limit aggressively, so 429 responses are retried with exponential backoff.
type YtdlpClient struct {
	baseURL string
	client  *http.Client

	maxRetries     int
	retryBaseDelay time.Duration
}

// NewYtdlpClient creates a sidecar client from provider configuration.
func NewYtdlpClient(cfg config.ProviderConfig) *YtdlpClient {
	return &YtdlpClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:     5,
		retryBaseDelay: 1 * time.Second,
	}
}

// extractRequest is the body of both extraction endpoints.
type extractRequest struct {
	URL string `json:"url"`
}

// infoResponse is the sidecar's metadata payload. Field names follow yt-dlp's
// own JSON output: duration is seconds as a float.
type infoResponse struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    float64  `json:"duration"`
	Uploader    string   `json:"uploader"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
	Language   string `json:"language"`
}

// FetchInfo implements analysis.InfoProvider.
func (c *YtdlpClient) FetchInfo(ctx context.Context, videoURL string) (*models.VideoMetadata, error) {
	start := time.Now()

	var parsed infoResponse
	err := c.postJSON(ctx, infoPath, extractRequest{URL: videoURL}, &parsed)
	metrics.RecordProviderRequest(providerName, "info", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch video info: %w", err)
	}

	meta := &models.VideoMetadata{
		URL:             parsed.URL,
		Title:           parsed.Title,
		Description:     parsed.Description,
		DurationSeconds: int(parsed.Duration),
		Uploader:        parsed.Uploader,
		Categories:      parsed.Categories,
		Tags:            parsed.Tags,
	}
	if meta.URL == "" {
		meta.URL = videoURL
	}
	return meta, nil
}

// FetchTranscript implements analysis.TranscriptProvider.
func (c *YtdlpClient) FetchTranscript(ctx context.Context, videoURL string) (string, error) {
	start := time.Now()

	var parsed transcriptResponse
	err := c.postJSON(ctx, transcriptPath, extractRequest{URL: videoURL}, &parsed)
	metrics.RecordProviderRequest(providerName, "transcript", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}

	return parsed.Transcript, nil
}

// Ping verifies the sidecar is reachable. Used by readiness checks.
func (c *YtdlpClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ytdlp sidecar unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ytdlp sidecar health returned status %d", resp.StatusCode)
	}
	return nil
}

// postJSON sends one extraction request and decodes the response into out.
func (c *YtdlpClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.doRequestWithRateLimit(ctx, path, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errBody := readBodyForError(resp.Body)
		return fmt.Errorf("ytdlp sidecar returned status %d: %s", resp.StatusCode, errBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode sidecar response: %w", err)
	}
	return nil
}

// doRequestWithRateLimit executes the POST with exponential backoff on
// HTTP 429, honoring Retry-After when present.
func (c *YtdlpClient) doRequestWithRateLimit(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request cancelled: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
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

		logging.Warn().Str("path", path).Int("attempt", attempt+1).Dur("delay", delay).Msg("[PROVIDER] Rate limited by sidecar, backing off")

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
