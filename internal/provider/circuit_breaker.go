// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/models"
)

// CircuitBreakerProvider wraps YtdlpClient with a circuit breaker so a stuck
// or dead sidecar fails fast instead of holding every analysis request for
// its full timeout.
//
// The breaker uses real time for its interval and timeout calculations. The
// timing only decides when to probe for recovery, never data integrity; unit
// tests should exercise the wrapped client directly.
type CircuitBreakerProvider struct {
	client *YtdlpClient
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerProvider creates a sidecar client guarded by a circuit
// breaker: max 3 concurrent requests in half-open state, 1 minute measurement
// window, 2 minute recovery timeout, opens at a 60% failure rate over at
// least 10 requests.
func NewCircuitBreakerProvider(cfg config.ProviderConfig) *CircuitBreakerProvider {
	client := NewYtdlpClient(cfg)
	cbName := "ytdlp-provider"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
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
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[PROVIDER] Opening circuit breaker")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[PROVIDER] Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerProvider{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a sidecar call with circuit breaker protection.
func (p *CircuitBreakerProvider) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := p.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[PROVIDER] Request rejected by circuit breaker")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	return result, nil
}

// FetchInfo implements analysis.InfoProvider with circuit breaker protection.
func (p *CircuitBreakerProvider) FetchInfo(ctx context.Context, videoURL string) (*models.VideoMetadata, error) {
	return castResult[models.VideoMetadata](p.execute(func() (interface{}, error) {
		return p.client.FetchInfo(ctx, videoURL)
	}))
}

// FetchTranscript implements analysis.TranscriptProvider with circuit breaker
// protection.
func (p *CircuitBreakerProvider) FetchTranscript(ctx context.Context, videoURL string) (string, error) {
	result, err := p.execute(func() (interface{}, error) {
		return p.client.FetchTranscript(ctx, videoURL)
	})
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return text, nil
}

// Ping verifies sidecar connectivity with circuit breaker protection.
func (p *CircuitBreakerProvider) Ping(ctx context.Context) error {
	_, err := p.execute(func() (interface{}, error) {
		return nil, p.client.Ping(ctx)
	})
	return err
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func breakerStateFloat(state gobreaker.State) float64 {
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

func breakerStateString(state gobreaker.State) string {
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
