// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
)

// Default call timeouts per mode. Transcript prompts are larger and the
// model needs longer to reason over them.
const (
	DefaultMetadataTimeout   = 30 * time.Second
	DefaultTranscriptTimeout = 60 * time.Second
)

// ChatMessage is one message of a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelClient is the transport used to reach the external model. Implemented
// by modelclient.Client; the analyzer only needs the reply text.
type ModelClient interface {
	// Configured reports whether a usable credential is present. When false
	// the analyzer does not attempt a call.
	Configured() bool

	// Complete sends the messages and returns the model's reply content.
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// ExternalModelAnalyzer is the primary analysis strategy: it prompts an
// external chat-completion model and validates the JSON verdict it returns.
//
// Every failure class (missing credential, transport error, timeout,
// unparseable or schema-violating reply) is reported as ErrModelUnavailable
// so the orchestrator falls back to the heuristic scorer. There are no
// retries and no reply repair: a single bounded attempt either yields a
// fully valid verdict or nothing.
type ExternalModelAnalyzer struct {
	client  ModelClient
	mode    Mode
	timeout time.Duration
}

// NewExternalModelAnalyzer creates the analyzer for the given mode. A
// non-positive timeout selects the mode's default.
func NewExternalModelAnalyzer(client ModelClient, mode Mode, timeout time.Duration) *ExternalModelAnalyzer {
	if timeout <= 0 {
		if mode == ModeTranscript {
			timeout = DefaultTranscriptTimeout
		} else {
			timeout = DefaultMetadataTimeout
		}
	}
	return &ExternalModelAnalyzer{client: client, mode: mode, timeout: timeout}
}

// Name implements ContentAnalyzer.
func (a *ExternalModelAnalyzer) Name() string { return "external_model" }

// Analyze implements ContentAnalyzer.
func (a *ExternalModelAnalyzer) Analyze(ctx context.Context, content models.VideoContent, prefs models.UserPreferences) (*models.AnalysisVerdict, error) {
	if a.client == nil || !a.client.Configured() {
		return nil, fmt.Errorf("%w: no credential configured", ErrModelUnavailable)
	}

	prompt := BuildPrompt(content, prefs, a.mode)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	reply, err := a.client.Complete(ctx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("mode", string(a.mode)).Msg("External model request failed")
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	verdict, err := a.parseReply(reply)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("mode", string(a.mode)).Msg("External model reply rejected")
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	logging.Ctx(ctx).Debug().
		Bool("is_suitable", verdict.IsSuitable).
		Int("match_score", verdict.MatchScore).
		Msg("External model verdict accepted")
	return verdict, nil
}

// modelReply mirrors the required verdict JSON. Pointer fields distinguish
// absent keys from zero values; a decode into the wrong type fails outright,
// which is exactly the strictness the contract demands.
type modelReply struct {
	IsSuitable *bool     `json:"is_suitable"`
	Analysis   *string   `json:"analysis"`
	Confidence *float64  `json:"confidence"`
	Reasons    *[]string `json:"reasons"`
	MatchScore *float64  `json:"match_score"`

	DetectedTopics   []string `json:"detected_topics"`
	ContentType      string   `json:"content_type"`
	LanguageDetected string   `json:"language_detected"`
}

// parseReply validates the model's JSON reply. Required keys must be present
// with the right types; values outside range are clamped, never rejected.
// Malformed JSON, a missing key, or a wrong type is an error; the reply is
// never repaired or partially accepted.
func (a *ExternalModelAnalyzer) parseReply(reply string) (*models.AnalysisVerdict, error) {
	var parsed modelReply
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	switch {
	case parsed.IsSuitable == nil:
		return nil, fmt.Errorf("reply missing required key %q", "is_suitable")
	case parsed.Analysis == nil:
		return nil, fmt.Errorf("reply missing required key %q", "analysis")
	case parsed.Confidence == nil:
		return nil, fmt.Errorf("reply missing required key %q", "confidence")
	case parsed.Reasons == nil:
		return nil, fmt.Errorf("reply missing required key %q", "reasons")
	case parsed.MatchScore == nil:
		return nil, fmt.Errorf("reply missing required key %q", "match_score")
	}

	verdict := &models.AnalysisVerdict{
		IsSuitable: *parsed.IsSuitable,
		Analysis:   *parsed.Analysis,
		Confidence: clampConfidence(*parsed.Confidence),
		Reasons:    *parsed.Reasons,
		MatchScore: clampScore(int(*parsed.MatchScore)),
	}

	if a.mode == ModeTranscript {
		verdict.DetectedTopics = parsed.DetectedTopics
		if verdict.DetectedTopics == nil {
			verdict.DetectedTopics = []string{}
		}
		verdict.ContentType = parsed.ContentType
		if verdict.ContentType == "" {
			verdict.ContentType = models.ContentTypeUnknown
		}
		verdict.LanguageDetected = parsed.LanguageDetected
		if verdict.LanguageDetected == "" {
			verdict.LanguageDetected = "unknown"
		}
	}

	return verdict, nil
}

// clampConfidence bounds a confidence value to [0.0, 1.0].
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
