// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/models"
)

// InfoProvider resolves a video reference to its metadata record.
type InfoProvider interface {
	FetchInfo(ctx context.Context, videoURL string) (*models.VideoMetadata, error)
}

// TranscriptProvider resolves a video reference to transcript text.
type TranscriptProvider interface {
	FetchTranscript(ctx context.Context, videoURL string) (string, error)
}

// Orchestrator drives one full analysis: fetch video info, then run the
// strategy chain in order until one produces a verdict.
//
// Provider-failure policy differs per mode and is deliberate:
//
//   - ModeMetadata: a provider failure is terminal. Without metadata there
//     is nothing to score, so the result carries the error and no verdict.
//
//   - ModeTranscript: a metadata failure degrades (analysis proceeds with
//     placeholder metadata), a transcript failure degrades (analysis
//     proceeds with an empty transcript and scores accordingly low), and
//     only both failing together is terminal.
type Orchestrator struct {
	mode        Mode
	info        InfoProvider
	transcripts TranscriptProvider
	strategies  []ContentAnalyzer
}

// NewOrchestrator assembles the pipeline. Strategies run in the given order;
// the conventional chain is [ExternalModelAnalyzer, HeuristicScorer]. The
// transcript provider is required in ModeTranscript and ignored otherwise.
func NewOrchestrator(mode Mode, info InfoProvider, transcripts TranscriptProvider, strategies ...ContentAnalyzer) *Orchestrator {
	return &Orchestrator{
		mode:        mode,
		info:        info,
		transcripts: transcripts,
		strategies:  strategies,
	}
}

// Mode returns the configured analyzer mode.
func (o *Orchestrator) Mode() Mode { return o.mode }

// AnalyzeVideo runs the full pipeline for one video reference. Failures are
// encoded in the result, never returned as an error: Success is false only
// when the provider stage failed terminally, and IsSuitable is false in
// every failure case.
func (o *Orchestrator) AnalyzeVideo(ctx context.Context, videoURL string, prefs models.UserPreferences) *models.AnalysisResult {
	start := time.Now()
	logger := logging.Ctx(ctx)

	meta, infoErr := o.info.FetchInfo(ctx, videoURL)
	if infoErr != nil {
		if o.mode == ModeMetadata {
			logger.Error().Err(infoErr).Str("video_url", videoURL).Msg("Video info extraction failed")
			return failureResult(fmt.Sprintf("Failed to extract video info: %v", infoErr))
		}
		logger.Warn().Err(infoErr).Str("video_url", videoURL).Msg("Video info extraction failed, continuing with degraded metadata")
		meta = &models.VideoMetadata{URL: videoURL, Title: "Unknown", Uploader: "Unknown"}
	}

	content := models.VideoContent{Metadata: *meta}

	if o.mode == ModeTranscript {
		transcript, err := o.fetchTranscript(ctx, videoURL)
		switch {
		case err == nil:
			content.Transcript = transcript
		case infoErr != nil:
			// Nothing at all could be obtained for this video.
			logger.Error().Err(err).Str("video_url", videoURL).Msg("Transcript extraction failed after metadata failure")
			return failureResult(fmt.Sprintf("Failed to extract video info: %v; transcript: %v", infoErr, err))
		default:
			logger.Warn().Err(err).Str("video_url", videoURL).Msg("Transcript extraction failed, continuing with metadata only")
		}
	}

	for _, strategy := range o.strategies {
		verdict, err := strategy.Analyze(ctx, content, prefs)
		if err != nil {
			logger.Debug().Err(err).Str("strategy", strategy.Name()).Msg("Analyzer strategy unavailable, trying next")
			metrics.RecordAnalysisFallback(string(o.mode), strategy.Name())
			continue
		}

		metrics.RecordAnalysis(string(o.mode), strategy.Name(), verdict.IsSuitable, time.Since(start))
		metrics.RecordAnalysisScore(string(o.mode), verdict.MatchScore)
		logger.Info().
			Str("strategy", strategy.Name()).
			Str("video_title", meta.Title).
			Bool("is_suitable", verdict.IsSuitable).
			Int("match_score", verdict.MatchScore).
			Msg("Analysis completed")

		return &models.AnalysisResult{
			Success:    true,
			VideoInfo:  meta,
			Analysis:   verdict,
			IsSuitable: verdict.IsSuitable,
		}
	}

	// The heuristic scorer is total, so an empty or exhausted strategy chain
	// is a wiring defect rather than a runtime condition.
	logger.Error().Str("video_url", videoURL).Msg("No analyzer strategy produced a verdict")
	return failureResult(ErrNoVerdict.Error())
}

func (o *Orchestrator) fetchTranscript(ctx context.Context, videoURL string) (string, error) {
	if o.transcripts == nil {
		return "", fmt.Errorf("no transcript provider configured")
	}
	return o.transcripts.FetchTranscript(ctx, videoURL)
}

func failureResult(msg string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Success:    false,
		Error:      msg,
		IsSuitable: false,
	}
}
