// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
Package analysis implements the two-stage content-suitability pipeline.

Given video content (metadata, optionally a transcript) and a user
preference profile, the pipeline produces an AnalysisVerdict: a suitability
flag, an explainable 0-100 match score, a confidence value, and a list of
reasons.

Two analyzer strategies implement the ContentAnalyzer interface:

  - ExternalModelAnalyzer: builds a natural-language prompt, invokes an
    external chat-completion model, and strictly validates its JSON reply.
    Any transport failure, timeout, missing credential, or schema mismatch
    makes it report ErrModelUnavailable instead of a verdict.

  - HeuristicScorer: a deterministic keyword-and-penalty scorer over the
    same inputs. It is total: it always returns a verdict and never fails.

The Orchestrator runs the strategies in order (external model first,
heuristic fallback second); the first verdict wins. Callers therefore always
receive exactly one verdict when video info could be obtained, and cannot
tell which strategy produced it.

The pipeline runs in one of two modes selected by configuration, never
per-request:

  - ModeMetadata scores title/description text and the duration window.
    A provider failure is terminal in this mode.

  - ModeTranscript scores transcript text, detects topics and a content-type
    label, and tolerates partial provider failure: analysis proceeds with
    degraded metadata as long as either metadata or transcript could be
    obtained.

All scoring is free of I/O and shared mutable state; concurrent analyses
share only the read-only keyword taxonomy.
*/
package analysis
