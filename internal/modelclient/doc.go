// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package modelclient implements the HTTP transport to an OpenAI-compatible
// chat-completions endpoint (Mistral by default).
//
// The client satisfies analysis.ModelClient. It is deliberately thin: prompt
// construction and verdict parsing live in the analysis package, so this
// package only deals with authentication, pacing, retries, and the circuit
// breaker. A client built from an unconfigured ModelConfig reports
// Configured() == false and refuses to send requests, which the analyzer
// treats as "model unavailable, fall through to the next strategy".
package modelclient
