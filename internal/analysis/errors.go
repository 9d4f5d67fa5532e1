// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package analysis

import "errors"

var (
	// ErrModelUnavailable indicates the external model path produced no
	// usable verdict: missing credential, transport failure, timeout, or a
	// reply that failed schema validation. It is always recovered locally by
	// falling back to the heuristic scorer and never surfaces to callers.
	ErrModelUnavailable = errors.New("external model unavailable")

	// ErrUnknownMode indicates an unrecognized analyzer mode string in
	// configuration.
	ErrUnknownMode = errors.New("unknown analyzer mode")

	// ErrNoVerdict indicates every strategy failed to produce a verdict.
	// The heuristic scorer is total, so reaching this is a defect.
	ErrNoVerdict = errors.New("no analyzer produced a verdict")
)
