// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package auth provides the authentication primitives behind the API: bcrypt
// password hashing, server-side sessions with pluggable storage, and signed
// bearer tokens.
//
// Three modes are supported, selected by AUTH_MODE:
//
//   - session: opaque cookie sessions. The store is in-memory by default and
//     BadgerDB-backed when SESSION_STORE_PATH is set, which keeps users logged
//     in across restarts.
//   - jwt: stateless HS256 tokens minted by TokenManager. Nothing is stored
//     server-side, so tokens cannot be revoked before expiry.
//   - none: every request runs as the shared anonymous account. Intended for
//     single-user deployments on trusted networks.
//
// The HTTP wiring (cookie handling, header parsing, request context) lives in
// the middleware package; this package knows nothing about HTTP.
package auth
