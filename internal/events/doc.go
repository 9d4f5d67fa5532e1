// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package events carries completed-analysis events from the API layer to
// their consumers over an in-process Watermill pub/sub. Today that is the
// history writer, which persists each analysis, and the websocket hub, which
// streams verdicts to connected clients.
//
// The bus is a gochannel transport: non-persistent, in-memory, scoped to the
// process. Publishing never blocks on slow consumers beyond the channel
// buffer, and events published with no subscriber are dropped. A broker-backed
// transport could replace it behind the same Bus surface if analyses ever
// need to fan out across processes.
package events
