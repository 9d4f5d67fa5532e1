// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
Package ws implements the real-time analysis feed over WebSocket.

The hub maintains the set of connected clients and broadcasts messages to
them; the feed subscribes to the event bus and forwards every completed
analysis to the hub. Both run as supervised services, so a crash in either
restarts with a clean client set without taking down the API.

Architecture:

	events.Bus ──> Feed ──> Hub ──> Client (one per connection)
	                         ▲
	         API /api/v1/ws ─┘ (upgrade + Register)

Message Format:

	{"type": "analysis_completed", "data": {...AnalysisCompletedEvent...}}

Clients may send {"type": "ping"} and receive {"type": "pong"}; everything
else from the client is ignored. Protocol-level ping/pong keepalives run
underneath with a 60s pong deadline.

Delivery Semantics:

Broadcasts are best-effort. A client whose send buffer is full is dropped
rather than allowed to stall the feed, and messages published while the hub
buffer is full are discarded with a warning. Clients needing a complete
record of analyses should read /api/v1/analysis/history instead.

Thread Safety:

The hub's client set is guarded by a RWMutex; clients are sorted by a
monotonically increasing ID for deterministic broadcast and shutdown order.

See Also:

  - internal/events: bus and event payload definitions
  - internal/api: the /api/v1/ws upgrade endpoint
*/
package ws
