// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package ws

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/vidsift/vidsift/internal/events"
	"github.com/vidsift/vidsift/internal/logging"
)

// Feed bridges the event bus to the WebSocket hub: every completed analysis
// published on the bus is pushed to all connected clients. It runs as a
// supervised service next to the hub.
type Feed struct {
	bus *events.Bus
	hub *Hub
}

// NewFeed creates the analysis feed service.
func NewFeed(bus *events.Bus, hub *Hub) *Feed {
	return &Feed{bus: bus, hub: hub}
}

// String names the service in supervisor logs.
func (f *Feed) String() string {
	return "websocket-feed"
}

// Serve consumes analysis events until the context is cancelled. It
// satisfies the supervisor's service contract.
func (f *Feed) Serve(ctx context.Context) error {
	messages, err := f.bus.Subscribe(ctx, events.TopicAnalysisCompleted)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.TopicAnalysisCompleted, err)
	}

	logging.Info().Str("topic", events.TopicAnalysisCompleted).Msg("[WS] Analysis feed started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("event stream closed")
			}
			f.handle(msg)
		}
	}
}

// handle forwards one event to the hub. Messages are always acked: the feed
// is best-effort and a nack would redeliver the same payload forever.
func (f *Feed) handle(msg *message.Message) {
	defer msg.Ack()

	event, err := events.DeserializeEvent(msg.Payload)
	if err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).
			Msg("[WS] Discarding undecodable analysis event")
		return
	}

	f.hub.BroadcastAnalysisCompleted(event)

	logging.Debug().
		Str("record_id", event.RecordID).
		Int("clients", f.hub.GetClientCount()).
		Msg("[WS] Analysis event broadcast")
}
