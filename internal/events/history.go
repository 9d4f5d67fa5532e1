// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
)

// RecordStore is the slice of the database layer the history writer needs.
type RecordStore interface {
	InsertAnalysisRecord(ctx context.Context, rec *models.AnalysisRecord) error
}

// HistoryWriter subscribes to completed analyses and persists each one as a
// history row. Writing history off the request path keeps analysis latency
// independent of DuckDB write latency; the cost is that a record may trail
// its API response by a moment.
type HistoryWriter struct {
	bus   *Bus
	store RecordStore
}

// NewHistoryWriter creates the history writer service.
func NewHistoryWriter(bus *Bus, store RecordStore) *HistoryWriter {
	return &HistoryWriter{bus: bus, store: store}
}

// String names the service in supervisor logs.
func (w *HistoryWriter) String() string {
	return "history-writer"
}

// Serve consumes analysis events until the context is cancelled. It
// satisfies the supervisor's service contract.
func (w *HistoryWriter) Serve(ctx context.Context) error {
	messages, err := w.bus.Subscribe(ctx, TopicAnalysisCompleted)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicAnalysisCompleted, err)
	}

	logging.Info().Str("topic", TopicAnalysisCompleted).Msg("[EVENTS] History writer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("event stream closed")
			}
			w.handle(msg)
		}
	}
}

// handle persists one event. Messages are always acked: the bus is
// non-persistent, so a nack would redeliver the same failing payload
// forever. A lost history row is logged and tolerated.
func (w *HistoryWriter) handle(msg *message.Message) {
	defer msg.Ack()

	event, err := DeserializeEvent(msg.Payload)
	if err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).
			Msg("[EVENTS] Discarding undecodable analysis event")
		return
	}

	if err := w.store.InsertAnalysisRecord(msg.Context(), event.Record()); err != nil {
		logging.Warn().Err(err).
			Str("record_id", event.RecordID).
			Int64("user_id", event.UserID).
			Msg("[EVENTS] Failed to persist analysis history")
		return
	}

	logging.Debug().
		Str("record_id", event.RecordID).
		Int64("user_id", event.UserID).
		Str("mode", event.Mode).
		Bool("cached", event.Cached).
		Msg("[EVENTS] Analysis history persisted")
}
