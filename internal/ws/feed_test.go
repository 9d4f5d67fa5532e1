// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidsift/vidsift/internal/events"
	"github.com/vidsift/vidsift/internal/models"
)

func testAnalysisResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Success:    true,
		IsSuitable: true,
		Analysis: &models.AnalysisVerdict{
			IsSuitable: true,
			Analysis:   "ok",
			Confidence: 0.8,
			Reasons:    []string{},
			MatchScore: 80,
		},
	}
}

func TestFeed_BroadcastsPublishedEvents(t *testing.T) {
	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			t.Logf("bus close: %v", err)
		}
	}()

	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(hub, client)

	feed := NewFeed(bus, hub)
	ctx, cancel := context.WithCancel(context.Background())
	feedDone := make(chan error, 1)
	go func() {
		feedDone <- feed.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-feedDone:
		case <-time.After(time.Second):
			t.Error("feed did not stop within 1s")
		}
	})
	time.Sleep(20 * time.Millisecond)

	event := events.NewAnalysisCompleted(7, "https://example.com/watch?v=abc", "metadata", testAnalysisResult())
	if err := bus.PublishAnalysisCompleted(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeAnalysisCompleted {
			t.Errorf("Expected message type %q, got %q", MessageTypeAnalysisCompleted, msg.Type)
		}
		received, ok := msg.Data.(*events.AnalysisCompletedEvent)
		if !ok {
			t.Fatalf("Expected *events.AnalysisCompletedEvent payload, got %T", msg.Data)
		}
		if received.RecordID != event.RecordID {
			t.Errorf("Expected record_id %q, got %q", event.RecordID, received.RecordID)
		}
		if received.UserID != 7 {
			t.Errorf("Expected user_id 7, got %d", received.UserID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive analysis event within 2s")
	}
}

func TestFeed_StopsOnContextCancel(t *testing.T) {
	bus := events.NewBus()
	defer func() {
		_ = bus.Close()
	}()

	feed := NewFeed(bus, NewHub())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- feed.Serve(ctx)
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("feed did not stop after context cancel")
	}
}

func TestFeed_String(t *testing.T) {
	feed := NewFeed(events.NewBus(), NewHub())
	if feed.String() != "websocket-feed" {
		t.Errorf("Expected service name websocket-feed, got %q", feed.String())
	}
}
