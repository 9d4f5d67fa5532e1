// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/vidsift/vidsift/internal/metrics"
)

// outputBufferSize bounds how far a slow subscriber can lag before
// publishing blocks on its channel.
const outputBufferSize = 64

// Bus is the in-process event bus. One Bus is shared by the whole engine;
// the API layer publishes, long-lived services subscribe.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewBus creates the in-process event bus with the default buffer.
func NewBus() *Bus {
	return NewBusWithBuffer(outputBufferSize)
}

// NewBusWithBuffer creates the bus with a specific per-subscriber buffer.
// Non-positive values take the default.
func NewBusWithBuffer(buffer int) *Bus {
	if buffer <= 0 {
		buffer = outputBufferSize
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: int64(buffer),
			},
			newWatermillLogger(),
		),
	}
}

// PublishAnalysisCompleted serializes and publishes an analysis event.
// Failures are recorded as dropped events: analysis responses must not fail
// because a side channel did, so callers log and move on.
func (b *Bus) PublishAnalysisCompleted(_ context.Context, event *AnalysisCompletedEvent) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		metrics.RecordEventDropped(TopicAnalysisCompleted)
		return fmt.Errorf("event bus is closed")
	}
	b.mu.RUnlock()

	data, err := SerializeEvent(event)
	if err != nil {
		metrics.RecordEventDropped(TopicAnalysisCompleted)
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("user_id", strconv.FormatInt(event.UserID, 10))
	msg.Metadata.Set("mode", event.Mode)

	if err := b.pubsub.Publish(TopicAnalysisCompleted, msg); err != nil {
		metrics.RecordEventDropped(TopicAnalysisCompleted)
		return fmt.Errorf("publish analysis event: %w", err)
	}

	metrics.RecordEventPublished(TopicAnalysisCompleted)
	return nil
}

// Subscribe returns a channel of messages for a topic. The channel closes
// when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down. Subscriber channels are closed; further
// publishes fail.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	return b.pubsub.Close()
}
