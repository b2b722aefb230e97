package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/huddlehq/workspace-chat/internal/model"
	"github.com/huddlehq/workspace-chat/pkg/metrics"
)

const (
	// StreamName is the name of the channel event stream.
	StreamName = "WORKSPACE_CHAT"

	// SubjectPrefix is the prefix for all channel event subjects.
	SubjectPrefix = "chat"
)

// EventBus publishes and consumes channel change events over JetStream.
// Events are advisory: a consumer reacts by reloading the channel from the
// conversation service, never by patching state from the event payload.
type EventBus struct {
	client *Client
}

// NewEventBus creates a new event bus.
func NewEventBus(client *Client) *EventBus {
	return &EventBus{client: client}
}

// EnsureStream ensures the event stream exists with proper configuration.
func (b *EventBus) EnsureStream(ctx context.Context) error {
	js := b.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024, // 1GB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Channel change notifications",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// ChannelSubject returns the subject for one channel's events.
func ChannelSubject(workspaceID, channelID string, kind model.EventKind) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, workspaceID, channelID, kind)
}

// ChannelFilter returns the filter subject matching all events for a channel.
func ChannelFilter(workspaceID, channelID string) string {
	return fmt.Sprintf("%s.%s.%s.>", SubjectPrefix, workspaceID, channelID)
}

// Publish publishes a channel event.
func (b *EventBus) Publish(ctx context.Context, event *model.ChannelEvent) error {
	subject := ChannelSubject(event.WorkspaceID, event.ChannelID, event.Kind)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := b.client.JetStream().Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(event.Kind)).Inc()
	return nil
}

// EventHandler receives decoded channel events.
type EventHandler func(event model.ChannelEvent)

// SubscribeChannel delivers new events for one channel to handler until ctx
// is canceled. Only events published after the subscription starts are
// delivered; a consumer is expected to load current channel state first.
func (b *EventBus) SubscribeChannel(ctx context.Context, workspaceID, channelID string, handler EventHandler) error {
	js := b.client.JetStream()

	consumer, err := js.CreateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: ChannelFilter(workspaceID, channelID),
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var event model.ChannelEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			return
		}
		handler(event)
	})
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	go func() {
		<-ctx.Done()
		cc.Stop()
	}()

	return nil
}
