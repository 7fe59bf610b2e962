package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"job-tracker/internal/shared/telemetry"
)

const channelPrefix = "job-tracker:"

// RedisBroker publishes events over Redis pub/sub so every API instance sees
// changes made through any other.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to the Redis instance at url (redis://...).
func NewRedisBroker(ctx context.Context, url string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBroker{client: client}, nil
}

// NewRedisBrokerWithClient wraps an existing client.
func NewRedisBrokerWithClient(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

// Publish sends evt on its topic channel.
func (b *RedisBroker) Publish(ctx context.Context, evt Event) error {
	payload, err := encodeEvent(evt)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channelFor(evt.Topic), payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", evt.Topic, err)
	}
	return nil
}

// Subscribe listens on the topic channels until ctx is done.
func (b *RedisBroker) Subscribe(ctx context.Context, topics ...Topic) <-chan Event {
	out := make(chan Event, subscriberBuffer)

	var ps *redis.PubSub
	if len(topics) == 0 {
		ps = b.client.PSubscribe(ctx, channelPrefix+"*")
	} else {
		channels := make([]string, 0, len(topics))
		for _, t := range topics {
			channels = append(channels, channelFor(t))
		}
		ps = b.client.Subscribe(ctx, channels...)
	}

	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				evt, err := decodeEvent(msg.Payload)
				if err != nil {
					telemetry.Warn("events.decode_failed", map[string]any{
						"channel": msg.Channel,
						"error":   err,
					})
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Close releases the Redis connection pool.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

func channelFor(t Topic) string {
	return channelPrefix + string(t)
}

func encodeEvent(evt Event) (string, error) {
	raw, err := json.Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	return string(raw), nil
}

func decodeEvent(payload string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if evt.Topic == "" {
		return Event{}, fmt.Errorf("decode event: missing topic")
	}
	return evt, nil
}

var _ Broker = (*RedisBroker)(nil)
