// AngelaMos | 2026
// bridge.go

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Bridge carries events between instances over redis pub/sub. Every
// instance publishes to redis and subscribes to the full topic pattern;
// whichever instance holds a subscriber's socket delivers locally.
type Bridge struct {
	redis  *redis.Client
	hub    *Hub
	logger *slog.Logger
}

func NewBridge(redisClient *redis.Client, hub *Hub, logger *slog.Logger) *Bridge {
	return &Bridge{
		redis:  redisClient,
		hub:    hub,
		logger: logger,
	}
}

func (b *Bridge) Publish(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.redis.Publish(ctx, channelPrefix+event.Topic, raw).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// Run consumes the pattern subscription until ctx is cancelled. Bad
// frames are logged and skipped; subscribers keep whatever state they
// already have.
func (b *Bridge) Run(ctx context.Context) error {
	pubsub := b.redis.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(msg)
		}
	}
}

func (b *Bridge) deliver(msg *redis.Message) {
	var event Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		b.logger.Warn("dropping malformed realtime event",
			"channel", msg.Channel,
			"error", err,
		)
		return
	}

	delivered := b.hub.Broadcast(event.Topic, []byte(msg.Payload))

	b.logger.Debug("realtime event delivered",
		"type", event.Type,
		"topic", event.Topic,
		"subscribers", delivered,
	)
}
