package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sevakendra/portal-api/internal/core/ports"
)

const authEventBuffer = 16

// AuthEventBus carries auth-change events over Redis pub/sub so every API
// instance sees them.
// Channel format: auth-events:<principal_id>
type AuthEventBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewAuthEventBus(client *redis.Client, log zerolog.Logger) *AuthEventBus {
	return &AuthEventBus{client: client, log: log}
}

func (b *AuthEventBus) Publish(ctx context.Context, event ports.AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode auth event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(event.PrincipalID), payload).Err(); err != nil {
		return fmt.Errorf("publish auth event: %w", err)
	}
	return nil
}

// Subscribe returns a channel of events for principalID. The channel is
// closed after cancel is called or ctx ends.
func (b *AuthEventBus) Subscribe(ctx context.Context, principalID string) (<-chan ports.AuthEvent, func(), error) {
	sub := b.client.Subscribe(ctx, b.channel(principalID))
	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe auth events: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan ports.AuthEvent, authEventBuffer)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event ports.AuthEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("malformed auth event")
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

func (b *AuthEventBus) channel(principalID string) string {
	return "auth-events:" + principalID
}
