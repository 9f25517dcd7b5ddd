// Package redis carries expense change events over Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/memory"
	"github.com/Howzley/EEIRS-14-SP2025/pkg/config"
)

var _ ports.ChangeNotifier = (*Notifier)(nil)

// Connect opens a client and pings it, retrying a few times while Redis starts.
func Connect(ctx context.Context, cfg config.RedisConfig, maxRetries int, log zerolog.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if lastErr = rdb.Ping(ctx).Err(); lastErr == nil {
			log.Info().Str("addr", cfg.Addr).Msg("connected to redis")
			return rdb, nil
		}
		log.Warn().Err(lastErr).Int("attempt", i).Int("max", maxRetries).Msg("redis ping failed")
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	_ = rdb.Close()
	return nil, fmt.Errorf("connect redis after %d attempts: %w", maxRetries, lastErr)
}

// Notifier publishes change events to a Redis channel and relays the channel
// to local subscribers.
type Notifier struct {
	rdb     goredis.UniversalClient
	channel string
	local   *memory.Broker
	log     zerolog.Logger
}

// NewNotifier builds the notifier; Run must be started for subscribers to receive anything.
func NewNotifier(rdb goredis.UniversalClient, channel string, log zerolog.Logger) *Notifier {
	return &Notifier{rdb: rdb, channel: channel, local: memory.NewBroker(), log: log}
}

// Publish sends ev as JSON.
func (n *Notifier) Publish(ctx context.Context, ev ports.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe registers a local subscriber.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, func()) {
	return n.local.Subscribe(ctx)
}

// Run relays the Redis channel until ctx ends. go-redis reconnects the
// subscription on its own.
func (n *Notifier) Run(ctx context.Context) {
	sub := n.rdb.Subscribe(ctx, n.channel)
	defer sub.Close()

	msgs := sub.Channel()
	n.log.Info().Str("channel", n.channel).Msg("subscribed to expense changes")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			n.relay(ctx, msg.Payload)
		}
	}
}

func (n *Notifier) relay(ctx context.Context, payload string) {
	var ev ports.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		n.log.Warn().Err(err).Msg("discarding malformed change event")
		return
	}
	_ = n.local.Publish(ctx, ev)
}
