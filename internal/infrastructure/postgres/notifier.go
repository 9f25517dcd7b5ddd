package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/memory"
)

const listenRetryDelay = 2 * time.Second

var _ ports.ChangeNotifier = (*Notifier)(nil)

// Notifier publishes change events with pg_notify and relays them from a
// single LISTEN connection to local subscribers, so every API instance
// sharing the database sees every change.
type Notifier struct {
	pool    *pgxpool.Pool
	channel string
	local   *memory.Broker
	log     zerolog.Logger
}

// NewNotifier builds the notifier; Run must be started for subscribers to receive anything.
func NewNotifier(pool *pgxpool.Pool, channel string, log zerolog.Logger) *Notifier {
	return &Notifier{pool: pool, channel: channel, local: memory.NewBroker(), log: log}
}

// Publish sends ev as JSON on the channel.
func (n *Notifier) Publish(ctx context.Context, ev ports.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if _, err := n.pool.Exec(ctx, "SELECT pg_notify($1, $2)", n.channel, string(payload)); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// Subscribe registers a local subscriber.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, func()) {
	return n.local.Subscribe(ctx)
}

// Run listens until ctx ends, reconnecting after connection loss.
func (n *Notifier) Run(ctx context.Context) {
	for {
		err := n.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		n.log.Warn().Err(err).Str("channel", n.channel).Msg("listen connection lost, retrying")
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetryDelay):
		}
	}
}

func (n *Notifier) listen(ctx context.Context) error {
	conn, err := n.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, _ = conn.Exec(cleanupCtx, "UNLISTEN *")
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{n.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	n.log.Info().Str("channel", n.channel).Msg("listening for expense changes")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var ev ports.ChangeEvent
		if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
			n.log.Warn().Err(err).Msg("discarding malformed change event")
			continue
		}
		_ = n.local.Publish(ctx, ev)
	}
}
