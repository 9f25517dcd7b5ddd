package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
)

func TestNotifier_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	n := NewNotifier(db, "expenses_changed", zerolog.Nop())

	ev := ports.ChangeEvent{ID: "ev-1", Op: ports.ChangeCreated, RecordID: "rec-1", At: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock.ExpectPublish("expenses_changed", string(payload)).SetVal(1)
		assert.NoError(t, n.Publish(context.Background(), ev))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectPublish("expenses_changed", string(payload)).SetErr(errors.New("connection refused"))
		assert.Error(t, n.Publish(context.Background(), ev))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNotifier_RelayToLocalSubscribers(t *testing.T) {
	db, _ := redismock.NewClientMock()
	n := NewNotifier(db, "expenses_changed", zerolog.Nop())

	ch, cancel := n.Subscribe(context.Background())
	defer cancel()

	n.relay(context.Background(), `{"id":"ev-9","op":"deleted","record_id":"rec-3"}`)
	n.relay(context.Background(), `not json`)

	select {
	case ev := <-ch:
		assert.Equal(t, "ev-9", ev.ID)
		assert.Equal(t, ports.ChangeDeleted, ev.Op)
	case <-time.After(time.Second):
		t.Fatal("event not relayed")
	}
	select {
	case ev := <-ch:
		t.Fatalf("malformed payload relayed: %+v", ev)
	default:
	}
}
