package ports

import (
	"context"
	"time"
)

// ChangeOp kind of mutation that produced a change event.
type ChangeOp string

const (
	ChangeCreated ChangeOp = "created"
	ChangeUpdated ChangeOp = "updated"
	ChangeDeleted ChangeOp = "deleted"
)

// ChangeEvent notification that the expenses collection changed.
// Subscribers reload their scope; the event itself carries no record data.
type ChangeEvent struct {
	ID       string    `json:"id"`
	Op       ChangeOp  `json:"op"`
	RecordID string    `json:"record_id"`
	At       time.Time `json:"at"`
}

// ChangePublisher output port used by the record mutators.
type ChangePublisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// ChangeSubscriber input port used by live views.
// The returned func releases the subscription and closes the channel; it is safe to call twice.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context) (<-chan ChangeEvent, func())
}

// ChangeNotifier a transport that is both (memory, postgres LISTEN/NOTIFY, redis pub/sub).
type ChangeNotifier interface {
	ChangePublisher
	ChangeSubscriber
}
