// Package memory holds in-process implementations of the persistence and
// change ports, used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
)

const subscriberBuffer = 64

var _ ports.ChangeNotifier = (*Broker)(nil)

// Broker fans change events out to every live subscriber.
//
// Sends never block: when a subscriber's buffer is full the event is dropped
// for that subscriber. Any pending event already forces a full reload.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ports.ChangeEvent
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan ports.ChangeEvent)}
}

// Publish delivers ev to all current subscribers.
func (b *Broker) Publish(_ context.Context, ev ports.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber until the returned func is called or ctx ends.
func (b *Broker) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, func()) {
	ch := make(chan ports.ChangeEvent, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
			close(stop)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()
	return ch, cancel
}

// Subscribers number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
