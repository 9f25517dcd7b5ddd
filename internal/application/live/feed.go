// Package live turns change notifications into a stream of expense snapshots
// for one scope.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
)

const reloadTimeout = 30 * time.Second

// Loader reads the full record list of a scope.
type Loader interface {
	ListByScope(ctx context.Context, scope expense.QuerySpec) ([]entity.ExpenseRecord, error)
}

// Snapshot records currently matching a subscription and their totals.
type Snapshot struct {
	Seq     uint64
	Scope   expense.QuerySpec
	Period  expense.Period
	Records []entity.ExpenseRecord
	Summary expense.Summary
	At      time.Time
}

// Feed produces live snapshots.
type Feed struct {
	loader  Loader
	changes ports.ChangeSubscriber
	group   singleflight.Group
	log     zerolog.Logger
	now     func() time.Time
}

// NewFeed builds a feed reading through loader and reacting to changes.
func NewFeed(loader Loader, changes ports.ChangeSubscriber, log zerolog.Logger) *Feed {
	return &Feed{loader: loader, changes: changes, log: log, now: time.Now}
}

// Subscribe emits an initial snapshot of scope and a new one after every change.
//
// Snapshots are delivered in order; a consumer that falls behind only sees the
// newest one. The returned cancel func releases the change subscription and
// closes the channel; it is idempotent and must always be called. An empty
// scope returns ErrForbidden without touching the store.
func (f *Feed) Subscribe(ctx context.Context, scope expense.QuerySpec, period expense.Period) (<-chan Snapshot, func(), error) {
	if scope.Empty() {
		return nil, nil, domain.ErrForbidden
	}

	ctx, cancelCtx := context.WithCancel(ctx)
	// subscribe before the first read so no change between the two is lost
	events, unsubscribe := f.changes.Subscribe(ctx)

	records, err := f.loader.ListByScope(ctx, scope)
	if err != nil {
		unsubscribe()
		cancelCtx()
		return nil, nil, err
	}

	out := make(chan Snapshot, 1)
	var seq uint64 = 1
	out <- f.snapshot(seq, scope, period, records)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				records, err := f.reload(ctx, scope, ev.ID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					f.log.Warn().Err(err).Str("scope", scope.Key()).Str("event", ev.ID).Msg("reload snapshot")
					continue
				}
				seq++
				deliver(out, f.snapshot(seq, scope, period, records))
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			<-done
		})
	}
	return out, cancel, nil
}

// reload shares one store read between subscribers of the same scope reacting to the same event.
func (f *Feed) reload(ctx context.Context, scope expense.QuerySpec, eventID string) ([]entity.ExpenseRecord, error) {
	ch := f.group.DoChan(scope.Key()+"#"+eventID, func() (interface{}, error) {
		// shared read: one subscriber leaving must not fail it for the others
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
		defer cancel()
		return f.loader.ListByScope(loadCtx, scope)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]entity.ExpenseRecord), nil
	}
}

func (f *Feed) snapshot(seq uint64, scope expense.QuerySpec, period expense.Period, records []entity.ExpenseRecord) Snapshot {
	at := f.now()
	// copy: the slice may be shared with other subscribers through singleflight
	visible := period.Filter(append([]entity.ExpenseRecord(nil), records...), at)
	return Snapshot{
		Seq:     seq,
		Scope:   scope,
		Period:  period,
		Records: visible,
		Summary: expense.Summarize(visible),
		At:      at,
	}
}

// deliver replaces an unread snapshot with s. Only the feed goroutine writes to out.
func deliver(out chan Snapshot, s Snapshot) {
	select {
	case out <- s:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	out <- s
}
