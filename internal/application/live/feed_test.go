package live_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/live"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/memory"
)

type fixture struct {
	store   *memory.ExpenseStore
	broker  *memory.Broker
	feed    *live.Feed
	expense *usecase.ExpenseUseCase
}

func newFixture() fixture {
	store := memory.NewExpenseStore()
	broker := memory.NewBroker()
	return fixture{
		store:   store,
		broker:  broker,
		feed:    live.NewFeed(store, broker, zerolog.Nop()),
		expense: usecase.NewExpenseUseCase(store, broker, zerolog.Nop()),
	}
}

func amount(f float64) *float64 { return &f }

func next(t *testing.T, ch <-chan live.Snapshot) live.Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "feed closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
		return live.Snapshot{}
	}
}

// waitFor reads snapshots until cond holds.
func waitFor(t *testing.T, ch <-chan live.Snapshot, cond func(live.Snapshot) bool) live.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-ch:
			require.True(t, ok, "feed closed")
			if cond(s) {
				return s
			}
		case <-deadline:
			t.Fatal("condition never met")
			return live.Snapshot{}
		}
	}
}

func TestFeed_InitialSnapshotTotals(t *testing.T) {
	f := newFixture()
	for _, r := range []entity.ExpenseRecord{
		{Description: "Lunch", Amount: 12.50, Category: "meals", OwnerID: "u1", CreatedAt: time.Now()},
		{Description: "Coffee", Amount: 7.00, Category: "meals", OwnerID: "u1", CreatedAt: time.Now()},
		{Description: "Flight", Amount: 30.00, Category: "travel", OwnerID: "u1", CreatedAt: time.Now()},
	} {
		f.store.Put(r)
	}

	ch, cancel, err := f.feed.Subscribe(context.Background(), expense.ScopeFor(entity.RoleEmployee, "u1"), expense.PeriodAll)
	require.NoError(t, err)
	defer cancel()

	s := next(t, ch)
	assert.Equal(t, uint64(1), s.Seq)
	assert.InDelta(t, 49.50, s.Summary.Total, 1e-9)
	meals, _ := s.Summary.CategoryAmount("meals")
	travel, _ := s.Summary.CategoryAmount("travel")
	assert.InDelta(t, 19.50, meals, 1e-9)
	assert.InDelta(t, 30.00, travel, 1e-9)
}

func TestFeed_TotalsRecomputedOnEveryChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := entity.Identity{ID: "u1"}
	scope := expense.ScopeFor(entity.RoleEmployee, owner.ID)

	ch, cancel, err := f.feed.Subscribe(ctx, scope, expense.PeriodAll)
	require.NoError(t, err)
	defer cancel()
	assert.Equal(t, 0, next(t, ch).Summary.Count)

	created, err := f.expense.Create(ctx, owner, dto.CreateExpenseRequest{Description: "Taxi", Amount: amount(20), Category: "travel"})
	require.NoError(t, err)
	s := waitFor(t, ch, func(s live.Snapshot) bool { return s.Summary.Count == 1 })
	assert.InDelta(t, 20, s.Summary.Total, 1e-9)

	require.NoError(t, f.expense.Delete(ctx, scope, created.ID))
	s = waitFor(t, ch, func(s live.Snapshot) bool { return s.Summary.Count == 0 })
	assert.Zero(t, s.Summary.Total, "no drift after removal")
	assert.Empty(t, s.Summary.ByCategory)
}

func TestFeed_UpdateKeepsIdentityFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := entity.Identity{ID: "u1"}
	scope := expense.ScopeFor(entity.RoleEmployee, owner.ID)

	created, err := f.expense.Create(ctx, owner, dto.CreateExpenseRequest{Description: "Pens", Amount: amount(3), Category: "office supplies"})
	require.NoError(t, err)

	ch, cancel, err := f.feed.Subscribe(ctx, scope, expense.PeriodAll)
	require.NoError(t, err)
	defer cancel()
	before := next(t, ch).Records[0]

	require.NoError(t, f.expense.Update(ctx, scope, created.ID, dto.UpdateExpenseRequest{Description: "Paper", Amount: amount(9.5), Category: "others"}))
	s := waitFor(t, ch, func(s live.Snapshot) bool {
		return len(s.Records) == 1 && s.Records[0].Description == "Paper"
	})

	after := s.Records[0]
	assert.Equal(t, 9.5, after.Amount)
	assert.Equal(t, "others", after.Category)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.OwnerID, after.OwnerID)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestFeed_EmployeeSeesOnlyOwnRecords(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ch, cancel, err := f.feed.Subscribe(ctx, expense.ScopeFor(entity.RoleEmployee, "u1"), expense.PeriodAll)
	require.NoError(t, err)
	defer cancel()
	next(t, ch)

	_, err = f.expense.Create(ctx, entity.Identity{ID: "u2"}, dto.CreateExpenseRequest{Description: "Hotel", Amount: amount(100), Category: "travel"})
	require.NoError(t, err)
	_, err = f.expense.Create(ctx, entity.Identity{ID: "u1"}, dto.CreateExpenseRequest{Description: "Bus", Amount: amount(2), Category: "travel"})
	require.NoError(t, err)

	s := waitFor(t, ch, func(s live.Snapshot) bool { return s.Summary.Count == 1 })
	assert.Equal(t, "u1", s.Records[0].OwnerID)
	assert.InDelta(t, 2, s.Summary.Total, 1e-9)
}

func TestFeed_SlowConsumerSeesLatest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := entity.Identity{ID: "u1"}

	ch, cancel, err := f.feed.Subscribe(ctx, expense.ScopeFor(entity.RoleEmployee, owner.ID), expense.PeriodAll)
	require.NoError(t, err)
	defer cancel()

	// leave the initial snapshot unread while changes pile up
	for i := 0; i < 5; i++ {
		_, err := f.expense.Create(ctx, owner, dto.CreateExpenseRequest{Description: "Item", Amount: amount(1), Category: "others"})
		require.NoError(t, err)
	}

	var last uint64
	s := waitFor(t, ch, func(s live.Snapshot) bool {
		assert.Greater(t, s.Seq, last, "snapshots arrive in order")
		last = s.Seq
		return s.Summary.Count == 5
	})
	assert.InDelta(t, 5, s.Summary.Total, 1e-9)
}

func TestFeed_PeriodFilter(t *testing.T) {
	f := newFixture()
	f.store.Put(entity.ExpenseRecord{Description: "Now", Amount: 4, Category: "meals", OwnerID: "u1", CreatedAt: time.Now()})
	f.store.Put(entity.ExpenseRecord{Description: "Old", Amount: 40, Category: "meals", OwnerID: "u1", CreatedAt: time.Now().AddDate(-2, 0, 0)})

	ch, cancel, err := f.feed.Subscribe(context.Background(), expense.ScopeFor(entity.RoleSupervisor, "boss"), expense.PeriodYear)
	require.NoError(t, err)
	defer cancel()

	s := next(t, ch)
	assert.Equal(t, 1, s.Summary.Count)
	assert.InDelta(t, 4, s.Summary.Total, 1e-9)
}

func TestFeed_EmptyScopeNeverSubscribes(t *testing.T) {
	f := newFixture()

	_, _, err := f.feed.Subscribe(context.Background(), expense.ScopeFor(entity.RoleUnknown, "u1"), expense.PeriodAll)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, f.broker.Subscribers())
}

func TestFeed_CancelReleasesSubscription(t *testing.T) {
	f := newFixture()

	ch, cancel, err := f.feed.Subscribe(context.Background(), expense.ScopeFor(entity.RoleSupervisor, "boss"), expense.PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, 1, f.broker.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, f.broker.Subscribers())

	// drain: only the initial snapshot may remain before close
	for range ch {
	}
}

func TestFeed_ContextEndClosesStream(t *testing.T) {
	f := newFixture()
	ctx, stop := context.WithCancel(context.Background())

	ch, cancel, err := f.feed.Subscribe(ctx, expense.ScopeFor(entity.RoleSupervisor, "boss"), expense.PeriodAll)
	require.NoError(t, err)
	defer cancel()
	next(t, ch)

	stop()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed")
	}
}

type failingLoader struct{}

func (failingLoader) ListByScope(context.Context, expense.QuerySpec) ([]entity.ExpenseRecord, error) {
	return nil, errors.New("store unavailable")
}

func TestFeed_InitialLoadFailure(t *testing.T) {
	broker := memory.NewBroker()
	feed := live.NewFeed(failingLoader{}, broker, zerolog.Nop())

	_, _, err := feed.Subscribe(context.Background(), expense.ScopeFor(entity.RoleSupervisor, "boss"), expense.PeriodAll)
	assert.Error(t, err)
	assert.Equal(t, 0, broker.Subscribers(), "failed subscribe leaves nothing open")
}
