package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/infrastructure/memory"
)

func TestBroker_FanOut(t *testing.T) {
	b := memory.NewBroker()
	ctx := context.Background()

	a, cancelA := b.Subscribe(ctx)
	c, cancelC := b.Subscribe(ctx)
	defer cancelC()
	assert.Equal(t, 2, b.Subscribers())

	require.NoError(t, b.Publish(ctx, ports.ChangeEvent{ID: "ev-1", Op: ports.ChangeCreated}))
	assert.Equal(t, "ev-1", (<-a).ID)
	assert.Equal(t, "ev-1", (<-c).ID)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open, "channel closed after cancel")
	assert.Equal(t, 1, b.Subscribers())
}

func TestBroker_ContextEndReleasesSubscriber(t *testing.T) {
	b := memory.NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx)

	cancel()
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription not released")
	}
	assert.Equal(t, 0, b.Subscribers())
}

func TestBroker_FullBufferDoesNotBlock(t *testing.T) {
	b := memory.NewBroker()
	_, cancel := b.Subscribe(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			_ = b.Publish(context.Background(), ports.ChangeEvent{ID: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUserStore(t *testing.T) {
	s := memory.NewUserStore()
	ctx := context.Background()

	u := &entity.UserProfile{Email: "ana@example.com", Role: "employee"}
	require.NoError(t, s.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	assert.ErrorIs(t, s.Create(ctx, &entity.UserProfile{Email: "ANA@example.com"}), domain.ErrEmailAlreadyExists)

	got, err := s.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.True(t, s.SetRole(u.ID, entity.RoleSupervisor))
	got, err = s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "supervisor", got.Role)

	missing, err := s.GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExpenseStore_Scoping(t *testing.T) {
	s := memory.NewExpenseStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mine := &entity.ExpenseRecord{Description: "Taxi", Amount: 12, Category: "travel", OwnerID: "u1", CreatedAt: base}
	theirs := &entity.ExpenseRecord{Description: "Lunch", Amount: 8, Category: "meals", OwnerID: "u2", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, s.Create(ctx, mine))
	require.NoError(t, s.Create(ctx, theirs))
	s.Put(entity.ExpenseRecord{ID: "legacy", Description: "Old", Amount: 99, Category: "others"})

	own := expense.ScopeFor(entity.RoleEmployee, "u1")
	all := expense.ScopeFor(entity.RoleSupervisor, "boss")

	list, err := s.ListByScope(ctx, own)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	list, err = s.ListByScope(ctx, all)
	require.NoError(t, err)
	require.Len(t, list, 2, "records without an owner stay hidden")
	assert.Equal(t, theirs.ID, list[0].ID, "newest first")

	got, err := s.GetByID(ctx, theirs.ID, own)
	require.NoError(t, err)
	assert.Nil(t, got)

	// out-of-scope writes are silent no-ops
	require.NoError(t, s.UpdateFields(ctx, theirs.ID, own, expense.Draft{Description: "Hacked", Amount: 1, Category: "others"}))
	require.NoError(t, s.Delete(ctx, theirs.ID, own))
	got, err = s.GetByID(ctx, theirs.ID, all)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Description)

	require.NoError(t, s.UpdateFields(ctx, mine.ID, own, expense.Draft{Description: "Train", Amount: 30, Category: "travel"}))
	got, err = s.GetByID(ctx, mine.ID, own)
	require.NoError(t, err)
	assert.Equal(t, "Train", got.Description)
	assert.Equal(t, "u1", got.OwnerID)
	assert.True(t, got.CreatedAt.Equal(base))

	require.NoError(t, s.Delete(ctx, mine.ID, all))
	require.NoError(t, s.Delete(ctx, mine.ID, all), "deleting a missing id is not an error")
	list, err = s.ListByScope(ctx, own)
	require.NoError(t, err)
	assert.Empty(t, list)
}
