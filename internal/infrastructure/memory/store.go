package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository"
)

var (
	_ repository.UserRepository    = (*UserStore)(nil)
	_ repository.ExpenseRepository = (*ExpenseStore)(nil)
)

// UserStore keeps profiles in memory, keyed by id.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]entity.UserProfile
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]entity.UserProfile)}
}

func (s *UserStore) Create(_ context.Context, u *entity.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*entity.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*entity.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// SetRole changes the role of a stored profile. Roles are assigned outside the
// application; this is how local runs and tests promote a supervisor.
func (s *UserStore) SetRole(id string, role entity.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false
	}
	u.Role = string(role)
	s.users[id] = u
	return true
}

// ExpenseStore keeps expense records in memory.
type ExpenseStore struct {
	mu      sync.RWMutex
	records map[string]entity.ExpenseRecord
}

// NewExpenseStore returns an empty store.
func NewExpenseStore() *ExpenseStore {
	return &ExpenseStore{records: make(map[string]entity.ExpenseRecord)}
}

func (s *ExpenseStore) Create(_ context.Context, e *entity.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.records[e.ID] = *e
	return nil
}

func (s *ExpenseStore) GetByID(_ context.Context, id string, scope expense.QuerySpec) (*entity.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok || !scope.Allows(r) {
		return nil, nil
	}
	return &r, nil
}

// ListByScope returns records newest first.
func (s *ExpenseStore) ListByScope(_ context.Context, scope expense.QuerySpec) ([]entity.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.ExpenseRecord, 0, len(s.records))
	for _, r := range s.records {
		if scope.Allows(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *ExpenseStore) UpdateFields(_ context.Context, id string, scope expense.QuerySpec, d expense.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok || !scope.Allows(r) {
		return nil
	}
	s.records[id] = d.Apply(r)
	return nil
}

func (s *ExpenseStore) Delete(_ context.Context, id string, scope expense.QuerySpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok && scope.Allows(r) {
		delete(s.records, id)
	}
	return nil
}

// Put stores r as is, including records without an owner. Used to load fixtures.
func (s *ExpenseStore) Put(r entity.ExpenseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.records[r.ID] = r
}
