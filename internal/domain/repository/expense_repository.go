package repository

import (
	"context"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
)

//go:generate mockgen -source=expense_repository.go -destination=mock/expense_repository_mock.go -package=mock

// ExpenseRepository persistence port for expense records.
//
// Every read and write is restricted by a non-empty QuerySpec; callers never
// pass an empty spec. Records without an owner are invisible to all of them.
type ExpenseRepository interface {
	// Create stores e and fills in the store-assigned ID.
	Create(ctx context.Context, e *entity.ExpenseRecord) error
	// GetByID returns (nil, nil) when no record in scope has that id.
	GetByID(ctx context.Context, id string, scope expense.QuerySpec) (*entity.ExpenseRecord, error)
	ListByScope(ctx context.Context, scope expense.QuerySpec) ([]entity.ExpenseRecord, error)
	// UpdateFields overwrites description, amount and category only. Last writer wins.
	UpdateFields(ctx context.Context, id string, scope expense.QuerySpec, d expense.Draft) error
	// Delete is unconditional; a missing id is not an error.
	Delete(ctx context.Context, id string, scope expense.QuerySpec) error
}
