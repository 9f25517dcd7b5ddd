package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

var expenseColumns = []string{"id", "description", "amount", "category", "owner_id", "created_at"}

// ExpenseRepo ExpenseRepository over PostgreSQL.
// Rows with a NULL owner_id are legacy data and are excluded from every statement.
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository builds the expense adapter. Pass a pool or a tx.
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

// scopeWhere translates a QuerySpec into a WHERE clause.
func scopeWhere(scope expense.QuerySpec) (sq.Sqlizer, error) {
	switch scope.Kind {
	case expense.ScopeAll:
		return sq.NotEq{"owner_id": nil}, nil
	case expense.ScopeOwner:
		return sq.And{sq.NotEq{"owner_id": nil}, sq.Eq{"owner_id": scope.OwnerID}}, nil
	default:
		return nil, domain.ErrForbidden
	}
}

// Create inserts e and reads back the generated id.
func (r *ExpenseRepo) Create(ctx context.Context, e *entity.ExpenseRecord) error {
	if e.OwnerID == "" {
		return fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	query, args, err := psql.Insert("expenses").
		Columns("description", "amount", "category", "owner_id", "created_at").
		Values(e.Description, amountParam(e.Amount), e.Category, e.OwnerID, e.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert expense: %w", err)
	}
	if err := r.q.QueryRow(ctx, query, args...).Scan(&e.ID); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepo) GetByID(ctx context.Context, id string, scope expense.QuerySpec) (*entity.ExpenseRecord, error) {
	where, err := scopeWhere(scope)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"id": id}).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select expense: %w", err)
	}
	e, err := scanExpense(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListByScope returns the scope's records, newest first.
func (r *ExpenseRepo) ListByScope(ctx context.Context, scope expense.QuerySpec) ([]entity.ExpenseRecord, error) {
	where, err := scopeWhere(scope)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select(expenseColumns...).
		From("expenses").
		Where(where).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list expenses: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	list := make([]entity.ExpenseRecord, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// UpdateFields overwrites the three editable columns; zero rows affected is not an error.
func (r *ExpenseRepo) UpdateFields(ctx context.Context, id string, scope expense.QuerySpec, d expense.Draft) error {
	where, err := scopeWhere(scope)
	if err != nil {
		return err
	}
	query, args, err := psql.Update("expenses").
		Set("description", d.Description).
		Set("amount", amountParam(d.Amount)).
		Set("category", d.Category).
		Where(sq.Eq{"id": id}).
		Where(where).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update expense: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// Delete removes id within scope; a missing row is not an error.
func (r *ExpenseRepo) Delete(ctx context.Context, id string, scope expense.QuerySpec) error {
	where, err := scopeWhere(scope)
	if err != nil {
		return err
	}
	query, args, err := psql.Delete("expenses").
		Where(sq.Eq{"id": id}).
		Where(where).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete expense: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func scanExpense(row pgx.Row) (*entity.ExpenseRecord, error) {
	var (
		e      entity.ExpenseRecord
		amount decimal.Decimal
	)
	if err := row.Scan(&e.ID, &e.Description, &amount, &e.Category, &e.OwnerID, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Amount = amountValue(amount)
	return &e, nil
}

// amountParam keeps every digit of the shortest float representation; the
// column is unconstrained NUMERIC so nothing is rounded on the way in.
func amountParam(a float64) decimal.Decimal { return decimal.NewFromFloat(a) }

func amountValue(d decimal.Decimal) float64 { return d.InexactFloat64() }
