package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
)

// NewExpenseResponse maps a record.
func NewExpenseResponse(e entity.ExpenseRecord) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        e.Amount,
		Category:      e.Category,
		CategoryLabel: entity.CategoryLabel(e.Category),
		OwnerID:       e.OwnerID,
		CreatedAt:     e.CreatedAt,
	}
}

// NewExpenseList maps a snapshot.
func NewExpenseList(records []entity.ExpenseRecord) ExpenseListResponse {
	items := make([]ExpenseResponse, 0, len(records))
	for _, r := range records {
		items = append(items, NewExpenseResponse(r))
	}
	return ExpenseListResponse{Items: items, Count: len(items)}
}

// NewSummaryResponse maps a summary; float sums are rounded to cents only here.
func NewSummaryResponse(
	scope expense.QuerySpec,
	period expense.Period,
	records []entity.ExpenseRecord,
	s expense.Summary,
	seq uint64,
	at time.Time,
) *SummaryResponse {
	byCat := make([]CategoryTotalResponse, 0, len(s.ByCategory))
	for _, ct := range s.ByCategory {
		byCat = append(byCat, CategoryTotalResponse{
			Category: ct.Category,
			Label:    entity.CategoryLabel(ct.Category),
			Amount:   decimal.NewFromFloat(ct.Amount).Round(2),
		})
	}
	p := string(period)
	if p == "" {
		p = "all"
	}
	return &SummaryResponse{
		Scope:       scope.Key(),
		Period:      p,
		Total:       decimal.NewFromFloat(s.Total).Round(2),
		Count:       s.Count,
		ByCategory:  byCat,
		Records:     NewExpenseList(records).Items,
		Seq:         seq,
		GeneratedAt: at,
	}
}
