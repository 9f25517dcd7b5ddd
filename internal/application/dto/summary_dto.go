package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotalResponse total of one category, rounded to cents.
type CategoryTotalResponse struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
}

// SummaryResponse totals of one snapshot plus the records it was computed from.
type SummaryResponse struct {
	Scope       string                  `json:"scope"`
	Period      string                  `json:"period"`
	Total       decimal.Decimal         `json:"total"`
	Count       int                     `json:"count"`
	ByCategory  []CategoryTotalResponse `json:"by_category"`
	Records     []ExpenseResponse       `json:"records"`
	Seq         uint64                  `json:"seq"`
	GeneratedAt time.Time               `json:"generated_at"`
}
