package dto

import "time"

// CreateExpenseRequest add-form payload. Amount is a pointer so a missing value is detectable.
type CreateExpenseRequest struct {
	Description string   `json:"description" form:"description" validate:"required"`
	Amount      *float64 `json:"amount" form:"amount" validate:"required"`
	Category    string   `json:"category" form:"category" validate:"required,expense_category"`
}

// UpdateExpenseRequest saved edit draft: the three editable fields of one record.
type UpdateExpenseRequest struct {
	Description string   `json:"description" form:"description" validate:"required"`
	Amount      *float64 `json:"amount" form:"amount" validate:"required"`
	Category    string   `json:"category" form:"category" validate:"required,expense_category"`
}

// ExpenseResponse one record.
type ExpenseResponse struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	OwnerID       string    `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExpenseListResponse records in the caller's scope.
type ExpenseListResponse struct {
	Items []ExpenseResponse `json:"items"`
	Count int               `json:"count"`
}

// CreateExpenseResponse id assigned by the store.
type CreateExpenseResponse struct {
	ID string `json:"id"`
}
