package expense

import "github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"

// Draft in-progress edit of one record, kept apart from the live snapshot
// and submitted only on an explicit save.
type Draft struct {
	Description string
	Amount      float64
	Category    string
}

// DraftOf copies the editable fields of r.
func DraftOf(r entity.ExpenseRecord) Draft {
	return Draft{Description: r.Description, Amount: r.Amount, Category: r.Category}
}

// Apply returns r with the three editable fields replaced; id, owner and createdAt are kept.
func (d Draft) Apply(r entity.ExpenseRecord) entity.ExpenseRecord {
	r.Description = d.Description
	r.Amount = d.Amount
	r.Category = d.Category
	return r
}
