package entity

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Expense categories offered by the add form.
const (
	CategoryTravel         = "travel"
	CategoryMeals          = "meals"
	CategoryOfficeSupplies = "office supplies"
	CategoryEntertainment  = "entertainment"
	CategoryTraining       = "training"
	CategoryTransportation = "transportation"
	CategoryOthers         = "others"
)

// Categories in form order.
var Categories = []string{
	CategoryTravel,
	CategoryMeals,
	CategoryOfficeSupplies,
	CategoryEntertainment,
	CategoryTraining,
	CategoryTransportation,
	CategoryOthers,
}

// IsValidCategory reports whether c belongs to the fixed enumeration.
// Reads never validate: records with other strings are still summed under their key.
func IsValidCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// CategoryLabel display label, e.g. "office supplies" -> "Office Supplies".
func CategoryLabel(c string) string {
	if c == "" {
		return "Uncategorized"
	}
	// a Caser is stateful, build one per call
	return cases.Title(language.English).String(c)
}

// ExpenseRecord a single submitted expense.
type ExpenseRecord struct {
	ID          string
	Description string
	Amount      float64
	Category    string
	OwnerID     string
	CreatedAt   time.Time
}
