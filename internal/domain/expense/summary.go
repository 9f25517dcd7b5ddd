package expense

import "github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"

// CategoryTotal sum of amounts for one stored category string.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// Summary totals of one snapshot.
type Summary struct {
	Total      float64
	ByCategory []CategoryTotal // first-seen order
	Count      int
}

// Summarize computes the totals of records from scratch.
// Categories outside the enumeration are summed under their stored key;
// records with an empty category count toward Total only.
func Summarize(records []entity.ExpenseRecord) Summary {
	s := Summary{Count: len(records)}
	index := make(map[string]int)
	for _, r := range records {
		s.Total += r.Amount
		if r.Category == "" {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(s.ByCategory)
			index[r.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryTotal{Category: r.Category})
		}
		s.ByCategory[i].Amount += r.Amount
	}
	return s
}

// CategoryAmount total for category c.
func (s Summary) CategoryAmount(c string) (float64, bool) {
	for _, ct := range s.ByCategory {
		if ct.Category == c {
			return ct.Amount, true
		}
	}
	return 0, false
}
