package expense

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
)

// Period optional reporting window of a summary.
type Period string

const (
	PeriodAll   Period = ""
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts "", "all", "week", "month" and "year".
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", "all":
		return PeriodAll, nil
	case string(PeriodWeek), string(PeriodMonth), string(PeriodYear):
		return Period(s), nil
	default:
		return PeriodAll, fmt.Errorf("%w: unknown period %q", domain.ErrInvalidInput, s)
	}
}

// Start beginning of the window containing t. Weeks start on Monday.
// PeriodAll returns the zero time.
func (p Period) Start(t time.Time) time.Time {
	cfg := &now.Config{WeekStartDay: time.Monday}
	switch p {
	case PeriodWeek:
		return cfg.With(t).BeginningOfWeek()
	case PeriodMonth:
		return cfg.With(t).BeginningOfMonth()
	case PeriodYear:
		return cfg.With(t).BeginningOfYear()
	default:
		return time.Time{}
	}
}

// Filter keeps records created inside the window that contains at.
// The input slice is never modified.
func (p Period) Filter(records []entity.ExpenseRecord, at time.Time) []entity.ExpenseRecord {
	if p == PeriodAll {
		return records
	}
	start := p.Start(at)
	out := make([]entity.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if !r.CreatedAt.Before(start) {
			out = append(out, r)
		}
	}
	return out
}
