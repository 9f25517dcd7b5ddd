// Package pdf renders the expense summary report.
//
// Page layout (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: EERIS expense summary  │  scope, period, date       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CATEGORY TOTALS: Category | Amount                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECORDS: Date | Description | Category | Owner | Amount     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
)

var _ ports.SummaryPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Palette ──────────────────────────────────────────────────────────────────
var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ────────────────────────────────────────────────────────────────
// MarotoPDFGenerator SummaryPDFGenerator on Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator builds the generator.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateSummaryPDF renders s and returns the document bytes.
func (g *MarotoPDFGenerator) GenerateSummaryPDF(_ context.Context, s *dto.SummaryResponse, requestedBy string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("pdf: nil summary")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Expense summary", true).
		WithAuthor(nonEmpty(requestedBy, "EERIS"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(s, requestedBy))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow("TOTALS BY CATEGORY"))
	m.AddRows(categoryRows(s.ByCategory)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRow(fmt.Sprintf("RECORDS (%d)", s.Count)))
	m.AddRows(recordHeaderRow())
	m.AddRows(recordRows(s.Records)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(s.Total))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sections ─────────────────────────────────────────────────────────────────

func headerRow(s *dto.SummaryResponse, requestedBy string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("EERIS", props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Expense summary", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Scope: "+s.Scope+"   Period: "+s.Period, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generated: "+s.GeneratedAt.Format("2006-01-02 15:04 MST"), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
			text.New("Requested by: "+nonEmpty(requestedBy, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func sectionRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func categoryRows(totals []dto.CategoryTotalResponse) []core.Row {
	if len(totals) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("No expenses in this period.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		))}
	}
	rows := make([]core.Row, 0, len(totals))
	for _, ct := range totals {
		rows = append(rows, row.New(6).Add(
			col.New(8).Add(text.New(ct.Label, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(formatMoney(ct.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func recordHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Date", 2, align.Left),
		h("Description", 4, align.Left),
		h("Category", 2, align.Left),
		h("Owner", 2, align.Left),
		h("Amount", 2, align.Right),
	)
}

func recordRows(records []dto.ExpenseResponse) []core.Row {
	rows := make([]core.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(r.CreatedAt.Format("2006-01-02"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(r.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(r.CategoryLabel, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(shortID(r.OwnerID), props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(formatMoney(decimal.NewFromFloat(r.Amount)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(formatMoney(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney "$1,234.50".
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + frac
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
