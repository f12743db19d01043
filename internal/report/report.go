// internal/report/report.go
package report

import (
	"expense-tracker/internal/domain"
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Table — категории по строкам, месяцы по столбцам
type Table struct {
	Months     []string
	Categories []string
	// Cells[i][j] — категория i в месяце j
	Cells [][]decimal.Decimal
	// Totals[j] — сумма расходов за месяц j (всегда в абсолютных значениях)
	Totals  []decimal.Decimal
	Percent bool
}

// TotalLabel names the totals row; in percent mode it carries absolute sums.
func (t Table) TotalLabel() string {
	if t.Percent {
		return "Total (absolute)"
	}
	return "Total"
}

// Monthly pivots a monthly breakdown. With percent set, each cell is the
// category's share of its month total, rounded to 2 places.
func Monthly(m domain.MonthlyBreakdown, percent bool) Table {
	t := Table{Percent: percent}

	seen := map[string]bool{}
	for label, b := range m {
		t.Months = append(t.Months, label)
		for c := range b {
			if !seen[c] {
				seen[c] = true
				t.Categories = append(t.Categories, c)
			}
		}
	}
	sort.Strings(t.Months)
	sort.Strings(t.Categories)

	t.Totals = make([]decimal.Decimal, len(t.Months))
	for j, label := range t.Months {
		for _, stat := range m[label] {
			t.Totals[j] = t.Totals[j].Add(stat.Total)
		}
	}

	t.Cells = make([][]decimal.Decimal, len(t.Categories))
	for i, c := range t.Categories {
		row := make([]decimal.Decimal, len(t.Months))
		for j, label := range t.Months {
			v := m[label][c].Total
			if percent {
				if t.Totals[j].IsZero() {
					v = decimal.Zero
				} else {
					v = v.Mul(hundred).Div(t.Totals[j]).Round(2)
				}
			}
			row[j] = v
		}
		t.Cells[i] = row
	}
	return t
}

// Row — строка разбивки для отображения
type Row struct {
	Category   string
	Total      decimal.Decimal
	Percentage decimal.Decimal
}

// Sorted returns breakdown rows ordered by percentage, largest first.
func Sorted(b domain.Breakdown) []Row {
	rows := make([]Row, 0, len(b))
	for c, stat := range b {
		rows = append(rows, Row{Category: c, Total: stat.Total, Percentage: stat.Percentage})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Percentage.Equal(rows[j].Percentage) {
			return rows[i].Percentage.GreaterThan(rows[j].Percentage)
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
