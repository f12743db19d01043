// internal/analytics/analytics.go
package analytics

import (
	"context"
	"errors"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRange — начало диапазона позже конца
var ErrInvalidRange = errors.New("start_date must be before or equal to end_date")

var hundred = decimal.NewFromInt(100)

type Service struct {
	store storage.SummaryStorage
}

func NewService(store storage.SummaryStorage) *Service {
	return &Service{store: store}
}

// Breakdown returns per-category totals and their share of the grand total
// for the inclusive range [start, end].
func (s *Service) Breakdown(ctx context.Context, start, end time.Time) (domain.Breakdown, error) {
	rows, err := s.store.FetchSummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}
	return BuildBreakdown(rows), nil
}

// BuildBreakdown computes percentages rounded to 2 places; all zero when the grand total is zero.
func BuildBreakdown(rows []domain.CategoryTotal) domain.Breakdown {
	grand := decimal.Zero
	for _, r := range rows {
		grand = grand.Add(r.Total)
	}

	breakdown := make(domain.Breakdown, len(rows))
	for _, r := range rows {
		pct := decimal.Zero
		if !grand.IsZero() {
			pct = r.Total.Mul(hundred).Div(grand).Round(2)
		}
		breakdown[r.Category] = domain.CategoryStat{Total: r.Total, Percentage: pct}
	}
	return breakdown
}

// Month — календарный месяц диапазона
type Month struct {
	Label string
	First time.Time
	Last  time.Time
}

// Months normalizes start to the first day of its month and end to the last day
// of its month, then lists every month in between.
func Months(start, end time.Time) ([]Month, error) {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	if first.After(last) {
		return nil, ErrInvalidRange
	}

	var months []Month
	y, m := first.Year(), first.Month()
	for y < last.Year() || (y == last.Year() && m <= last.Month()) {
		s := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		months = append(months, Month{
			Label: s.Format(domain.MonthLayout),
			First: s,
			Last:  s.AddDate(0, 1, -1),
		})
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
	return months, nil
}

// MonthlyBreakdown computes Breakdown for each calendar month of the range.
// Any failing month aborts the whole call.
func (s *Service) MonthlyBreakdown(ctx context.Context, start, end time.Time) (domain.MonthlyBreakdown, error) {
	months, err := Months(start, end)
	if err != nil {
		return nil, err
	}

	result := make(domain.MonthlyBreakdown, len(months))
	for _, m := range months {
		b, err := s.Breakdown(ctx, m.First, m.Last)
		if err != nil {
			slog.Error("Monthly breakdown failed", "month", m.Label, "error", err)
			return nil, fmt.Errorf("analytics for %s: %w", m.Label, err)
		}
		result[m.Label] = b
	}
	return result, nil
}
