// internal/analytics/analytics_test.go
package analytics

import (
	"context"
	"errors"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type fakeSummary struct {
	byMonth map[string][]domain.CategoryTotal
	failOn  string
	calls   int
}

func (f *fakeSummary) FetchSummary(_ context.Context, start, _ time.Time) ([]domain.CategoryTotal, error) {
	f.calls++
	label := start.Format(domain.MonthLayout)
	if label == f.failOn {
		return nil, storage.ErrConnection
	}
	return f.byMonth[label], nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBreakdownPercentages(t *testing.T) {
	store := &fakeSummary{byMonth: map[string][]domain.CategoryTotal{
		"2024-08": {{Category: "Food", Total: dec("100")}, {Category: "Rent", Total: dec("200")}},
	}}
	got, err := NewService(store).Breakdown(context.Background(), day(2024, 8, 1), day(2024, 8, 3))
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}

	want := map[string][2]string{"Food": {"100", "33.33"}, "Rent": {"200", "66.67"}}
	if len(got) != len(want) {
		t.Fatalf("unexpected breakdown: %v", got)
	}
	for c, w := range want {
		if !got[c].Total.Equal(dec(w[0])) || !got[c].Percentage.Equal(dec(w[1])) {
			t.Errorf("%s = %+v, want total %s pct %s", c, got[c], w[0], w[1])
		}
	}
}

func TestBreakdownEmptyRange(t *testing.T) {
	got, err := NewService(&fakeSummary{}).Breakdown(context.Background(), day(2024, 1, 1), day(2024, 1, 2))
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty breakdown, got %#v", got)
	}
}

func TestBuildBreakdownZeroGrandTotal(t *testing.T) {
	got := BuildBreakdown([]domain.CategoryTotal{
		{Category: "Food", Total: decimal.Zero},
		{Category: "Other", Total: decimal.Zero},
	})
	for c, stat := range got {
		if !stat.Percentage.IsZero() {
			t.Errorf("%s percentage = %s, want 0", c, stat.Percentage)
		}
	}
}

func TestBuildBreakdownSumsToHundred(t *testing.T) {
	cases := [][]string{
		{"1", "1", "1"},
		{"10.01", "20.02", "30.03", "0.07"},
		{"333", "333", "334"},
		{"0.01", "99.99"},
	}
	for _, totals := range cases {
		var rows []domain.CategoryTotal
		for i, v := range totals {
			rows = append(rows, domain.CategoryTotal{Category: string(rune('A' + i)), Total: dec(v)})
		}
		sum := decimal.Zero
		for _, stat := range BuildBreakdown(rows) {
			sum = sum.Add(stat.Percentage)
		}
		if sum.Sub(hundred).Abs().GreaterThan(dec("0.05")) {
			t.Errorf("totals %v: percentages sum to %s", totals, sum)
		}
	}
}

func TestMonths(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       []string
	}{
		{"two months", day(2024, 8, 15), day(2024, 9, 2), []string{"2024-08", "2024-09"}},
		{"same month", day(2024, 8, 31), day(2024, 8, 1), []string{"2024-08"}},
		{"year rollover", day(2024, 11, 30), day(2025, 2, 1), []string{"2024-11", "2024-12", "2025-01", "2025-02"}},
		{"leap february", day(2024, 2, 10), day(2024, 2, 10), []string{"2024-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, err := Months(tt.start, tt.end)
			if err != nil {
				t.Fatalf("Months: %v", err)
			}
			var labels []string
			for _, m := range months {
				labels = append(labels, m.Label)
			}
			if !reflect.DeepEqual(labels, tt.want) {
				t.Fatalf("labels = %v, want %v", labels, tt.want)
			}
		})
	}

	feb, _ := Months(day(2024, 2, 10), day(2024, 2, 10))
	if !feb[0].First.Equal(day(2024, 2, 1)) || !feb[0].Last.Equal(day(2024, 2, 29)) {
		t.Errorf("february bounds = %s..%s", feb[0].First, feb[0].Last)
	}
}

func TestMonthlyBreakdownIncludesEmptyMonths(t *testing.T) {
	store := &fakeSummary{byMonth: map[string][]domain.CategoryTotal{
		"2024-08": {{Category: "Food", Total: dec("50")}},
		"2024-10": {{Category: "Rent", Total: dec("500")}, {Category: "Food", Total: dec("500")}},
	}}
	got, err := NewService(store).MonthlyBreakdown(context.Background(), day(2024, 8, 15), day(2024, 10, 2))
	if err != nil {
		t.Fatalf("MonthlyBreakdown: %v", err)
	}

	var labels []string
	for label := range got {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	if !reflect.DeepEqual(labels, []string{"2024-08", "2024-09", "2024-10"}) {
		t.Fatalf("labels = %v", labels)
	}
	if len(got["2024-09"]) != 0 {
		t.Errorf("expected empty september, got %v", got["2024-09"])
	}
	if !got["2024-10"]["Rent"].Percentage.Equal(dec("50")) {
		t.Errorf("october rent = %+v", got["2024-10"]["Rent"])
	}
	if store.calls != 3 {
		t.Errorf("expected 3 store calls, got %d", store.calls)
	}
}

func TestMonthlyBreakdownInvalidRange(t *testing.T) {
	store := &fakeSummary{}
	_, err := NewService(store).MonthlyBreakdown(context.Background(), day(2024, 10, 1), day(2024, 9, 30))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls)
	}
}

func TestMonthlyBreakdownFailFast(t *testing.T) {
	store := &fakeSummary{failOn: "2024-09"}
	got, err := NewService(store).MonthlyBreakdown(context.Background(), day(2024, 8, 1), day(2024, 12, 1))
	if !errors.Is(err, storage.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %v", got)
	}
	if store.calls != 2 {
		t.Fatalf("expected to stop after 2 calls, got %d", store.calls)
	}
}
