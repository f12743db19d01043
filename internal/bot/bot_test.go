// internal/bot/bot_test.go
package bot

import (
	"context"
	"errors"
	"expense-tracker/internal/analytics"
	"expense-tracker/internal/domain"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type memStore struct {
	byDate       map[time.Time][]domain.Expense
	err          error
	summaryCalls int
}

func newMemStore() *memStore {
	return &memStore{byDate: map[time.Time][]domain.Expense{}}
}

func (m *memStore) FetchForDate(_ context.Context, date time.Time) ([]domain.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Expense(nil), m.byDate[date]...), nil
}

func (m *memStore) Insert(_ context.Context, e domain.Expense) error {
	if m.err != nil {
		return m.err
	}
	m.byDate[e.Date] = append(m.byDate[e.Date], e)
	return nil
}

func (m *memStore) FetchSummary(_ context.Context, start, end time.Time) ([]domain.CategoryTotal, error) {
	m.summaryCalls++
	if m.err != nil {
		return nil, m.err
	}
	totals := map[string]decimal.Decimal{}
	for date, list := range m.byDate {
		if date.Before(start) || date.After(end) {
			continue
		}
		for _, e := range list {
			totals[string(e.Category)] = totals[string(e.Category)].Add(e.Amount)
		}
	}
	var out []domain.CategoryTotal
	for c, t := range totals {
		out = append(out, domain.CategoryTotal{Category: c, Total: t})
	}
	return out, nil
}

func newTestBot(store *memStore) *Bot {
	b := New(store, analytics.NewService(store))
	b.now = func() time.Time { return time.Date(2024, time.September, 15, 18, 30, 0, 0, time.UTC) }
	return b
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustHandle(t *testing.T, b *Bot, text string) string {
	t.Helper()
	reply, err := b.Handle(context.Background(), text)
	if err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
	return reply
}

func TestHelp(t *testing.T) {
	b := newTestBot(newMemStore())

	for _, cmd := range []string{"/help", "/start", "/help@expense_bot"} {
		if reply := mustHandle(t, b, cmd); !strings.Contains(reply, "/monthly") {
			t.Errorf("%s: unexpected reply %q", cmd, reply)
		}
	}
	if reply := mustHandle(t, b, "/unknown"); !strings.Contains(reply, "/help") {
		t.Errorf("unknown command reply = %q", reply)
	}
}

func TestAddAppendsToToday(t *testing.T) {
	store := newMemStore()
	today := day(2024, time.September, 15)
	store.byDate[today] = []domain.Expense{{Date: today, Amount: decimal.NewFromInt(20), Category: "Rent"}}
	b := newTestBot(store)

	reply := mustHandle(t, b, "/add 12,5 food  business   lunch")
	if !strings.Contains(reply, "12.50") || !strings.Contains(reply, "2024-09-15") {
		t.Fatalf("reply = %q", reply)
	}

	got := store.byDate[today]
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(got))
	}
	added := got[1]
	if added.Category != "Food" || added.Notes != "business lunch" || !added.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("added = %+v", added)
	}
}

// dayUnreadable — день нельзя прочитать, но вставка работает
type dayUnreadable struct {
	*memStore
}

func (dayUnreadable) FetchForDate(context.Context, time.Time) ([]domain.Expense, error) {
	return nil, errors.New("read not allowed")
}

func TestAddDoesNotRewriteDay(t *testing.T) {
	mem := newMemStore()
	today := day(2024, time.September, 15)
	// запись, сохранённая через API параллельно с ботом
	mem.byDate[today] = []domain.Expense{{Date: today, Amount: decimal.NewFromInt(20), Category: "Rent"}}

	b := New(dayUnreadable{mem}, analytics.NewService(mem))
	b.now = func() time.Time { return today.Add(10 * time.Hour) }

	if _, err := b.Handle(context.Background(), "/add 5 Other"); err != nil {
		t.Fatalf("/add must not read the day: %v", err)
	}
	got := mem.byDate[today]
	if len(got) != 2 || got[0].Category != "Rent" || got[1].Category != "Other" {
		t.Fatalf("stored = %+v", got)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	store := newMemStore()
	b := newTestBot(store)

	cases := map[string]string{
		"/add":              "Используй",
		"/add 10":           "Используй",
		"/add abc Food":     "Неверная сумма",
		"/add -5 Food":      "Неверная сумма",
		"/add 10 Groceries": "Неизвестная категория",
	}
	for text, want := range cases {
		if reply := mustHandle(t, b, text); !strings.Contains(reply, want) {
			t.Errorf("%q: reply %q, want %q", text, reply, want)
		}
	}
	if len(store.byDate) != 0 {
		t.Fatal("nothing must be stored on bad input")
	}
}

func TestDay(t *testing.T) {
	store := newMemStore()
	d := day(2024, time.September, 1)
	store.byDate[d] = []domain.Expense{
		{Date: d, Amount: decimal.NewFromInt(100), Category: "Food", Notes: "set_menu"},
		{Date: d, Amount: decimal.RequireFromString("50.5"), Category: "Other"},
	}
	b := newTestBot(store)

	reply := mustHandle(t, b, "/day 2024-09-01")
	for _, want := range []string{"Food: 100.00", `set\_menu`, "Other: 50.50", "150.50"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply misses %q: %s", want, reply)
		}
	}

	if reply := mustHandle(t, b, "/day"); !strings.Contains(reply, "2024-09-15") {
		t.Errorf("default day reply = %q", reply)
	}
	if reply := mustHandle(t, b, "/day 01.09.2024"); !strings.Contains(reply, "ГГГГ-ММ-ДД") {
		t.Errorf("bad date reply = %q", reply)
	}
}

func TestSummaryDefaultsToCurrentMonth(t *testing.T) {
	store := newMemStore()
	store.byDate[day(2024, time.September, 2)] = []domain.Expense{{Amount: decimal.NewFromInt(100), Category: "Food"}}
	store.byDate[day(2024, time.September, 3)] = []domain.Expense{{Amount: decimal.NewFromInt(200), Category: "Rent"}}
	store.byDate[day(2024, time.August, 31)] = []domain.Expense{{Amount: decimal.NewFromInt(999), Category: "Other"}}
	b := newTestBot(store)

	reply := mustHandle(t, b, "/summary")
	if !strings.Contains(reply, "2024-09-01") || !strings.Contains(reply, "2024-09-15") {
		t.Fatalf("range missing: %s", reply)
	}
	rent := strings.Index(reply, "Rent: 200.00 (66.67%)")
	food := strings.Index(reply, "Food: 100.00 (33.33%)")
	if rent < 0 || food < 0 || rent > food {
		t.Fatalf("unexpected breakdown: %s", reply)
	}
	if strings.Contains(reply, "Other") {
		t.Fatalf("August expense leaked into September: %s", reply)
	}
}

func TestSummaryInvalidRange(t *testing.T) {
	store := newMemStore()
	b := newTestBot(store)

	reply := mustHandle(t, b, "/summary 2024-09-30 2024-09-01")
	if !strings.Contains(reply, analytics.ErrInvalidRange.Error()) {
		t.Fatalf("reply = %q", reply)
	}
	if store.summaryCalls != 0 {
		t.Fatalf("store called %d times", store.summaryCalls)
	}
}

func TestMonthly(t *testing.T) {
	store := newMemStore()
	store.byDate[day(2024, time.August, 10)] = []domain.Expense{{Amount: decimal.NewFromInt(50), Category: "Food"}}
	b := newTestBot(store)

	reply := mustHandle(t, b, "/monthly 2024-08-20 2024-09-01")
	aug := strings.Index(reply, "2024-08")
	sep := strings.Index(reply, "2024-09")
	if aug < 0 || sep < 0 || aug > sep {
		t.Fatalf("months out of order: %s", reply)
	}
	if !strings.Contains(reply, "Food: 50.00 (100.00%)") || !strings.Contains(reply, "Нет данных") {
		t.Fatalf("reply = %s", reply)
	}
}

func TestMonthlyInvalidRange(t *testing.T) {
	store := newMemStore()
	b := newTestBot(store)

	reply := mustHandle(t, b, "/monthly 2024-10-01 2024-09-30")
	if !strings.Contains(reply, analytics.ErrInvalidRange.Error()) {
		t.Fatalf("reply = %q", reply)
	}
	if store.summaryCalls != 0 {
		t.Fatalf("store called %d times", store.summaryCalls)
	}
	if reply := mustHandle(t, b, "/monthly 2024-10-01"); !strings.Contains(reply, "Используй") {
		t.Fatalf("usage reply = %q", reply)
	}
}

func TestStoreFailurePropagates(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	b := newTestBot(store)

	for _, text := range []string{"/add 10 Food", "/day", "/summary", "/monthly 2024-08-01 2024-09-30"} {
		if _, err := b.Handle(context.Background(), text); err == nil {
			t.Errorf("%q: expected error", text)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	got := SanitizeInput("  /add\t10 Food\n notes ")
	if got != "/add 10 Food notes" {
		t.Fatalf("got %q", got)
	}
}

func TestFixEncoding(t *testing.T) {
	if got := FixEncoding("обед"); got != "обед" {
		t.Fatalf("valid utf-8 changed: %q", got)
	}
	// "обед" в windows-1251
	cp1251 := string([]byte{0xEE, 0xE1, 0xE5, 0xE4})
	if got := FixEncoding(cp1251); got != "обед" {
		t.Fatalf("got %q", got)
	}
}
