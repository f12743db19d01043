// internal/bot/bot.go
package bot

import (
	"context"
	"errors"
	"expense-tracker/internal/analytics"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/report"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

const helpText = "💸 *Учёт расходов*\n\n" +
	"Команды:\n" +
	"`/add 12.50 Food обед` — добавить расход за сегодня\n" +
	"`/day` или `/day 2024-09-01` — расходы за день\n" +
	"`/summary` или `/summary 2024-09-01 2024-09-30` — разбивка по категориям\n" +
	"`/monthly 2024-08-01 2024-10-31` — разбивка по месяцам\n" +
	"`/help` — эта справка"

// Store — то, что боту нужно от хранилища
type Store interface {
	FetchForDate(ctx context.Context, date time.Time) ([]domain.Expense, error)
	Insert(ctx context.Context, e domain.Expense) error
}

type Analytics interface {
	Breakdown(ctx context.Context, start, end time.Time) (domain.Breakdown, error)
	MonthlyBreakdown(ctx context.Context, start, end time.Time) (domain.MonthlyBreakdown, error)
}

// Bot turns chat commands into store and analytics calls.
// Telegram transport lives in cmd/bot.
type Bot struct {
	store     Store
	analytics Analytics
	now       func() time.Time
}

func New(store Store, svc Analytics) *Bot {
	return &Bot{store: store, analytics: svc, now: time.Now}
}

// Handle executes one command and returns the reply in Telegram Markdown.
// A non-nil error means the store or analytics call failed; bad input
// is answered with a usage hint instead.
func (b *Bot) Handle(ctx context.Context, text string) (string, error) {
	fields := strings.Fields(SanitizeInput(FixEncoding(text)))
	if len(fields) == 0 {
		return "Неизвестная команда. Напиши /help", nil
	}

	// "/add@my_bot" в группах
	cmd, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch cmd {
	case "/start", "/help":
		return helpText, nil
	case "/add":
		return b.add(ctx, args)
	case "/day":
		return b.day(ctx, args)
	case "/summary":
		return b.summary(ctx, args)
	case "/monthly":
		return b.monthly(ctx, args)
	default:
		return "Неизвестная команда. Напиши /help", nil
	}
}

func (b *Bot) today() time.Time {
	return domain.Day(b.now())
}

func (b *Bot) add(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "❌ Используй: /add Сумма Категория [заметка]", nil
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(args[0], ",", "."))
	if err != nil || !amount.IsPositive() {
		return fmt.Sprintf("❌ Неверная сумма: %q", args[0]), nil
	}
	category, ok := parseCategory(args[1])
	if !ok {
		return "❌ Неизвестная категория. Доступны: " + categoryNames(), nil
	}
	notes := strings.Join(args[2:], " ")

	date := b.today()
	// одна вставка, день не перечитываем
	err = b.store.Insert(ctx, domain.Expense{
		Date:     date,
		Amount:   amount.Round(2),
		Category: category,
		Notes:    notes,
	})
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", date.Format(domain.DateLayout), err)
	}

	slog.Info("Expense added via bot", "date", date.Format(domain.DateLayout), "category", category, "amount", amount.String())
	return fmt.Sprintf("✅ Сохранено за %s: %s — %s",
		date.Format(domain.DateLayout), escape(string(category)), amount.StringFixed(2)), nil
}

func (b *Bot) day(ctx context.Context, args []string) (string, error) {
	date := b.today()
	if len(args) > 0 {
		d, err := domain.ParseDay(args[0])
		if err != nil {
			return "❌ Дата в формате ГГГГ-ММ-ДД", nil
		}
		date = d
	}

	expenses, err := b.store.FetchForDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", date.Format(domain.DateLayout), err)
	}
	label := date.Format(domain.DateLayout)
	if len(expenses) == 0 {
		return "📭 Нет расходов за " + label, nil
	}

	total := decimal.Zero
	lines := []string{fmt.Sprintf("🧾 *Расходы за %s*", label)}
	for _, e := range expenses {
		line := fmt.Sprintf("- %s: %s", escape(string(e.Category)), e.Amount.StringFixed(2))
		if e.Notes != "" {
			line += " (" + escape(e.Notes) + ")"
		}
		lines = append(lines, line)
		total = total.Add(e.Amount)
	}
	lines = append(lines, fmt.Sprintf("\n*Итого:* %s", total.StringFixed(2)))
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) summary(ctx context.Context, args []string) (string, error) {
	today := b.today()
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := today
	if len(args) > 0 {
		var ok bool
		if start, end, ok = parseRange(args); !ok {
			return "❌ Используй: /summary ГГГГ-ММ-ДД ГГГГ-ММ-ДД", nil
		}
	}
	if start.After(end) {
		return "❌ " + analytics.ErrInvalidRange.Error(), nil
	}

	breakdown, err := b.analytics.Breakdown(ctx, start, end)
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf("📊 *%s — %s*", start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if len(breakdown) == 0 {
		return header + "\n📭 Нет данных", nil
	}
	return header + "\n" + formatBreakdown(breakdown), nil
}

func (b *Bot) monthly(ctx context.Context, args []string) (string, error) {
	start, end, ok := parseRange(args)
	if !ok {
		return "❌ Используй: /monthly ГГГГ-ММ-ДД ГГГГ-ММ-ДД", nil
	}

	monthly, err := b.analytics.MonthlyBreakdown(ctx, start, end)
	if errors.Is(err, analytics.ErrInvalidRange) {
		return "❌ " + err.Error(), nil
	}
	if err != nil {
		return "", err
	}

	labels := make([]string, 0, len(monthly))
	for label := range monthly {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var sections []string
	for _, label := range labels {
		section := fmt.Sprintf("📅 *%s*", label)
		if len(monthly[label]) == 0 {
			section += "\n📭 Нет данных"
		} else {
			section += "\n" + formatBreakdown(monthly[label])
		}
		sections = append(sections, section)
	}
	return strings.Join(sections, "\n\n"), nil
}

func formatBreakdown(b domain.Breakdown) string {
	var lines []string
	for _, r := range report.Sorted(b) {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s%%)", escape(r.Category), r.Total.StringFixed(2), r.Percentage.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}

func parseRange(args []string) (time.Time, time.Time, bool) {
	if len(args) != 2 {
		return time.Time{}, time.Time{}, false
	}
	start, err := domain.ParseDay(args[0])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := domain.ParseDay(args[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// parseCategory — без учёта регистра: "food" → Food
func parseCategory(s string) (domain.Category, bool) {
	for _, c := range domain.Categories() {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func categoryNames() string {
	names := make([]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// SanitizeInput replaces every whitespace rune with a plain space
// and collapses runs of spaces.
func SanitizeInput(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			sb.WriteRune(' ')
		} else {
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// FixEncoding пытается восстановить текст, пришедший в windows-1251
func FixEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	fixed, err := charmap.Windows1251.NewDecoder().String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}

	// не получилось — выкидываем битые байты
	return strings.ToValidUTF8(s, "")
}
