// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout — формат календарного дня в API и в БД
const DateLayout = "2006-01-02"

// MonthLayout — формат метки месяца "YYYY-MM"
const MonthLayout = "2006-01"

func init() {
	// суммы и проценты отдаём числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true
}

// Category — одна из фиксированного набора категорий
type Category string

const (
	CategoryRent          Category = "Rent"
	CategoryFood          Category = "Food"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

// Categories returns the fixed category set in form order.
func Categories() []Category {
	return []Category{CategoryRent, CategoryFood, CategoryShopping, CategoryEntertainment, CategoryOther}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID       int64           `json:"-"`
	Date     time.Time       `json:"-"`
	Amount   decimal.Decimal `json:"amount"`
	Category Category        `json:"category"`
	Notes    string          `json:"notes"`
}

// CategoryTotal — строка сгруппированной суммы из хранилища
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// CategoryStat — total + процент от общей суммы
type CategoryStat struct {
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Breakdown maps a category to its stat.
type Breakdown map[string]CategoryStat

// MonthlyBreakdown maps a "YYYY-MM" label to that month's breakdown.
type MonthlyBreakdown map[string]Breakdown

// Day truncates t to a calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a "YYYY-MM-DD" string.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
