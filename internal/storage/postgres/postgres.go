// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB — подмножество pgxpool.Pool, которое нужно хранилищу
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{db: db}
}

// classify добавляет к ошибке вид: недоступность БД или ошибка запроса
func classify(op string, err error) error {
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s: %w", storage.ErrConnection, op, err)
	}
	return fmt.Errorf("%w: %s: %w", storage.ErrQuery, op, err)
}

// === ExpenseReader ===

func (s *Storage) FetchForDate(ctx context.Context, date time.Time) ([]domain.Expense, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, expense_date, amount, category, notes
		FROM expenses
		WHERE expense_date = $1
		ORDER BY id
	`, domain.Day(date))
	if err != nil {
		return nil, classify("fetch expenses for date", err)
	}
	return scanExpenses(rows)
}

func (s *Storage) FetchAll(ctx context.Context) ([]domain.Expense, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, expense_date, amount, category, notes
		FROM expenses
		ORDER BY expense_date, id
	`)
	if err != nil {
		return nil, classify("fetch all expenses", err)
	}
	return scanExpenses(rows)
}

func scanExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		var category string
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &category, &e.Notes); err != nil {
			return nil, classify("scan expense", err)
		}
		e.Category = domain.Category(category)
		e.Date = domain.Day(e.Date)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("rows error", err)
	}
	return expenses, nil
}

// === ExpenseWriter ===

func (s *Storage) Insert(ctx context.Context, e domain.Expense) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO expenses (expense_date, amount, category, notes)
		VALUES ($1, $2, $3, $4)
	`, domain.Day(e.Date), e.Amount, string(e.Category), e.Notes)
	if err != nil {
		return classify("insert expense", err)
	}
	slog.Debug("Expense inserted", "date", e.Date.Format(domain.DateLayout), "category", e.Category)
	return nil
}

func (s *Storage) DeleteForDate(ctx context.Context, date time.Time) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM expenses WHERE expense_date = $1", domain.Day(date))
	if err != nil {
		return classify("delete expenses for date", err)
	}
	slog.Debug("Expenses deleted", "date", date.Format(domain.DateLayout), "rows", tag.RowsAffected())
	return nil
}

func (s *Storage) ReplaceForDate(ctx context.Context, date time.Time, expenses []domain.Expense) error {
	day := domain.Day(date)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return classify("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM expenses WHERE expense_date = $1", day); err != nil {
		return classify("clear old expenses", err)
	}

	for _, e := range expenses {
		_, err := tx.Exec(ctx, `
			INSERT INTO expenses (expense_date, amount, category, notes)
			VALUES ($1, $2, $3, $4)
		`, day, e.Amount, string(e.Category), e.Notes)
		if err != nil {
			return classify(fmt.Sprintf("insert expense %q", e.Category), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit tx", err)
	}

	slog.Debug("ReplaceForDate completed", "date", day.Format(domain.DateLayout), "count", len(expenses))
	return nil
}

// === SummaryStorage ===

func (s *Storage) FetchSummary(ctx context.Context, start, end time.Time) ([]domain.CategoryTotal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT category, SUM(amount) AS total
		FROM expenses
		WHERE expense_date BETWEEN $1 AND $2
		GROUP BY category
	`, domain.Day(start), domain.Day(end))
	if err != nil {
		return nil, classify("fetch expense summary", err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var t domain.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, classify("scan summary", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("rows error", err)
	}
	return totals, nil
}
