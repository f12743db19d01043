// internal/storage/sqlite/sqlite.go
package sqlite

import (
	"context"
	"database/sql"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
	"expense-tracker/internal/storage/migrations"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Storage — встраиваемый бэкенд на SQLite, даты хранятся строками YYYY-MM-DD
type Storage struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file and applies migrations.
func Open(ctx context.Context, path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db directory: %w", storage.ErrConnection, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", storage.ErrConnection, err)
	}
	// один писатель, иначе SQLITE_BUSY на параллельных транзакциях
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %w", storage.ErrConnection, err)
	}
	if err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func queryErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", storage.ErrQuery, op, err)
}

func (s *Storage) FetchForDate(ctx context.Context, date time.Time) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expense_date, amount, category, notes
		FROM expenses
		WHERE expense_date = ?
		ORDER BY id
	`, date.Format(domain.DateLayout))
	if err != nil {
		return nil, queryErr("fetch expenses for date", err)
	}
	return scanExpenses(rows)
}

func (s *Storage) FetchAll(ctx context.Context) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expense_date, amount, category, notes
		FROM expenses
		ORDER BY expense_date, id
	`)
	if err != nil {
		return nil, queryErr("fetch all expenses", err)
	}
	return scanExpenses(rows)
}

func scanExpenses(rows *sql.Rows) ([]domain.Expense, error) {
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var (
			e        domain.Expense
			date     string
			category string
		)
		if err := rows.Scan(&e.ID, &date, &e.Amount, &category, &e.Notes); err != nil {
			return nil, queryErr("scan expense", err)
		}
		d, err := domain.ParseDay(date)
		if err != nil {
			return nil, queryErr("parse expense_date", err)
		}
		e.Date = d
		e.Category = domain.Category(category)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("rows error", err)
	}
	return expenses, nil
}

func (s *Storage) Insert(ctx context.Context, e domain.Expense) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (expense_date, amount, category, notes)
		VALUES (?, ?, ?, ?)
	`, e.Date.Format(domain.DateLayout), e.Amount.String(), string(e.Category), e.Notes)
	if err != nil {
		return queryErr("insert expense", err)
	}
	return nil
}

func (s *Storage) DeleteForDate(ctx context.Context, date time.Time) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE expense_date = ?", date.Format(domain.DateLayout)); err != nil {
		return queryErr("delete expenses for date", err)
	}
	return nil
}

func (s *Storage) ReplaceForDate(ctx context.Context, date time.Time, expenses []domain.Expense) error {
	day := date.Format(domain.DateLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return queryErr("begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE expense_date = ?", day); err != nil {
		return queryErr("clear old expenses", err)
	}
	for _, e := range expenses {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (expense_date, amount, category, notes)
			VALUES (?, ?, ?, ?)
		`, day, e.Amount.String(), string(e.Category), e.Notes)
		if err != nil {
			return queryErr(fmt.Sprintf("insert expense %q", e.Category), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return queryErr("commit tx", err)
	}
	slog.Debug("ReplaceForDate completed", "date", day, "count", len(expenses), "backend", "sqlite")
	return nil
}

func (s *Storage) FetchSummary(ctx context.Context, start, end time.Time) ([]domain.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount) AS total
		FROM expenses
		WHERE expense_date BETWEEN ? AND ?
		GROUP BY category
	`, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if err != nil {
		return nil, queryErr("fetch expense summary", err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var (
			t     domain.CategoryTotal
			total decimal.Decimal
		)
		if err := rows.Scan(&t.Category, &total); err != nil {
			return nil, queryErr("scan summary", err)
		}
		// SUM в SQLite считает во float
		t.Total = total.Round(2)
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("rows error", err)
	}
	return totals, nil
}
