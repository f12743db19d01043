// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"expense-tracker/internal/domain"
	"time"
)

var (
	// ErrConnection — хранилище недоступно
	ErrConnection = errors.New("storage: connection failure")
	// ErrQuery — некорректный запрос или нарушение ограничения
	ErrQuery = errors.New("storage: query failure")
)

type ExpenseReader interface {
	FetchForDate(ctx context.Context, date time.Time) ([]domain.Expense, error)
	FetchAll(ctx context.Context) ([]domain.Expense, error)
}

type ExpenseWriter interface {
	Insert(ctx context.Context, e domain.Expense) error
	DeleteForDate(ctx context.Context, date time.Time) error
	// ReplaceForDate deletes the date's records and inserts the new set in one transaction.
	ReplaceForDate(ctx context.Context, date time.Time, expenses []domain.Expense) error
}

type SummaryStorage interface {
	FetchSummary(ctx context.Context, start, end time.Time) ([]domain.CategoryTotal, error)
}

type ExpenseStorage interface {
	ExpenseReader
	ExpenseWriter
	SummaryStorage
}
