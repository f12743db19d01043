// internal/backend/backend.go
package backend

import (
	"context"
	"expense-tracker/internal/config"
	"expense-tracker/internal/storage"
	"expense-tracker/internal/storage/postgres"
	"expense-tracker/internal/storage/sqlite"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open connects the storage backend selected by DB_BACKEND.
// The returned func releases the pool / file handle.
func Open(ctx context.Context, cfg config.Config) (storage.ExpenseStorage, func(), error) {
	switch cfg.DB.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: create pool: %w", storage.ErrConnection, err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("%w: ping postgres: %w", storage.ErrConnection, err)
		}
		slog.Info("✅ Подключились к PostgreSQL", "host", cfg.DB.Host, "database", cfg.DB.Name)
		return postgres.NewStorage(pool), pool.Close, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("✅ Открыли SQLite", "path", cfg.SQLitePath)
		return s, func() { _ = s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.DB.Backend)
	}
}
