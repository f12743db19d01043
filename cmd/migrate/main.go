// cmd/migrate/main.go
package main

import (
	"context"
	"database/sql"
	"expense-tracker/internal/config"
	"expense-tracker/internal/storage/migrations"
	"expense-tracker/internal/storage/sqlite"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	cfg := config.MustLoad()
	ctx := context.Background()

	// sqlite.Open сам применяет миграции
	if cfg.DB.Backend == config.BackendSQLite {
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			slog.Error("Миграции завершились с ошибкой", "error", err)
			os.Exit(1)
		}
		_ = s.Close()
		slog.Info("✅ Миграции применены", "backend", cfg.DB.Backend, "path", cfg.SQLitePath)
		return
	}

	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		slog.Error("Не удалось открыть БД", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Применяем миграции", "backend", cfg.DB.Backend, "host", cfg.DB.Host)

	if err := migrations.Up(ctx, db, migrations.Postgres); err != nil {
		slog.Error("Миграции завершились с ошибкой", "error", err)
		os.Exit(1)
	}

	slog.Info("✅ Миграции применены")
}
