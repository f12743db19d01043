// cmd/api/main.go
package main

import (
	"context"
	"expense-tracker/internal/analytics"
	"expense-tracker/internal/backend"
	"expense-tracker/internal/config"
	"expense-tracker/internal/handler"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad()

	// Настройка логгера
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	store, closeStore, err := backend.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("Не удалось подключиться к БД", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	gin.SetMode(cfg.GinMode)
	router := handler.NewRouter(store, analytics.NewService(store))

	slog.Info("🚀 Сервер запущен", "addr", cfg.Addr(), "backend", cfg.DB.Backend)
	if err := router.Run(cfg.Addr()); err != nil {
		slog.Error("Сервер завершил работу с ошибкой", "error", err)
	}
}
