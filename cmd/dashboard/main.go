// cmd/dashboard/main.go
package main

import (
	"expense-tracker/internal/config"
	"expense-tracker/internal/dashboard"
	"log/slog"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	gin.SetMode(cfg.GinMode)
	client := dashboard.NewClient(cfg.Dashboard.APIURL, cfg.Dashboard.AnalyticsTimeout)
	router := dashboard.New(client).Router()

	addr := ":" + strconv.Itoa(cfg.Dashboard.Port)
	slog.Info("📊 Дашборд запущен", "addr", addr, "api", cfg.Dashboard.APIURL)
	if err := router.Run(addr); err != nil {
		slog.Error("Дашборд завершил работу с ошибкой", "error", err)
		os.Exit(1)
	}
}
