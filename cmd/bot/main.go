// cmd/bot/main.go
package main

import (
	"context"
	"expense-tracker/internal/analytics"
	"expense-tracker/internal/backend"
	"expense-tracker/internal/bot"
	"expense-tracker/internal/config"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// commandTimeout — сколько ждём хранилище на одну команду
const commandTimeout = 30 * time.Second

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.TelegramBotToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("Не удалось подключиться к БД", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		slog.Error("Не удалось подключиться к Telegram", "error", err)
		os.Exit(1)
	}
	slog.Info("🤖 Бот запущен", "username", api.Self.UserName, "backend", cfg.DB.Backend)

	b := bot.New(store, analytics.NewService(store))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			slog.Info("👋 Бот остановлен")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			reply(ctx, api, b, update.Message)
		}
	}
}

func reply(ctx context.Context, api *tgbotapi.BotAPI, b *bot.Bot, m *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	slog.Debug("📥 Received", "chat_id", m.Chat.ID, "text", m.Text)

	text, err := b.Handle(ctx, m.Text)
	if err != nil {
		slog.Error("Command failed", "chat_id", m.Chat.ID, "text", m.Text, "error", err)
		text = "❌ Ошибка сервера, попробуй позже"
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := api.Send(msg); err != nil {
		slog.Error("Send failed", "chat_id", m.Chat.ID, "error", err)
	}
}
