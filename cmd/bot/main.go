// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/storage"
	"finance-tracker/internal/storage/postgres"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const helpText = "Finance tracker bot\n\n" +
	"Commands:\n" +
	"/month — income and expense totals for the current month\n" +
	"/budgets — budget limits vs. spending for the current month\n\n" +
	"Link this chat to your account by setting telegram_chat_id on your profile (PUT /api/v1/me)."

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.MustLoad()
	if cfg.BotToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := postgres.NewStorage(pool)

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		slog.Error("Failed to initialize bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot started", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		text := strings.TrimSpace(update.Message.Text)
		slog.Info("Message received", "chat_id", chatID, "text", text)

		var msgText string
		var errHandle error

		switch text {
		case "/start", "/help":
			msgText = helpText
		case "/month":
			msgText, errHandle = handleMonth(store, chatID)
		case "/budgets":
			msgText, errHandle = handleBudgets(store, chatID)
		default:
			msgText = "Unknown command. Send /help"
		}

		if errHandle != nil {
			slog.Error("Command failed", "error", errHandle, "chat_id", chatID, "command", text)
			msgText = "Something went wrong, try again later"
		}

		msg := tgbotapi.NewMessage(chatID, msgText)
		if _, err := bot.Send(msg); err != nil {
			slog.Error("Failed to send reply", "error", err, "chat_id", chatID)
		}
	}
}

// linkedUser resolves the chat to a registered account.
func linkedUser(store *postgres.Storage, chatID int64) (int64, bool, error) {
	user, err := store.UserByTelegramChatID(context.Background(), chatID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return user.ID, true, nil
}

func handleMonth(store *postgres.Storage, chatID int64) (string, error) {
	userID, linked, err := linkedUser(store, chatID)
	if err != nil {
		return "", err
	}
	if !linked {
		return "This chat is not linked to an account. Send /help", nil
	}

	now := time.Now()
	income, expense, err := store.MonthlySummary(context.Background(), userID, now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Summary for %s\nIncome: %s\nExpenses: %s\nNet: %s",
		now.Format("2006-01"),
		income.StringFixed(2),
		expense.StringFixed(2),
		income.Sub(expense).StringFixed(2)), nil
}

func handleBudgets(store *postgres.Storage, chatID int64) (string, error) {
	userID, linked, err := linkedUser(store, chatID)
	if err != nil {
		return "", err
	}
	if !linked {
		return "This chat is not linked to an account. Send /help", nil
	}

	now := time.Now()
	usages, err := store.BudgetUsage(context.Background(), userID, now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}
	if len(usages) == 0 {
		return "No budgets set for " + now.Format("2006-01"), nil
	}

	lines := []string{"Budgets for " + now.Format("2006-01")}
	for _, usage := range usages {
		lines = append(lines, fmt.Sprintf("- %s: %s / %s",
			usage.CategoryName, usage.Spent.StringFixed(2), usage.AmountLimit.StringFixed(2)))
	}
	return strings.Join(lines, "\n"), nil
}
