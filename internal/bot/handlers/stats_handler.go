package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sentinela/internal/bot/tasks"
)

// NewStatsHandler returns a handler for the admin-only /stats command. It
// replies with the same daily report the scheduler sends each morning.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Handling /stats command", "chat_id", chatID, "user_id", update.Message.From.ID)

	stats, err := h.deps.Service.DailyStats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to compute daily stats", "error", err, "chat_id", chatID)
	}
	if stats == nil {
		return
	}

	// Even a degraded report is worth sending; it carries the error text.
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: tasks.FormatDailyReport(stats)})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send stats report", "error", err, "chat_id", chatID)
	}
}
