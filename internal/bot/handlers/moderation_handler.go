package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sentinela/internal/moderation"
)

const (
	moderationTimeout  = 2 * time.Minute
	sendMessageTimeout = 10 * time.Second
	excerptLimit       = 200
)

// moderationHandler runs every eligible group message through the
// moderation pipeline and enforces the resulting action.
type moderationHandler struct {
	deps HandlerDeps
}

func (h moderationHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "moderation")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	if msg.Chat.Type != models.ChatTypeGroup && msg.Chat.Type != models.ChatTypeSupergroup {
		return
	}
	// Commands and the bot's own messages are not moderated.
	if strings.HasPrefix(msg.Text, "/") || msg.From.ID == deps.Config.Telegram.BotInfo.ID {
		return
	}

	chatID := msg.Chat.ID
	messageID := fmt.Sprintf("%d:%d", chatID, msg.ID)
	userID := strconv.FormatInt(msg.From.ID, 10)

	procCtx, cancel := context.WithTimeout(ctx, moderationTimeout)
	defer cancel()

	result, err := deps.Service.Process(procCtx, messageID, userID, msg.Text)
	if err != nil {
		log.ErrorContext(ctx, "Moderation pipeline failed", "error", err, "message_id", messageID)
		return
	}

	log.InfoContext(ctx, "Message moderated",
		"message_id", messageID,
		"classification", result.Classification,
		"confidence", result.Confidence,
		"action", result.Action)

	switch result.Action {
	case moderation.ActionDeleteMessage:
		h.deleteAndNotify(ctx, b, msg, result)
	case moderation.ActionFlagForReview:
		h.sendReviewCard(ctx, b, msg, result)
	}
}

func (h moderationHandler) deleteAndNotify(ctx context.Context, b *bot.Bot, msg *models.Message, result *moderation.Result) {
	log := h.deps.Logger.With("handler", "moderation")

	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID}); err != nil {
		log.ErrorContext(ctx, "Failed to delete message", "error", err, "message_id", result.MessageID)
		// Fall back to flagging so the violation is at least surfaced.
		h.sendReviewCard(ctx, b, msg, result)
		return
	}

	adminChatID := h.deps.Config.Telegram.AdminChatID
	if adminChatID == 0 {
		return
	}

	text := fmt.Sprintf("🗑 Message deleted (%s, confidence %.2f)\nUser: %d\nText: %s\nReason: %s",
		result.Classification, result.Confidence, msg.From.ID, excerpt(msg.Text), result.Reasoning)
	h.sendToAdmin(ctx, b, text)
}

func (h moderationHandler) sendReviewCard(ctx context.Context, b *bot.Bot, msg *models.Message, result *moderation.Result) {
	adminChatID := h.deps.Config.Telegram.AdminChatID
	if adminChatID == 0 {
		return
	}

	text := fmt.Sprintf("⚠️ Flagged for review (%s, confidence %.2f)\nUser: %d\nText: %s\nReason: %s\n\nReact to the original message: ✅ correct, ❌ incorrect, ⚠️ complex, 🔄 reanalyze.",
		result.Classification, result.Confidence, msg.From.ID, excerpt(msg.Text), result.Reasoning)
	h.sendToAdmin(ctx, b, text)
}

func (h moderationHandler) sendToAdmin(ctx context.Context, b *bot.Bot, text string) {
	log := h.deps.Logger.With("handler", "moderation")

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	_, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID: h.deps.Config.Telegram.AdminChatID,
		Text:   text,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to notify admin chat", "error", err)
	}
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptLimit {
		return s
	}
	return string(runes[:excerptLimit]) + "..."
}
