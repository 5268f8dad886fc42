package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sentinela/internal/database"
)

// reactionHandler turns admin reactions on moderated messages into
// feedback on the stored decision.
type reactionHandler struct {
	deps HandlerDeps
}

func (h reactionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "reaction")

	reaction := update.MessageReaction
	if reaction == nil || reaction.User == nil {
		return
	}
	if !deps.Config.Telegram.IsAdminUser(reaction.User.ID) {
		log.DebugContext(ctx, "Ignoring reaction from non-admin", "user_id", reaction.User.ID)
		return
	}

	emoji := firstNewEmoji(reaction)
	if emoji == "" {
		// Reaction removed or non-emoji reaction; nothing to record.
		return
	}

	messageID := fmt.Sprintf("%d:%d", reaction.Chat.ID, reaction.MessageID)

	feedback, err := deps.Service.RecordFeedback(ctx, messageID, emoji)
	if err != nil {
		if errors.Is(err, database.ErrDecisionNotFound) {
			log.DebugContext(ctx, "Reaction on message without a stored decision", "message_id", messageID)
			return
		}
		log.ErrorContext(ctx, "Failed to record feedback", "error", err, "message_id", messageID)
		return
	}

	log.InfoContext(ctx, "Feedback recorded", "message_id", messageID, "feedback", feedback, "user_id", reaction.User.ID)

	adminChatID := deps.Config.Telegram.AdminChatID
	if adminChatID == 0 {
		return
	}
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: adminChatID,
		Text:   fmt.Sprintf("Feedback %s recorded for message %s", feedback, messageID),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send feedback confirmation", "error", err)
	}
}

// firstNewEmoji returns the emoji of the first newly added plain-emoji
// reaction, or "" when the update only removes reactions.
func firstNewEmoji(reaction *models.MessageReactionUpdated) string {
	for _, r := range reaction.NewReaction {
		if r.Type == models.ReactionTypeTypeEmoji && r.ReactionTypeEmoji != nil {
			return r.ReactionTypeEmoji.Emoji
		}
	}
	return ""
}
