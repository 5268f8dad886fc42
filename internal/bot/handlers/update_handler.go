package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewUpdateHandler returns the default handler dispatching non-command
// updates: group text messages go through the moderation pipeline,
// message reactions feed the feedback flow.
func NewUpdateHandler(deps HandlerDeps) bot.HandlerFunc {
	moderation := moderationHandler{deps}
	reaction := reactionHandler{deps}

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		switch {
		case update.Message != nil:
			moderation.Handle(ctx, b, update)
		case update.MessageReaction != nil:
			reaction.Handle(ctx, b, update)
		}
	}
}
