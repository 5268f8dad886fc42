// Package tasks implements the bot's scheduled tasks: the daily
// moderation report and SQL maintenance.
package tasks

import (
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/sentinela/internal/config"
	"github.com/edgard/sentinela/internal/database"
	"github.com/edgard/sentinela/internal/moderation"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	Service *moderation.Service
	TgBot   *tgbot.Bot
	Config  *config.Config
}
