package handlers

import (
	"log/slog"

	"github.com/edgard/sentinela/internal/config"
	"github.com/edgard/sentinela/internal/moderation"
)

// HandlerDeps provides dependencies for Telegram command and update handlers.
// All persistence flows through the moderation service.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Service *moderation.Service
}
