// Package main implements the one-shot moderation command: it runs a
// single (message_id, user_id, content) triple through the pipeline and
// prints the decision as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/sentinela/internal/config"
	"github.com/edgard/sentinela/internal/database"
	"github.com/edgard/sentinela/internal/gemini"
	"github.com/edgard/sentinela/internal/logger"
	"github.com/edgard/sentinela/internal/moderation"
)

// errorResponse is the structured reply emitted when the invocation
// itself fails; it carries safe defaults so callers can always parse it.
type errorResponse struct {
	Error          string                    `json:"error"`
	Classification moderation.Classification `json:"classification"`
	Confidence     float64                   `json:"confidence"`
	Action         moderation.Action         `json:"action"`
	Reasoning      string                    `json:"reasoning"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	args := flag.Args()
	if len(args) != 3 {
		emitError(fmt.Sprintf("expected exactly 3 arguments (message_id user_id content), got %d", len(args)))
		return 1
	}
	messageID, userID, content := args[0], args[1], args[2]

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		emitError(fmt.Sprintf("failed to load configuration: %v", err))
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		emitError(fmt.Sprintf("failed to open database: %v", err))
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	classifier, err := gemini.NewClient(ctx, cfg.Gemini, cfg.Moderation.Rules, log)
	if err != nil {
		emitError(fmt.Sprintf("failed to initialize classifier: %v", err))
		return 1
	}

	service := moderation.NewService(log, store, classifier)

	result, err := service.Process(ctx, messageID, userID, content)
	if err != nil {
		emitError(fmt.Sprintf("failed to process message: %v", err))
		return 1
	}

	emitJSON(result)
	return 0
}

func emitError(msg string) {
	emitJSON(errorResponse{
		Error:          msg,
		Classification: moderation.ClassificationContextDependent,
		Confidence:     0,
		Action:         moderation.ActionFlagForReview,
		Reasoning:      msg,
	})
}

// emitJSON writes v to stdout without HTML escaping, so non-Latin and
// symbol-heavy reasoning text survives verbatim.
func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode response: %v\n", err)
	}
}
