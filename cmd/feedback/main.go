// Package main implements the one-shot feedback command: it attaches a
// reaction symbol's feedback category to a stored decision.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/sentinela/internal/config"
	"github.com/edgard/sentinela/internal/database"
	"github.com/edgard/sentinela/internal/logger"
	"github.com/edgard/sentinela/internal/moderation"
)

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
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: feedback <message_id> <reaction_symbol>\n")
		return 1
	}
	messageID, symbol := args[0], args[1]

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	// No classifier needed for feedback ingestion.
	service := moderation.NewService(log, store, nil)

	feedback, err := service.RecordFeedback(ctx, messageID, symbol)
	if err != nil {
		if errors.Is(err, database.ErrDecisionNotFound) {
			fmt.Fprintf(os.Stderr, "no decision found for message %s\n", messageID)
		} else {
			fmt.Fprintf(os.Stderr, "failed to record feedback: %v\n", err)
		}
		return 1
	}

	fmt.Printf("Feedback %s recorded for message %s\n", feedback, messageID)
	return 0
}
