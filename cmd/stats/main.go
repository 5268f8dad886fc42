// Package main implements the one-shot stats command: it prints the
// daily moderation report as JSON, or the cumulative report with
// -cumulative.
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
	cumulative := flag.Bool("cumulative", false, "Print the all-time report instead of the daily one")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		emitReport(failureReport(*cumulative, fmt.Sprintf("failed to load configuration: %v", err)))
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		emitReport(failureReport(*cumulative, fmt.Sprintf("failed to open database: %v", err)))
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	// Statistics only read the store; no classifier needed.
	service := moderation.NewService(log, store, nil)

	var report any
	var statsErr error
	if *cumulative {
		report, statsErr = service.CumulativeStats(ctx)
	} else {
		report, statsErr = service.DailyStats(ctx)
	}

	// A degraded report still carries the error field; emit it either way
	// so consumers always get parseable output.
	if err := emitReport(report); err != nil {
		return 1
	}

	if statsErr != nil {
		return 1
	}
	return 0
}

// failureReport builds the zeroed, error-annotated report emitted when
// the command fails before any aggregation could run. Consumers must
// always receive parseable output, even on a dead store.
func failureReport(cumulative bool, msg string) any {
	if cumulative {
		return &moderation.CumulativeStats{
			Error:           msg,
			Classifications: map[string]moderation.ClassificationStat{},
		}
	}
	return &moderation.DailyStats{Error: msg}
}

func emitReport(report any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode report: %v\n", err)
		return err
	}
	return nil
}
