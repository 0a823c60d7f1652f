package main

import (
	"context"
	"errors"
	"os"

	"budgetsip/internal/cli"
	applog "budgetsip/internal/log"
	"budgetsip/internal/sheets"
	gsheet "budgetsip/internal/sheets/google"
	mem "budgetsip/internal/sheets/memory"
	"budgetsip/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting budgetsip-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("budgetsip-worker requires AMQP_URL")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	// Mirror target: Google Sheets when configured, otherwise in-memory.
	var mirror sheets.ExpenseMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		mirror = mem.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring expenses in memory only")
	}

	client, err := cli.ConnectAMQP(ctx, logger, cfg, cfg.AMQPExpenseQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize)

	// Catch up on anything missed while the worker was down.
	logger.Info("Performing startup sync...")
	if err := syncWorker.StartupSync(ctx); err != nil {
		logger.Error("Startup sync failed", applog.FieldError, err)
	}

	if err := client.ConsumeExpenseEvents(ctx, syncWorker.HandleExpenseEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
