package main

import (
	"context"
	"os"
	"time"

	"budgetsip/internal/cli"
	applog "budgetsip/internal/log"
	"budgetsip/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentReminder)
	logger.Info("Starting sip-reminder",
		"interval", cfg.ReminderInterval.String(),
		"window_days", cfg.ReminderWindowDays)

	if !cfg.AMQPEnabled() {
		logger.Error("sip-reminder requires AMQP_URL")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	client, err := cli.ConnectAMQP(ctx, logger, cfg, cfg.AMQPReminderQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	processor := services.NewReminderProcessor(repo, client, cfg.ReminderWindowDays)

	run := func() {
		sent, err := processor.ProcessDueReminders(ctx, time.Now())
		if err != nil && ctx.Err() == nil {
			logger.Error("Reminder run failed", applog.FieldError, err)
			return
		}
		logger.Debug("Reminder run complete", "published", sent)
	}

	run()

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("sip-reminder stopped", "reason", context.Cause(ctx))
			return
		case <-ticker.C:
			run()
		}
	}
}
