package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetsip/internal/cli"
	apphttp "budgetsip/internal/http"
	applog "budgetsip/internal/log"
	"budgetsip/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)
	logger.Info("Starting budgetsip server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	// Expense events are optional; the API works without a broker.
	var publisher services.ExpensePublisher
	if cfg.AMQPEnabled() {
		client, err := cli.ConnectAMQP(ctx, logger, cfg, cfg.AMQPExpenseQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, expense events disabled", applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Expenses: services.NewExpenseService(repo, publisher),
		Plans:    services.NewPlanService(repo),
		Holdings: services.NewHoldingService(repo),
		Summary:  services.NewSummaryService(repo),
		Health:   repo,
	}, apphttp.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-stopped
	m := srv.Metrics()
	logger.Info("Server stopped gracefully", "total_requests", m.TotalRequests, "server_errors", m.ServerErrors)
}
