package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/scheduler"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

const (
	serviceName   = "worker"
	jobTimeout    = 30 * time.Minute
	cronJobReason = "cron"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, serviceName, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:  logger,
		Metrics: workerMetrics.Pipeline(),
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if cfg.ReclassifyCron != "" {
		schedule, err := scheduler.NewCron("reclassify", cfg.ReclassifyCron, func(ctx context.Context) error {
			_, _, err := app.Reclassifier.Trigger(ctx, cronJobReason)
			return err
		}, logger)
		if err != nil {
			logger.Error("reclassify_schedule_invalid", "spec", cfg.ReclassifyCron, "error", err)
			os.Exit(1)
		}
		schedule.Start(ctx)
	}

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReclassify(ctx, func(handlerCtx context.Context, job domain.ReclassifyJob) error {
		workerMetrics.ObserveQueueLag(serviceName, time.Since(job.RequestedAt))
		workerMetrics.StartJob()
		started := time.Now()

		runCtx, cancel := context.WithTimeout(handlerCtx, jobTimeout)
		defer cancel()
		_, runErr := app.Reclassifier.RunAll(runCtx, job)

		workerMetrics.FinishJob(serviceName, time.Since(started), runErr)
		return runErr
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
