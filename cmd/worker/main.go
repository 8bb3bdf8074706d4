package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ragul2105/plant-disease-api/internal/bootstrap"
	"github.com/ragul2105/plant-disease-api/internal/config"
	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/observability/logging"
	"github.com/ragul2105/plant-disease-api/internal/observability/metrics"
)

const service = "plant-disease-worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker metrics listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribePredictionRecorded(ctx, func(handlerCtx context.Context, record domain.HistoryRecord) error {
		workerMetrics.StartPersist()
		workerMetrics.ObserveQueueLag(service, time.Since(record.CreatedAt))

		start := time.Now()
		persistCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		persistErr := app.PersistUC.Persist(persistCtx, record)
		workerMetrics.FinishPersist(service, time.Since(start), persistErr)
		return persistErr
	})
	if err != nil {
		slog.Error("worker subscribe error", "error", err)
		os.Exit(1)
	}
}
