package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/ragul2105/plant-disease-api/internal/adapters/http"
	"github.com/ragul2105/plant-disease-api/internal/bootstrap"
	"github.com/ragul2105/plant-disease-api/internal/config"
	"github.com/ragul2105/plant-disease-api/internal/observability/logging"
	"github.com/ragul2105/plant-disease-api/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("plant-disease-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("plant-disease-api")
	httpMetrics.SetModelLoaded(app.Engine.Ready())

	router := httpadapter.NewRouter(
		app.PredictUC,
		app.HistoryUC,
		app.AuthUC,
		app.LookupUC,
		app.Engine,
		app.Database,
		app.Identity,
		httpMetrics,
		cfg.MaxUploadBytes,
		cfg.RateLimitRPS,
		cfg.RateLimitBurst,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("listen failed", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	if cfg.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.MaxConnections)
	}

	go func() {
		slog.Info("api listening", "addr", server.Addr, "model_loaded", app.Engine.Ready())
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("api server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
