package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jverho/kontor/internal/api"
	"github.com/jverho/kontor/internal/config"
	"github.com/jverho/kontor/internal/dbrouter"
	"github.com/jverho/kontor/internal/metrics"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	coreURL := config.CoreDatabaseURL()
	if coreURL == "" {
		logger.Fatal("CORE_DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, coreURL)
	if err != nil {
		logger.Fatal("failed to connect to core database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping core database", zap.Error(err))
	}
	logger.Info("connected to core database")

	m := metrics.New(prometheus.DefaultRegisterer)

	conns := dbrouter.New(config.TenantDSNTemplate(), dbrouter.DefaultFactory, logger, m)
	defer conns.Close()

	app := api.NewApp(pool, conns, m, logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
