package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/lowflow-etl/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/lowflow-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/lowflow-etl/internal/adapter/kafka"
	"github.com/couchcryptid/lowflow-etl/internal/config"
	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
	"github.com/couchcryptid/lowflow-etl/internal/observability"
	"github.com/couchcryptid/lowflow-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Results are memoized per request fingerprint (RESULT_CACHE_SIZE=0 disables).
	var estimator pipeline.Estimator = lowflow.NewEstimator(logger)
	if cfg.ResultCacheSize > 0 {
		estimator = cache.NewCachedEstimator(estimator, cfg.ResultCacheSize, metrics)
		logger.Info("result cache enabled", "cache_size", cfg.ResultCacheSize)
	} else {
		logger.Info("result cache disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(estimator, cfg.Q710, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, estimator, cfg.Q710, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
