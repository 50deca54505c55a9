package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/letterboxd-export/internal/common/cleaner"
	"github.com/project-tktt/letterboxd-export/internal/common/dedup"
	"github.com/project-tktt/letterboxd-export/internal/common/indexer"
	"github.com/project-tktt/letterboxd-export/internal/common/normalizer"
	"github.com/project-tktt/letterboxd-export/internal/config"
	"github.com/project-tktt/letterboxd-export/internal/logging"
	"github.com/project-tktt/letterboxd-export/internal/metrics"
	"github.com/project-tktt/letterboxd-export/internal/module/worker"
	"github.com/project-tktt/letterboxd-export/internal/queue"
)

func main() {
	cfg := config.Load()

	logging.Setup(logging.Config{
		Level:  logging.Level(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	logger := logging.NewLogger("worker")
	logger.Info().Msg("starting export worker service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Serve(ctx, cfg.MetricsAddr, logger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	idx, closeIndexer, err := openIndexer(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("indexer", cfg.Worker.Indexer).Msg("indexer connection failed")
	}
	defer closeIndexer()
	logger.Info().Str("indexer", idx.Name()).Msg("indexer connected")

	w := worker.NewWorker(
		queue.NewConsumer(rdb, cfg.Redis.ExportQueue, 5*time.Second, logging.NewLogger("consumer")),
		normalizer.NewNormalizer(),
		cleaner.NewCleaner(),
		dedup.NewTracker(rdb, "dedup:entry", 0, logging.NewLogger("dedup")),
		idx,
		worker.Config{
			Concurrency: cfg.Worker.Concurrency,
			BatchSize:   cfg.Worker.BatchSize,
		},
		logger,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("worker error")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("shutdown signal received, stopping")
	cancel()

	select {
	case <-done:
		logger.Info().Msg("graceful shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timeout, forcing exit")
	}
}

func openIndexer(ctx context.Context, cfg *config.Config) (indexer.Indexer, func(), error) {
	switch cfg.Worker.Indexer {
	case "elasticsearch":
		es, err := indexer.NewElasticsearchIndexer(ctx, cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index, logging.NewLogger("elasticsearch"))
		if err != nil {
			return nil, nil, err
		}
		if err := es.EnsureIndex(ctx); err != nil {
			return nil, nil, err
		}
		return es, func() {}, nil
	default:
		pg, err := indexer.NewPostgresIndexer(ctx, cfg.Postgres.ConnectionString, cfg.Postgres.TableName, logging.NewLogger("postgres"))
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	}
}
