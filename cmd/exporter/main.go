package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/common/fetcher"
	"github.com/project-tktt/letterboxd-export/internal/common/output"
	"github.com/project-tktt/letterboxd-export/internal/config"
	"github.com/project-tktt/letterboxd-export/internal/domain"
	"github.com/project-tktt/letterboxd-export/internal/logging"
	"github.com/project-tktt/letterboxd-export/internal/metrics"
	"github.com/project-tktt/letterboxd-export/internal/module/letterboxd"
	"github.com/project-tktt/letterboxd-export/internal/queue"
)

func main() {
	cfg := config.Load()

	concurrency := flag.Int("concurrency", cfg.Harvest.Concurrency, "max in-flight requests per phase")
	outputPath := flag.String("output", cfg.Harvest.OutputPath, "CSV file to write")
	publish := flag.Bool("publish", cfg.Harvest.Publish, "publish records to the export queue")
	flag.Parse()

	if *concurrency < 1 {
		*concurrency = 1
	}
	// An explicit flag overrides both per-phase settings
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "concurrency" {
			cfg.Harvest.PageConcurrency = *concurrency
			cfg.Harvest.ResolveConcurrency = *concurrency
		}
	})
	cfg.Harvest.Concurrency = *concurrency

	logging.Setup(logging.Config{
		Level:  logging.Level(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	logger := logging.NewLogger("exporter")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.Serve(ctx, cfg.MetricsAddr, logger)

	listURL, err := resolveListURL(cfg.Harvest.ListURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("no list url")
	}

	if err := run(ctx, cfg, listURL, *outputPath, *publish, logger); err != nil {
		logger.Error().Err(err).Msg("export failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, listURL, outputPath string, publish bool, logger zerolog.Logger) error {
	f := fetcher.NewCollyFetcher(fetcher.Config{
		UserAgent:    cfg.Harvest.UserAgent,
		Timeout:      int(cfg.Harvest.RequestTimeout.Milliseconds()),
		RequestDelay: int(cfg.Harvest.RequestDelay.Milliseconds()),
		Parallelism:  cfg.Harvest.ResolveWorkers(),
	})

	harvester := letterboxd.NewHarvester(f, letterboxd.Config{
		PageConcurrency:    cfg.Harvest.PageWorkers(),
		ResolveConcurrency: cfg.Harvest.ResolveWorkers(),
	}, logging.NewLogger("harvester"))

	var publisher *queue.Publisher
	if publish {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		publisher = queue.NewPublisher(rdb, cfg.Redis.ExportQueue)
	}

	writer := output.NewCSVWriter(outputPath)

	return harvester.HarvestWithCallback(ctx, listURL, func(records []domain.ResolvedRecord) error {
		if err := writer.Write(records); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Info().Str("path", writer.Path()).Int("records", len(records)).Msg("export written")

		if publisher == nil {
			return nil
		}

		exportedAt := time.Now().UTC()
		msgs := make([]*domain.ExportMessage, len(records))
		for i, r := range records {
			msgs[i] = &domain.ExportMessage{ListURL: listURL, Position: i, Record: r, ExportedAt: exportedAt}
		}
		if err := publisher.PublishBatch(ctx, msgs); err != nil {
			return fmt.Errorf("publish records: %w", err)
		}
		logger.Info().Int("records", len(msgs)).Str("queue", cfg.Redis.ExportQueue).Msg("records published")
		return nil
	})
}

// resolveListURL takes the first argument, then LIST_URL, then a line from stdin
func resolveListURL(fromEnv string) (string, error) {
	if flag.NArg() > 0 {
		return flag.Arg(0), nil
	}
	if fromEnv != "" {
		return fromEnv, nil
	}

	fmt.Fprint(os.Stderr, "Enter the Letterboxd list URL: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read list url: %w", err)
		}
		return "", fmt.Errorf("empty list url")
	}
	return line, nil
}
