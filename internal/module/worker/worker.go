package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/common/cleaner"
	"github.com/project-tktt/letterboxd-export/internal/common/indexer"
	"github.com/project-tktt/letterboxd-export/internal/common/normalizer"
	"github.com/project-tktt/letterboxd-export/internal/domain"
	"github.com/project-tktt/letterboxd-export/internal/metrics"
)

// BatchConsumer yields export messages; an empty batch means nothing arrived in time
type BatchConsumer interface {
	ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.ExportMessage, error)
}

// ChangeTracker filters out entries indexed earlier with the same fingerprint
type ChangeTracker interface {
	FilterChanged(ctx context.Context, entries []*domain.Entry) ([]*domain.Entry, error)
	MarkSeen(ctx context.Context, entries []*domain.Entry) error
}

// Worker processes export messages from the queue and indexes them to storage
type Worker struct {
	consumer   BatchConsumer
	normalizer *normalizer.Normalizer
	cleaner    *cleaner.Cleaner
	tracker    ChangeTracker
	indexer    indexer.Indexer
	logger     zerolog.Logger

	batchSize   int
	concurrency int
}

// Config holds worker configuration
type Config struct {
	Concurrency int
	BatchSize   int
}

// NewWorker creates a new worker. tracker may be nil to index every entry.
func NewWorker(
	consumer BatchConsumer,
	norm *normalizer.Normalizer,
	clean *cleaner.Cleaner,
	tracker ChangeTracker,
	idx indexer.Indexer,
	cfg Config,
	logger zerolog.Logger,
) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &Worker{
		consumer:    consumer,
		normalizer:  norm,
		cleaner:     clean,
		tracker:     tracker,
		indexer:     idx,
		logger:      logger,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
	}
}

// Run starts the worker pool and blocks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().
		Int("workers", w.concurrency).
		Str("indexer", w.indexer.Name()).
		Msg("starting worker pool")

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.runSingle(ctx, workerID)
		}(i)
	}

	wg.Wait()
	return ctx.Err()
}

func (w *Worker) runSingle(ctx context.Context, workerID int) {
	logger := w.logger.With().Int("worker_id", workerID).Logger()
	logger.Debug().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("worker stopping")
			return
		default:
		}

		msgs, err := w.consumer.ConsumeBatch(ctx, w.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("consume failed")
			continue
		}

		if len(msgs) == 0 {
			continue
		}

		indexed, err := w.ProcessBatch(ctx, msgs)
		if err != nil {
			logger.Error().Err(err).Int("messages", len(msgs)).Msg("batch failed")
			continue
		}
		logger.Info().
			Int("messages", len(msgs)).
			Int("indexed", indexed).
			Msg("batch processed")
	}
}

// ProcessBatch normalizes, cleans, filters and indexes one batch.
// It returns the number of entries written to the indexer.
func (w *Worker) ProcessBatch(ctx context.Context, msgs []*domain.ExportMessage) (int, error) {
	entries := make([]*domain.Entry, 0, len(msgs))
	for _, msg := range msgs {
		entry, err := w.normalizer.Normalize(msg)
		if err != nil {
			w.logger.Warn().Err(err).Msg("normalize failed")
			continue
		}
		w.cleaner.CleanEntry(entry)
		entries = append(entries, entry)
	}

	if w.tracker != nil {
		changed, err := w.tracker.FilterChanged(ctx, entries)
		if err != nil {
			return 0, fmt.Errorf("filter changed: %w", err)
		}
		metrics.EntriesSkipped.Add(float64(len(entries) - len(changed)))
		entries = changed
	}

	if len(entries) == 0 {
		return 0, nil
	}

	if err := w.indexer.BulkIndex(ctx, entries); err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	metrics.EntriesIndexed.WithLabelValues(w.indexer.Name()).Add(float64(len(entries)))

	if w.tracker != nil {
		if err := w.tracker.MarkSeen(ctx, entries); err != nil {
			return len(entries), fmt.Errorf("mark seen: %w", err)
		}
	}

	return len(entries), nil
}
