package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// CheckResult represents the result of checking an entry
type CheckResult int

const (
	// ResultNew - entry has never been indexed
	ResultNew CheckResult = iota
	// ResultUpdated - entry was indexed with a different fingerprint
	ResultUpdated
	// ResultUnchanged - entry was indexed with the same fingerprint
	ResultUnchanged
)

// Tracker remembers the fingerprint of every indexed entry in Redis
type Tracker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewTracker creates a new Redis-based change tracker
func NewTracker(client *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) *Tracker {
	if prefix == "" {
		prefix = "dedup:entry"
	}
	if ttl == 0 {
		ttl = 24 * time.Hour * 90 // 90 days default
	}
	return &Tracker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Check compares an entry's fingerprint against the stored one
func (t *Tracker) Check(ctx context.Context, e *domain.Entry) (CheckResult, error) {
	stored, err := t.client.Get(ctx, t.key(e.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return ResultNew, nil
	}
	if err != nil {
		return ResultNew, fmt.Errorf("redis get: %w", err)
	}

	if stored != e.Fingerprint() {
		return ResultUpdated, nil
	}
	return ResultUnchanged, nil
}

// FilterChanged returns the entries that are new or updated, in input order
func (t *Tracker) FilterChanged(ctx context.Context, entries []*domain.Entry) ([]*domain.Entry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = t.key(e.ID)
	}

	stored, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	changed := make([]*domain.Entry, 0, len(entries))
	for i, e := range entries {
		if v, ok := stored[i].(string); ok && v == e.Fingerprint() {
			t.logger.Debug().Str("id", e.ID).Msg("entry unchanged")
			continue
		}
		changed = append(changed, e)
	}

	return changed, nil
}

// MarkSeen stores the fingerprints of indexed entries
func (t *Tracker) MarkSeen(ctx context.Context, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := t.client.Pipeline()
	for _, e := range entries {
		pipe.Set(ctx, t.key(e.ID), e.Fingerprint(), t.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}
	return nil
}

func (t *Tracker) key(id string) string {
	return fmt.Sprintf("%s:%s", t.prefix, id)
}
