package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 20, cfg.Harvest.Concurrency)
	assert.Equal(t, 20, cfg.Harvest.PageWorkers())
	assert.Equal(t, 20, cfg.Harvest.ResolveWorkers())
	assert.Equal(t, DefaultUserAgent, cfg.Harvest.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Harvest.RequestTimeout)
	assert.Equal(t, "letterboxd_list.csv", cfg.Harvest.OutputPath)
	assert.False(t, cfg.Harvest.Publish)
	assert.Equal(t, "exports:records", cfg.Redis.ExportQueue)
	assert.Equal(t, "postgres", cfg.Worker.Indexer)
	assert.True(t, cfg.Social.Headless)
	assert.Empty(t, cfg.Social.Exceptions)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HARVEST_CONCURRENCY", "4")
	t.Setenv("RESOLVE_CONCURRENCY", "8")
	t.Setenv("REQUEST_DELAY_MS", "250")
	t.Setenv("EXPORT_PUBLISH", "true")
	t.Setenv("INDEXER", "Elasticsearch")
	t.Setenv("UNFOLLOW_EXCEPTIONS", " alice, ,bob ")

	cfg := Load()

	assert.Equal(t, 4, cfg.Harvest.PageWorkers())
	assert.Equal(t, 8, cfg.Harvest.ResolveWorkers())
	assert.Equal(t, 250*time.Millisecond, cfg.Harvest.RequestDelay)
	assert.True(t, cfg.Harvest.Publish)
	assert.Equal(t, "elasticsearch", cfg.Worker.Indexer)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Social.Exceptions)
}

func TestLoad_ClampsConcurrency(t *testing.T) {
	t.Setenv("HARVEST_CONCURRENCY", "0")
	t.Setenv("WORKER_CONCURRENCY", "-3")

	cfg := Load()

	assert.Equal(t, 1, cfg.Harvest.Concurrency)
	assert.Equal(t, 1, cfg.Worker.Concurrency)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("HARVEST_CONCURRENCY", "many")
	t.Setenv("BROWSER_HEADLESS", "maybe")

	cfg := Load()

	assert.Equal(t, 20, cfg.Harvest.Concurrency)
	assert.True(t, cfg.Social.Headless)
}
