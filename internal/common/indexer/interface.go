package indexer

import (
	"context"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// Indexer defines the interface for entry indexing backends
type Indexer interface {
	// BulkIndex upserts multiple entries at once, keyed by Entry.ID
	BulkIndex(ctx context.Context, entries []*domain.Entry) error
	// Name identifies the backend in logs and metrics
	Name() string
}
