package letterboxd

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// ResolveAll runs resolver over every item with at most limit resolutions in flight.
// Records are returned in completion order, one per item.
func ResolveAll(ctx context.Context, resolver ItemResolver, items []domain.ItemRef, limit int) []domain.ResolvedRecord {
	if limit < 1 {
		limit = 1
	}

	var (
		mu      sync.Mutex
		records = make([]domain.ResolvedRecord, 0, len(items))
	)

	var g errgroup.Group
	g.SetLimit(limit)

	for _, item := range items {
		g.Go(func() error {
			record := resolver.Resolve(ctx, item)

			mu.Lock()
			records = append(records, record)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return records
}
