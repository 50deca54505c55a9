package module

import (
	"context"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// RecordHandler receives the merged records of one list, in discovery order
type RecordHandler func(records []domain.ResolvedRecord) error

// Harvester is the common interface for list harvesters
type Harvester interface {
	// Harvest fetches every entry of the list and resolves its identifier
	Harvest(ctx context.Context, listURL string) ([]domain.ResolvedRecord, error)
	// HarvestWithCallback harvests the list and hands the ordered records to handler
	HarvestWithCallback(ctx context.Context, listURL string, handler RecordHandler) error
	// Source returns the source identifier
	Source() string
}
