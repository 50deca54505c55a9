package letterboxd

import (
	"math"
	"slices"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// MergeByDiscovery sorts records ascending by the discovery order of their source item.
// The first occurrence of a source URL wins; records with an unknown source sort last.
func MergeByDiscovery(items []domain.ItemRef, records []domain.ResolvedRecord) []domain.ResolvedRecord {
	order := make(map[string]int, len(items))
	for _, item := range items {
		if _, seen := order[item.SourceURL]; !seen {
			order[item.SourceURL] = item.DiscoveryOrder
		}
	}

	key := func(r domain.ResolvedRecord) int {
		if pos, ok := order[r.SourceURL]; ok {
			return pos
		}
		return math.MaxInt
	}

	merged := slices.Clone(records)
	slices.SortStableFunc(merged, func(a, b domain.ResolvedRecord) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})

	return merged
}
