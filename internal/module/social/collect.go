package social

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
)

// CollectUsers pages through a relationship list from page 1 until a page is
// empty or cannot be read. Usernames are normalized, deduplicated and sorted.
func CollectUsers(ctx context.Context, s Session, profileURL string, rel Relation, logger zerolog.Logger) ([]string, error) {
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		links, err := s.ListPage(ctx, RelationPageURL(profileURL, rel, page))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Info().Err(err).Str("relation", string(rel)).Int("page", page).Msg("reached end of list")
			break
		}
		if len(links) == 0 {
			break
		}

		for _, link := range links {
			if name := NormalizeUsername(link); name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	users := make([]string, 0, len(seen))
	for name := range seen {
		users = append(users, name)
	}
	sort.Strings(users)

	logger.Info().Str("relation", string(rel)).Int("total", len(users)).Msg("collected users")
	return users, nil
}
