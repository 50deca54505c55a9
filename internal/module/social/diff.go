package social

import "sort"

// Relationships is the comparison of a user's followers and following lists
type Relationships struct {
	// NotFollowingBack are users followed who do not follow back
	NotFollowingBack []string
	// Fans are followers who are not followed back
	Fans []string
}

// Diff computes both one-sided differences, each sorted
func Diff(followers, following []string) Relationships {
	return Relationships{
		NotFollowingBack: minus(following, followers),
		Fans:             minus(followers, following),
	}
}

func minus(a, b []string) []string {
	drop := make(map[string]struct{}, len(b))
	for _, name := range b {
		drop[name] = struct{}{}
	}

	out := []string{}
	seen := make(map[string]struct{}, len(a))
	for _, name := range a {
		if _, ok := drop[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
