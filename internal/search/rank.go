// Package search ranks songs, albums and artists against free text.
package search

import (
	"context"
	"slices"
	"strings"
)

// Item represents a searchable item.
type Item interface {
	// FilterValue returns the string to match against.
	FilterValue() string
}

// Match tiers, most specific first.
const (
	TierExact     = 0 // equal to the query
	TierPrefix    = 1 // starts with the query
	TierWordStart = 2 // a word inside starts with the query
	TierSubstring = 3 // contains the query anywhere
	NoMatch       = -1
)

// Match represents a search match with its index and tier.
type Match struct {
	Index int
	Tier  int
}

// normalize folds case for comparison.
func normalize(s string) string {
	return strings.ToLower(s)
}

// Tier classifies how title matches query. Both are compared case-insensitively.
func Tier(title, query string) int {
	return tier(normalize(title), normalize(query))
}

func tier(title, query string) int {
	switch {
	case title == query:
		return TierExact
	case strings.HasPrefix(title, query):
		return TierPrefix
	case strings.Contains(title, " "+query):
		return TierWordStart
	case strings.Contains(title, query):
		return TierSubstring
	}
	return NoMatch
}

// Rank returns the items matching query, best tier first, input order kept
// within a tier, truncated to limit (no limit when limit <= 0).
func Rank[T Item](items []T, query string, limit int) []T {
	ranked, _ := rank(context.Background(), items, query, limit)
	return ranked
}

// rank is Rank with a cancellation check between items.
func rank[T Item](ctx context.Context, items []T, query string, limit int) ([]T, error) {
	q := normalize(query)
	matches := make([]Match, 0)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t := tier(normalize(item.FilterValue()), q); t != NoMatch {
			matches = append(matches, Match{Index: i, Tier: t})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int { return a.Tier - b.Tier })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = items[m.Index]
	}
	return out, nil
}
