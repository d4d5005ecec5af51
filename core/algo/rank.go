package algo

import (
	"cmp"
	"slices"

	"github.com/huangsam/govscope/schema"
)

// Rank sorts items by value in descending order, breaking ties by name
// ascending, and returns the top 'limit' items. A limit of zero or less, or
// one larger than the number of items, returns every item in sorted order.
func Rank[T any](items []T, limit int, value func(T) float64, name func(T) string) []T {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := cmp.Compare(value(b), value(a)); c != 0 {
			return c
		}
		return cmp.Compare(name(a), name(b))
	})
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// RankShares sorts participant shares by value and returns the top 'limit'.
func RankShares(shares []schema.ParticipantShare, limit int) []schema.ParticipantShare {
	return Rank(shares, limit,
		func(s schema.ParticipantShare) float64 { return s.Value },
		func(s schema.ParticipantShare) string { return s.Participant })
}
