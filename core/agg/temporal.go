package agg

import (
	"maps"
	"slices"
	"time"

	"github.com/huangsam/govscope/core/algo"
	"github.com/huangsam/govscope/schema"
)

// BucketByYear groups items by the UTC year of their date and reduces each
// group with value. Items without a date are excluded, never bucketed as
// year zero.
func BucketByYear[R, V any](items []R, date func(R) *time.Time, value func([]R) V) map[int]V {
	groups := make(map[int][]R)
	for _, item := range items {
		at := date(item)
		if at == nil || at.IsZero() {
			continue
		}
		year := at.UTC().Year()
		groups[year] = append(groups[year], item)
	}
	out := make(map[int]V, len(groups))
	for year, group := range groups {
		out[year] = value(group)
	}
	return out
}

// Years returns the sorted keys of a year map.
func Years[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}

func eventTime(e Event) *time.Time { return e.At }

// YearlyConcentration computes the concentration of events within each year.
// Years with a single actor report a Gini of zero.
func YearlyConcentration(events []Event, topN []int) []schema.YearPoint {
	buckets := BucketByYear(events, eventTime, func(group []Event) schema.YearPoint {
		return schema.YearPoint{
			Count:         len(group),
			Concentration: algo.Compute(Counts(group), topN),
		}
	})
	points := make([]schema.YearPoint, 0, len(buckets))
	for _, year := range Years(buckets) {
		p := buckets[year]
		p.Year = year
		points = append(points, p)
	}
	return points
}

// RecordCounts counts records per year of creation.
func RecordCounts(records []schema.EnrichedRecord) map[int]int {
	return BucketByYear(records, func(r schema.EnrichedRecord) *time.Time { return r.CreatedAt }, countOf[schema.EnrichedRecord])
}

// MergeCounts counts merged pull requests per year of merge.
func MergeCounts(records []schema.EnrichedRecord) map[int]int {
	merged := make([]schema.EnrichedRecord, 0, len(records))
	for _, r := range records {
		if r.Kind == schema.PullKind && r.IsMerged() {
			merged = append(merged, r)
		}
	}
	return BucketByYear(merged, func(r schema.EnrichedRecord) *time.Time { return r.MergedAt }, countOf[schema.EnrichedRecord])
}

// MedianDaysToDecision returns the median time to decision per year of
// creation, over records with a known decision time.
func MedianDaysToDecision(records []schema.EnrichedRecord) map[int]float64 {
	decided := make([]schema.EnrichedRecord, 0, len(records))
	for _, r := range records {
		if r.TimeToDecision != nil {
			decided = append(decided, r)
		}
	}
	return BucketByYear(decided, func(r schema.EnrichedRecord) *time.Time { return r.CreatedAt }, func(group []schema.EnrichedRecord) float64 {
		days := make([]float64, len(group))
		for i, r := range group {
			days[i] = r.TimeToDecision.Days
		}
		return median(days)
	})
}

func countOf[R any](group []R) int { return len(group) }

// median returns 0 for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Sorted(slices.Values(values))
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
