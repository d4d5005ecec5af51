// Package algo implements the inequality statistics shared by every analysis.
package algo

import (
	"maps"
	"math"
	"slices"

	"github.com/huangsam/govscope/schema"
)

// Compute returns the concentration of an actor to count map.
// Only positive counts enter the multiset; every statistic is derived from it.
func Compute(counts map[string]int, topN []int) schema.ConcentrationResult {
	weights := make(map[string]float64, len(counts))
	total := 0
	for actor, c := range counts {
		if c > 0 {
			weights[actor] = float64(c)
			total += c
		}
	}
	result := compute(weights, topN)
	result.TotalActivity = total
	return result
}

// ComputeWeighted is Compute over a real-valued distribution such as node
// strengths or PageRank scores. Non-positive and non-finite values are skipped.
func ComputeWeighted(values map[string]float64, topN []int) schema.ConcentrationResult {
	weights := make(map[string]float64, len(values))
	for actor, v := range values {
		if v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			weights[actor] = v
		}
	}
	result := compute(weights, topN)
	result.TotalWeight = sum(slices.Collect(maps.Values(weights)))
	return result
}

func compute(weights map[string]float64, topN []int) schema.ConcentrationResult {
	values := slices.Sorted(maps.Values(weights))
	result := schema.ConcentrationResult{
		Gini:         Gini(values),
		HHI:          HHI(values),
		TopNShares:   make(map[int]float64, len(topN)),
		UniqueActors: len(values),
		Shares:       Shares(weights),
	}
	for _, n := range topN {
		result.TopNShares[n] = TopNShare(values, n)
	}
	return result
}

// Gini calculates the Gini coefficient for a set of values.
// Values are sorted ascending and G = 2*sum(i*v_i)/(n*sum(v)) - (n+1)/n for
// 1-indexed i, clamped to [0,1]. Empty or all-zero input yields 0.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Sorted(slices.Values(values))
	total := sum(sorted)
	if total <= 0 {
		return 0
	}

	var weighted float64
	for i, v := range sorted {
		weighted += float64(i+1) * v
	}
	nf := float64(n)
	g := (2*weighted)/(nf*total) - (nf+1)/nf
	return clamp01(g)
}

// HHI returns the Herfindahl-Hirschman index: the sum of squared shares.
// A zero total yields 0.
func HHI(values []float64) float64 {
	total := sum(values)
	if total <= 0 {
		return 0
	}
	var h float64
	for _, v := range values {
		s := v / total
		h += s * s
	}
	return clamp01(h)
}

// TopNShare returns the fraction of the total held by the n largest values.
// Fewer than n values sums all of them.
func TopNShare(values []float64, n int) float64 {
	total := sum(values)
	if total <= 0 || n <= 0 {
		return 0
	}
	sorted := slices.Sorted(slices.Values(values))
	slices.Reverse(sorted)
	if n > len(sorted) {
		n = len(sorted)
	}
	return clamp01(sum(sorted[:n]) / total)
}

// Shares returns each participant's value and share of the total, sorted by
// value descending with ties broken by participant id.
func Shares(weights map[string]float64) []schema.ParticipantShare {
	if len(weights) == 0 {
		return nil
	}
	total := sum(slices.Collect(maps.Values(weights)))
	shares := make([]schema.ParticipantShare, 0, len(weights))
	for actor, v := range weights {
		share := 0.0
		if total > 0 {
			share = v / total
		}
		shares = append(shares, schema.ParticipantShare{Participant: actor, Value: v, Share: share})
	}
	return RankShares(shares, 0)
}

// sum adds values in ascending order so the result does not depend on map order.
func sum(values []float64) float64 {
	sorted := slices.Sorted(slices.Values(values))
	var s float64
	for _, v := range sorted {
		s += v
	}
	return s
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
