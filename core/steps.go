package core

import (
	"context"
	"fmt"

	"github.com/huangsam/govscope/core/agg"
	"github.com/huangsam/govscope/core/algo"
	"github.com/huangsam/govscope/core/network"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/internal/iocache"
	"github.com/huangsam/govscope/schema"
)

// safeStep runs one analysis step and turns a panic into an error, so a
// failing step yields an error field instead of aborting the run.
func safeStep[T any](ctx context.Context, step string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, fmt.Errorf("%s: recovered from panic: %v", step, r)
		}
		if err != nil {
			logger().Warn().Err(err).Str("step", step).Str("run_id", trackedRunID(ctx)).Msg("Analysis step failed")
		}
	}()
	return fn()
}

// concentrationStep computes the concentration of every configured activity.
// Events outside the window are skipped before counting.
func concentrationStep(ctx context.Context, cfg *contract.Config, run *analysisRun) schema.ConcentrationReport {
	type computed struct {
		result schema.ConcentrationResult
		share  float64
	}

	report := schema.ConcentrationReport{
		Activities: make([]schema.ActivityConcentration, 0, len(cfg.Activities)),
		Stats:      run.input.stats,
	}
	for _, activity := range cfg.Activities {
		entry := schema.ActivityConcentration{Activity: activity}
		c, err := safeStep(ctx, "concentration/"+string(activity), func() (computed, error) {
			events, err := agg.Events(run.input.records, activity)
			if err != nil {
				return computed{}, err
			}
			events = agg.FilterEvents(events, cfg.InWindow)
			return computed{
				result: algo.Compute(agg.Counts(events), cfg.TopN),
				share:  agg.MaintainerShare(events, run.input.deps.Timeline),
			}, nil
		})
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Result = c.result
			entry.MaintainerShare = c.share
			run.trackConcentration(ctx, iocache.ScopeAll, activity, 0, c.result)
		}
		report.Activities = append(report.Activities, entry)
	}
	return report
}

// networkStep builds and analyzes the network of every configured relation.
func networkStep(ctx context.Context, cfg *contract.Config, run *analysisRun) []schema.NetworkResult {
	records := windowRecords(run.input.records, cfg)
	results := make([]schema.NetworkResult, 0, len(cfg.Relations))
	for _, relation := range cfg.Relations {
		result, err := safeStep(ctx, "network/"+string(relation), func() (schema.NetworkResult, error) {
			g, err := network.Build(records, relation, run.input.deps.Resolver, run.input.deps.Timeline)
			if err != nil {
				return schema.NetworkResult{}, err
			}
			return network.Analyze(g, network.Options{TopN: cfg.TopN, TopEdges: cfg.ResultLimit}), nil
		})
		if err != nil {
			result = schema.NetworkResult{
				Relation: relation,
				Nodes:    []schema.NodeMetrics{},
				TopEdges: []schema.Edge{},
				Error:    err.Error(),
			}
		} else {
			run.trackNetwork(ctx, result)
		}
		results = append(results, result)
	}
	return results
}

// timeseriesStep computes the yearly views of the configured activities.
func timeseriesStep(ctx context.Context, cfg *contract.Config, run *analysisRun) schema.TimeseriesResult {
	records := windowRecords(run.input.records, cfg)
	result := schema.TimeseriesResult{
		Trends:               make([]schema.ActivityTrend, 0, len(cfg.Activities)),
		RecordCounts:         map[int]int{},
		MergeCounts:          map[int]int{},
		MedianDaysToDecision: map[int]float64{},
	}

	type yearly struct {
		records map[int]int
		merges  map[int]int
		median  map[int]float64
	}
	counts, err := safeStep(ctx, "timeseries/counts", func() (yearly, error) {
		return yearly{
			records: agg.RecordCounts(records),
			merges:  agg.MergeCounts(records),
			median:  agg.MedianDaysToDecision(records),
		}, nil
	})
	if err == nil {
		result.RecordCounts = counts.records
		result.MergeCounts = counts.merges
		result.MedianDaysToDecision = counts.median
	}

	for _, activity := range cfg.Activities {
		trend := schema.ActivityTrend{Activity: activity, Points: []schema.YearPoint{}}
		points, err := safeStep(ctx, "timeseries/"+string(activity), func() ([]schema.YearPoint, error) {
			events, err := agg.Events(run.input.records, activity)
			if err != nil {
				return nil, err
			}
			return agg.YearlyConcentration(agg.FilterEvents(events, cfg.InWindow), cfg.TopN), nil
		})
		if err != nil {
			trend.Error = err.Error()
		} else {
			trend.Points = points
			for _, p := range points {
				run.trackConcentration(ctx, iocache.ScopeYear, activity, p.Year, p.Concentration)
			}
		}
		result.Trends = append(result.Trends, trend)
	}
	return result
}

// concentrationError summarizes failed activities for the envelope.
func concentrationError(report schema.ConcentrationReport) string {
	failed := 0
	for _, a := range report.Activities {
		if a.Error != "" {
			failed++
		}
	}
	if failed == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d activities failed", failed, len(report.Activities))
}

// timeseriesError summarizes failed trends for the envelope.
func timeseriesError(result schema.TimeseriesResult) string {
	failed := 0
	for _, t := range result.Trends {
		if t.Error != "" {
			failed++
		}
	}
	if failed == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d trends failed", failed, len(result.Trends))
}
