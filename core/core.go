// Package core orchestrates the governance analyses: it loads the cleaned
// record streams, enriches them once and runs the concentration, network and
// temporal steps over the enriched set.
package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/internal/outwriter"
	"github.com/huangsam/govscope/schema"
	"golang.org/x/sync/errgroup"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// DefaultReportDir is where report documents go when no output directory is set.
const DefaultReportDir = "results"

// EnrichedStreamFile is the enriched record stream written next to result documents.
const EnrichedStreamFile = "enriched_records.jsonl"

// GetEnrichedRecords loads and enriches every configured stream.
func GetEnrichedRecords(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.EnrichedRecord, RunInfo, error) {
	ctx, run, err := runSingleAnalysisCore(ctx, cfg, mgr, AnalysisEnrichment)
	if err != nil {
		return nil, run.info(), err
	}
	defer run.finish(ctx)
	return run.input.records, run.info(), nil
}

// GetConcentrationResults computes the concentration of every configured activity.
func GetConcentrationResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.ConcentrationReport, RunInfo, error) {
	ctx, run, err := runSingleAnalysisCore(ctx, cfg, mgr, AnalysisConcentration)
	if err != nil {
		return schema.ConcentrationReport{}, run.info(), err
	}
	defer run.finish(ctx)
	report := concentrationStep(ctx, cfg, run)
	return report, run.info(), nil
}

// GetNetworkResults computes the influence network of every configured relation.
func GetNetworkResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.NetworkResult, RunInfo, error) {
	ctx, run, err := runSingleAnalysisCore(ctx, cfg, mgr, AnalysisNetwork)
	if err != nil {
		return nil, run.info(), err
	}
	defer run.finish(ctx)
	results := networkStep(ctx, cfg, run)
	return results, run.info(), nil
}

// GetTimeseriesResults computes the yearly views of the configured activities.
func GetTimeseriesResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.TimeseriesResult, RunInfo, error) {
	ctx, run, err := runSingleAnalysisCore(ctx, cfg, mgr, AnalysisTimeseries)
	if err != nil {
		return schema.TimeseriesResult{}, run.info(), err
	}
	defer run.finish(ctx)
	result := timeseriesStep(ctx, cfg, run)
	return result, run.info(), nil
}

// ExecuteEnrich writes the enriched record stream in the configured format.
func ExecuteEnrich(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	records, info, err := GetEnrichedRecords(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.OutputDir != "" {
		if err := outwriter.WriteEnrichedStream(filepath.Join(cfg.OutputDir, EnrichedStreamFile), records); err != nil {
			return err
		}
		if _, err := persistDocument(cfg.OutputDir, info.Envelope(AnalysisEnrichment, info.Stats, "")); err != nil {
			return err
		}
	}
	return outwriter.NewOutWriter().WriteEnriched(records, info.Stats, cfg, info.Duration)
}

// ExecuteConcentration prints the concentration of every configured activity.
func ExecuteConcentration(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	report, info, err := GetConcentrationResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.OutputDir != "" {
		if _, err := persistDocument(cfg.OutputDir, info.Envelope(AnalysisConcentration, report, concentrationError(report))); err != nil {
			return err
		}
	}
	return outwriter.NewOutWriter().WriteConcentration(report, cfg, info.Duration)
}

// ExecuteNetwork prints the influence network metrics of every configured relation.
func ExecuteNetwork(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	results, info, err := GetNetworkResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.OutputDir != "" {
		for _, result := range results {
			if _, err := persistDocument(cfg.OutputDir, info.Envelope(networkDocumentName(result.Relation), result, result.Error)); err != nil {
				return err
			}
		}
	}
	return outwriter.NewOutWriter().WriteNetwork(results, cfg, info.Duration)
}

// ExecuteTimeseries prints the per-year concentration trends.
func ExecuteTimeseries(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, info, err := GetTimeseriesResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.OutputDir != "" {
		if _, err := persistDocument(cfg.OutputDir, info.Envelope(AnalysisTimeseries, result, timeseriesError(result))); err != nil {
			return err
		}
	}
	return outwriter.NewOutWriter().WriteTimeseries(result, cfg, info.Duration)
}

// ExecuteReport enriches once and runs every analysis step concurrently,
// writing one result document per step plus the enriched record stream.
// A failing step still writes its document with the error field set.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	dir := cfg.OutputDir
	if dir == "" {
		dir = DefaultReportDir
	}

	ctx, run, err := runSingleAnalysisCore(ctx, cfg, mgr, AnalysisReport)
	if err != nil {
		// Without records no step can run; record that in each document.
		info := run.info()
		docs := []schema.ReportDocument{}
		for _, name := range []string{AnalysisConcentration, AnalysisNetwork, AnalysisTimeseries} {
			env := info.Envelope(name, map[string]any{}, err.Error())
			path, werr := persistDocument(dir, env)
			if werr != nil {
				return werr
			}
			docs = append(docs, schema.ReportDocument{Name: name, Path: path, Error: env.Error})
		}
		_ = outwriter.NewOutWriter().WriteReport(docs, cfg, info.Duration)
		return err
	}
	defer run.finish(ctx)

	type stepDocs struct {
		docs []schema.ReportDocument
	}
	var concentration, networks, timeseries stepDocs

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report := concentrationStep(gctx, cfg, run)
		doc, err := writeStepDocument(dir, run.info().Envelope(AnalysisConcentration, report, concentrationError(report)))
		concentration.docs = append(concentration.docs, doc)
		return err
	})
	g.Go(func() error {
		for _, result := range networkStep(gctx, cfg, run) {
			doc, err := writeStepDocument(dir, run.info().Envelope(networkDocumentName(result.Relation), result, result.Error))
			if err != nil {
				return err
			}
			networks.docs = append(networks.docs, doc)
		}
		return nil
	})
	g.Go(func() error {
		result := timeseriesStep(gctx, cfg, run)
		doc, err := writeStepDocument(dir, run.info().Envelope(AnalysisTimeseries, result, timeseriesError(result)))
		timeseries.docs = append(timeseries.docs, doc)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	info := run.info()
	statsDoc, err := writeStepDocument(dir, info.Envelope(AnalysisEnrichment, info.Stats, ""))
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	streamPath := filepath.Join(dir, EnrichedStreamFile)
	if err := outwriter.WriteEnrichedStream(streamPath, run.input.records); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	docs := []schema.ReportDocument{statsDoc, {Name: "enriched_records", Path: streamPath}}
	docs = append(docs, concentration.docs...)
	docs = append(docs, networks.docs...)
	docs = append(docs, timeseries.docs...)
	return outwriter.NewOutWriter().WriteReport(docs, cfg, info.Duration)
}

// networkDocumentName names the result document of one relation.
func networkDocumentName(relation schema.Relation) string {
	return AnalysisNetwork + "_" + string(relation)
}

// writeStepDocument persists one envelope and describes it for the report summary.
func writeStepDocument(dir string, env schema.Envelope) (schema.ReportDocument, error) {
	path, err := persistDocument(dir, env)
	return schema.ReportDocument{Name: env.Metadata.AnalysisName, Path: path, Error: env.Error}, err
}

// persistDocument validates and writes one result document. A validation
// failure is a warning and the document is still written.
func persistDocument(dir string, env schema.Envelope) (string, error) {
	if err := schema.ValidateEnvelope(env); err != nil {
		logger().Warn().Err(err).Str("analysis", env.Metadata.AnalysisName).Msg("Result document failed validation")
	}
	path, err := outwriter.WriteResultDocument(dir, env)
	if err != nil {
		return "", fmt.Errorf("writing %s result document: %w", env.Metadata.AnalysisName, err)
	}
	logger().Debug().Str("file", path).Msg("Wrote result document")
	return path, nil
}
