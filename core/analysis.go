package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/govscope/core/classify"
	"github.com/huangsam/govscope/core/enrich"
	"github.com/huangsam/govscope/core/identity"
	"github.com/huangsam/govscope/core/timeline"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/internal/ingest"
	"github.com/huangsam/govscope/schema"
	"github.com/rs/zerolog"
)

func logger() *zerolog.Logger {
	return contract.Named("core")
}

// Analysis names used for result documents and run tracking.
const (
	AnalysisEnrichment    = "enrichment"
	AnalysisConcentration = "concentration"
	AnalysisNetwork       = "network"
	AnalysisTimeseries    = "timeseries"
	AnalysisReport        = "report"
)

// RunInfo describes one finished analysis run.
type RunInfo struct {
	RunID    string
	Sources  []string
	Stats    schema.EnrichStats
	Duration time.Duration
}

// Envelope wraps data in a result document stamped with this run.
func (ri RunInfo) Envelope(name string, data any, stepErr string) schema.Envelope {
	env := schema.NewEnvelope(name, ri.RunID, ri.Sources, time.Now(), data)
	env.Error = stepErr
	return env
}

// analysisInput is everything one run reads and derives before any metric.
type analysisInput struct {
	deps    enrich.Deps
	records []schema.EnrichedRecord
	stats   schema.EnrichStats
	sources []string
}

// analysisRun tracks one run from BeginAnalysis to EndAnalysis.
type analysisRun struct {
	input   *analysisInput
	store   contract.AnalysisStore
	runID   string
	started time.Time
}

// info reports the run so far.
func (r *analysisRun) info() RunInfo {
	return RunInfo{
		RunID:    r.runID,
		Sources:  r.input.sources,
		Stats:    r.input.stats,
		Duration: time.Since(r.started),
	}
}

// finish closes the tracked run. Tracking failures are warnings.
func (r *analysisRun) finish(ctx context.Context) {
	analysisID, ok := trackedAnalysisID(ctx)
	if r.store == nil || !ok {
		return
	}
	if err := r.store.EndAnalysis(analysisID, time.Now(), r.input.stats); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// trackConcentration stores one concentration result for the tracked run.
func (r *analysisRun) trackConcentration(ctx context.Context, scope string, activity schema.Activity, year int, result schema.ConcentrationResult) {
	analysisID, ok := trackedAnalysisID(ctx)
	if r.store == nil || !ok {
		return
	}
	if err := r.store.RecordConcentration(analysisID, scope, activity, year, result); err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to record %s concentration", activity), err)
	}
}

// trackNetwork stores the per-node metrics of one relation for the tracked run.
func (r *analysisRun) trackNetwork(ctx context.Context, result schema.NetworkResult) {
	analysisID, ok := trackedAnalysisID(ctx)
	if r.store == nil || !ok {
		return
	}
	if err := r.store.RecordParticipantMetrics(analysisID, result.Relation, result.Nodes); err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to record %s network metrics", result.Relation), err)
	}
}

// runSingleAnalysisCore begins tracking, loads every input and enriches the
// records. The caller runs its steps and then calls finish on the returned run.
func runSingleAnalysisCore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, name string) (context.Context, *analysisRun, error) {
	if !headerSuppressed(ctx) {
		logAnalysisHeader(cfg, name)
	}

	run := &analysisRun{
		input:   &analysisInput{},
		runID:   uuid.NewString(),
		started: time.Now(),
	}
	ctx = withTracking(ctx, run.runID, 0)

	// --- 0. Begin Analysis Tracking (if configured) ---
	if mgr != nil {
		run.store = mgr.GetAnalysisStore()
	}
	if run.store != nil {
		analysisID, err := run.store.BeginAnalysis(run.started, run.runID, configParams(cfg, name))
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if analysisID > 0 {
			ctx = withTracking(ctx, run.runID, analysisID)
		}
	}

	// --- 1. Load and enrich ---
	input, err := loadAndEnrich(ctx, cfg)
	if err != nil {
		run.finish(ctx)
		return ctx, run, err
	}
	run.input = input
	return ctx, run, nil
}

// logAnalysisHeader logs what is about to be analyzed.
func logAnalysisHeader(cfg *contract.Config, name string) {
	event := logger().Info().
		Str("analysis", name).
		Str("data_dir", cfg.DataDir).
		Int("workers", cfg.Workers).
		Str("backend", string(cfg.AnalysisBackend))
	if !cfg.StartTime.IsZero() {
		event = event.Time("start", cfg.StartTime)
	}
	if !cfg.EndTime.IsZero() {
		event = event.Time("end", cfg.EndTime)
	}
	event.Msg("Starting analysis")
}

// configParams is the configuration snapshot stored with a tracked run.
func configParams(cfg *contract.Config, name string) map[string]any {
	params := map[string]any{
		"analysis":   name,
		"data_dir":   cfg.DataDir,
		"workers":    cfg.Workers,
		"top_n":      cfg.TopN,
		"relations":  cfg.Relations,
		"activities": cfg.Activities,
	}
	if !cfg.StartTime.IsZero() {
		params["start"] = cfg.StartTime.Format(contract.DateTimeFormat)
	}
	if !cfg.EndTime.IsZero() {
		params["end"] = cfg.EndTime.Format(contract.DateTimeFormat)
	}
	return params
}

// loadDeps reads the supporting tables. A missing table is an empty one.
func loadDeps(cfg *contract.Config) (enrich.Deps, []string, error) {
	var sources []string

	identities, err := ingest.LoadIdentityTable(cfg.Inputs.Identities)
	if err != nil {
		return enrich.Deps{}, nil, fmt.Errorf("loading identity table: %w", err)
	}
	if len(identities) > 0 {
		sources = append(sources, cfg.Inputs.Identities)
	}

	periods, err := ingest.LoadMaintainerTable(cfg.Inputs.Maintainers)
	if err != nil {
		return enrich.Deps{}, nil, fmt.Errorf("loading maintainer table: %w", err)
	}
	if len(periods) > 0 {
		sources = append(sources, cfg.Inputs.Maintainers)
	}

	tables := classify.DefaultTables()
	if cfg.Inputs.Classifier != "" {
		if tables, err = ingest.LoadClassifierTables(cfg.Inputs.Classifier); err != nil {
			return enrich.Deps{}, nil, fmt.Errorf("loading classifier tables: %w", err)
		}
		sources = append(sources, cfg.Inputs.Classifier)
	}

	return enrich.Deps{
		Resolver:   identity.New(identities),
		Timeline:   timeline.New(periods),
		Classifier: classify.New(tables),
	}, sources, nil
}

// loadAndEnrich reads the record streams and runs the enrichment pipeline.
func loadAndEnrich(ctx context.Context, cfg *contract.Config) (*analysisInput, error) {
	deps, tableSources, err := loadDeps(cfg)
	if err != nil {
		return nil, err
	}

	batch, err := ingest.LoadAll(cfg.Inputs.Sources())
	if err != nil {
		if errors.Is(err, ingest.ErrNoRecords) {
			logger().Error().Str("data_dir", cfg.DataDir).Msg("No cleaned records to analyze")
		}
		return nil, fmt.Errorf("loading records: %w", err)
	}

	records, stats, err := enrich.NewPipeline(deps, cfg.Workers).Run(ctx, batch.Records)
	if err != nil {
		return nil, fmt.Errorf("enriching records: %w", err)
	}
	stats.MalformedLines = batch.Malformed

	if stats.Dropped > 0 || stats.MalformedLines > 0 {
		logger().Warn().Int("dropped", stats.Dropped).Int("malformed_lines", stats.MalformedLines).Msg("Some input was skipped")
	}
	logger().Debug().Int("read", stats.Read).Int("enriched", stats.Enriched).Msg("Enrichment complete")

	return &analysisInput{
		deps:    deps,
		records: records,
		stats:   stats,
		sources: append(batch.Sources, tableSources...),
	}, nil
}

// windowRecords keeps the records created inside the configured window.
func windowRecords(records []schema.EnrichedRecord, cfg *contract.Config) []schema.EnrichedRecord {
	if cfg.StartTime.IsZero() && cfg.EndTime.IsZero() {
		return records
	}
	out := make([]schema.EnrichedRecord, 0, len(records))
	for _, r := range records {
		if cfg.InWindow(r.CreatedAt) {
			out = append(out, r)
		}
	}
	return out
}
