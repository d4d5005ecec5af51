// Package enrich turns cleaned records into enriched records.
package enrich

import (
	"context"
	"errors"
	"sync"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/rs/zerolog"
)

// ErrInvalidRecord is returned for a record with neither a stable id nor an author.
var ErrInvalidRecord = errors.New("record lacks both a stable id and an author")

func logger() *zerolog.Logger {
	return contract.Named("enrich")
}

// Deps are the read-only collaborators shared by every record.
// Any of them may be nil, degrading to pass-through or false.
type Deps struct {
	Resolver   contract.IdentityResolver
	Timeline   contract.MaintainerTimeline
	Classifier contract.RecordClassifier
}

// Enrich builds the enriched form of one record.
func Enrich(deps Deps, record schema.Record) (schema.EnrichedRecord, error) {
	if !record.HasStableID() && record.Author == "" {
		return schema.EnrichedRecord{}, ErrInvalidRecord
	}
	return NewRecordBuilder(deps, record).
		ResolveIdentities().      // Canonical ids first, every later step uses them
		CheckMaintainers().       // Point-in-time maintainer flags
		Classify().               // Type, importance and domains
		CalculateDecision().      // Outcome and time to decision
		CalculateComplexity().    // Change size
		CalculateReviewMetrics(). // Approvals, rejections and NACKs
		ExtractLinkedIssues().    // Issue references in text
		Build(), nil
}

// Pipeline enriches batches of records with a worker pool.
type Pipeline struct {
	deps    Deps
	workers int
}

// NewPipeline creates a pipeline. Workers below one run a single worker.
func NewPipeline(deps Deps, workers int) *Pipeline {
	return &Pipeline{deps: deps, workers: max(workers, 1)}
}

// Run enriches every record and returns them in input order.
// Invalid records are dropped, logged and counted. Cancelling ctx stops the
// workers early and Run returns the context error with what was finished.
func (p *Pipeline) Run(ctx context.Context, records []schema.Record) ([]schema.EnrichedRecord, schema.EnrichStats, error) {
	type outcome struct {
		record schema.EnrichedRecord
		ok     bool
	}
	outcomes := make([]outcome, len(records))
	indexCh := make(chan int, len(records))
	var wg sync.WaitGroup

	for range p.workers {
		wg.Go(func() {
			for i := range indexCh {
				if ctx.Err() != nil {
					continue
				}
				enriched, err := Enrich(p.deps, records[i])
				if err != nil {
					logger().Warn().Err(err).Str("kind", string(records[i].Kind)).Int("index", i).Msg("dropping record")
					continue
				}
				// Each worker writes to a unique index.
				outcomes[i] = outcome{record: enriched, ok: true}
			}
		})
	}

	for i := range records {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	stats := schema.EnrichStats{Read: len(records)}
	results := make([]schema.EnrichedRecord, 0, len(records))
	for _, o := range outcomes {
		if o.ok {
			results = append(results, o.record)
		}
	}
	stats.Enriched = len(results)
	stats.Dropped = stats.Read - stats.Enriched
	return results, stats, ctx.Err()
}
