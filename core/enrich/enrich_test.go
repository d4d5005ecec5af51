package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/govscope/core/classify"
	"github.com/huangsam/govscope/core/identity"
	"github.com/huangsam/govscope/core/timeline"
	"github.com/huangsam/govscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// testDeps wires real collaborators: "maint" is a maintainer during 2020 only.
func testDeps() Deps {
	return Deps{
		Resolver: identity.New(identity.Table{
			"maint": {"github": {"maint-gh"}},
			"alice": {"github": {"alice-gh"}},
		}),
		Timeline: timeline.New(map[string][]timeline.Period{
			"maint": {{Start: *ts("2020-01-01T00:00:00Z"), End: ts("2020-12-31T23:59:59Z")}},
		}),
		Classifier: classify.Default(),
	}
}

func samplePull() schema.Record {
	return schema.Record{
		Kind:      schema.PullKind,
		Number:    42,
		Author:    "alice-gh",
		Title:     "Fix wallet rescan",
		Body:      "Fixes #7, see also #3 and #7",
		State:     "closed",
		CreatedAt: ts("2020-06-01T00:00:00Z"),
		MergedAt:  ts("2021-01-02T12:00:00Z"),
		MergedBy:  "maint-gh",
		Files:     []string{"src/wallet/wallet.cpp", "src/wallet/rpc/backup.cpp"},
		Additions: 30,
		Deletions: 10,
		Commits:   2,
		Reviews: []schema.SubRecord{
			{Author: "maint-gh", State: "APPROVED", Body: "ACK", CreatedAt: ts("2020-06-02T00:00:00Z")},
			{Author: "bob", Body: "NACK", CreatedAt: ts("2020-06-03T00:00:00Z")},
			{Author: "bob", Body: "Still NACK", CreatedAt: ts("2020-06-04T00:00:00Z")},
		},
		Comments: []schema.SubRecord{
			{Author: "carol", Body: "Concept NACK from me", CreatedAt: ts("2020-06-05T00:00:00Z")},
			{Author: "maint-gh", Body: "Will merge soon", CreatedAt: ts("2021-01-02T00:00:00Z")},
		},
	}
}

func TestEnrichPull(t *testing.T) {
	got, err := Enrich(testDeps(), samplePull())
	require.NoError(t, err)

	assert.Equal(t, "alice", got.CanonicalAuthor)
	assert.Equal(t, "maint", got.CanonicalMergedBy)
	assert.Equal(t, []string{"carol", "maint"}, got.CanonicalCommenters)

	t.Run("maintainer checks use each event time", func(t *testing.T) {
		inv := got.MaintainerInvolvement
		assert.False(t, inv.AuthorIsMaintainer)
		assert.False(t, inv.MergedByMaintainer, "merged after tenure ended")
		assert.Equal(t, []string{"maint"}, inv.MaintainerReviewers, "reviewed during tenure")
		assert.Nil(t, inv.MaintainerCommenters, "commented after tenure ended")
		assert.True(t, inv.AnyMaintainer)
	})

	t.Run("decision", func(t *testing.T) {
		assert.Equal(t, schema.MergedOutcome, got.Outcome)
		require.NotNil(t, got.TimeToDecision)
		assert.InDelta(t, 215.5, got.TimeToDecision.Days, 1e-9)
		assert.InDelta(t, 5172, got.TimeToDecision.Hours, 1e-9)
	})

	t.Run("review metrics", func(t *testing.T) {
		m := got.ReviewMetrics
		assert.Equal(t, 1, m.Approvals)
		assert.Equal(t, 2, m.Rejections)
		assert.Equal(t, 3, m.NackCount, "same author twice counts twice")
		assert.Equal(t, 2, m.UniqueReviewers)
		assert.Equal(t, []string{"bob", "maint"}, m.Reviewers)
		require.Len(t, m.Reviews, 3)
		assert.Equal(t, "maint", m.Reviews[0].Author)
		assert.Equal(t, "carol", m.Nacks[2].Author)
	})

	t.Run("derived fields", func(t *testing.T) {
		assert.Equal(t, []int{3, 7}, got.LinkedIssues)
		assert.Equal(t, schema.ComplexityMetrics{Additions: 30, Deletions: 10, ChangedFiles: 2, Commits: 2, TotalChanges: 40}, got.Complexity)
		assert.Equal(t, schema.TypeBugfix, got.Classification.PrimaryType)
		assert.Equal(t, "wallet", got.DomainExpertise.PrimaryDomain)
	})
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	record := samplePull()
	before := samplePull()
	got, err := Enrich(testDeps(), record)
	require.NoError(t, err)
	assert.Equal(t, before, record)

	got.Files[0] = "changed"
	assert.Equal(t, "src/wallet/wallet.cpp", record.Files[0])
}

func TestEnrichEdgeCases(t *testing.T) {
	deps := testDeps()

	t.Run("no id and no author is dropped", func(t *testing.T) {
		_, err := Enrich(deps, schema.Record{Kind: schema.PullKind, Title: "orphan"})
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("author without id is kept", func(t *testing.T) {
		_, err := Enrich(deps, schema.Record{Kind: schema.EmailKind, Author: "x@example.org"})
		assert.NoError(t, err)
	})

	t.Run("id without author is kept", func(t *testing.T) {
		got, err := Enrich(deps, schema.Record{Kind: schema.IssueKind, Number: 9})
		require.NoError(t, err)
		assert.Equal(t, schema.OpenOutcome, got.Outcome)
		assert.Nil(t, got.TimeToDecision)
		assert.Empty(t, got.LinkedIssues)
	})

	t.Run("negative time to decision is discarded", func(t *testing.T) {
		got, err := Enrich(deps, schema.Record{
			Kind: schema.PullKind, Number: 1, Author: "a",
			CreatedAt: ts("2021-01-01T00:00:00Z"), ClosedAt: ts("2020-01-01T00:00:00Z"),
		})
		require.NoError(t, err)
		assert.Equal(t, schema.ClosedOutcome, got.Outcome)
		assert.Nil(t, got.TimeToDecision)
	})

	t.Run("closed uses closed_at", func(t *testing.T) {
		got, err := Enrich(deps, schema.Record{
			Kind: schema.IssueKind, Number: 2, Author: "a", State: "closed",
			CreatedAt: ts("2021-01-01T00:00:00Z"), ClosedAt: ts("2021-01-03T00:00:00Z"),
		})
		require.NoError(t, err)
		require.NotNil(t, got.TimeToDecision)
		assert.InDelta(t, 2.0, got.TimeToDecision.Days, 1e-9)
	})

	t.Run("releases carry no outcome", func(t *testing.T) {
		got, err := Enrich(deps, schema.Record{Kind: schema.ReleaseKind, Tag: "v1.0", Author: "maint-gh"})
		require.NoError(t, err)
		assert.Empty(t, got.Outcome)
		assert.Equal(t, "maint", got.CanonicalAuthor)
		assert.Equal(t, []string{"maint"}, got.CanonicalSigners)
	})

	t.Run("release signers are resolved and unique", func(t *testing.T) {
		got, err := Enrich(deps, schema.Record{Kind: schema.ReleaseKind, Tag: "v2.0", Signers: []string{"maint-gh", "maint", "alice-gh"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "maint"}, got.CanonicalSigners)
	})

	t.Run("no collaborators", func(t *testing.T) {
		got, err := Enrich(Deps{}, samplePull())
		require.NoError(t, err)
		assert.Equal(t, "alice-gh", got.CanonicalAuthor)
		assert.False(t, got.MaintainerInvolvement.AnyMaintainer)
		assert.Zero(t, got.ReviewMetrics.NackCount)
		assert.Equal(t, 2, got.ReviewMetrics.UniqueReviewers)
		require.Len(t, got.ReviewMetrics.Reviews, 3)
		assert.Equal(t, "maint-gh", got.ReviewMetrics.Reviews[0].Author)
		assert.Empty(t, got.ReviewMetrics.Reviews[0].ReviewType)
	})
}

func TestLinkedIssues(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []int
	}{
		{"keywords and bare", "Closes #12. Relates to #4; mentions #100", []int{4, 12, 100}},
		{"duplicates", "fixes #5 and fixed #5 and #5", []int{5}},
		{"resolved variants", "Resolved #9, refs #8", []int{8, 9}},
		{"none", "no references here", []int{}},
		{"zero ignored", "#0", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LinkedIssues(tt.text))
		})
	}
}

func TestPipelineRun(t *testing.T) {
	records := []schema.Record{
		samplePull(),
		{Kind: schema.PullKind},
		{Kind: schema.IssueKind, Number: 5, Author: "alice-gh"},
		{Kind: schema.EmailKind, ID: "<m1@x>", Author: "dave"},
	}

	for _, workers := range []int{0, 1, 4} {
		p := NewPipeline(testDeps(), workers)
		got, stats, err := p.Run(context.Background(), records)
		require.NoError(t, err)
		assert.Equal(t, schema.EnrichStats{Read: 4, Enriched: 3, Dropped: 1}, stats)
		require.Len(t, got, 3)
		assert.Equal(t, 42, got[0].Number, "input order is kept")
		assert.Equal(t, 5, got[1].Number)
		assert.Equal(t, "dave", got[2].CanonicalAuthor)
	}
}

func TestPipelineRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, stats, err := NewPipeline(testDeps(), 2).Run(ctx, []schema.Record{samplePull()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
	assert.Equal(t, 1, stats.Read)
}
