package enrich

import (
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/govscope/schema"
)

var (
	keywordIssueRe = regexp.MustCompile(`(?i)\b(?:fix(?:es|ed)?|close[sd]?|resolve[sd]?|relates to|refs?)\s+#(\d+)`)
	bareIssueRe    = regexp.MustCompile(`#(\d+)`)
)

// RecordBuilder derives every enriched field of one record.
// The source record is never modified; Build returns a fresh value.
type RecordBuilder struct {
	deps   Deps
	source schema.Record
	result schema.EnrichedRecord
}

// NewRecordBuilder is the starting point for enriching one record.
// Slices are cloned so the result shares no backing arrays with the source.
func NewRecordBuilder(deps Deps, record schema.Record) *RecordBuilder {
	copied := record
	copied.Labels = slices.Clone(record.Labels)
	copied.Files = slices.Clone(record.Files)
	copied.Reviews = slices.Clone(record.Reviews)
	copied.Comments = slices.Clone(record.Comments)
	copied.Signers = slices.Clone(record.Signers)
	return &RecordBuilder{
		deps:   deps,
		source: record,
		result: schema.EnrichedRecord{Record: copied},
	}
}

// ResolveIdentities fills the canonical author, merger, commenters and signers.
// Commenters align with the source comments; signers are unique per record and
// fall back to the author of a release without a signer list.
func (b *RecordBuilder) ResolveIdentities() *RecordBuilder {
	b.result.CanonicalAuthor = b.resolve(b.source.Author)
	b.result.CanonicalMergedBy = b.resolve(b.source.MergedBy)

	if len(b.source.Comments) > 0 {
		b.result.CanonicalCommenters = make([]string, len(b.source.Comments))
		for i, c := range b.source.Comments {
			b.result.CanonicalCommenters[i] = b.resolve(c.Author)
		}
	}

	var signers []string
	for _, s := range b.source.Signers {
		if id := b.resolve(s); id != "" {
			signers = append(signers, id)
		}
	}
	if len(signers) == 0 && b.source.Kind == schema.ReleaseKind && b.result.CanonicalAuthor != "" {
		signers = []string{b.result.CanonicalAuthor}
	}
	b.result.CanonicalSigners = sortedUnique(signers)
	return b
}

// CheckMaintainers evaluates each role at its own event timestamp.
// A role without a timestamp is not counted as maintainer involvement.
func (b *RecordBuilder) CheckMaintainers() *RecordBuilder {
	inv := schema.MaintainerInvolvement{
		AuthorIsMaintainer: b.isMaintainerAt(b.result.CanonicalAuthor, b.source.CreatedAt),
		MergedByMaintainer: b.isMaintainerAt(b.result.CanonicalMergedBy, b.source.MergedAt),
	}

	var reviewers, commenters []string
	for _, r := range b.source.Reviews {
		if id := b.resolve(r.Author); b.isMaintainerAt(id, r.CreatedAt) {
			reviewers = append(reviewers, id)
		}
	}
	for _, c := range b.source.Comments {
		if id := b.resolve(c.Author); b.isMaintainerAt(id, c.CreatedAt) {
			commenters = append(commenters, id)
		}
	}
	inv.MaintainerReviewers = sortedUnique(reviewers)
	inv.MaintainerCommenters = sortedUnique(commenters)
	inv.AnyMaintainer = inv.AuthorIsMaintainer || inv.MergedByMaintainer ||
		len(inv.MaintainerReviewers) > 0 || len(inv.MaintainerCommenters) > 0

	b.result.MaintainerInvolvement = inv
	return b
}

// Classify tags the record type, importance and file domains.
func (b *RecordBuilder) Classify() *RecordBuilder {
	if b.deps.Classifier == nil {
		return b
	}
	b.result.Classification = b.deps.Classifier.Classify(b.source)
	b.result.DomainExpertise = b.deps.Classifier.MapDomains(b.source.Files)
	return b
}

// CalculateDecision sets the outcome and time to decision.
// The decision time is merged_at, else closed_at. Negative deltas are dropped.
func (b *RecordBuilder) CalculateDecision() *RecordBuilder {
	r := b.source
	if r.Kind != schema.PullKind && r.Kind != schema.IssueKind {
		return b
	}

	decided := r.MergedAt
	switch {
	case r.MergedAt != nil:
		b.result.Outcome = schema.MergedOutcome
	case r.ClosedAt != nil || r.State == "closed":
		b.result.Outcome = schema.ClosedOutcome
		decided = r.ClosedAt
	default:
		b.result.Outcome = schema.OpenOutcome
	}

	if decided == nil || r.CreatedAt == nil {
		return b
	}
	delta := decided.Sub(*r.CreatedAt)
	if delta < 0 {
		logger().Debug().Str("record", r.Key()).Dur("delta", delta).Msg("discarding negative time to decision")
		return b
	}
	hours := delta.Hours()
	b.result.TimeToDecision = &schema.Duration{Days: hours / 24, Hours: hours}
	return b
}

// CalculateComplexity copies the change size of the record.
func (b *RecordBuilder) CalculateComplexity() *RecordBuilder {
	r := b.source
	changed := r.ChangedFiles
	if changed == 0 {
		changed = len(r.Files)
	}
	b.result.Complexity = schema.ComplexityMetrics{
		Additions:    r.Additions,
		Deletions:    r.Deletions,
		ChangedFiles: changed,
		Commits:      r.Commits,
		TotalChanges: r.Additions + r.Deletions,
	}
	return b
}

// CalculateReviewMetrics classifies every review and collects NACKs from
// reviews and comments. NACKs are not deduplicated by author. Every review
// gets an entry carrying its canonical author even without a classifier.
func (b *RecordBuilder) CalculateReviewMetrics() *RecordBuilder {
	m := schema.ReviewMetrics{
		Nacks:   []schema.NackEvent{},
		Reviews: []schema.ReviewClassification{},
	}
	var reviewers []string
	for _, r := range b.source.Reviews {
		id := b.resolve(r.Author)
		if id != "" {
			reviewers = append(reviewers, id)
		}
		rc := schema.ReviewClassification{}
		if b.deps.Classifier != nil {
			rc = b.deps.Classifier.ClassifyReview(r)
		}
		rc.Author = id
		rc.Timestamp = r.CreatedAt
		switch rc.ReviewType {
		case schema.ReviewApproval:
			m.Approvals++
		case schema.ReviewChangesRequest, schema.ReviewNack:
			m.Rejections++
		}
		if rc.IsNack {
			m.Nacks = append(m.Nacks, schema.NackEvent{Author: id, Timestamp: r.CreatedAt})
		}
		m.Reviews = append(m.Reviews, rc)
	}
	if b.deps.Classifier != nil {
		for _, c := range b.source.Comments {
			if b.deps.Classifier.ClassifyReview(c).IsNack {
				m.Nacks = append(m.Nacks, schema.NackEvent{Author: b.resolve(c.Author), Timestamp: c.CreatedAt})
			}
		}
	}
	m.Reviewers = sortedUnique(reviewers)
	if m.Reviewers == nil {
		m.Reviewers = []string{}
	}
	m.UniqueReviewers = len(m.Reviewers)
	m.NackCount = len(m.Nacks)
	b.result.ReviewMetrics = m
	return b
}

// ExtractLinkedIssues collects issue numbers referenced in the title and body.
// Keyword references are collected first, then bare mentions; the union is
// returned sorted.
func (b *RecordBuilder) ExtractLinkedIssues() *RecordBuilder {
	b.result.LinkedIssues = LinkedIssues(b.source.Title + "\n" + b.source.Body)
	return b
}

// Build returns the enriched record.
func (b *RecordBuilder) Build() schema.EnrichedRecord {
	return b.result
}

// LinkedIssues extracts referenced issue numbers from free text.
func LinkedIssues(text string) []int {
	seen := make(map[int]struct{})
	for _, re := range []*regexp.Regexp{keywordIssueRe, bareIssueRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				seen[n] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func (b *RecordBuilder) resolve(id string) string {
	if id == "" || b.deps.Resolver == nil {
		return id
	}
	return b.deps.Resolver.Resolve(id)
}

func (b *RecordBuilder) isMaintainerAt(id string, at *time.Time) bool {
	if id == "" || at == nil || b.deps.Timeline == nil {
		return false
	}
	return b.deps.Timeline.IsMaintainer(id, at)
}

// sortedUnique returns a sorted copy without duplicates, or nil when empty.
func sortedUnique(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
