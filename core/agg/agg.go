// Package agg turns enriched records into per-participant activity events and
// buckets them over time.
package agg

import (
	"fmt"
	"time"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
)

// Event is one unit of activity attributed to one participant.
type Event struct {
	Actor string
	At    *time.Time
}

// Events extracts the events of one activity. Every statistic of an activity
// is computed from this one list so the attribution rule never differs
// between Gini, HHI and top-N shares.
//
//   - merges: the merger of each merged pull request, at merged_at
//   - reviews: the author of each review, at the review time
//   - releases: each unique signer of a release, at the release time
//   - contributions: the author of each pull request, at created_at
//   - comments: each comment author, plus every email and IRC message author
//   - nacks: the author of each NACK in reviews or comments
func Events(records []schema.EnrichedRecord, activity schema.Activity) ([]Event, error) {
	var events []Event
	add := func(actor string, at *time.Time) {
		if actor != "" {
			events = append(events, Event{Actor: actor, At: at})
		}
	}

	for i := range records {
		r := &records[i]
		switch activity {
		case schema.MergesActivity:
			if r.Kind == schema.PullKind && r.IsMerged() {
				add(r.CanonicalMergedBy, r.MergedAt)
			}
		case schema.ReviewsActivity:
			for _, rv := range r.ReviewMetrics.Reviews {
				add(rv.Author, rv.Timestamp)
			}
		case schema.ReleasesActivity:
			if r.Kind == schema.ReleaseKind {
				for _, s := range r.CanonicalSigners {
					add(s, r.CreatedAt)
				}
			}
		case schema.ContributionsActivity:
			if r.Kind == schema.PullKind {
				add(r.CanonicalAuthor, r.CreatedAt)
			}
		case schema.CommentsActivity:
			if r.Kind == schema.EmailKind || r.Kind == schema.IRCKind {
				add(r.CanonicalAuthor, r.CreatedAt)
				continue
			}
			for j, c := range r.Comments {
				if j < len(r.CanonicalCommenters) {
					add(r.CanonicalCommenters[j], c.CreatedAt)
				}
			}
		case schema.NacksActivity:
			for _, n := range r.ReviewMetrics.Nacks {
				add(n.Author, n.Timestamp)
			}
		default:
			return nil, fmt.Errorf("unknown activity %q", activity)
		}
	}
	return events, nil
}

// FilterEvents keeps the events accepted by keep.
func FilterEvents(events []Event, keep func(*time.Time) bool) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if keep(e.At) {
			out = append(out, e)
		}
	}
	return out
}

// Counts tallies events per actor.
func Counts(events []Event) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Actor]++
	}
	return counts
}

// MaintainerShare returns the fraction of events made by a participant who
// was a maintainer at the event time. Events without a time are not counted
// as maintainer events. An empty list yields 0.
func MaintainerShare(events []Event, tl contract.MaintainerTimeline) float64 {
	if len(events) == 0 || tl == nil {
		return 0
	}
	var n int
	for _, e := range events {
		if e.At != nil && tl.IsMaintainer(e.Actor, e.At) {
			n++
		}
	}
	return float64(n) / float64(len(events))
}

// ActivityCounts is Events followed by Counts.
func ActivityCounts(records []schema.EnrichedRecord, activity schema.Activity) (map[string]int, error) {
	events, err := Events(records, activity)
	if err != nil {
		return nil, err
	}
	return Counts(events), nil
}
