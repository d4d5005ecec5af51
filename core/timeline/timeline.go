// Package timeline answers point-in-time maintainer questions.
package timeline

import (
	"maps"
	"slices"
	"time"

	"github.com/huangsam/govscope/internal/contract"
)

// Period is one validity interval. A nil End means still valid.
type Period struct {
	Start time.Time
	End   *time.Time
}

// contains reports whether at falls inside the period, bounds inclusive.
func (p Period) contains(at time.Time) bool {
	if at.Before(p.Start) {
		return false
	}
	return p.End == nil || !at.After(*p.End)
}

// Timeline maps canonical ids to sorted, non-overlapping periods.
type Timeline struct {
	periods map[string][]Period
}

var _ contract.MaintainerTimeline = &Timeline{}

// New builds a timeline. Periods for one participant are sorted by start and
// overlapping ones are merged, with a warning, so intervals never overlap.
// Periods whose end precedes their start are discarded.
func New(table map[string][]Period) *Timeline {
	log := contract.Named("timeline")
	tl := &Timeline{periods: make(map[string][]Period, len(table))}
	for id, periods := range table {
		valid := make([]Period, 0, len(periods))
		for _, p := range periods {
			if p.End != nil && p.End.Before(p.Start) {
				log.Warn().Str("participant", id).Time("start", p.Start).Time("end", *p.End).Msg("discarding inverted maintainer period")
				continue
			}
			valid = append(valid, p)
		}
		if len(valid) == 0 {
			continue
		}
		slices.SortFunc(valid, func(a, b Period) int { return a.Start.Compare(b.Start) })

		merged := []Period{valid[0]}
		for _, p := range valid[1:] {
			last := &merged[len(merged)-1]
			if !last.contains(p.Start) {
				merged = append(merged, p)
				continue
			}
			log.Warn().Str("participant", id).Time("start", p.Start).Msg("merging overlapping maintainer periods")
			switch {
			case last.End == nil:
			case p.End == nil:
				last.End = nil
			case p.End.After(*last.End):
				end := *p.End
				last.End = &end
			}
		}
		tl.periods[id] = merged
	}
	return tl
}

// IsMaintainer reports whether canonicalID was a maintainer at the given time.
// A nil time asks whether they were ever a maintainer.
func (tl *Timeline) IsMaintainer(canonicalID string, at *time.Time) bool {
	if tl == nil {
		return false
	}
	periods := tl.periods[canonicalID]
	if at == nil {
		return len(periods) > 0
	}
	for _, p := range periods {
		if p.contains(*at) {
			return true
		}
	}
	return false
}

// Maintainers returns every participant with at least one period, sorted.
func (tl *Timeline) Maintainers() []string {
	if tl == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(tl.periods))
}

// Periods returns a copy of the merged periods of one participant.
func (tl *Timeline) Periods(canonicalID string) []Period {
	if tl == nil {
		return nil
	}
	return slices.Clone(tl.periods[canonicalID])
}
