package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/govscope/core/classify"
	"github.com/huangsam/govscope/core/identity"
	"github.com/huangsam/govscope/core/timeline"
	"github.com/huangsam/govscope/internal/contract"
	"gopkg.in/yaml.v3"
)

// rawPeriod is one maintainer interval as written in the table.
type rawPeriod struct {
	Start string  `json:"start" yaml:"start"`
	End   *string `json:"end" yaml:"end"`
}

// rawMaintainer holds the intervals of one canonical participant.
type rawMaintainer struct {
	Periods []rawPeriod `json:"periods" yaml:"periods"`
}

// LoadIdentityTable reads a {canonical: {platform: [ids]}} table.
// A missing file yields an empty table and a warning.
func LoadIdentityTable(path string) (identity.Table, error) {
	raw := map[string]map[string]flexList{}
	found, err := decodeTable(path, &raw)
	if err != nil || !found {
		return identity.Table{}, err
	}

	table := make(identity.Table, len(raw))
	for canonical, platforms := range raw {
		canonical = strings.TrimSpace(canonical)
		if canonical == "" {
			continue
		}
		entry := make(map[string][]string, len(platforms))
		for platform, ids := range platforms {
			entry[platform] = []string(ids)
		}
		table[canonical] = entry
	}
	logger().Debug().Str("file", path).Int("participants", len(table)).Msg("Loaded identity table")
	return table, nil
}

// LoadMaintainerTable reads a {canonical: {periods: [{start, end|null}]}} table.
// Periods with an unparseable start or end are skipped with a warning; an
// empty or null end leaves the period open. A missing file yields an empty table.
func LoadMaintainerTable(path string) (map[string][]timeline.Period, error) {
	raw := map[string]rawMaintainer{}
	found, err := decodeTable(path, &raw)
	if err != nil || !found {
		return map[string][]timeline.Period{}, err
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	periods := make(map[string][]timeline.Period, len(raw))
	for _, name := range names {
		for i, p := range raw[name].Periods {
			period, err := p.toPeriod()
			if err != nil {
				logger().Warn().Err(err).Str("file", path).Str("participant", name).Int("period", i).Msg("Skipping maintainer period")
				continue
			}
			periods[name] = append(periods[name], period)
		}
	}
	logger().Debug().Str("file", path).Int("maintainers", len(periods)).Msg("Loaded maintainer table")
	return periods, nil
}

// toPeriod parses the interval bounds.
func (p rawPeriod) toPeriod() (timeline.Period, error) {
	start, ok := contract.ParseTimestamp(p.Start)
	if !ok {
		return timeline.Period{}, fmt.Errorf("unparseable start %q", p.Start)
	}
	period := timeline.Period{Start: start}
	if p.End != nil && strings.TrimSpace(*p.End) != "" {
		end, ok := contract.ParseTimestamp(*p.End)
		if !ok {
			return timeline.Period{}, fmt.Errorf("unparseable end %q", *p.End)
		}
		period.End = &end
	}
	return period, nil
}

// LoadClassifierTables reads keyword tables layered over the built-in ones.
// Lists present in the file replace the default list of the same name. An
// empty path or a missing file yields the defaults.
func LoadClassifierTables(path string) (classify.Tables, error) {
	tables := classify.DefaultTables()
	if path == "" {
		return tables, nil
	}
	if _, err := decodeTable(path, &tables); err != nil {
		return classify.DefaultTables(), err
	}
	return tables, nil
}

// decodeTable decodes a JSON or YAML file chosen by extension into v.
// The boolean is false when the file does not exist.
func decodeTable(path string, v any) (bool, error) {
	if path == "" {
		return false, nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger().Warn().Str("file", path).Msg("Supporting table not found, using empty table")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading table %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, v)
	default:
		err = json.Unmarshal(content, v)
	}
	if err != nil {
		return false, fmt.Errorf("decoding table %s: %w", path, err)
	}
	return true, nil
}
