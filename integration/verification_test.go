//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentMetadata struct {
	AnalysisName string   `json:"analysis_name"`
	RunID        string   `json:"run_id"`
	DataSources  []string `json:"data_sources"`
}

type concentrationResult struct {
	Gini          float64            `json:"gini"`
	HHI           float64            `json:"hhi"`
	TopNShares    map[string]float64 `json:"top_n_shares"`
	UniqueActors  int                `json:"unique_actors"`
	TotalActivity int                `json:"total_activity"`
}

type activityConcentration struct {
	Activity        string              `json:"activity"`
	MaintainerShare float64             `json:"maintainer_share"`
	Result          concentrationResult `json:"result"`
}

type concentrationDocument struct {
	Metadata documentMetadata `json:"metadata"`
	Data     struct {
		Activities []activityConcentration `json:"activities"`
	} `json:"data"`
}

// TestConcentrationVerification checks the CLI numbers against hand-computed values.
func TestConcentrationVerification(t *testing.T) {
	dataDir := writeFixtureData(t)
	outDir := t.TempDir()

	_, err := runGovscope(t, nil, "concentration", dataDir,
		"--activities", "merges,contributions",
		"--output", "json",
		"--output-file", filepath.Join(outDir, "stdout.json"),
		"--output-dir", outDir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outDir, "concentration.json"))
	require.NoError(t, err)
	var doc concentrationDocument
	require.NoError(t, json.Unmarshal(content, &doc))

	assert.Equal(t, "concentration", doc.Metadata.AnalysisName)
	assert.NotEmpty(t, doc.Metadata.RunID)
	require.Len(t, doc.Data.Activities, 2)

	for _, a := range doc.Data.Activities {
		switch a.Activity {
		case "merges":
			// mallory 2, trent 1
			assert.Equal(t, 3, a.Result.TotalActivity)
			assert.Equal(t, 2, a.Result.UniqueActors)
			assert.InDelta(t, 5.0/9.0, a.Result.HHI, 1e-9)
			assert.InDelta(t, 1.0/6.0, a.Result.Gini, 1e-9)
			assert.InDelta(t, 1.0, a.MaintainerShare, 1e-9)
		case "contributions":
			// alice 1, bob 1, carol 2
			assert.Equal(t, 4, a.Result.TotalActivity)
			assert.Equal(t, 3, a.Result.UniqueActors)
			assert.InDelta(t, 0.375, a.Result.HHI, 1e-9)
			assert.InDelta(t, 0.5, a.Result.TopNShares["1"], 1e-9)
			assert.InDelta(t, 0.0, a.MaintainerShare, 1e-9)
		default:
			t.Fatalf("unexpected activity %s", a.Activity)
		}
	}
}

// TestVersionCommand checks the version banner.
func TestVersionCommand(t *testing.T) {
	out, err := runGovscope(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "govscope CLI")
}
