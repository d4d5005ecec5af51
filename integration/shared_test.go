//go:build basic || database

// Package integration contains integration tests for govscope.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or with container databases: go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a govscope binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// Two maintainers merge the pull requests of three contributors.
const fixturePulls = `{"number":1,"user":{"login":"alice"},"state":"closed","created_at":"2020-01-01T00:00:00Z","merged_at":"2020-01-03T00:00:00Z","merged_by":{"login":"mallory"},"title":"Fix crash in wallet","reviews":[{"user":{"login":"trent"},"state":"APPROVED","submitted_at":"2020-01-02T00:00:00Z"}]}
{"number":2,"user":{"login":"bob"},"state":"closed","created_at":"2020-02-01T00:00:00Z","merged_at":"2020-02-05T00:00:00Z","merged_by":{"login":"mallory"},"title":"Add fee estimation"}
{"number":3,"user":{"login":"carol"},"state":"closed","created_at":"2021-03-01T00:00:00Z","merged_at":"2021-03-02T00:00:00Z","merged_by":{"login":"trent"},"title":"Refactor p2p"}
{"number":4,"user":{"login":"carol"},"state":"closed","created_at":"2021-04-01T00:00:00Z","closed_at":"2021-04-09T00:00:00Z","title":"Consensus change","reviews":[{"user":{"login":"mallory"},"state":"CHANGES_REQUESTED","body":"NACK","submitted_at":"2021-04-02T00:00:00Z"}]}
`

const fixtureMaintainers = `{"mallory": {"periods": [{"start": "2015-01-01T00:00:00Z", "end": null}]}, "trent": {"periods": [{"start": "2019-06-01T00:00:00Z", "end": null}]}}`

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the govscope binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "govscope-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "govscope")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build govscope: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// writeFixtureData writes a small data directory and returns its path.
func writeFixtureData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pulls.jsonl"), []byte(fixturePulls), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maintainers.json"), []byte(fixtureMaintainers), 0o644))
	return dir
}

// runGovscope runs the binary with extra environment and returns stdout.
func runGovscope(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nOutput: %s\nStderr: %s", cmd.String(), string(output), stderr)
		return string(output), err
	}
	return string(output), nil
}
