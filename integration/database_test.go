//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestGovscopeWithMySQL tests the govscope CLI with a MySQL backend.
func TestGovscopeWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "govscope",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/govscope?parseTime=true", host, port.Port())
	runTrackedReport(t, []string{
		"GOVSCOPE_ANALYSIS_BACKEND=mysql",
		"GOVSCOPE_ANALYSIS_DB_CONNECT=" + connStr,
	})
}

// TestGovscopeWithPostgres tests the govscope CLI with a PostgreSQL backend.
func TestGovscopeWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runTrackedReport(t, []string{
		"GOVSCOPE_ANALYSIS_BACKEND=postgresql",
		"GOVSCOPE_ANALYSIS_DB_CONNECT=" + connStr,
	})
}

// runTrackedReport migrates, runs a report and checks the stored run.
func runTrackedReport(t *testing.T, env []string) {
	t.Helper()
	dataDir := writeFixtureData(t)
	outDir := t.TempDir()

	// Migrate to the latest schema version
	_, err := runGovscope(t, env, "analysis", "migrate")
	require.NoError(t, err)

	// Start from an empty history
	_, err = runGovscope(t, env, "analysis", "clear")
	require.NoError(t, err)

	// Run the full report with tracking enabled
	_, err = runGovscope(t, env, "report", dataDir, "--output-dir", outDir)
	require.NoError(t, err)
	for _, name := range []string{"concentration", "timeseries", "network_merge", "enrichment"} {
		_, statErr := os.Stat(filepath.Join(outDir, name+".json"))
		assert.NoError(t, statErr, "missing document %s", name)
	}

	// The run must be visible in the status output
	out, err := runGovscope(t, env, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Total Runs: 1")

	// Export the tracked data to Parquet
	prefix := filepath.Join(outDir, "export")
	_, err = runGovscope(t, env, "analysis", "export", "--output-file", prefix)
	require.NoError(t, err)
	_, err = os.Stat(prefix + ".analysis_runs.parquet")
	assert.NoError(t, err)
}
