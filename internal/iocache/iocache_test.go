package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/govscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTime = time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"govscope_analysis_runs", false},
		{"_private1", false},
		{"", true},
		{"1table", true},
		{"runs; DROP TABLE x", true},
		{"runs-table", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
}

func TestBindQuery(t *testing.T) {
	query := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, query, bindQuery(query, schema.SQLiteBackend))
	assert.Equal(t, query, bindQuery(query, schema.MySQLBackend))
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", bindQuery(query, schema.PostgreSQLBackend))
}

func TestFormatTime(t *testing.T) {
	local := sampleTime.In(time.FixedZone("X", 3600))
	assert.Equal(t, "2021-03-04T05:06:07Z", formatTime(local, schema.SQLiteBackend))
	assert.Equal(t, local, formatTime(local, schema.PostgreSQLBackend))
}

func TestStoredTimeScan(t *testing.T) {
	tests := []struct {
		name  string
		src   any
		want  time.Time
		valid bool
		err   bool
	}{
		{"nil", nil, time.Time{}, false, false},
		{"native", sampleTime, sampleTime, true, false},
		{"rfc3339 text", "2021-03-04T05:06:07Z", sampleTime, true, false},
		{"mysql bytes", []byte("2021-03-04 05:06:07"), sampleTime, true, false},
		{"garbage", "yesterday", time.Time{}, false, true},
		{"wrong type", 42, time.Time{}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st storedTime
			err := st.Scan(tt.src)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, st.Valid)
			assert.True(t, tt.want.Equal(st.Time))
			if tt.valid {
				require.NotNil(t, st.ptr())
			} else {
				assert.Nil(t, st.ptr())
			}
		})
	}
}

func TestClearAnalysis(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "analysis.db")
		store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		// Clearing twice is fine
		assert.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		assert.Error(t, ClearAnalysis(schema.SQLiteBackend, "", ""))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearAnalysis(schema.NoneBackend, "", ""))
	})

	t.Run("unknown backend", func(t *testing.T) {
		assert.Error(t, ClearAnalysis(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestAnalysisStoreManager(t *testing.T) {
	manager := &AnalysisStoreManager{}
	assert.Nil(t, manager.GetAnalysisStore())

	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	manager.analysis = store
	assert.Same(t, store, manager.GetAnalysisStore())
}

func TestPrintAnalysisStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend:          "sqlite",
		Connected:        true,
		TotalRuns:        1200,
		LastRunID:        1200,
		LastRunTime:      sampleTime,
		OldestRunTime:    sampleTime,
		TotalRecordsSeen: 1500000,
		TableSizes:       map[string]int64{concentrationTable: 12, analysisRunsTable: 1200},
	})
	out := buf.String()
	assert.Contains(t, out, "Analysis Backend: sqlite")
	assert.Contains(t, out, "Total Runs: 1,200")
	assert.Contains(t, out, "Total Records Seen: 1,500,000")
	assert.Contains(t, out, "2021-03-04 05:06:07")
	// Tables print in name order
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(analysisRunsTable)), bytes.Index(buf.Bytes(), []byte(concentrationTable)))

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{Backend: "none"})
	assert.Contains(t, buf.String(), "Connected: false")
	assert.NotContains(t, buf.String(), "Table Sizes")
}

func TestExecuteAnalysisExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteAnalysisExport(&bytes.Buffer{}, &MockAnalysisStore{}, "")
		assert.ErrorContains(t, err, "--output-file")
	})

	t.Run("requires a store", func(t *testing.T) {
		err := ExecuteAnalysisExport(&bytes.Buffer{}, nil, "out")
		assert.Error(t, err)
	})

	t.Run("no data", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExecuteAnalysisExport(&bytes.Buffer{}, store, "out")
		assert.ErrorContains(t, err, "no analysis data")
		store.AssertExpectations(t)
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{}, errors.New("boom"))
		err := ExecuteAnalysisExport(&bytes.Buffer{}, store, "out")
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("writes three files", func(t *testing.T) {
		prefix := filepath.Join(t.TempDir(), "export")
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite", Connected: true, TotalRuns: 1}, nil)
		store.On("GetAllAnalysisRuns").Return([]schema.AnalysisRunRecord{{AnalysisID: 1, RunUUID: "r", StartTime: sampleTime}}, nil)
		store.On("GetAllConcentrations").Return([]schema.ConcentrationRecord{{AnalysisID: 1, Scope: ScopeAll, Activity: "merges"}}, nil)
		store.On("GetAllParticipantMetrics").Return([]schema.ParticipantMetricsRecord{}, nil)

		var buf bytes.Buffer
		require.NoError(t, ExecuteAnalysisExport(&buf, store, prefix))
		for _, suffix := range []string{".analysis_runs.parquet", ".concentration.parquet", ".participant_metrics.parquet"} {
			_, err := os.Stat(prefix + suffix)
			assert.NoError(t, err, "missing %s", suffix)
		}
		assert.Contains(t, buf.String(), "Export complete")
		store.AssertExpectations(t)
	})
}
