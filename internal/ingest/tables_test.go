package ingest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/govscope/core/classify"
	"github.com/huangsam/govscope/core/identity"
	"github.com/huangsam/govscope/core/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIdentityTable(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "identities.json",
			content: `{"alice":{"github":["alice-gh","AliceOld"],"irc":"al"}}`,
		},
		{
			name: "yaml",
			file: "identities.yaml",
			content: `alice:
  github: [alice-gh, AliceOld]
  irc: al
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			table, err := LoadIdentityTable(path)
			require.NoError(t, err)
			assert.Equal(t, identity.Table{
				"alice": {"github": {"alice-gh", "AliceOld"}, "irc": {"al"}},
			}, table)

			r := identity.New(table)
			assert.Equal(t, "alice", r.Resolve("al"))
			assert.Equal(t, "alice", r.Resolve("aliceold"))
		})
	}

	t.Run("missing file is empty", func(t *testing.T) {
		table, err := LoadIdentityTable(filepath.Join(dir, "absent.json"))
		require.NoError(t, err)
		assert.Empty(t, table)
	})

	t.Run("invalid content is an error", func(t *testing.T) {
		path := writeFile(t, dir, "bad.json", `{"alice": 5}`)
		_, err := LoadIdentityTable(path)
		assert.Error(t, err)
	})
}

func TestLoadMaintainerTable(t *testing.T) {
	dir := t.TempDir()
	content := `maint:
  periods:
    - start: 2020-01-01
      end: 2021-01-01
    - start: 2022-01-01
      end: null
broken:
  periods:
    - start: someday
`
	path := writeFile(t, dir, "maintainers.yml", content)

	periods, err := LoadMaintainerTable(path)
	require.NoError(t, err)
	require.Len(t, periods["maint"], 2)
	assert.NotContains(t, periods, "broken")
	assert.Nil(t, periods["maint"][1].End)

	tl := timeline.New(periods)
	assert.True(t, tl.IsMaintainer("maint", ptr(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))))
	assert.False(t, tl.IsMaintainer("maint", ptr(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC))))
	assert.True(t, tl.IsMaintainer("maint", ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	assert.True(t, tl.IsMaintainer("maint", nil))

	t.Run("json with bad end skips the period", func(t *testing.T) {
		path := writeFile(t, dir, "maintainers.json", `{"m":{"periods":[{"start":"2019-01-01","end":"later"},{"start":"2019-06-01","end":""}]}}`)
		periods, err := LoadMaintainerTable(path)
		require.NoError(t, err)
		require.Len(t, periods["m"], 1)
		assert.Nil(t, periods["m"][0].End)
	})

	t.Run("missing file is empty", func(t *testing.T) {
		periods, err := LoadMaintainerTable(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, periods)
	})
}

func ptr[T any](v T) *T { return &v }

func TestLoadClassifierTables(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path is the default", func(t *testing.T) {
		tables, err := LoadClassifierTables("")
		require.NoError(t, err)
		assert.Equal(t, classify.DefaultTables(), tables)
	})

	t.Run("file overrides named lists only", func(t *testing.T) {
		path := writeFile(t, dir, "classifier.yaml", `critical:
  - chain halt
nacks:
  - nack
  - veto
`)
		tables, err := LoadClassifierTables(path)
		require.NoError(t, err)
		defaults := classify.DefaultTables()
		assert.Equal(t, []string{"chain halt"}, tables.Critical)
		assert.Equal(t, []string{"nack", "veto"}, tables.Nacks)
		assert.Equal(t, defaults.Types, tables.Types)
		assert.Equal(t, defaults.Positive, tables.Positive)

		c := classify.New(tables)
		assert.True(t, c.IsNack("I veto this"))
	})
}
