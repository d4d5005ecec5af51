package contract

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/govscope/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 3
	MaxPrecision       = 6
	MaxTopN            = 1000
)

// Default input file names inside the data directory.
const (
	DefaultPullsFile       = "pulls.jsonl"
	DefaultIssuesFile      = "issues.jsonl"
	DefaultEmailsFile      = "emails.jsonl"
	DefaultIRCFile         = "irc.jsonl"
	DefaultReleasesFile    = "releases.jsonl"
	DefaultIdentityFile    = "identities.json"
	DefaultMaintainersFile = "maintainers.json"
)

// ErrInvalidConfig wraps every validation failure from ProcessAndValidate.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// InputFiles holds the resolved path of every input stream and table.
type InputFiles struct {
	Pulls       string
	Issues      string
	Emails      string
	IRC         string
	Releases    string
	Identities  string
	Maintainers string
	Classifier  string // empty means the built-in keyword tables
}

// Sources returns the record stream paths keyed by kind.
func (f InputFiles) Sources() map[schema.RecordKind]string {
	return map[schema.RecordKind]string{
		schema.PullKind:    f.Pulls,
		schema.IssueKind:   f.Issues,
		schema.EmailKind:   f.Emails,
		schema.IRCKind:     f.IRC,
		schema.ReleaseKind: f.Releases,
	}
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	DataDir     string
	Inputs      InputFiles
	OutputDir   string
	Output      schema.OutputMode
	OutputFile  string
	ResultLimit int
	Workers     int
	Precision   int
	Width       int // Terminal width override (0 = auto-detect)

	TopN       []int
	Relations  []schema.Relation
	Activities []schema.Activity

	StartTime time.Time // zero means unbounded
	EndTime   time.Time // zero means unbounded

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string
	UseColors bool
	Version   string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	DataDir         string `mapstructure:"data-dir"`
	PullsFile       string `mapstructure:"pulls-file"`
	IssuesFile      string `mapstructure:"issues-file"`
	EmailsFile      string `mapstructure:"emails-file"`
	IRCFile         string `mapstructure:"irc-file"`
	ReleasesFile    string `mapstructure:"releases-file"`
	IdentityFile    string `mapstructure:"identity-file"`
	MaintainersFile string `mapstructure:"maintainers-file"`
	ClassifierFile  string `mapstructure:"classifier-file"`
	OutputDir       string `mapstructure:"output-dir"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Limit           int    `mapstructure:"limit"`
	Workers         int    `mapstructure:"workers"`
	Precision       int    `mapstructure:"precision"`
	Width           int    `mapstructure:"width"`
	TopN            string `mapstructure:"top-n"`
	Relations       string `mapstructure:"relations"`
	Activities      string `mapstructure:"activities"`
	Start           string `mapstructure:"start"`
	End             string `mapstructure:"end"`
	Color           string `mapstructure:"color"`
	LogLevel        string `mapstructure:"log-level"`
	LogFormat       string `mapstructure:"log-format"`

	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.TopN = slices.Clone(c.TopN)
	clone.Relations = slices.Clone(c.Relations)
	clone.Activities = slices.Clone(c.Activities)
	return &clone
}

// InWindow reports whether t falls inside the configured start/end window.
// Records without a timestamp are kept unless a window is set.
func (c *Config) InWindow(t *time.Time) bool {
	if t == nil {
		return c.StartTime.IsZero() && c.EndTime.IsZero()
	}
	if !c.StartTime.IsZero() && t.Before(c.StartTime) {
		return false
	}
	if !c.EndTime.IsZero() && t.After(c.EndTime) {
		return false
	}
	return true
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	steps := []func(*Config, *ConfigRawInput) error{
		validateSimpleInputs,
		processInputFiles,
		processTimeRange,
		processSelections,
		validateBackendConfig,
	}
	for _, step := range steps {
		if err := step(cfg, input); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("parquet output requires --output-file")
	}

	return nil
}

// processInputFiles resolves every input file against the data directory.
func processInputFiles(cfg *Config, input *ConfigRawInput) error {
	cfg.DataDir = strings.TrimSpace(input.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	cfg.OutputDir = strings.TrimSpace(input.OutputDir)

	resolve := func(value, fallback string) string {
		if value == "" {
			value = fallback
		}
		if filepath.IsAbs(value) {
			return value
		}
		return filepath.Join(cfg.DataDir, value)
	}
	cfg.Inputs = InputFiles{
		Pulls:       resolve(input.PullsFile, DefaultPullsFile),
		Issues:      resolve(input.IssuesFile, DefaultIssuesFile),
		Emails:      resolve(input.EmailsFile, DefaultEmailsFile),
		IRC:         resolve(input.IRCFile, DefaultIRCFile),
		Releases:    resolve(input.ReleasesFile, DefaultReleasesFile),
		Identities:  resolve(input.IdentityFile, DefaultIdentityFile),
		Maintainers: resolve(input.MaintainersFile, DefaultMaintainersFile),
	}
	if input.ClassifierFile != "" {
		cfg.Inputs.Classifier = resolve(input.ClassifierFile, "")
	}
	return nil
}

// processTimeRange handles the window parsing and time range validation.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now().UTC()
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	if input.Start != "" {
		t, err := ParseWindowBound(input.Start, now, false)
		if err != nil {
			return fmt.Errorf("invalid start date format for '%s'. Expected ISO8601, a year, or 'N [units] ago': %w", input.Start, err)
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := ParseWindowBound(input.End, now, true)
		if err != nil {
			return fmt.Errorf("invalid end date format for '%s'. Expected ISO8601, a year, or 'N [units] ago': %w", input.End, err)
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// processSelections parses the top-n, relation and activity lists.
func processSelections(cfg *Config, input *ConfigRawInput) error {
	topN, err := ParseTopN(input.TopN)
	if err != nil {
		return err
	}
	cfg.TopN = topN

	cfg.Relations = cfg.Relations[:0]
	for _, part := range splitList(input.Relations) {
		rel := schema.Relation(strings.ToLower(part))
		if _, ok := schema.ValidRelations[rel]; !ok {
			return fmt.Errorf("invalid relation '%s'. must be review, merge, communication", part)
		}
		if !slices.Contains(cfg.Relations, rel) {
			cfg.Relations = append(cfg.Relations, rel)
		}
	}
	if len(cfg.Relations) == 0 {
		cfg.Relations = slices.Clone(schema.AllRelations)
	}

	cfg.Activities = cfg.Activities[:0]
	for _, part := range splitList(input.Activities) {
		act := schema.Activity(strings.ToLower(part))
		if _, ok := schema.ValidActivities[act]; !ok {
			return fmt.Errorf("invalid activity '%s'. must be merges, reviews, releases, contributions, comments, nacks", part)
		}
		if !slices.Contains(cfg.Activities, act) {
			cfg.Activities = append(cfg.Activities, act)
		}
	}
	if len(cfg.Activities) == 0 {
		cfg.Activities = slices.Clone(schema.AllActivities)
	}
	return nil
}

// ParseTopN parses a comma-separated list of positive cut-offs.
// The result is sorted ascending and deduplicated; empty input yields the defaults.
func ParseTopN(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return slices.Clone(schema.DefaultTopN), nil
	}
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid top-n value '%s': %w", part, err)
		}
		if n <= 0 || n > MaxTopN {
			return nil, fmt.Errorf("top-n values must be between 1 and %d (received %d)", MaxTopN, n)
		}
		result = append(result, n)
	}
	slices.Sort(result)
	return slices.Compact(result), nil
}

// splitList splits a comma-separated string and trims empty entries.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validateBackendConfig validates the analysis backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.AnalysisBackend = schema.NoneBackend
	if input.AnalysisBackend != "" {
		cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	return ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if _, err := mysql.ParseDSN(connStr); err != nil {
			return fmt.Errorf("invalid MySQL connection string: %w", err)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			if _, err := url.Parse(connStr); err != nil {
				return fmt.Errorf("invalid PostgreSQL connection URL: %w", err)
			}
			return nil
		}
		if !strings.Contains(connStr, "host=") || !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must be a postgres:// URL or contain 'host=' and 'dbname=' parameters")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}
