// Package cmd defines the command-line interface for govscope.
package cmd

import (
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(concentrationCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(timeseriesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", ".", "Directory holding the cleaned record streams and tables")
	rootCmd.PersistentFlags().String("pulls-file", "", "Pull request stream (default <data-dir>/"+contract.DefaultPullsFile+")")
	rootCmd.PersistentFlags().String("issues-file", "", "Issue stream (default <data-dir>/"+contract.DefaultIssuesFile+")")
	rootCmd.PersistentFlags().String("emails-file", "", "Mailing list stream (default <data-dir>/"+contract.DefaultEmailsFile+")")
	rootCmd.PersistentFlags().String("irc-file", "", "IRC stream (default <data-dir>/"+contract.DefaultIRCFile+")")
	rootCmd.PersistentFlags().String("releases-file", "", "Release signing stream (default <data-dir>/"+contract.DefaultReleasesFile+")")
	rootCmd.PersistentFlags().String("identity-file", "", "Identity table (default <data-dir>/"+contract.DefaultIdentityFile+")")
	rootCmd.PersistentFlags().String("maintainers-file", "", "Maintainer timeline (default <data-dir>/"+contract.DefaultMaintainersFile+")")
	rootCmd.PersistentFlags().String("classifier-file", "", "Optional JSON or YAML keyword tables layered over the built-in ones")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory to write result documents to")
	rootCmd.PersistentFlags().String("end", "", "End date in ISO8601, a year, or time ago")
	rootCmd.PersistentFlags().String("start", "", "Start date in ISO8601, a year, or time ago")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of participants and edges to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("top-n", "1,3,5,10", "Comma-separated top-N share cut-offs")
	rootCmd.PersistentFlags().String("relations", "", "Comma-separated relations: review, merge, communication (default all)")
	rootCmd.PersistentFlags().String("activities", "", "Comma-separated activities: merges, reviews, releases, contributions, comments, nacks (default all)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
