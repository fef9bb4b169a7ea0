// Package cmd defines the command-line interface for pulse.
package cmd

import (
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(risksCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("format", string(schema.AutoInput), "Input format: auto or csv or json or jira")
	rootCmd.PersistentFlags().String("prior", "", "Prior scored snapshot (JSON) used for trends instead of run history")
	rootCmd.PersistentFlags().String("week-ending", "", "Week ending date (YYYY-MM-DD); overrides the date in the input")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultRiskLimit, "Number of top risks before Red entities are appended")
	rootCmd.PersistentFlags().Int("positives", contract.DefaultPositiveLimit, "Number of positive movers in the brief")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet or markdown")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path or s3:// or gs:// URI to write output to")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-entity signal columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().Bool("record", false, "Record the scored run in the history store")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("s3-region", "", "AWS region for s3:// sources")
	rootCmd.PersistentFlags().String("s3-endpoint", "", "Custom endpoint for S3-compatible stores")
	rootCmd.PersistentFlags().String("s3-access-key", "", "Static access key for S3-compatible stores")
	rootCmd.PersistentFlags().String("s3-secret-key", "", "Static secret key for S3-compatible stores")
	rootCmd.PersistentFlags().String("gcs-endpoint", "", "Custom endpoint for gs:// sources (e.g., an emulator)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().Bool("explain", false, "Print the penalty and bonus breakdown per entity")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Address for the HTTP server to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
