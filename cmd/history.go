package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/deliverypulse/pulse/internal/blobstore"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/internal/iocache"
	"github.com/deliverypulse/pulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// recentRunsShown is the number of runs listed by history status.
const recentRunsShown = 10

// historyBackendConfig reads and validates the history backend settings.
func historyBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("history-backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}
	if err := iocache.InitHistory(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Blob = contract.BlobConfig{
		S3Region:    viper.GetString("s3-region"),
		S3Endpoint:  viper.GetString("s3-endpoint"),
		S3AccessKey: viper.GetString("s3-access-key"),
		S3SecretKey: viper.GetString("s3-secret-key"),
		GCSEndpoint: viper.GetString("gcs-endpoint"),
	}
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focuses on run history management.
//
// Note: History subcommands use minimal initialization instead of the full
// sharedSetup used by scoring commands, so no input snapshot is needed.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded scoring runs",
	Long: `Manage the run history used for week-over-week trends.

Runs scored with --record are stored with their parameters and every
scored entity. Later runs use the newest earlier week as their prior
snapshot when --prior is not given.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics and recent runs
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check what has been recorded
  pulse history status

  # Export for analysis in pandas/DuckDB
  pulse history export --output-file history`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and recent runs",
	Long: `Show the backend, connection state, run counts, table sizes and the
most recent runs.

Examples:
  # Check history status
  pulse history status`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
		if !status.Connected || status.TotalRuns == 0 {
			return
		}
		runs, err := store.ListRuns(rootCtx, recentRunsShown)
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		fmt.Println("Recent Runs:")
		iocache.PrintRuns(os.Stdout, runs)
	},
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all stored runs and entity scores.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  pulse history export --output-file backup
  pulse history clear`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet.

Writes two objects next to --output-file:
- <output-file>.runs.parquet           run metadata
- <output-file>.entity_scores.parquet  every scored entity per run

--output-file may be a local path or an s3:// or gs:// URI.

Examples:
  # Export all data
  pulse history export --output-file history

  # Query with DuckDB
  duckdb -c "SELECT week_ending, avg(dcs_current) FROM read_parquet('history.entity_scores.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		blobs := blobstore.New(cfg.Blob)
		defer func() { _ = blobs.Close() }()
		if err := iocache.ExecuteHistoryExport(rootCtx, iocache.Manager.GetHistoryStore(), blobs, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  pulse history migrate

  # Migrate to specific version
  pulse history migrate --target-version 1

  # Rollback to initial state
  pulse history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations applied successfully.")
	},
}
