package contract

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/deliverypulse/pulse/schema"
)

// Default values for configuration.
const (
	DefaultRiskLimit     = 3
	DefaultPositiveLimit = 3
	MaxResultLimit       = 1000
	DefaultPrecision     = 1
	DefaultServeAddr     = ":8080"
)

// BlobConfig holds object store settings for s3:// and gs:// URIs.
type BlobConfig struct {
	S3Region    string
	S3Endpoint  string // Custom endpoint for S3-compatible stores; enables path-style addressing
	S3AccessKey string
	S3SecretKey string // Please use env var as this is plaintext
	GCSEndpoint string
}

// RulesRawInput holds scoring rule overrides from the YAML config file.
// Use pointer fields so that only provided values override defaults.
type RulesRawInput struct {
	BaseScore          *float64 `mapstructure:"base_score"`
	BlockedPerDay      *float64 `mapstructure:"blocked_per_day"`
	BlockedCap         *float64 `mapstructure:"blocked_cap"`
	ScopePerEvent      *float64 `mapstructure:"scope_per_event"`
	ScopeCap           *float64 `mapstructure:"scope_cap"`
	AgingPerDay        *float64 `mapstructure:"aging_per_day"`
	AgingCap           *float64 `mapstructure:"aging_cap"`
	DependencyPerItem  *float64 `mapstructure:"dependency_per_item"`
	DependencyCap      *float64 `mapstructure:"dependency_cap"`
	CriticalDependency *float64 `mapstructure:"critical_dependency"`
	OwnerPerChange     *float64 `mapstructure:"owner_per_change"`
	OwnerCap           *float64 `mapstructure:"owner_cap"`
	DueNearDays        *int     `mapstructure:"due_near_days"`
	DueNearPenalty     *float64 `mapstructure:"due_near_penalty"`
	DueSoonDays        *int     `mapstructure:"due_soon_days"`
	DueSoonPenalty     *float64 `mapstructure:"due_soon_penalty"`
	ProgressBonus      *float64 `mapstructure:"progress_bonus"`
	WIPLimitBonus      *float64 `mapstructure:"wip_limit_bonus"`
	ScopeStableBonus   *float64 `mapstructure:"scope_stable_bonus"`
	BonusCap           *float64 `mapstructure:"bonus_cap"`
	GreenThreshold     *float64 `mapstructure:"green_threshold"`
	YellowThreshold    *float64 `mapstructure:"yellow_threshold"`
	TrendDeadZone      *float64 `mapstructure:"trend_dead_zone"`
	NearDoneThreshold  *float64 `mapstructure:"near_done_threshold"`
}

// Config holds the runtime configuration for a scoring run.
// This struct is the "final, validated" config.
type Config struct {
	InputPath   string
	InputFormat schema.InputFormat
	PriorPath   string
	WeekEnding  string // Empty means the week ending comes from the input

	RiskLimit     int
	PositiveLimit int
	Precision     int
	Output        schema.OutputMode
	OutputFile    string
	Detail        bool
	Explain       bool
	Width         int // Terminal width override (0 = auto-detect)
	UseColors     bool
	Verbose       bool

	Record           bool // Persist the scored run to the history store
	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	// Rules are the defaults merged with overrides from the config file.
	Rules schema.Rules

	// ColumnAliases maps source column headers to canonical field names.
	ColumnAliases map[string]string

	Blob      BlobConfig
	ServeAddr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Format           string `mapstructure:"format"`
	Prior            string `mapstructure:"prior"`
	WeekEnding       string `mapstructure:"week-ending"`
	Limit            int    `mapstructure:"limit"`
	Positives        int    `mapstructure:"positives"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Detail           bool   `mapstructure:"detail"`
	Explain          bool   `mapstructure:"explain"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Verbose          bool   `mapstructure:"verbose"`
	Record           bool   `mapstructure:"record"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Object store settings ---
	S3Region    string `mapstructure:"s3-region"`
	S3Endpoint  string `mapstructure:"s3-endpoint"`
	S3AccessKey string `mapstructure:"s3-access-key"`
	S3SecretKey string `mapstructure:"s3-secret-key"`
	GCSEndpoint string `mapstructure:"gcs-endpoint"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Scoring rules from config file ---
	Rules RulesRawInput `mapstructure:"rules"`

	// --- Column aliases from config file ---
	Columns map[string]string `mapstructure:"columns"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ColumnAliases != nil {
		clone.ColumnAliases = make(map[string]string, len(c.ColumnAliases))
		maps.Copy(clone.ColumnAliases, c.ColumnAliases)
	}
	return &clone
}

// Params returns the run parameters recorded alongside a run in history.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"input":          c.InputPath,
		"format":         string(c.InputFormat),
		"prior":          c.PriorPath,
		"week_ending":    c.WeekEnding,
		"risk_limit":     c.RiskLimit,
		"positive_limit": c.PositiveLimit,
		"rules":          c.Rules,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processInputSource(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processRules(cfg, input); err != nil {
		return err
	}
	processColumnAliases(cfg, input)
	processBlobConfig(cfg, input)
	return nil
}

// validateSimpleInputs processes and validates the output-related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.Record = input.Record
	cfg.ServeAddr = input.Addr
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Limit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.RiskLimit = input.Limit
	if input.Positives < 0 || input.Positives > MaxResultLimit {
		return fmt.Errorf("positives must be between 0 and %d (received %d)", MaxResultLimit, input.Positives)
	}
	cfg.PositiveLimit = input.Positives

	// --- 2. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > 2 {
		return fmt.Errorf("precision must be 0, 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet, markdown", input.Output)
	}
	return nil
}

// processInputSource validates the snapshot source, its format and the week ending.
func processInputSource(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputStr)
	cfg.PriorPath = strings.TrimSpace(input.Prior)

	cfg.InputFormat = schema.InputFormat(strings.ToLower(strings.TrimSpace(input.Format)))
	if cfg.InputFormat == "" {
		cfg.InputFormat = schema.AutoInput
	}
	if _, ok := schema.ValidInputFormats[cfg.InputFormat]; !ok {
		return fmt.Errorf("invalid input format '%s'. must be auto, csv, json, jira", input.Format)
	}

	cfg.WeekEnding = strings.TrimSpace(input.WeekEnding)
	if cfg.WeekEnding != "" {
		if _, err := time.Parse(schema.DateLayout, cfg.WeekEnding); err != nil {
			return fmt.Errorf("invalid week ending '%s'. expected YYYY-MM-DD", input.WeekEnding)
		}
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// ProcessRulesRawInput merges rule overrides onto the defaults and validates
// the result.
func ProcessRulesRawInput(raw RulesRawInput) (schema.Rules, error) {
	rules := schema.DefaultRules()

	floats := []struct {
		src *float64
		dst *float64
	}{
		{raw.BaseScore, &rules.BaseScore},
		{raw.BlockedPerDay, &rules.BlockedPerDay},
		{raw.BlockedCap, &rules.BlockedCap},
		{raw.ScopePerEvent, &rules.ScopePerEvent},
		{raw.ScopeCap, &rules.ScopeCap},
		{raw.AgingPerDay, &rules.AgingPerDay},
		{raw.AgingCap, &rules.AgingCap},
		{raw.DependencyPerItem, &rules.DependencyPerItem},
		{raw.DependencyCap, &rules.DependencyCap},
		{raw.CriticalDependency, &rules.CriticalDependency},
		{raw.OwnerPerChange, &rules.OwnerPerChange},
		{raw.OwnerCap, &rules.OwnerCap},
		{raw.DueNearPenalty, &rules.DueNearPenalty},
		{raw.DueSoonPenalty, &rules.DueSoonPenalty},
		{raw.ProgressBonus, &rules.ProgressBonus},
		{raw.WIPLimitBonus, &rules.WIPLimitBonus},
		{raw.ScopeStableBonus, &rules.ScopeStableBonus},
		{raw.BonusCap, &rules.BonusCap},
		{raw.GreenThreshold, &rules.GreenThreshold},
		{raw.YellowThreshold, &rules.YellowThreshold},
		{raw.TrendDeadZone, &rules.TrendDeadZone},
		{raw.NearDoneThreshold, &rules.NearDoneThreshold},
	}
	for _, f := range floats {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if raw.DueNearDays != nil {
		rules.DueNearDays = *raw.DueNearDays
	}
	if raw.DueSoonDays != nil {
		rules.DueSoonDays = *raw.DueSoonDays
	}

	if err := rules.Validate(); err != nil {
		return schema.Rules{}, err
	}
	return rules, nil
}

// processRules converts the raw rule overrides into cfg.Rules.
func processRules(cfg *Config, input *ConfigRawInput) error {
	rules, err := ProcessRulesRawInput(input.Rules)
	if err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	cfg.Rules = rules
	return nil
}

// processColumnAliases copies the column aliases with trimmed keys.
func processColumnAliases(cfg *Config, input *ConfigRawInput) {
	if len(input.Columns) == 0 {
		cfg.ColumnAliases = nil
		return
	}
	cfg.ColumnAliases = make(map[string]string, len(input.Columns))
	for k, v := range input.Columns {
		cfg.ColumnAliases[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
}

// processBlobConfig copies object store settings.
func processBlobConfig(cfg *Config, input *ConfigRawInput) {
	cfg.Blob = BlobConfig{
		S3Region:    strings.TrimSpace(input.S3Region),
		S3Endpoint:  strings.TrimSpace(input.S3Endpoint),
		S3AccessKey: input.S3AccessKey,
		S3SecretKey: input.S3SecretKey,
		GCSEndpoint: strings.TrimSpace(input.GCSEndpoint),
	}
}
