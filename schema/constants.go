package schema

// Custom string types for type safety.
type (
	// DriverKey identifies a scoring component (penalty or bonus).
	DriverKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// Status represents the canonical delivery status of an entity.
	Status string

	// Band represents the confidence band derived from a DCS value.
	Band string

	// Trend represents the week-over-week direction of a DCS value.
	Trend string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// InputFormat represents the layout of a snapshot source.
	InputFormat string
)

// DateLayout is the canonical week-ending date representation.
const DateLayout = "2006-01-02"

// Canonical statuses.
const (
	StatusNotStarted Status = "Not Started" // default for empty status
	StatusInProgress Status = "In Progress"
	StatusBlocked    Status = "Blocked"
	StatusDone       Status = "Done"
)

// Confidence bands.
const (
	GreenBand  Band = "Green"
	YellowBand Band = "Yellow"
	RedBand    Band = "Red"
)

// Trend symbols. An empty Trend means no prior score exists.
const (
	TrendUp   Trend = "↑"
	TrendDown Trend = "↓"
	TrendFlat Trend = "→"
)

// Driver keys used in the scoring logic.
const (
	DriverBlocked    DriverKey = "blocked"
	DriverScope      DriverKey = "scope_volatility"
	DriverAging      DriverKey = "aging_wip"
	DriverDependency DriverKey = "dependency_density"
	DriverOwner      DriverKey = "owner_instability"
	DriverDueDate    DriverKey = "due_date_proximity"

	DriverProgress    DriverKey = "bonus_progress"
	DriverWIPLimit    DriverKey = "bonus_wip_limit"
	DriverScopeStable DriverKey = "bonus_scope_stable"
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	CSVOut      OutputMode = "csv"
	JSONOut     OutputMode = "json"
	YAMLOut     OutputMode = "yaml"
	ParquetOut  OutputMode = "parquet"
	MarkdownOut OutputMode = "markdown"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All input formats supported. AutoInput picks by file extension.
const (
	AutoInput InputFormat = "auto"
	CSVInput  InputFormat = "csv"
	JSONInput InputFormat = "json"
	JiraInput InputFormat = "jira"
)

// DriverPriority is the fixed tie-break order used when two drivers have
// the same absolute contribution.
var DriverPriority = []DriverKey{
	DriverBlocked,
	DriverScope,
	DriverAging,
	DriverDependency,
	DriverOwner,
	DriverDueDate,
	DriverProgress,
	DriverWIPLimit,
	DriverScopeStable,
}

// PenaltyDrivers lists the penalty categories in priority order.
var PenaltyDrivers = []DriverKey{
	DriverBlocked,
	DriverScope,
	DriverAging,
	DriverDependency,
	DriverOwner,
	DriverDueDate,
}

// DriverLabels maps each driver to its display name.
var DriverLabels = map[DriverKey]string{
	DriverBlocked:     "Blocked",
	DriverScope:       "Scope Volatility",
	DriverAging:       "Aging WIP",
	DriverDependency:  "Dependency Density",
	DriverOwner:       "Owner Instability",
	DriverDueDate:     "Due-Date Proximity",
	DriverProgress:    "Meaningful Progress",
	DriverWIPLimit:    "WIP Under Limit",
	DriverScopeStable: "Stable Scope",
}

// AllStatuses lists the canonical statuses.
var AllStatuses = []Status{StatusNotStarted, StatusInProgress, StatusBlocked, StatusDone}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	CSVOut:      {},
	JSONOut:     {},
	YAMLOut:     {},
	ParquetOut:  {},
	MarkdownOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	AutoInput: {},
	CSVInput:  {},
	JSONInput: {},
	JiraInput: {},
}

// PriorityOf returns the tie-break rank of a driver (lower wins).
func PriorityOf(key DriverKey) int {
	for i, k := range DriverPriority {
		if k == key {
			return i
		}
	}
	return len(DriverPriority)
}

// IsPenalty reports whether the driver is a penalty category.
func IsPenalty(key DriverKey) bool {
	for _, k := range PenaltyDrivers {
		if k == key {
			return true
		}
	}
	return false
}
