// Package schema has configs, models and global variables for all parts of pulse.
package schema

// Entity is one canonical delivery-tracking record (initiative, epic or story).
// Hierarchy level is carried as a field, not a type distinction.
type Entity struct {
	ID                   string  `json:"id" yaml:"id"`
	Name                 string  `json:"name" yaml:"name"`
	Level                string  `json:"level,omitempty" yaml:"level,omitempty"`
	Status               Status  `json:"status" yaml:"status"`
	BlockedDurationDays  float64 `json:"blocked_duration_days" yaml:"blocked_duration_days"`
	ScopeChangeEvents14d int     `json:"scope_change_events_14d" yaml:"scope_change_events_14d"`
	DaysStagnant         float64 `json:"days_stagnant" yaml:"days_stagnant"`
	DependencyCount      int     `json:"dependency_count" yaml:"dependency_count"`
	DependencyCritical   bool    `json:"dependency_critical" yaml:"dependency_critical"`
	OwnerChanges30d      int     `json:"owner_changes_30d" yaml:"owner_changes_30d"`
	DaysToTarget         int     `json:"days_to_target" yaml:"days_to_target"`
	NearDone             bool    `json:"near_done" yaml:"near_done"`
	MeaningfulProgress7d bool    `json:"meaningful_progress_7d" yaml:"meaningful_progress_7d"`
	TeamWIPUnderLimit    bool    `json:"team_wip_under_limit" yaml:"team_wip_under_limit"`
	StatusNotes          string  `json:"status_notes" yaml:"status_notes"`

	// InlinePrior is a prior DCS supplied on the input row itself.
	InlinePrior *float64 `json:"-" yaml:"-"`

	// ClaimsHistory is true when the row says a prior observation exists.
	ClaimsHistory bool `json:"-" yaml:"-"`
}

// Driver is a named scoring component with a non-zero contribution.
// Penalties are negative, bonuses positive.
type Driver struct {
	Key          DriverKey `json:"key" yaml:"key"`
	Label        string    `json:"label" yaml:"label"`
	Contribution float64   `json:"contribution" yaml:"contribution"`
}

// ScoreBreakdown records the intermediate sums behind a DCS value.
type ScoreBreakdown struct {
	TotalPenalty float64 `json:"total_penalty" yaml:"total_penalty"`
	RawBonus     float64 `json:"raw_bonus" yaml:"raw_bonus"`
	CappedBonus  float64 `json:"capped_bonus" yaml:"capped_bonus"`
}

// ScoredEntity extends Entity with its score, band, trend and drivers.
// Delta and DCSPrior are nil when no prior observation exists.
type ScoredEntity struct {
	Entity     `yaml:",inline"`
	DCSCurrent float64        `json:"dcs_current" yaml:"dcs_current"`
	DCSPrior   *float64       `json:"dcs_prior" yaml:"dcs_prior"`
	Band       Band           `json:"band" yaml:"band"`
	Delta      *float64       `json:"delta" yaml:"delta"`
	Trend      Trend          `json:"trend_symbol,omitempty" yaml:"trend_symbol,omitempty"`
	// Drivers list each bonus at its nominal amount. Their sum can exceed
	// Breakdown.CappedBonus, which is what the score applied.
	Drivers    []Driver       `json:"drivers" yaml:"drivers"`
	Breakdown  ScoreBreakdown `json:"breakdown" yaml:"breakdown"`
}

// HasPrior reports whether a prior score was resolved for the entity.
func (s ScoredEntity) HasPrior() bool {
	return s.Delta != nil
}

// DeltaValue returns the delta, or 0 when absent. Callers must check HasPrior
// when absence matters.
func (s ScoredEntity) DeltaValue() float64 {
	if s.Delta == nil {
		return 0
	}
	return *s.Delta
}

// Penalty returns the magnitude of the given penalty driver, or 0. Bonus
// keys always yield 0.
func (s ScoredEntity) Penalty(key DriverKey) float64 {
	if !IsPenalty(key) {
		return 0
	}
	for _, d := range s.Drivers {
		if d.Key == key {
			return -d.Contribution
		}
	}
	return 0
}

// Snapshot is the ordered collection of scored entities for one week ending.
type Snapshot struct {
	WeekEnding string         `json:"week_ending" yaml:"week_ending"`
	Entities   []ScoredEntity `json:"entities" yaml:"entities"`
}

// Lookup returns the entity with the given id.
func (s *Snapshot) Lookup(id string) (ScoredEntity, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return ScoredEntity{}, false
}

// Mover is a compact view of an entity used for portfolio extremes.
type Mover struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Band       Band    `json:"band" yaml:"band"`
	DCSCurrent float64 `json:"dcs_current" yaml:"dcs_current"`
	Delta      float64 `json:"delta" yaml:"delta"`
	Trend      Trend   `json:"trend_symbol" yaml:"trend_symbol"`
}

// BandCounts holds the number of entities per band.
type BandCounts struct {
	Green  int `json:"green" yaml:"green"`
	Yellow int `json:"yellow" yaml:"yellow"`
	Red    int `json:"red" yaml:"red"`
}

// DriverIntensity is the portfolio-wide weight of one penalty category.
type DriverIntensity struct {
	Key       DriverKey `json:"key" yaml:"key"`
	Label     string    `json:"label" yaml:"label"`
	RawSum    float64   `json:"raw_sum" yaml:"raw_sum"`
	Intensity int       `json:"intensity" yaml:"intensity"`
}

// PortfolioSummary is derived from a scored snapshot and never stored.
type PortfolioSummary struct {
	WeekEnding         string            `json:"week_ending" yaml:"week_ending"`
	Total              int               `json:"total" yaml:"total"`
	Bands              BandCounts        `json:"bands" yaml:"bands"`
	AverageDCS         float64           `json:"average_dcs" yaml:"average_dcs"`
	MedianDCS          float64           `json:"median_dcs" yaml:"median_dcs"`
	LargestDecline     *Mover            `json:"largest_decline" yaml:"largest_decline"`
	LargestImprovement *Mover            `json:"largest_improvement" yaml:"largest_improvement"`
	DriverIntensity    []DriverIntensity `json:"driver_intensity" yaml:"driver_intensity"`
}

// RankedRisk is one entry of the emerging-risk list.
type RankedRisk struct {
	Rank           int          `json:"rank" yaml:"rank"`
	Entity         ScoredEntity `json:"entity" yaml:"entity"`
	DecisionPrompt string       `json:"decision_prompt" yaml:"decision_prompt"`
}

// HeatmapRow holds 0-10 risk intensities for one entity.
type HeatmapRow struct {
	ID              string  `json:"id" yaml:"id" csv:"id"`
	Name            string  `json:"name" yaml:"name" csv:"initiative"`
	Band            Band    `json:"band" yaml:"band" csv:"band"`
	DCSCurrent      float64 `json:"dcs_current" yaml:"dcs_current" csv:"dcs_current"`
	ConfidenceRisk  int     `json:"confidence_risk" yaml:"confidence_risk" csv:"confidence_risk"`
	Blocked         int     `json:"blocked" yaml:"blocked" csv:"blocked"`
	ScopeVolatility int     `json:"scope_volatility" yaml:"scope_volatility" csv:"scope_volatility"`
	Dependencies    int     `json:"dependencies" yaml:"dependencies" csv:"dependencies"`
	DueProximity    int     `json:"due_proximity" yaml:"due_proximity" csv:"due_proximity"`
	Stagnation      int     `json:"stagnation" yaml:"stagnation" csv:"stagnation"`
}

// Values returns the row's intensities in column order: confidence risk,
// blocked, scope volatility, dependencies, due proximity, stagnation.
func (r HeatmapRow) Values() []int {
	return []int{r.ConfidenceRisk, r.Blocked, r.ScopeVolatility, r.Dependencies, r.DueProximity, r.Stagnation}
}

// HeatmapColumn names one heatmap column and its portfolio total.
type HeatmapColumn struct {
	Label string `json:"label" yaml:"label"`
	Total int    `json:"total" yaml:"total"`
}

// Heatmap is the per-entity driver matrix for a snapshot.
type Heatmap struct {
	WeekEnding string          `json:"week_ending" yaml:"week_ending"`
	Rows       []HeatmapRow    `json:"rows" yaml:"rows"`
	Totals     []HeatmapColumn `json:"totals" yaml:"totals"`
}
