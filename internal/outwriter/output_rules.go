package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/schema"
)

// ruleEntry is one printable scoring rule.
type ruleEntry struct {
	Key         string
	Value       string
	Description string
}

// ruleEntries lists the rules in the order they apply during scoring.
func ruleEntries(r schema.Rules) []ruleEntry {
	f := schema.FormatScore
	entries := []ruleEntry{
		{"base_score", f(r.BaseScore), "Starting score before penalties and bonuses"},
		{"blocked_per_day", f(r.BlockedPerDay), "Penalty per blocked day"},
		{"blocked_cap", f(r.BlockedCap), "Maximum blocked penalty"},
		{"scope_per_event", f(r.ScopePerEvent), "Penalty per scope change in 14 days"},
		{"scope_cap", f(r.ScopeCap), "Maximum scope volatility penalty"},
		{"aging_per_day", f(r.AgingPerDay), "Penalty per stagnant day"},
		{"aging_cap", f(r.AgingCap), "Maximum aging WIP penalty"},
		{"dependency_per_item", f(r.DependencyPerItem), "Penalty per open dependency"},
		{"dependency_cap", f(r.DependencyCap), "Maximum dependency penalty before the critical surcharge"},
		{"critical_dependency", f(r.CriticalDependency), "Surcharge for a critical dependency"},
		{"owner_per_change", f(r.OwnerPerChange), "Penalty per owner change in 30 days"},
		{"owner_cap", f(r.OwnerCap), "Maximum owner instability penalty"},
		{"due_near_days", strconv.Itoa(r.DueNearDays), "Target within this many days is near"},
		{"due_near_penalty", f(r.DueNearPenalty), "Penalty for a near target with work remaining"},
		{"due_soon_days", strconv.Itoa(r.DueSoonDays), "Target within this many days is soon"},
		{"due_soon_penalty", f(r.DueSoonPenalty), "Penalty for a soon target with work remaining"},
		{"progress_bonus", f(r.ProgressBonus), "Bonus for meaningful progress in 7 days"},
		{"wip_limit_bonus", f(r.WIPLimitBonus), "Bonus when team WIP is under its limit"},
		{"scope_stable_bonus", f(r.ScopeStableBonus), "Bonus when scope did not change in 14 days"},
		{"bonus_cap", f(r.BonusCap), "Maximum total bonus"},
		{"green_threshold", f(r.GreenThreshold), "Minimum score for Green"},
		{"yellow_threshold", f(r.YellowThreshold), "Minimum score for Yellow"},
		{"trend_dead_zone", f(r.TrendDeadZone), "Deltas within this distance of zero are flat"},
		{"near_done_threshold", f(r.NearDoneThreshold), "Completed fraction treated as near done"},
	}
	for _, key := range schema.PenaltyDrivers {
		entries = append(entries, ruleEntry{
			Key:         "max_" + string(key),
			Value:       f(r.PenaltyCap(key)),
			Description: "Largest possible " + schema.DriverLabels[key] + " penalty",
		})
	}
	return entries
}

// renderRules dispatches on the configured output format.
func renderRules(w io.Writer, rules schema.Rules, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, rules)
	case schema.YAMLOut:
		return writeYAML(w, rules)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"rule", "value", "description"}, func(cw *csv.Writer) error {
			for _, e := range ruleEntries(rules) {
				if err := cw.Write([]string{e.Key, e.Value, e.Description}); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
			return nil
		})
	case schema.ParquetOut:
		return fmt.Errorf("output format %s is not supported for rules", cfg.Output)
	default:
		entries := ruleEntries(rules)
		data := make([][]string, len(entries))
		for i, e := range entries {
			data[i] = []string{e.Key, e.Value, e.Description}
		}
		return writeTable(w, []string{"Rule", "Value", "Description"}, data, cfg.Output == schema.MarkdownOut)
	}
}
