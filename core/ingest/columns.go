package ingest

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Canonical field names. Entity fields use the same names as their JSON tags.
const (
	FieldID                   = "id"
	FieldName                 = "name"
	FieldLevel                = "level"
	FieldStatus               = "status"
	FieldBlockedDurationDays  = "blocked_duration_days"
	FieldScopeChangeEvents14d = "scope_change_events_14d"
	FieldDaysStagnant         = "days_stagnant"
	FieldDependencyCount      = "dependency_count"
	FieldDependencyCritical   = "dependency_critical"
	FieldOwnerChanges30d      = "owner_changes_30d"
	FieldDaysToTarget         = "days_to_target"
	FieldNearDone             = "near_done"
	FieldMeaningfulProgress7d = "meaningful_progress_7d"
	FieldTeamWIPUnderLimit    = "team_wip_under_limit"
	FieldStatusNotes          = "status_notes"

	// Auxiliary inputs that feed derived fields.
	FieldPctDone     = "pct_done"
	FieldPointsDone  = "points_done"
	FieldPointsTotal = "points_total"
	FieldDCSPrior    = "dcs_prior"
	FieldHasHistory  = "has_history"
)

// CanonicalFields lists every field the normalizer understands.
var CanonicalFields = []string{
	FieldID,
	FieldName,
	FieldLevel,
	FieldStatus,
	FieldBlockedDurationDays,
	FieldScopeChangeEvents14d,
	FieldDaysStagnant,
	FieldDependencyCount,
	FieldDependencyCritical,
	FieldOwnerChanges30d,
	FieldDaysToTarget,
	FieldNearDone,
	FieldMeaningfulProgress7d,
	FieldTeamWIPUnderLimit,
	FieldStatusNotes,
	FieldPctDone,
	FieldPointsDone,
	FieldPointsTotal,
	FieldDCSPrior,
	FieldHasHistory,
}

// defaultAliases maps normalized source headers to canonical fields.
var defaultAliases = map[string]string{
	"key":                  FieldID,
	"issue_key":            FieldID,
	"entity_id":            FieldID,
	"initiative_id":        FieldID,
	"title":                FieldName,
	"summary":              FieldName,
	"initiative":           FieldName,
	"initiative_name":      FieldName,
	"type":                 FieldLevel,
	"issue_type":           FieldLevel,
	"hierarchy":            FieldLevel,
	"state":                FieldStatus,
	"blocked_days":         FieldBlockedDurationDays,
	"blocked_duration":     FieldBlockedDurationDays,
	"scope_changes_14d":    FieldScopeChangeEvents14d,
	"scope_changes":        FieldScopeChangeEvents14d,
	"stagnant_days":        FieldDaysStagnant,
	"dependencies":         FieldDependencyCount,
	"deps":                 FieldDependencyCount,
	"critical_dependency":  FieldDependencyCritical,
	"owner_changes":        FieldOwnerChanges30d,
	"days_to_due":          FieldDaysToTarget,
	"notes":                FieldStatusNotes,
	"prior_dcs":            FieldDCSPrior,
	"dcs_previous":         FieldDCSPrior,
	"percent_done":         FieldPctDone,
	"progress":             FieldPctDone,
	"meaningful_progress":  FieldMeaningfulProgress7d,
	"wip_under_limit":      FieldTeamWIPUnderLimit,
}

// NormalizeHeader lowercases a source header and collapses every run of
// non-alphanumeric characters into a single underscore.
// "Scope Changes (14d)" becomes "scope_changes_14d".
func NormalizeHeader(h string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// ColumnMap resolves source headers to canonical field names.
type ColumnMap struct {
	aliases map[string]string
}

// NewColumnMap builds a resolver from the default aliases plus custom ones.
// Custom aliases map a source header to a canonical field and take
// precedence over the defaults.
func NewColumnMap(custom map[string]string) (*ColumnMap, error) {
	known := make(map[string]struct{}, len(CanonicalFields))
	for _, f := range CanonicalFields {
		known[f] = struct{}{}
	}

	aliases := make(map[string]string, len(defaultAliases)+len(custom))
	for k, v := range defaultAliases {
		aliases[k] = v
	}

	sources := make([]string, 0, len(custom))
	for k := range custom {
		sources = append(sources, k)
	}
	sort.Strings(sources)
	for _, src := range sources {
		target := NormalizeHeader(custom[src])
		if _, ok := known[target]; !ok {
			return nil, fmt.Errorf("column alias %q targets unknown field %q", src, custom[src])
		}
		aliases[NormalizeHeader(src)] = target
	}
	return &ColumnMap{aliases: aliases}, nil
}

// Resolve returns the canonical field for a source header, or "" when the
// header is not recognised.
func (m *ColumnMap) Resolve(header string) string {
	h := NormalizeHeader(header)
	if target, ok := m.aliases[h]; ok {
		return target
	}
	for _, f := range CanonicalFields {
		if f == h {
			return f
		}
	}
	return ""
}

// Canonicalize rewrites a raw row onto canonical field names. When several
// source columns resolve to the same field, a column already named after
// the field wins, then the first alias in sorted header order.
// Unrecognised columns are dropped.
func (m *ColumnMap) Canonicalize(row Row) Row {
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	out := make(Row, len(row))
	exact := make(map[string]bool, len(row))
	for _, h := range headers {
		field := m.Resolve(h)
		if field == "" {
			continue
		}
		isExact := NormalizeHeader(h) == field
		if _, seen := out[field]; seen && (exact[field] || !isExact) {
			continue
		}
		out[field] = row[h]
		exact[field] = isExact
	}
	return out
}
