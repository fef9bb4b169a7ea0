package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/deliverypulse/pulse/schema"
	"github.com/gocarina/gocsv"
)

// Jira export rollup settings.
const (
	maxParentDepth          = 20
	defaultDaysToTarget     = 21
	criticalBlocksThreshold = 3
	maxRollupNotes          = 2
	noBlockersNote          = "No significant blockers detected in snapshot."
	initiativeType          = "initiative"
)

// JiraRequiredHeaders must be present in every Jira export.
var JiraRequiredHeaders = []string{"Issue key", "Issue Type", "Summary", "Status", "Parent key"}

// JiraOutputFields is the column order of rolled-up rows.
var JiraOutputFields = []string{
	FieldID,
	FieldName,
	FieldLevel,
	FieldStatus,
	FieldBlockedDurationDays,
	FieldScopeChangeEvents14d,
	FieldDaysStagnant,
	FieldDependencyCount,
	FieldDependencyCritical,
	FieldDaysToTarget,
	FieldPointsDone,
	FieldPointsTotal,
	FieldStatusNotes,
}

// jiraDateLayouts are the due date formats seen in Jira exports.
var jiraDateLayouts = []string{schema.DateLayout, "01/02/2006", "2006/01/02"}

// pointTypes are the issue types whose story points count toward progress.
var pointTypes = map[string]struct{}{
	"story":    {},
	"sub-task": {},
	"subtask":  {},
	"task":     {},
}

// jiraIssue is one row of a Jira export.
type jiraIssue struct {
	Key          string `csv:"Issue key"`
	IssueType    string `csv:"Issue Type"`
	Summary      string `csv:"Summary"`
	Status       string `csv:"Status"`
	ParentKey    string `csv:"Parent key"`
	StoryPoints  string `csv:"Story Points"`
	DueDate      string `csv:"Due date"`
	Blocks       string `csv:"Blocks"`
	BlockedDays  string `csv:"Blocked Days"`
	ScopeChanges string `csv:"Scope Changes (14d)"`
}

// initiativeRollup accumulates child signals for one initiative.
type initiativeRollup struct {
	id           string
	name         string
	status       string
	totalPoints  int
	donePoints   int
	blockedDays  float64
	scopeChanges int
	dependencies int
	critical     bool
	due          *time.Time
	notes        []string
}

// RollupJira reads a Jira export and rolls every issue up to its Initiative,
// producing one canonical raw row per initiative in export order. Issues
// whose parent chain never reaches an exported Initiative are dropped.
func RollupJira(data []byte, weekEnding time.Time) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if err := checkJiraHeaders(data); err != nil {
		return nil, err
	}

	var issues []*jiraIssue
	if err := gocsv.UnmarshalBytes(data, &issues); err != nil {
		return nil, fmt.Errorf("failed to parse jira export: %w", err)
	}

	byKey := make(map[string]*jiraIssue, len(issues))
	var ordered []*jiraIssue
	for _, is := range issues {
		is.Key = strings.TrimSpace(is.Key)
		if is.Key == "" {
			continue
		}
		is.ParentKey = strings.TrimSpace(is.ParentKey)
		byKey[is.Key] = is
		ordered = append(ordered, is)
	}

	rollups := make(map[string]*initiativeRollup)
	var order []string
	for _, is := range ordered {
		if !strings.EqualFold(strings.TrimSpace(is.IssueType), initiativeType) {
			continue
		}
		if _, ok := rollups[is.Key]; ok {
			continue
		}
		rollups[is.Key] = &initiativeRollup{
			id:     is.Key,
			name:   strings.TrimSpace(is.Summary),
			status: strings.TrimSpace(is.Status),
			due:    parseJiraDate(is.DueDate),
		}
		order = append(order, is.Key)
	}

	for _, is := range ordered {
		ikey, ok := findInitiative(is.Key, byKey)
		if !ok {
			continue
		}
		rollups[ikey].absorb(is)
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		rows = append(rows, rollups[key].row(weekEnding))
	}
	return rows, nil
}

// checkJiraHeaders fails when a required header is missing.
func checkJiraHeaders(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return fmt.Errorf("failed to read jira export header: %w", err)
	}
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, h := range JiraRequiredHeaders {
		if _, ok := present[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return &schema.ValidationError{Reason: fmt.Sprintf("jira export is missing required headers: %s", strings.Join(missing, ", "))}
	}
	return nil
}

// findInitiative walks parent links until it reaches an Initiative. Cycles
// and chains deeper than maxParentDepth resolve to nothing.
func findInitiative(key string, byKey map[string]*jiraIssue) (string, bool) {
	visited := make(map[string]struct{})
	cur := key
	for range maxParentDepth {
		if _, seen := visited[cur]; seen {
			return "", false
		}
		visited[cur] = struct{}{}

		is, ok := byKey[cur]
		if ok && strings.EqualFold(strings.TrimSpace(is.IssueType), initiativeType) {
			return cur, true
		}
		if !ok || is.ParentKey == "" {
			return "", false
		}
		cur = is.ParentKey
	}
	return "", false
}

// absorb folds one issue into the rollup.
func (r *initiativeRollup) absorb(is *jiraIssue) {
	if due := parseJiraDate(is.DueDate); due != nil && (r.due == nil || due.Before(*r.due)) {
		r.due = due
	}

	status, _ := CoerceStatus(is.Status)
	if _, ok := pointTypes[strings.ToLower(strings.TrimSpace(is.IssueType))]; ok {
		pts := lenientInt(is.StoryPoints)
		r.totalPoints += pts
		if status == schema.StatusDone {
			r.donePoints += pts
		}
	}

	r.blockedDays = math.Max(r.blockedDays, lenientFloat(is.BlockedDays))
	r.scopeChanges += lenientInt(is.ScopeChanges)
	blocks := lenientInt(is.Blocks)
	r.dependencies += blocks
	if blocks >= criticalBlocksThreshold {
		r.critical = true
	}

	if summary := strings.TrimSpace(is.Summary); status == schema.StatusBlocked && summary != "" {
		r.notes = append(r.notes, "Blocked: "+summary)
	}
}

// row renders the rollup as a canonical raw row.
func (r *initiativeRollup) row(weekEnding time.Time) Row {
	pct := 0.0
	if r.totalPoints > 0 {
		pct = float64(r.donePoints) / float64(r.totalPoints)
	}

	daysToTarget := defaultDaysToTarget
	hasTarget := r.due != nil
	if hasTarget {
		daysToTarget = int(math.Round(r.due.Sub(weekEnding).Hours() / 24))
	}

	// Stagnation proxy: little done with the target close reads as stuck.
	stagnant := 0
	switch {
	case r.totalPoints > 0 && pct < 0.3 && hasTarget && daysToTarget <= 14:
		stagnant = 4
	case pct < 0.8:
		stagnant = 1
	}

	notes := r.notes
	if len(notes) > maxRollupNotes {
		notes = notes[:maxRollupNotes]
	}
	if len(notes) == 0 {
		notes = []string{noBlockersNote}
	}

	row := Row{
		FieldID:                   r.id,
		FieldName:                 r.name,
		FieldLevel:                "Initiative",
		FieldStatus:               r.status,
		FieldBlockedDurationDays:  strconv.FormatFloat(r.blockedDays, 'f', -1, 64),
		FieldScopeChangeEvents14d: strconv.Itoa(r.scopeChanges),
		FieldDaysStagnant:         strconv.Itoa(stagnant),
		FieldDependencyCount:      strconv.Itoa(r.dependencies),
		FieldDependencyCritical:   strconv.FormatBool(r.critical),
		FieldDaysToTarget:         strconv.Itoa(daysToTarget),
		FieldStatusNotes:          strings.Join(notes, "; "),
	}
	if r.totalPoints > 0 {
		row[FieldPointsDone] = strconv.Itoa(r.donePoints)
		row[FieldPointsTotal] = strconv.Itoa(r.totalPoints)
	}
	return row
}

// parseJiraDate accepts the date layouts Jira exports commonly use.
func parseJiraDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range jiraDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// lenientInt parses export counts such as "5" or "5.0"; junk and values
// beyond int32 read as 0.
func lenientInt(s string) int {
	v := lenientFloat(s)
	if v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

func lenientFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
