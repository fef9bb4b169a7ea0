// Package ingest turns raw snapshot sources into canonical entities.
package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/deliverypulse/pulse/schema"
)

// Row is one raw input record keyed by source column name.
type Row map[string]string

// Batch is a set of raw rows for one week-ending date.
type Batch struct {
	WeekEnding string
	Rows       []Row
}

// DefaultNearDoneThreshold is the completion ratio at which remaining work
// is considered minimal.
const DefaultNearDoneThreshold = 0.8

// Options controls how raw rows are normalized.
type Options struct {
	Columns           *ColumnMap
	NearDoneThreshold float64
}

// Normalize converts raw rows into canonical entities. Absent numeric fields
// default to 0 and absent booleans to false. Input order is preserved.
// Any malformed row fails the whole batch with a *schema.ValidationError.
// Coercions worth reporting, such as an unrecognised status, come back as
// warnings alongside the entities.
func Normalize(batch Batch, opts Options) ([]schema.Entity, []error, error) {
	if batch.WeekEnding == "" {
		return nil, nil, &schema.ValidationError{Field: "week_ending", Reason: "missing week ending; set it in the source or pass --week-ending"}
	}
	if _, err := time.Parse(schema.DateLayout, batch.WeekEnding); err != nil {
		return nil, nil, &schema.ValidationError{Field: "week_ending", Reason: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", batch.WeekEnding)}
	}

	columns := opts.Columns
	if columns == nil {
		var err error
		if columns, err = NewColumnMap(nil); err != nil {
			return nil, nil, err
		}
	}
	threshold := opts.NearDoneThreshold
	if threshold <= 0 {
		threshold = DefaultNearDoneThreshold
	}

	entities := make([]schema.Entity, 0, len(batch.Rows))
	firstSeen := make(map[string]int, len(batch.Rows))
	var warnings []error
	for i, raw := range batch.Rows {
		rowNum := i + 1
		e, rowWarnings, err := normalizeRow(columns.Canonicalize(raw), rowNum, threshold)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, rowWarnings...)
		if prev, dup := firstSeen[e.ID]; dup {
			return nil, nil, &schema.ValidationError{
				Row:    rowNum,
				ID:     e.ID,
				Field:  FieldID,
				Reason: fmt.Sprintf("duplicate id, first seen on row %d", prev),
			}
		}
		firstSeen[e.ID] = rowNum
		entities = append(entities, e)
	}
	return entities, warnings, nil
}

// rowParser reads typed values from a canonical row and records the first
// failure as a ValidationError.
type rowParser struct {
	row    Row
	rowNum int
	id     string
	err    error
}

func (p *rowParser) fail(field, reason string) {
	if p.err == nil {
		p.err = &schema.ValidationError{Row: p.rowNum, ID: p.id, Field: field, Reason: reason}
	}
}

func (p *rowParser) value(field string) string {
	return strings.TrimSpace(p.row[field])
}

func (p *rowParser) has(field string) bool {
	return p.value(field) != ""
}

// float parses an optional non-negative number.
func (p *rowParser) float(field string) float64 {
	s := p.value(field)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(field, fmt.Sprintf("malformed number %q", s))
		return 0
	}
	if v < 0 {
		p.fail(field, fmt.Sprintf("must be non-negative, got %s", s))
		return 0
	}
	return v
}

// signedInt parses an optional whole number that may be negative.
// Exports often render integers as "5.0", so integral floats are accepted.
func (p *rowParser) signedInt(field string) int {
	s := p.value(field)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(field, fmt.Sprintf("malformed number %q", s))
		return 0
	}
	if v != math.Trunc(v) {
		p.fail(field, fmt.Sprintf("must be a whole number, got %s", s))
		return 0
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		p.fail(field, fmt.Sprintf("out of range, got %s", s))
		return 0
	}
	return int(v)
}

// count parses an optional non-negative whole number.
func (p *rowParser) count(field string) int {
	v := p.signedInt(field)
	if v < 0 {
		p.fail(field, fmt.Sprintf("must be non-negative, got %d", v))
		return 0
	}
	return v
}

// bool parses an optional flag.
func (p *rowParser) bool(field string) bool {
	s := p.value(field)
	v, ok := ParseBool(s)
	if !ok {
		p.fail(field, fmt.Sprintf("malformed boolean %q", s))
	}
	return v
}

// ParseBool accepts the usual spellings of true and false. An empty string
// is false.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, true
	case "false", "f", "0", "no", "n", "":
		return false, true
	default:
		return false, false
	}
}

// normalizeRow builds one entity from a canonical row.
func normalizeRow(row Row, rowNum int, nearDoneThreshold float64) (schema.Entity, []error, error) {
	p := &rowParser{row: row, rowNum: rowNum}
	p.id = p.value(FieldID)
	if p.id == "" {
		return schema.Entity{}, nil, &schema.ValidationError{Row: rowNum, Field: FieldID, Reason: "missing id"}
	}

	var warnings []error
	status, ok := CoerceStatus(row[FieldStatus])
	if !ok {
		warnings = append(warnings, fmt.Errorf("row %d (id %q): unknown status %q treated as %s", rowNum, p.id, p.value(FieldStatus), status))
	}

	e := schema.Entity{
		ID:                   p.id,
		Name:                 p.value(FieldName),
		Level:                p.value(FieldLevel),
		Status:               status,
		BlockedDurationDays:  p.float(FieldBlockedDurationDays),
		ScopeChangeEvents14d: p.count(FieldScopeChangeEvents14d),
		DaysStagnant:         p.float(FieldDaysStagnant),
		DependencyCount:      p.count(FieldDependencyCount),
		DependencyCritical:   p.bool(FieldDependencyCritical),
		OwnerChanges30d:      p.count(FieldOwnerChanges30d),
		DaysToTarget:         p.signedInt(FieldDaysToTarget),
		MeaningfulProgress7d: p.bool(FieldMeaningfulProgress7d),
		TeamWIPUnderLimit:    p.bool(FieldTeamWIPUnderLimit),
		StatusNotes:          row[FieldStatusNotes],
	}
	if e.Name == "" {
		e.Name = e.ID
	}
	e.NearDone = deriveNearDone(p, nearDoneThreshold)

	if p.has(FieldDCSPrior) {
		prior := p.float(FieldDCSPrior)
		if prior > 100 {
			p.fail(FieldDCSPrior, fmt.Sprintf("must be within [0,100], got %s", p.value(FieldDCSPrior)))
		}
		e.InlinePrior = &prior
		e.ClaimsHistory = true
	}
	if p.bool(FieldHasHistory) {
		e.ClaimsHistory = true
	}

	if p.err != nil {
		return schema.Entity{}, nil, p.err
	}
	return e, warnings, nil
}

// deriveNearDone resolves near_done. An explicit flag wins. Otherwise the
// completion ratio from pct_done, or from points_done over points_total,
// is compared against the threshold. With no progress data, work is
// assumed to remain.
func deriveNearDone(p *rowParser, threshold float64) bool {
	if p.has(FieldNearDone) {
		return p.bool(FieldNearDone)
	}
	if p.has(FieldPctDone) {
		return parsePct(p) >= threshold
	}
	total := p.float(FieldPointsTotal)
	done := p.float(FieldPointsDone)
	if total > 0 {
		return done/total >= threshold
	}
	return false
}

// parsePct reads pct_done as a ratio. Values written as "85%" or above 1
// are treated as percentages.
func parsePct(p *rowParser) float64 {
	s := p.value(FieldPctDone)
	isPercent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		p.fail(FieldPctDone, fmt.Sprintf("malformed completion %q", p.value(FieldPctDone)))
		return 0
	}
	if isPercent || v > 1 {
		v /= 100
	}
	return v
}
