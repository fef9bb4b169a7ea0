package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/deliverypulse/pulse/schema"
	"github.com/gocarina/gocsv"
)

// utf8BOM is stripped from the start of CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat resolves AutoInput from a path's extension. JSON is chosen
// for ".json"; everything else is read as CSV.
func DetectFormat(path string, format schema.InputFormat) schema.InputFormat {
	if format != "" && format != schema.AutoInput {
		return format
	}
	ext := strings.ToLower(filepath.Ext(path))
	// Object store URIs may carry a query string.
	if i := strings.IndexByte(ext, '?'); i >= 0 {
		ext = ext[:i]
	}
	if ext == ".json" {
		return schema.JSONInput
	}
	return schema.CSVInput
}

// Parse decodes raw source bytes into a batch. weekEnding overrides any date
// found in the source; when both are empty the batch has no week ending and
// Normalize rejects it.
func Parse(data []byte, format schema.InputFormat, weekEnding string) (Batch, error) {
	var (
		batch Batch
		err   error
	)
	switch format {
	case schema.CSVInput:
		batch.Rows, err = ParseCSV(data)
	case schema.JSONInput:
		batch, err = ParseJSON(data)
	case schema.JiraInput:
		if weekEnding == "" {
			return Batch{}, &schema.ValidationError{Field: "week_ending", Reason: "jira exports need an explicit week ending"}
		}
		var we time.Time
		if we, err = time.Parse(schema.DateLayout, weekEnding); err != nil {
			return Batch{}, &schema.ValidationError{Field: "week_ending", Reason: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", weekEnding)}
		}
		batch.Rows, err = RollupJira(data, we)
	default:
		return Batch{}, fmt.Errorf("unsupported input format: %s", format)
	}
	if err != nil {
		return Batch{}, err
	}
	if weekEnding != "" {
		batch.WeekEnding = weekEnding
	}
	return batch, nil
}

// ParseCSV reads a header row plus records into raw rows.
func ParseCSV(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	maps, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	rows := make([]Row, len(maps))
	for i, m := range maps {
		rows[i] = Row(m)
	}
	return rows, nil
}

// jsonEnvelope is the object form of a JSON snapshot source.
type jsonEnvelope struct {
	WeekEnding  string            `json:"week_ending"`
	Portfolio   *jsonPortfolio    `json:"portfolio"`
	Initiatives []json.RawMessage `json:"initiatives"`
	Entities    []json.RawMessage `json:"entities"`
	Rows        []json.RawMessage `json:"rows"`
}

type jsonPortfolio struct {
	WeekEnding string `json:"week_ending"`
}

// ParseJSON reads either a bare array of row objects or an object holding
// rows under "entities", "initiatives" or "rows". The week ending is taken
// from "week_ending" or "portfolio.week_ending" when present.
func ParseJSON(data []byte) (Batch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Batch{}, fmt.Errorf("failed to parse json: empty input")
	}

	var (
		batch Batch
		items []json.RawMessage
	)
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Batch{}, fmt.Errorf("failed to parse json: %w", err)
		}
	} else {
		var env jsonEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return Batch{}, fmt.Errorf("failed to parse json: %w", err)
		}
		batch.WeekEnding = env.WeekEnding
		if batch.WeekEnding == "" && env.Portfolio != nil {
			batch.WeekEnding = env.Portfolio.WeekEnding
		}
		switch {
		case env.Entities != nil:
			items = env.Entities
		case env.Initiatives != nil:
			items = env.Initiatives
		default:
			items = env.Rows
		}
	}

	batch.Rows = make([]Row, 0, len(items))
	for i, raw := range items {
		row, err := jsonRow(raw, i+1)
		if err != nil {
			return Batch{}, err
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

// RowsFromJSON decodes a JSON array of row objects, as passed by API and
// tool callers.
func RowsFromJSON(data []byte) ([]Row, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("rows must be a JSON array of objects: %w", err)
	}
	rows := make([]Row, 0, len(items))
	for i, raw := range items {
		row, err := jsonRow(raw, i+1)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// jsonRow flattens one JSON object into a raw row. Scalars are rendered as
// text, null becomes empty and string lists are joined with "; ".
func jsonRow(raw json.RawMessage, rowNum int) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &schema.ValidationError{Row: rowNum, Reason: fmt.Sprintf("row is not a JSON object: %v", err)}
	}
	row := make(Row, len(obj))
	for k, v := range obj {
		s, err := jsonScalar(v)
		if err != nil {
			return nil, &schema.ValidationError{Row: rowNum, Field: k, Reason: err.Error()}
		}
		row[k] = s
	}
	return row, nil
}

func jsonScalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, err := jsonScalar(item)
			if err != nil {
				return "", err
			}
			if _, nested := item.([]any); nested {
				return "", fmt.Errorf("nested lists are not supported")
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; "), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// priorEntry is the part of a scored entity needed for trend computation.
type priorEntry struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	DCSCurrent float64     `json:"dcs_current"`
	Band       schema.Band `json:"band"`
}

// priorEnvelope accepts both the scored snapshot layout and the portfolio
// layout with "initiatives".
type priorEnvelope struct {
	WeekEnding  string         `json:"week_ending"`
	Portfolio   *jsonPortfolio `json:"portfolio"`
	Entities    []priorEntry   `json:"entities"`
	Initiatives []priorEntry   `json:"initiatives"`
}

// ParseSnapshot decodes a previously scored snapshot for trend computation.
// Only ids, names, scores and bands are read. Ids must be unique and scores
// must lie within [0,100].
func ParseSnapshot(data []byte) (*schema.Snapshot, error) {
	var env priorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse prior snapshot: %w", err)
	}
	entries := env.Entities
	if entries == nil {
		entries = env.Initiatives
	}
	snap := &schema.Snapshot{WeekEnding: env.WeekEnding, Entities: make([]schema.ScoredEntity, 0, len(entries))}
	if snap.WeekEnding == "" && env.Portfolio != nil {
		snap.WeekEnding = env.Portfolio.WeekEnding
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, &schema.ValidationError{Row: i + 1, Field: FieldID, Reason: "prior snapshot entry is missing an id"}
		}
		if _, dup := seen[e.ID]; dup {
			return nil, &schema.ValidationError{Row: i + 1, ID: e.ID, Field: FieldID, Reason: "duplicate id in prior snapshot"}
		}
		seen[e.ID] = struct{}{}
		if e.DCSCurrent < 0 || e.DCSCurrent > 100 {
			return nil, &schema.ValidationError{Row: i + 1, ID: e.ID, Field: "dcs_current", Reason: fmt.Sprintf("must be within [0,100], got %v", e.DCSCurrent)}
		}
		snap.Entities = append(snap.Entities, schema.ScoredEntity{
			Entity:     schema.Entity{ID: e.ID, Name: e.Name},
			DCSCurrent: e.DCSCurrent,
			Band:       e.Band,
		})
	}
	return snap, nil
}
