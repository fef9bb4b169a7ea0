package ingest

import (
	"strings"

	"github.com/deliverypulse/pulse/schema"
)

// UnknownStatusDefault is assigned to a non-empty status that matches no
// alias. A named workflow state is taken to mean work is under way.
const UnknownStatusDefault = schema.StatusInProgress

// statusAliases maps lowercased source statuses to canonical statuses.
// The canonical names themselves are added in init.
var statusAliases = map[string]schema.Status{
	"closed":    schema.StatusDone,
	"resolved":  schema.StatusDone,
	"complete":  schema.StatusDone,
	"completed": schema.StatusDone,
	"cancelled": schema.StatusDone,
	"canceled":  schema.StatusDone,
	"won't do":  schema.StatusDone,
	"wont do":   schema.StatusDone,

	"on hold": schema.StatusBlocked,
	"impeded": schema.StatusBlocked,

	"in-progress": schema.StatusInProgress,
	"inprogress":  schema.StatusInProgress,
	"doing":       schema.StatusInProgress,
	"wip":         schema.StatusInProgress,
	"in review":   schema.StatusInProgress,
	"code review": schema.StatusInProgress,
	"in qa":       schema.StatusInProgress,
	"qa":          schema.StatusInProgress,
	"in testing":  schema.StatusInProgress,
	"testing":     schema.StatusInProgress,

	"to do":                    schema.StatusNotStarted,
	"todo":                     schema.StatusNotStarted,
	"backlog":                  schema.StatusNotStarted,
	"open":                     schema.StatusNotStarted,
	"new":                      schema.StatusNotStarted,
	"ready":                    schema.StatusNotStarted,
	"ready for development":    schema.StatusNotStarted,
	"selected for development": schema.StatusNotStarted,
}

func init() {
	for _, st := range schema.AllStatuses {
		statusAliases[strings.ToLower(string(st))] = st
	}
}

// CoerceStatus maps a source status onto the canonical set. An empty status
// is Not Started. An unrecognised status maps to UnknownStatusDefault and
// the boolean is false so callers can warn.
func CoerceStatus(raw string) (schema.Status, bool) {
	s := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if s == "" {
		return schema.StatusNotStarted, true
	}
	if st, ok := statusAliases[s]; ok {
		return st, true
	}
	return UnknownStatusDefault, false
}
