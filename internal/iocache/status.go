package iocache

import (
	"fmt"
	"io"
	"sort"

	"github.com/deliverypulse/pulse/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintHistoryStatus prints history store status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %s\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Latest Week Ending: %s\n", status.LastWeekEnding)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// PrintRuns prints one line per run, newest first.
func PrintRuns(w io.Writer, runs []schema.RunRecord) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		finished := "unfinished"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(statusTimeLayout)
		}
		_, _ = fmt.Fprintf(w, "%s  week %s  %d entities  %s\n", r.RunID, r.WeekEnding, r.EntityCount, finished)
	}
}
