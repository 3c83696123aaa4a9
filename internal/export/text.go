package export

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/guendazorz/log-detective/internal/event"
)

// WriteSummaryText prints the run-level counters: total events parsed,
// events per type, alerts generated.
func WriteSummaryText(w io.Writer, events []event.Event, alerts []event.Alert) error {
	counts := map[event.EventType]int{}
	for _, evt := range events {
		counts[evt.Type]++
	}

	fmt.Fprintln(w, "=== Log Detective Summary ===")
	fmt.Fprintf(w, "Total events parsed: %d\n", len(events))
	fmt.Fprintf(w, "Failed logins:       %d\n", counts[event.FailedLogin])
	fmt.Fprintf(w, "Successful logins:   %d\n", counts[event.SuccessLogin])
	fmt.Fprintf(w, "Sudo events:         %d\n", counts[event.Sudo])
	fmt.Fprintf(w, "Other lines:         %d\n", counts[event.Other])
	fmt.Fprintf(w, "Alerts generated:    %d\n", len(alerts))
	return nil
}

// WriteAlertsText prints the alert table in a column-aligned layout.
func WriteAlertsText(w io.Writer, alerts []event.Alert) error {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts detected with the current thresholds.")
		return nil
	}

	fmt.Fprintln(w, "\n=== Alerts ===")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tSEVERITY\tIP\tUSERNAME\tSTART\tEND\tCOUNT")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			a.Type, a.Severity, a.IP, a.Username,
			a.StartTime.Format(time.RFC3339),
			a.EndTime.Format(time.RFC3339),
			a.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nEvidence:")
	for i, a := range alerts {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, a.Evidence)
	}
	return nil
}
