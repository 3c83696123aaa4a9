// Package export renders the parsed-event and alert tables as CSV, JSON
// and human-readable text. Empty collections still produce the correct
// column shape so downstream consumers can concatenate tables blindly.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/guendazorz/log-detective/internal/event"
)

var eventHeader = []string{"timestamp", "host", "service", "event_type", "username", "ip", "raw"}

var alertHeader = []string{"alert_type", "severity", "ip", "username", "start_time", "end_time", "count", "evidence"}

// WriteEventsCSV writes the parsed event table. Absent fields render as
// empty cells; timestamps use RFC 3339.
func WriteEventsCSV(w io.Writer, events []event.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return fmt.Errorf("writing event header: %w", err)
	}
	for _, evt := range events {
		record := []string{
			formatTime(evt.Timestamp),
			evt.Host,
			evt.Service,
			string(evt.Type),
			evt.Username,
			evt.IP,
			evt.Raw,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing event row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAlertsCSV writes the alert table. Both rule types share the same
// column set so their tables concatenate cleanly.
func WriteAlertsCSV(w io.Writer, alerts []event.Alert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(alertHeader); err != nil {
		return fmt.Errorf("writing alert header: %w", err)
	}
	for _, a := range alerts {
		record := []string{
			string(a.Type),
			string(a.Severity),
			a.IP,
			a.Username,
			formatTime(a.StartTime),
			formatTime(a.EndTime),
			strconv.Itoa(a.Count),
			a.Evidence,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing alert row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
