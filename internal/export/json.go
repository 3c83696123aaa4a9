package export

import (
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/guendazorz/log-detective/internal/event"
)

// eventRow mirrors the CSV column set; absent timestamps become null
// instead of the zero-time string.
type eventRow struct {
	Timestamp *string `json:"timestamp"`
	Host      string  `json:"host,omitempty"`
	Service   string  `json:"service,omitempty"`
	EventType string  `json:"event_type"`
	Username  string  `json:"username,omitempty"`
	IP        string  `json:"ip,omitempty"`
	Raw       string  `json:"raw"`
}

type alertRow struct {
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	IP        string `json:"ip"`
	Username  string `json:"username"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Count     int    `json:"count"`
	Evidence  string `json:"evidence"`
}

// WriteEventsJSON writes the parsed event table as a JSON array.
func WriteEventsJSON(w io.Writer, events []event.Event) error {
	rows := make([]eventRow, 0, len(events))
	for _, evt := range events {
		rows = append(rows, eventRow{
			Timestamp: nullableTime(evt.Timestamp),
			Host:      evt.Host,
			Service:   evt.Service,
			EventType: string(evt.Type),
			Username:  evt.Username,
			IP:        evt.IP,
			Raw:       evt.Raw,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteAlertsJSON writes the alert table as a JSON array.
func WriteAlertsJSON(w io.Writer, alerts []event.Alert) error {
	rows := make([]alertRow, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, alertRow{
			AlertType: string(a.Type),
			Severity:  string(a.Severity),
			IP:        a.IP,
			Username:  a.Username,
			StartTime: a.StartTime.Format(time.RFC3339),
			EndTime:   a.EndTime.Format(time.RFC3339),
			Count:     a.Count,
			Evidence:  a.Evidence,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func nullableTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
