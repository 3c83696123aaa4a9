package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/guendazorz/log-detective/internal/event"
)

var ts = time.Date(2026, time.January, 28, 21, 10, 1, 0, time.UTC)

func sampleEvents() []event.Event {
	return []event.Event{
		{
			Timestamp: ts,
			Host:      "ubuntu",
			Service:   "sshd",
			Type:      event.FailedLogin,
			Username:  "admin",
			IP:        "203.0.113.10",
			Raw:       "Jan 28 21:10:01 ubuntu sshd[1]: Failed password for invalid user admin from 203.0.113.10 port 40111 ssh2",
		},
		{
			Type: event.Other,
			Raw:  "garbage line",
		},
	}
}

func sampleAlert() event.Alert {
	return event.Alert{
		Type:      event.BruteForceIP,
		Severity:  event.SeverityHigh,
		IP:        "203.0.113.10",
		Username:  event.MultipleUnknown,
		StartTime: ts,
		EndTime:   ts.Add(5 * time.Minute),
		Count:     8,
		Evidence:  "a | b | c",
	}
}

func TestWriteEventsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEventsCSV(&buf, sampleEvents()); err != nil {
		t.Fatalf("WriteEventsCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Got %d records, want header + 2 rows", len(records))
	}

	header := strings.Join(records[0], ",")
	if header != "timestamp,host,service,event_type,username,ip,raw" {
		t.Errorf("Header = %s", header)
	}
	if records[1][0] != "2026-01-28T21:10:01Z" || records[1][3] != "FAILED_LOGIN" {
		t.Errorf("Row 1 = %v", records[1])
	}
	// OTHER row: absent fields are empty cells
	if records[2][0] != "" || records[2][1] != "" || records[2][3] != "OTHER" {
		t.Errorf("Row 2 = %v", records[2])
	}
}

func TestWriteAlertsCSV_EmptyKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAlertsCSV(&buf, nil); err != nil {
		t.Fatalf("WriteAlertsCSV() error = %v", err)
	}

	got := strings.TrimSpace(buf.String())
	want := "alert_type,severity,ip,username,start_time,end_time,count,evidence"
	if got != want {
		t.Errorf("Empty alert table = %q, want bare header", got)
	}
}

func TestWriteAlertsCSV_Row(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAlertsCSV(&buf, []event.Alert{sampleAlert()}); err != nil {
		t.Fatalf("WriteAlertsCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	row := records[1]
	if row[0] != "BRUTE_FORCE_IP" || row[1] != "HIGH" || row[6] != "8" {
		t.Errorf("Alert row = %v", row)
	}
}

func TestWriteEventsJSON_NullTimestamp(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEventsJSON(&buf, sampleEvents()); err != nil {
		t.Fatalf("WriteEventsJSON() error = %v", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Got %d rows, want 2", len(rows))
	}
	if rows[0]["timestamp"] != "2026-01-28T21:10:01Z" {
		t.Errorf("rows[0].timestamp = %v", rows[0]["timestamp"])
	}
	if rows[1]["timestamp"] != nil {
		t.Errorf("Unparseable line must serialize null timestamp, got %v", rows[1]["timestamp"])
	}
}

func TestWriteAlertsJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAlertsJSON(&buf, nil); err != nil {
		t.Fatalf("WriteAlertsJSON() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Empty alert JSON = %q, want []", buf.String())
	}
}

func TestWriteAlertsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAlertsText(&buf, []event.Alert{sampleAlert()}); err != nil {
		t.Fatalf("WriteAlertsText() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"BRUTE_FORCE_IP", "203.0.113.10", "multiple/unknown", "a | b | c"} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummaryText(&buf, sampleEvents(), []event.Alert{sampleAlert()}); err != nil {
		t.Fatalf("WriteSummaryText() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Total events parsed: 2") || !strings.Contains(out, "Alerts generated:    1") {
		t.Errorf("Summary output:\n%s", out)
	}
}
