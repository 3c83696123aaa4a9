package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/guendazorz/log-detective/internal/event"
)

func TestLogger_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	a := event.Alert{
		Type:      event.BruteForceIP,
		Severity:  event.SeverityHigh,
		IP:        "203.0.113.10",
		Username:  event.MultipleUnknown,
		StartTime: time.Date(2026, time.January, 28, 21, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.January, 28, 21, 7, 0, 0, time.UTC),
		Count:     8,
		Evidence:  "a | b | c",
	}

	if err := l.LogAlert(a); err != nil {
		t.Fatalf("LogAlert() error = %v", err)
	}
	if err := l.LogAlert(a); err != nil {
		t.Fatalf("LogAlert() second write error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Got %d lines, want 2", len(lines))
	}

	var got event.Alert
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != event.BruteForceIP || got.Count != 8 {
		t.Errorf("Round-tripped alert = %+v", got)
	}
}
