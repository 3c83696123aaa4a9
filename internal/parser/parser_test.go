package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/guendazorz/log-detective/internal/event"
)

func TestParseLine_FailedLogin(t *testing.T) {
	p := New(2026)

	line := "Jan 28 21:10:01 ubuntu sshd[1111]: Failed password for invalid user admin from 203.0.113.10 port 40111 ssh2"
	evt, ok := p.ParseLine(line)
	if !ok {
		t.Fatal("Expected event for non-blank line")
	}

	if evt.Type != event.FailedLogin {
		t.Errorf("Expected FAILED_LOGIN, got %s", evt.Type)
	}
	if evt.Username != "admin" {
		t.Errorf("Expected user 'admin', got '%s'", evt.Username)
	}
	if evt.IP != "203.0.113.10" {
		t.Errorf("Expected IP '203.0.113.10', got '%s'", evt.IP)
	}
	if evt.Host != "ubuntu" || evt.Service != "sshd" {
		t.Errorf("Expected host/service ubuntu/sshd, got %s/%s", evt.Host, evt.Service)
	}

	want := time.Date(2026, time.January, 28, 21, 10, 1, 0, time.UTC)
	if !evt.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", evt.Timestamp, want)
	}
}

func TestParseLine_FailedLogin_ExistingUser(t *testing.T) {
	p := New(2026)

	// Without the "invalid user" marker
	line := "Jan 28 21:10:05 ubuntu sshd[1111]: Failed password for root from 203.0.113.10 port 40112 ssh2"
	evt, _ := p.ParseLine(line)

	if evt.Type != event.FailedLogin {
		t.Errorf("Expected FAILED_LOGIN, got %s", evt.Type)
	}
	if evt.Username != "root" {
		t.Errorf("Expected user 'root', got '%s'", evt.Username)
	}
}

func TestParseLine_SuccessLogin(t *testing.T) {
	p := New(2026)

	line := "Jan 28 21:20:00 ubuntu sshd[1111]: Accepted password for guenda from 203.0.113.10 port 40113 ssh2"
	evt, _ := p.ParseLine(line)

	if evt.Type != event.SuccessLogin {
		t.Errorf("Expected SUCCESS_LOGIN, got %s", evt.Type)
	}
	if evt.Username != "guenda" {
		t.Errorf("Expected user 'guenda', got '%s'", evt.Username)
	}
	if evt.IP != "203.0.113.10" {
		t.Errorf("Expected IP '203.0.113.10', got '%s'", evt.IP)
	}
}

func TestParseLine_Sudo(t *testing.T) {
	p := New(2026)

	line := "Jan 28 21:25:00 ubuntu sudo: guenda : TTY=pts/0 ; PWD=/home/guenda ; USER=root ; COMMAND=/bin/ls"
	evt, _ := p.ParseLine(line)

	if evt.Type != event.Sudo {
		t.Errorf("Expected SUDO, got %s", evt.Type)
	}
	if evt.Username != "guenda" {
		t.Errorf("Expected user 'guenda', got '%s'", evt.Username)
	}
	if evt.IP != "" {
		t.Errorf("Sudo events are local, got IP '%s'", evt.IP)
	}
}

func TestParseLine_UnmatchedPrefix(t *testing.T) {
	p := New(2026)

	evt, ok := p.ParseLine("this is not a syslog line at all")
	if !ok {
		t.Fatal("Non-blank garbage must still yield an event")
	}
	if evt.Type != event.Other {
		t.Errorf("Expected OTHER, got %s", evt.Type)
	}
	if evt.Host != "" || evt.Service != "" || evt.HasTimestamp() {
		t.Error("Unmatched prefix must leave structured fields absent")
	}
	if evt.Raw != "this is not a syslog line at all" {
		t.Errorf("Raw not preserved: %q", evt.Raw)
	}
}

func TestParseLine_BlankLine(t *testing.T) {
	p := New(2026)

	if _, ok := p.ParseLine("   \t  "); ok {
		t.Error("Blank line must not produce an event")
	}
}

func TestParseLine_ImpossibleDate(t *testing.T) {
	p := New(2026)

	line := "Feb 30 12:00:00 ubuntu sshd[42]: Failed password for root from 10.0.0.1 port 22 ssh2"
	evt, ok := p.ParseLine(line)
	if !ok {
		t.Fatal("Invalid calendar date must not drop the line")
	}
	if evt.HasTimestamp() {
		t.Errorf("Feb 30 must yield absent timestamp, got %v", evt.Timestamp)
	}
	// Prefix matched, so host/service and classification survive.
	if evt.Host != "ubuntu" || evt.Type != event.FailedLogin {
		t.Errorf("Expected classified event with host, got %s/%s", evt.Host, evt.Type)
	}
}

func TestParseLine_InvalidUTF8(t *testing.T) {
	p := New(2026)

	line := "Jan 28 21:10:01 ubuntu sshd[1]: Failed password for root from 10.0.0.1 port 22 \xff\xfe ssh2"
	evt, ok := p.ParseLine(line)
	if !ok {
		t.Fatal("Invalid bytes must not drop the line")
	}
	if evt.Type != event.FailedLogin {
		t.Errorf("Expected FAILED_LOGIN, got %s", evt.Type)
	}
	if strings.ContainsRune(evt.Raw, 0xFFFD) || !strings.Contains(evt.Raw, "ssh2") {
		t.Errorf("Invalid bytes should be dropped, got %q", evt.Raw)
	}
}

func TestParseLine_Deterministic(t *testing.T) {
	p := New(2026)

	line := "Jan 28 21:10:01 ubuntu sshd[1111]: Failed password for invalid user admin from 203.0.113.10 port 40111 ssh2"
	a, _ := p.ParseLine(line)
	b, _ := p.ParseLine(line)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Re-parse mismatch: %+v vs %+v", a, b)
	}
}

func TestParseReader_CountAndOrder(t *testing.T) {
	input := `Jan 28 21:10:01 ubuntu sshd[1111]: Failed password for root from 203.0.113.10 port 40111 ssh2

garbage line without a prefix
Jan 28 21:20:00 ubuntu sshd[1111]: Accepted password for guenda from 203.0.113.10 port 40113 ssh2
`
	events, err := ParseReader(strings.NewReader(input), 2026)
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	// One event per non-blank line
	if len(events) != 3 {
		t.Fatalf("Got %d events, want 3", len(events))
	}

	wantTypes := []event.EventType{event.FailedLogin, event.Other, event.SuccessLogin}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("events[%d].Type = %s, want %s", i, events[i].Type, want)
		}
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.log"), 2026); err == nil {
		t.Error("Expected error for missing log file")
	}
}

func TestParseFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.log")
	content := "Jan 28 21:10:01 ubuntu sshd[1]: Failed password for root from 10.0.0.1 port 22 ssh2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	events, err := ParseFile(path, 2026)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(events) != 1 || events[0].Type != event.FailedLogin {
		t.Errorf("Unexpected parse result: %+v", events)
	}
}
