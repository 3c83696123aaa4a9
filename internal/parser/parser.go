// Package parser turns raw auth.log lines into structured security events.
//
// Parsing is deliberately permissive: every non-blank line produces exactly
// one event, and lines that do not match the expected syslog prefix are kept
// as OTHER instead of being dropped, so nothing disappears from forensic
// view. Only a missing/unreadable source file is fatal.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/guendazorz/log-detective/internal/event"
)

// Syslog prefix, e.g.
// Jan 28 21:10:01 ubuntu sshd[1111]: Failed password for invalid user admin from 203.0.113.10 port 40111 ssh2
// auth.log lines carry no year; the caller injects one.
var rePrefix = regexp.MustCompile(
	`^(?P<mon>\w{3})\s+(?P<day>\d{1,2})\s+(?P<time>\d{2}:\d{2}:\d{2})\s+` +
		`(?P<host>\S+)\s+(?P<service>\w+)(?:\[\d+\])?:\s+(?P<message>.*)$`,
)

// Parser classifies auth.log lines. Classification order matters:
// failed login, then accepted login, then sudo actor prefix, then OTHER.
type Parser struct {
	year int

	// Pre-compiled message classifiers
	reFailed   *regexp.Regexp
	reAccepted *regexp.Regexp
	reSudo     *regexp.Regexp
}

// New creates a parser that stamps parsed lines with the given year.
// A year <= 0 defaults to the current calendar year.
func New(year int) *Parser {
	if year <= 0 {
		year = time.Now().Year()
	}
	return &Parser{
		year: year,
		// Failed password for [invalid user ]admin from 203.0.113.10 ...
		reFailed: regexp.MustCompile(`Failed password for (?:invalid user )?(\S+) from (\d+\.\d+\.\d+\.\d+)`),
		// Accepted password for guenda from 203.0.113.10 ...
		reAccepted: regexp.MustCompile(`Accepted password for (\S+) from (\d+\.\d+\.\d+\.\d+)`),
		// sudo convention: "guenda : TTY=pts/0 ; PWD=... ; COMMAND=..."
		reSudo: regexp.MustCompile(`^(\S+)\s*:`),
	}
}

// ParseFile reads an auth.log-style file and returns one event per
// non-blank line, preserving input order. The only error is the source
// being unopenable.
func ParseFile(path string, year int) ([]event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("log file not found: %w", err)
	}
	defer f.Close()
	return ParseReader(f, year)
}

// ParseReader parses newline-delimited log lines from r.
func ParseReader(r io.Reader, year int) ([]event.Event, error) {
	p := New(year)
	events := make([]event.Event, 0, 256)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if evt, ok := p.ParseLine(scanner.Text()); ok {
			events = append(events, evt)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log source: %w", err)
	}
	return events, nil
}

// ParseLine classifies a single line. The second return value is false
// only for blank lines; malformed content still yields an OTHER event.
func (p *Parser) ParseLine(line string) (event.Event, bool) {
	// Decode permissively: drop invalid byte sequences instead of failing.
	raw := strings.TrimSpace(strings.ToValidUTF8(line, ""))
	if raw == "" {
		return event.Event{}, false
	}

	evt := event.Event{Type: event.Other, Raw: raw}

	m := rePrefix.FindStringSubmatch(raw)
	if m == nil {
		// Unrecognized format: keep visibility, no structured fields.
		return evt, true
	}

	// 1=mon 2=day 3=time 4=host 5=service 6=message
	evt.Timestamp = p.buildTimestamp(m[1], m[2], m[3])
	evt.Host = m[4]
	evt.Service = m[5]
	msg := strings.TrimLeft(m[6], " \t")

	if fm := p.reFailed.FindStringSubmatch(msg); fm != nil {
		evt.Type = event.FailedLogin
		evt.Username = fm[1]
		evt.IP = fm[2]
	} else if am := p.reAccepted.FindStringSubmatch(msg); am != nil {
		evt.Type = event.SuccessLogin
		evt.Username = am[1]
		evt.IP = am[2]
	} else if sm := p.reSudo.FindStringSubmatch(msg); sm != nil {
		// Local privilege escalation, no source IP.
		evt.Type = event.Sudo
		evt.Username = sm[1]
	}

	return evt, true
}

// buildTimestamp combines the injected year with the parsed month, day
// and clock time. Impossible calendar combinations (Feb 30, hour 25)
// return the zero time so the event survives with an absent timestamp.
func (p *Parser) buildTimestamp(mon, day, clock string) time.Time {
	month, err := time.Parse("Jan", mon)
	if err != nil {
		return time.Time{}
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}
	}

	hh, _ := strconv.Atoi(clock[0:2])
	mm, _ := strconv.Atoi(clock[3:5])
	ss, _ := strconv.Atoi(clock[6:8])
	if hh > 23 || mm > 59 || ss > 59 {
		return time.Time{}
	}

	ts := time.Date(p.year, month.Month(), d, hh, mm, ss, 0, time.UTC)
	// time.Date normalizes out-of-range days (Feb 30 -> Mar 2); a changed
	// day means the combination never existed in this year.
	if ts.Day() != d || ts.Month() != month.Month() {
		return time.Time{}
	}
	return ts
}
