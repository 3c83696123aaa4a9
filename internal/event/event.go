package event

import "time"

// EventType classifies a parsed log line
type EventType string

const (
	FailedLogin  EventType = "FAILED_LOGIN"
	SuccessLogin EventType = "SUCCESS_LOGIN"
	Sudo         EventType = "SUDO"
	Other        EventType = "OTHER"
)

// Severity of an alert. Both detection rules currently emit HIGH.
type Severity string

const SeverityHigh Severity = "HIGH"

// AlertType identifies which detection rule produced an alert
type AlertType string

const (
	BruteForceIP         AlertType = "BRUTE_FORCE_IP"
	SuccessAfterFailures AlertType = "SUCCESS_AFTER_FAILURES"
)

// Event is one classified log line. Optional fields use the zero value
// when absent: an unparseable prefix leaves Timestamp zero and
// Host/Service empty, and only login events carry an IP.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Host      string    `json:"host,omitempty"`
	Service   string    `json:"service,omitempty"`
	Type      EventType `json:"event_type"`
	Username  string    `json:"username,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Raw       string    `json:"raw"`
}

// HasTimestamp reports whether the line carried a usable timestamp.
// Temporal rules must filter on this before windowing.
func (e Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

// Alert is one detection finding, with enough raw-line evidence for
// manual review.
type Alert struct {
	Type      AlertType `json:"alert_type"`
	Severity  Severity  `json:"severity"`
	IP        string    `json:"ip"`
	Username  string    `json:"username"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Count     int       `json:"count"`
	Evidence  string    `json:"evidence"`
}

// MultipleUnknown marks a brute-force burst that cannot be attributed
// to a single account.
const MultipleUnknown = "multiple/unknown"
