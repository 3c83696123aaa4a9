package detect

import (
	"sync"
	"time"

	"github.com/guendazorz/log-detective/internal/event"
)

// Caps on tracked state so a hostile log cannot grow memory without bound.
const (
	maxTrackedIPs    = 5000
	maxFailuresPerIP = 1000
)

// ipState is the retained failure history for one source address.
type ipState struct {
	failures []event.Event // time-ordered, trimmed to the brute-force window
	fired    bool          // brute-force alert already emitted for this IP
	lastSeen time.Time
}

// Tracker applies both detection rules incrementally, one event at a
// time, for live tailing. Semantics mirror the batch rules: the burst
// check fires once per IP, the success check fires on every qualifying
// success. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	states map[string]*ipState

	bfThreshold  int
	bfWindow     time.Duration
	safThreshold int
	safWindow    time.Duration
}

// NewTracker creates an incremental tracker with the given rule
// parameters.
func NewTracker(bfThreshold int, bfWindow time.Duration, safThreshold int, safWindow time.Duration) *Tracker {
	return &Tracker{
		states:       make(map[string]*ipState),
		bfThreshold:  bfThreshold,
		bfWindow:     bfWindow,
		safThreshold: safThreshold,
		safWindow:    safWindow,
	}
}

// Observe feeds one parsed event into the tracker and returns any alerts
// it triggers. Events without an IP or timestamp are ignored.
func (t *Tracker) Observe(evt event.Event) []event.Alert {
	if evt.IP == "" || !evt.HasTimestamp() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt.Type {
	case event.FailedLogin:
		return t.observeFailure(evt)
	case event.SuccessLogin:
		return t.observeSuccess(evt)
	}
	return nil
}

func (t *Tracker) observeFailure(evt event.Event) []event.Alert {
	st := t.state(evt.IP, evt.Timestamp)

	st.failures = append(st.failures, evt)
	if len(st.failures) > maxFailuresPerIP {
		st.failures = st.failures[len(st.failures)-maxFailuresPerIP:]
	}

	// Retain the wider of the two windows; the burst check below still
	// applies its own bound.
	keep := t.bfWindow
	if t.safWindow > keep {
		keep = t.safWindow
	}
	st.failures = trimBefore(st.failures, evt.Timestamp.Add(-keep))

	if st.fired {
		return nil
	}

	inWindow := countSince(st.failures, evt.Timestamp.Add(-t.bfWindow))
	if inWindow < t.bfThreshold {
		return nil
	}

	st.fired = true
	window := st.failures[len(st.failures)-inWindow:]
	return []event.Alert{{
		Type:      event.BruteForceIP,
		Severity:  event.SeverityHigh,
		IP:        evt.IP,
		Username:  event.MultipleUnknown,
		StartTime: window[0].Timestamp,
		EndTime:   evt.Timestamp,
		Count:     inWindow,
		Evidence:  joinEvidence(window[max(0, len(window)-evidenceLimit):]),
	}}
}

func (t *Tracker) observeSuccess(evt event.Event) []event.Alert {
	st, ok := t.states[evt.IP]
	if !ok {
		return nil
	}
	st.lastSeen = evt.Timestamp

	// Half-open lookback: failures at the success instant do not count.
	var recent []event.Event
	cutoff := evt.Timestamp.Add(-t.safWindow)
	for _, f := range st.failures {
		if !f.Timestamp.Before(cutoff) && f.Timestamp.Before(evt.Timestamp) {
			recent = append(recent, f)
		}
	}
	if len(recent) < t.safThreshold {
		return nil
	}

	evidence := joinEvidence(recent[max(0, len(recent)-evidenceLimit):])
	evidence += " | " + evt.Raw

	return []event.Alert{{
		Type:      event.SuccessAfterFailures,
		Severity:  event.SeverityHigh,
		IP:        evt.IP,
		Username:  evt.Username,
		StartTime: recent[0].Timestamp,
		EndTime:   evt.Timestamp,
		Count:     len(recent),
		Evidence:  evidence,
	}}
}

// state returns the tracked entry for ip, evicting the stalest entry
// first when the table is full. Caller must hold the lock.
func (t *Tracker) state(ip string, now time.Time) *ipState {
	if st, ok := t.states[ip]; ok {
		st.lastSeen = now
		return st
	}

	if len(t.states) >= maxTrackedIPs {
		t.evictStalest()
	}

	st := &ipState{lastSeen: now}
	t.states[ip] = st
	return st
}

func (t *Tracker) evictStalest() {
	var victim string
	var oldest time.Time
	for ip, st := range t.states {
		if victim == "" || st.lastSeen.Before(oldest) {
			victim = ip
			oldest = st.lastSeen
		}
	}
	if victim != "" {
		delete(t.states, victim)
	}
}

// trimBefore drops events stamped before cutoff from the front of a
// time-ordered slice.
func trimBefore(events []event.Event, cutoff time.Time) []event.Event {
	i := 0
	for i < len(events) && events[i].Timestamp.Before(cutoff) {
		i++
	}
	return events[i:]
}

// countSince counts trailing events stamped at or after cutoff.
func countSince(events []event.Event, cutoff time.Time) int {
	n := 0
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Timestamp.Before(cutoff) {
			break
		}
		n++
	}
	return n
}
