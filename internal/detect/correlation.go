package detect

import (
	"sort"
	"time"

	"github.com/guendazorz/log-detective/internal/event"
)

// SuccessAfterFailures flags successful logins preceded by at least
// failureThreshold failed attempts from the same IP inside the lookback
// window. The window is half-open: a failure stamped at the exact success
// instant does not count.
//
// Unlike the brute-force rule there is no per-IP suppression; every
// qualifying success produces its own alert.
func SuccessAfterFailures(events []event.Event, failureThreshold int, window time.Duration) []event.Alert {
	failuresByIP := make(map[string][]event.Event)
	var successes []event.Event
	for _, evt := range events {
		if evt.IP == "" || !evt.HasTimestamp() {
			continue
		}
		switch evt.Type {
		case event.FailedLogin:
			failuresByIP[evt.IP] = append(failuresByIP[evt.IP], evt)
		case event.SuccessLogin:
			successes = append(successes, evt)
		}
	}

	alerts := []event.Alert{}
	if len(failuresByIP) == 0 || len(successes) == 0 {
		return alerts
	}

	for _, group := range failuresByIP {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
	}

	for _, success := range successes {
		failures := failuresByIP[success.IP]
		if len(failures) == 0 {
			continue
		}

		// Binary-search the half-open interval [success-window, success)
		// over the time-sorted failures for this IP.
		cutoff := success.Timestamp.Add(-window)
		lo := sort.Search(len(failures), func(i int) bool {
			return !failures[i].Timestamp.Before(cutoff)
		})
		hi := sort.Search(len(failures), func(i int) bool {
			return !failures[i].Timestamp.Before(success.Timestamp)
		})

		recent := failures[lo:hi]
		if len(recent) < failureThreshold {
			continue
		}

		evidence := joinEvidence(recent[max(0, len(recent)-evidenceLimit):])
		evidence += " | " + success.Raw

		alerts = append(alerts, event.Alert{
			Type:      event.SuccessAfterFailures,
			Severity:  event.SeverityHigh,
			IP:        success.IP,
			Username:  success.Username,
			StartTime: recent[0].Timestamp,
			EndTime:   success.Timestamp,
			Count:     len(recent),
			Evidence:  evidence,
		})
	}

	return alerts
}
