// Package detect holds the temporal correlation rules that run over a
// parsed event collection. Both rules are pure functions of their inputs:
// thresholds and windows arrive as parameters, never as package state, so
// the rules may run in any order or in parallel over the same slice.
package detect

import (
	"sort"
	"strings"
	"time"

	"github.com/guendazorz/log-detective/internal/event"
)

// evidenceLimit caps the raw-line excerpt attached to an alert.
const evidenceLimit = 3

// BruteForceByIP flags source addresses that accumulate at least
// threshold failed logins inside a closed time window. Events without an
// IP or timestamp are ignored; the remainder is partitioned per IP and
// scanned with a two-pointer sliding window over the time-sorted slice.
//
// At most one alert fires per IP per run: the scan of a partition stops
// at the first qualifying window. A sustained attack with several
// disjoint bursts therefore still yields a single alert.
func BruteForceByIP(events []event.Event, threshold int, window time.Duration) []event.Alert {
	byIP := make(map[string][]event.Event)
	for _, evt := range events {
		if evt.Type != event.FailedLogin || evt.IP == "" || !evt.HasTimestamp() {
			continue
		}
		byIP[evt.IP] = append(byIP[evt.IP], evt)
	}

	// Deterministic alert order across runs.
	ips := make([]string, 0, len(byIP))
	for ip := range byIP {
		ips = append(ips, ip)
	}
	sort.Strings(ips)

	alerts := []event.Alert{}
	for _, ip := range ips {
		group := byIP[ip]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		left := 0
		for right := range group {
			// Closed interval: only a strictly greater gap evicts.
			for group[right].Timestamp.Sub(group[left].Timestamp) > window {
				left++
			}

			count := right - left + 1
			if count < threshold {
				continue
			}

			alerts = append(alerts, event.Alert{
				Type:      event.BruteForceIP,
				Severity:  event.SeverityHigh,
				IP:        ip,
				Username:  event.MultipleUnknown,
				StartTime: group[left].Timestamp,
				EndTime:   group[right].Timestamp,
				Count:     count,
				Evidence:  joinEvidence(group[max(left, right-evidenceLimit+1) : right+1]),
			})
			break
		}
	}

	return alerts
}

func joinEvidence(events []event.Event) string {
	raws := make([]string, len(events))
	for i, evt := range events {
		raws[i] = evt.Raw
	}
	return strings.Join(raws, " | ")
}
