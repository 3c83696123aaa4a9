// Package metrics exposes Prometheus counters for the live watch mode.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LinesRead counts raw lines consumed from the tailed log.
	LinesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logdetective_lines_read_total",
		Help: "Raw log lines read from the watched source",
	})

	// EventsParsed counts classified events by type.
	EventsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logdetective_events_parsed_total",
		Help: "Parsed events by event type",
	}, []string{"event_type"})

	// AlertsGenerated counts fired alerts by rule.
	AlertsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logdetective_alerts_generated_total",
		Help: "Alerts generated by alert type",
	}, []string{"alert_type"})
)

// StartServer serves /metrics on the given address. Blocks.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
