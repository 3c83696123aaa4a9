package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guendazorz/log-detective/internal/audit"
	"github.com/guendazorz/log-detective/internal/config"
	"github.com/guendazorz/log-detective/internal/detect"
	"github.com/guendazorz/log-detective/internal/ingest"
	"github.com/guendazorz/log-detective/internal/metrics"
	"github.com/guendazorz/log-detective/internal/parser"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	ConfigPath   string
	Threshold    int
	Window       string
	SAFThreshold int
	SAFWindow    string
	AuditPath    string
	Metrics      bool
	MetricsAddr  string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [auth.log]",
		Short: "Tail a log file and alert on suspicious activity as it happens",
		Long: `Follow an auth.log-style file (surviving rotation), classify each
new line, and apply both detection rules incrementally. Alerts are
logged as they fire, optionally appended to a JSON-lines audit trail,
and optionally counted on a Prometheus /metrics endpoint. Without an
argument the configured input.auth_log_path is watched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logPath := ""
			if len(args) == 1 {
				logPath = args[0]
			}
			return runWatch(cmd, logPath, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", 0, "Brute force: failed attempts threshold")
	cmd.Flags().StringVar(&opts.Window, "window", "", "Brute force: time window (e.g. 10m)")
	cmd.Flags().IntVar(&opts.SAFThreshold, "saf-threshold", 0, "Success-after-failures: failed attempts threshold")
	cmd.Flags().StringVar(&opts.SAFWindow, "saf-window", "", "Success-after-failures: lookback window (e.g. 30m)")
	cmd.Flags().StringVar(&opts.AuditPath, "audit", "", "Append alerts to this JSON-lines file")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "Serve Prometheus metrics")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Metrics listen address (default :9090)")

	return cmd
}

func runWatch(cmd *cobra.Command, logPath string, opts *WatchOptions) error {
	cfg, err := loadWatchConfig(cmd, opts)
	if err != nil {
		return err
	}
	if logPath == "" {
		logPath = cfg.Input.AuthLogPath
	}

	tracker := detect.NewTracker(
		cfg.Detection.BruteForce.Threshold, cfg.BruteForceWindow(),
		cfg.Detection.SuccessAfterFailures.Threshold, cfg.SuccessAfterFailuresWindow(),
	)
	p := parser.New(cfg.Input.Year)

	var auditLogger *audit.Logger
	if cfg.Watch.AuditLogPath != "" {
		auditLogger = audit.NewLogger(cfg.Watch.AuditLogPath)
	}

	if cfg.Watch.MetricsEnabled {
		go func() {
			log.WithField("addr", cfg.Watch.MetricsListen).Info("serving metrics")
			if err := metrics.StartServer(cfg.Watch.MetricsListen); err != nil {
				log.WithError(err).Error("metrics server failed")
			}
		}()
	}

	tailer := ingest.NewFileTailer(logPath)
	lines, err := tailer.Start()
	if err != nil {
		return err
	}
	defer tailer.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.WithField("path", logPath).Info("watching for suspicious authentication activity")

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			metrics.LinesRead.Inc()

			evt, parsed := p.ParseLine(line.Content)
			if !parsed {
				continue
			}
			metrics.EventsParsed.WithLabelValues(string(evt.Type)).Inc()

			for _, alert := range tracker.Observe(evt) {
				metrics.AlertsGenerated.WithLabelValues(string(alert.Type)).Inc()

				log.WithFields(log.Fields{
					"alert_type": alert.Type,
					"severity":   alert.Severity,
					"ip":         alert.IP,
					"username":   alert.Username,
					"count":      alert.Count,
					"start":      alert.StartTime,
					"end":        alert.EndTime,
				}).Warn("alert")

				if auditLogger != nil {
					if err := auditLogger.LogAlert(alert); err != nil {
						log.WithError(err).Error("failed to write audit trail")
					}
				}
			}

		case <-sigChan:
			log.Info("shutting down")
			return nil
		}
	}
}

func loadWatchConfig(cmd *cobra.Command, opts *WatchOptions) (*config.Config, error) {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		loaded, err := config.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Detection.BruteForce.Threshold = opts.Threshold
	}
	if flags.Changed("window") {
		cfg.Detection.BruteForce.Window = opts.Window
	}
	if flags.Changed("saf-threshold") {
		cfg.Detection.SuccessAfterFailures.Threshold = opts.SAFThreshold
	}
	if flags.Changed("saf-window") {
		cfg.Detection.SuccessAfterFailures.Window = opts.SAFWindow
	}
	if flags.Changed("audit") {
		cfg.Watch.AuditLogPath = opts.AuditPath
	}
	if flags.Changed("metrics") {
		cfg.Watch.MetricsEnabled = opts.Metrics
	}
	if flags.Changed("metrics-addr") {
		cfg.Watch.MetricsListen = opts.MetricsAddr
	}

	for name, window := range map[string]string{
		"window":     cfg.Detection.BruteForce.Window,
		"saf-window": cfg.Detection.SuccessAfterFailures.Window,
	} {
		if _, err := time.ParseDuration(window); err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", name, window, err)
		}
	}

	return cfg, nil
}
