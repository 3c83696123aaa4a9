package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guendazorz/log-detective/internal/charts"
	"github.com/guendazorz/log-detective/internal/config"
	"github.com/guendazorz/log-detective/internal/detect"
	"github.com/guendazorz/log-detective/internal/event"
	"github.com/guendazorz/log-detective/internal/export"
	"github.com/guendazorz/log-detective/internal/parser"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigPath   string
	Year         int
	Threshold    int
	Window       string
	SAFThreshold int
	SAFWindow    string
	OutDir       string
	Format       string
	TopN         int
	Bucket       string
	NoCharts     bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [auth.log]",
		Short: "Run both detection rules over a log file and export the results",
		Long: `Parse an auth.log-style file, run the brute-force and
success-after-failures rules, export the event and alert tables, and
render the two charts. Without an argument the configured
input.auth_log_path is analyzed.

Exit codes:
  0 - No alerts
  1 - Alerts detected
  2 - Configuration or runtime error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logPath := ""
			if len(args) == 1 {
				logPath = args[0]
			}
			return runAnalyze(cmd, logPath, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	cmd.Flags().IntVar(&opts.Year, "year", 0, "Year injected into timestamps (default: current year)")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", 0, "Brute force: failed attempts threshold")
	cmd.Flags().StringVar(&opts.Window, "window", "", "Brute force: time window (e.g. 10m)")
	cmd.Flags().IntVar(&opts.SAFThreshold, "saf-threshold", 0, "Success-after-failures: failed attempts threshold")
	cmd.Flags().StringVar(&opts.SAFWindow, "saf-window", "", "Success-after-failures: lookback window (e.g. 30m)")
	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", "", "Directory for exported tables and charts")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Table format (csv|json)")
	cmd.Flags().IntVar(&opts.TopN, "top-n", 0, "Bars in the top-attacking-IPs chart")
	cmd.Flags().StringVar(&opts.Bucket, "bucket", "", "Timeline bucket width (e.g. 1m, 5m, 15m, 30m)")
	cmd.Flags().BoolVar(&opts.NoCharts, "no-charts", false, "Skip chart rendering")

	return cmd
}

func runAnalyze(cmd *cobra.Command, logPath string, opts *AnalyzeOptions) error {
	cfg, err := loadAnalyzeConfig(cmd, opts)
	if err != nil {
		return err
	}
	if logPath == "" {
		logPath = cfg.Input.AuthLogPath
	}

	events, err := parser.ParseFile(logPath, cfg.Input.Year)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"path": logPath, "events": len(events)}).Debug("parsed log source")

	bfAlerts := detect.BruteForceByIP(events,
		cfg.Detection.BruteForce.Threshold, cfg.BruteForceWindow())
	safAlerts := detect.SuccessAfterFailures(events,
		cfg.Detection.SuccessAfterFailures.Threshold, cfg.SuccessAfterFailuresWindow())

	// Brute-force alerts first, then correlation alerts; the two tables
	// share a column set so concatenation is the contract.
	alerts := append(bfAlerts, safAlerts...)

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := exportTables(cfg, events, alerts); err != nil {
		return err
	}

	if !cfg.Output.DisableCharts {
		if err := charts.TopAttackingIPs(events, cfg.Output.TopN,
			filepath.Join(cfg.Output.Dir, "top_attacking_ips.png")); err != nil {
			return err
		}
		if err := charts.FailedLoginTimeline(events, cfg.TimelineBucket(),
			filepath.Join(cfg.Output.Dir, "failed_login_timeline.png")); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	export.WriteSummaryText(out, events, alerts)
	export.WriteAlertsText(out, alerts)

	if len(alerts) > 0 {
		ExitCode = 1
	}
	return nil
}

// loadAnalyzeConfig merges the config file (or defaults) with any flags
// the user set explicitly.
func loadAnalyzeConfig(cmd *cobra.Command, opts *AnalyzeOptions) (*config.Config, error) {
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
	if flags.Changed("year") {
		cfg.Input.Year = opts.Year
	}
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
	if flags.Changed("out-dir") {
		cfg.Output.Dir = opts.OutDir
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.Format
	}
	if flags.Changed("top-n") {
		cfg.Output.TopN = opts.TopN
	}
	if flags.Changed("bucket") {
		cfg.Output.TimelineBucket = opts.Bucket
	}
	if flags.Changed("no-charts") {
		cfg.Output.DisableCharts = opts.NoCharts
	}

	for name, window := range map[string]string{
		"window":     cfg.Detection.BruteForce.Window,
		"saf-window": cfg.Detection.SuccessAfterFailures.Window,
		"bucket":     cfg.Output.TimelineBucket,
	} {
		if _, err := time.ParseDuration(window); err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", name, window, err)
		}
	}

	return cfg, nil
}

func exportTables(cfg *config.Config, events []event.Event, alerts []event.Alert) error {
	type table struct {
		name  string
		write func(f *os.File) error
	}

	var tables []table
	switch cfg.Output.Format {
	case "json":
		tables = []table{
			{"parsed_events.json", func(f *os.File) error { return export.WriteEventsJSON(f, events) }},
			{"flagged_events.json", func(f *os.File) error { return export.WriteAlertsJSON(f, alerts) }},
		}
	default:
		tables = []table{
			{"parsed_events.csv", func(f *os.File) error { return export.WriteEventsCSV(f, events) }},
			{"flagged_events.csv", func(f *os.File) error { return export.WriteAlertsCSV(f, alerts) }},
		}
	}

	for _, tbl := range tables {
		path := filepath.Join(cfg.Output.Dir, tbl.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := tbl.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.WithField("path", path).Info("table written")
	}
	return nil
}
