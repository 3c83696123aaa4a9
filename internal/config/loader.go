// Package config loads the YAML configuration and applies defaults. The
// defaults mirror the detection parameters the tool ships with:
// brute force 8 failures / 10 minutes, success-after-failures 5 failures /
// 30 minutes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Input struct {
		AuthLogPath string `yaml:"auth_log_path"`
		// Year injected into parsed timestamps; 0 means the current year.
		Year int `yaml:"year"`
	} `yaml:"input"`

	Detection struct {
		BruteForce struct {
			Threshold int    `yaml:"threshold"`
			Window    string `yaml:"window"` // e.g. "10m"
		} `yaml:"brute_force"`
		SuccessAfterFailures struct {
			Threshold int    `yaml:"threshold"`
			Window    string `yaml:"window"` // e.g. "30m"
		} `yaml:"success_after_failures"`
	} `yaml:"detection"`

	Output struct {
		Dir            string `yaml:"dir"`
		Format         string `yaml:"format"` // csv, json
		TopN           int    `yaml:"top_n"`
		TimelineBucket string `yaml:"timeline_bucket"` // e.g. "1m", "5m", "15m", "30m"
		DisableCharts  bool   `yaml:"disable_charts"`
	} `yaml:"output"`

	Watch struct {
		AuditLogPath   string `yaml:"audit_log_path"`
		MetricsEnabled bool   `yaml:"metrics_enabled"`
		MetricsListen  string `yaml:"metrics_listen"`
	} `yaml:"watch"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads the configuration from the given path
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset fields with shipped defaults
func applyDefaults(cfg *Config) {
	if cfg.Input.AuthLogPath == "" {
		cfg.Input.AuthLogPath = "/var/log/auth.log"
	}
	if cfg.Detection.BruteForce.Threshold == 0 {
		cfg.Detection.BruteForce.Threshold = 8
	}
	if cfg.Detection.BruteForce.Window == "" {
		cfg.Detection.BruteForce.Window = "10m"
	}
	if cfg.Detection.SuccessAfterFailures.Threshold == 0 {
		cfg.Detection.SuccessAfterFailures.Threshold = 5
	}
	if cfg.Detection.SuccessAfterFailures.Window == "" {
		cfg.Detection.SuccessAfterFailures.Window = "30m"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "outputs"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "csv"
	}
	if cfg.Output.TopN == 0 {
		cfg.Output.TopN = 10
	}
	if cfg.Output.TimelineBucket == "" {
		cfg.Output.TimelineBucket = "1m"
	}
	if cfg.Watch.MetricsListen == "" {
		cfg.Watch.MetricsListen = ":9090"
	}
}

func validate(cfg *Config) error {
	if _, err := time.ParseDuration(cfg.Detection.BruteForce.Window); err != nil {
		return fmt.Errorf("invalid brute_force.window %q: %w", cfg.Detection.BruteForce.Window, err)
	}
	if _, err := time.ParseDuration(cfg.Detection.SuccessAfterFailures.Window); err != nil {
		return fmt.Errorf("invalid success_after_failures.window %q: %w", cfg.Detection.SuccessAfterFailures.Window, err)
	}
	if _, err := time.ParseDuration(cfg.Output.TimelineBucket); err != nil {
		return fmt.Errorf("invalid output.timeline_bucket %q: %w", cfg.Output.TimelineBucket, err)
	}
	switch cfg.Output.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("unknown output.format %q (use csv or json)", cfg.Output.Format)
	}
	return nil
}

// BruteForceWindow returns the parsed brute-force window.
func (c *Config) BruteForceWindow() time.Duration {
	d, _ := time.ParseDuration(c.Detection.BruteForce.Window)
	return d
}

// SuccessAfterFailuresWindow returns the parsed lookback window.
func (c *Config) SuccessAfterFailuresWindow() time.Duration {
	d, _ := time.ParseDuration(c.Detection.SuccessAfterFailures.Window)
	return d
}

// TimelineBucket returns the parsed chart bucket width.
func (c *Config) TimelineBucket() time.Duration {
	d, _ := time.ParseDuration(c.Output.TimelineBucket)
	return d
}
