package app

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// ScanConfig is everything one scan needs. It is built once at startup and
// any error in it aborts the run before the log is opened.
type ScanConfig struct {
	LogPath   string
	Filter    domain.Filter
	Threshold int
	Window    time.Duration
	WindowRaw string
	SetName   string
	TTL       time.Duration
	TTLRaw    string
	DryRun    bool

	Workers   int
	Allowlist []string
	SinkRate  float64
}

// ScanConfigFromViper reads and validates the scan settings bound in viper.
func ScanConfigFromViper() (ScanConfig, error) {
	cfg := ScanConfig{
		LogPath:   viper.GetString("log.path"),
		Threshold: viper.GetInt("threshold"),
		WindowRaw: viper.GetString("window"),
		SetName:   viper.GetString("sink.name"),
		TTLRaw:    viper.GetString("block_ttl"),
		DryRun:    viper.GetBool("dry_run"),
		Workers:   viper.GetInt("workers.count"),
		Allowlist: viper.GetStringSlice("allowlist"),
		SinkRate:  viper.GetFloat64("sink.rate_per_second"),
	}

	verdict, err := domain.ParseVerdict(viper.GetString("rule"))
	if err != nil {
		return ScanConfig{}, &domain.ConfigValidationError{Field: "rule", Value: viper.GetString("rule"), Reason: err.Error()}
	}
	protocol, err := domain.ParseProtocol(viper.GetString("protocol"))
	if err != nil {
		return ScanConfig{}, &domain.ConfigValidationError{Field: "protocol", Value: viper.GetString("protocol"), Reason: err.Error()}
	}
	cfg.Filter = domain.Filter{Verdict: verdict, Protocol: protocol}

	if cfg.Window, err = domain.ParseDuration(cfg.WindowRaw); err != nil {
		return ScanConfig{}, fmt.Errorf("window: %w", err)
	}
	if cfg.TTL, err = domain.ParseDuration(cfg.TTLRaw); err != nil {
		return ScanConfig{}, fmt.Errorf("block_ttl: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return ScanConfig{}, err
	}
	return cfg, nil
}

// Validate checks ranges that parsing alone does not enforce.
func (c ScanConfig) Validate() error {
	if c.Threshold < 1 {
		return &domain.ConfigValidationError{Field: "threshold", Value: c.Threshold, Reason: "must be positive"}
	}
	if c.SetName == "" {
		return &domain.ConfigValidationError{Field: "sink.name", Value: c.SetName, Reason: "must not be empty"}
	}
	if c.TTL < time.Second {
		return &domain.ConfigValidationError{Field: "block_ttl", Value: c.TTLRaw, Reason: "must be at least 1s"}
	}
	if c.Workers < 0 || c.Workers > 1000 {
		return &domain.ConfigValidationError{Field: "workers.count", Value: c.Workers, Reason: "must be between 0 and 1000"}
	}
	if c.SinkRate < 0 {
		return &domain.ConfigValidationError{Field: "sink.rate_per_second", Value: c.SinkRate, Reason: "must not be negative"}
	}
	if _, err := ParseAllowlist(c.Allowlist); err != nil {
		return &domain.ConfigValidationError{Field: "allowlist", Value: c.Allowlist, Reason: err.Error()}
	}
	return nil
}
