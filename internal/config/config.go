package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"disk-burnin/internal/utils"
)

// Config is the validated configuration record handed to the burn-in
// core. Flags and BURNIN_* environment variables layer over these
// defaults through viper.
type Config struct {
	// Destructive scan geometry
	BlockSize   int    `mapstructure:"block-size"`  // bytes per block
	Concurrency int    `mapstructure:"concurrency"` // blocks per in-flight I/O batch
	FullPass    bool   `mapstructure:"full-pass"`   // scan everything vs stop on first bad block
	ScanLimit   string `mapstructure:"scan-limit"`  // e.g. "64MB"; empty scans the whole device

	// Execution mode
	DryRun bool `mapstructure:"dry-run"`

	// Poll intervals and bounded waits, sized per phase duration
	PollIntervalShort time.Duration `mapstructure:"poll-interval-short"`
	PollIntervalLong  time.Duration `mapstructure:"poll-interval-long"`
	MaxWaitShort      time.Duration `mapstructure:"max-wait-short"`
	MaxWaitLong       time.Duration `mapstructure:"max-wait-long"`

	// Output
	LogDir        string `mapstructure:"log-dir"`
	HistoryDB     string `mapstructure:"history-db"`
	MetricsListen string `mapstructure:"metrics-listen"` // empty disables the listener
}

// Load reads configuration from defaults, environment, and any bound
// flags
func Load() (*Config, error) {
	viper.SetDefault("block-size", 8192)
	viper.SetDefault("concurrency", 64)
	viper.SetDefault("full-pass", false)
	viper.SetDefault("scan-limit", "")
	viper.SetDefault("dry-run", false)
	viper.SetDefault("poll-interval-short", 15*time.Second)
	viper.SetDefault("poll-interval-long", 3*time.Minute)
	viper.SetDefault("max-wait-short", 30*time.Minute)
	viper.SetDefault("max-wait-long", 12*time.Hour)
	viper.SetDefault("log-dir", ".")
	viper.SetDefault("history-db", "burnin-history.db")
	viper.SetDefault("metrics-listen", "")

	viper.SetEnvPrefix("BURNIN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("block-size must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.ScanLimit != "" && c.ScanLimitBytes() <= 0 {
		return fmt.Errorf("scan-limit %q is not a valid size", c.ScanLimit)
	}
	if c.PollIntervalShort <= 0 || c.PollIntervalLong <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.MaxWaitShort <= 0 || c.MaxWaitLong <= 0 {
		return fmt.Errorf("max waits must be positive")
	}
	if c.HistoryDB == "" {
		return fmt.Errorf("history-db cannot be empty")
	}
	return nil
}

// ScanLimitBytes returns the parsed scan limit, 0 meaning unlimited
func (c *Config) ScanLimitBytes() int64 {
	if c.ScanLimit == "" {
		return 0
	}
	return utils.ParseSizeToBytes(c.ScanLimit)
}
