// Package config loads the cipherscope configuration file using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/cipherscope/internal/log"
	"firestige.xyz/cipherscope/pkg/entropy"
	"firestige.xyz/cipherscope/pkg/pcapfile"
)

// Config is the `cipherscope:` root of the configuration file.
type Config struct {
	Log     log.LoggerConfig `mapstructure:"log"`
	Entropy EntropyConfig    `mapstructure:"entropy"`
	Capture CaptureConfig    `mapstructure:"capture"`
	Metrics MetricsConfig    `mapstructure:"metrics"`
	Report  ReportConfig     `mapstructure:"report"`
}

// EntropyConfig tunes the classifier.
type EntropyConfig struct {
	Epsilon   float64 `mapstructure:"epsilon"`
	Precision uint32  `mapstructure:"precision"`  // significant decimal digits
	Terms     int     `mapstructure:"terms"`      // series terms
	MinLength int     `mapstructure:"min_length"` // shorter payloads are skipped
}

// CaptureConfig configures the capture file writer.
type CaptureConfig struct {
	SnapLen uint32 `mapstructure:"snaplen"`
}

// MetricsConfig controls the Prometheus textfile written after a scan.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

// ReportConfig selects the scan report encoding.
type ReportConfig struct {
	Format string `mapstructure:"format"` // text / json / yaml
}

type configRoot struct {
	Cipherscope Config `mapstructure:"cipherscope"`
}

// Load reads the configuration at path. An empty path yields the defaults.
// Environment variables override file values, e.g. CIPHERSCOPE_ENTROPY_EPSILON.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Cipherscope

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cipherscope.log.level", "info")
	v.SetDefault("cipherscope.log.pattern", log.DefaultPattern)
	v.SetDefault("cipherscope.log.time", log.DefaultTime)
	v.SetDefault("cipherscope.log.appender", "console")
	v.SetDefault("cipherscope.log.file.filename", "/var/log/cipherscope/cipherscope.log")
	v.SetDefault("cipherscope.log.file.max_size", 100)
	v.SetDefault("cipherscope.log.file.max_backups", 5)
	v.SetDefault("cipherscope.log.file.max_age", 30)
	v.SetDefault("cipherscope.log.file.compress", true)

	v.SetDefault("cipherscope.entropy.epsilon", entropy.DefaultEpsilon)
	v.SetDefault("cipherscope.entropy.precision", entropy.DefaultPrecision)
	v.SetDefault("cipherscope.entropy.terms", entropy.DefaultTerms)
	v.SetDefault("cipherscope.entropy.min_length", entropy.MinCalibratedLen)

	v.SetDefault("cipherscope.capture.snaplen", pcapfile.DefaultSnapLen)

	v.SetDefault("cipherscope.metrics.enabled", false)
	v.SetDefault("cipherscope.metrics.textfile", "")

	v.SetDefault("cipherscope.report.format", "text")
}

// ValidateAndApplyDefaults checks value ranges.
func (cfg *Config) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}
	switch cfg.Log.Appender {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log appender: %s (must be console/file/both)", cfg.Log.Appender)
	}

	if cfg.Entropy.Epsilon <= 0 || cfg.Entropy.Epsilon > entropy.MaxEntropy {
		return fmt.Errorf("entropy.epsilon must be in (0, %g], got %g", entropy.MaxEntropy, cfg.Entropy.Epsilon)
	}
	if cfg.Entropy.Precision < 16 {
		return fmt.Errorf("entropy.precision must be at least 16 digits, got %d", cfg.Entropy.Precision)
	}
	if cfg.Entropy.Terms <= 0 {
		return fmt.Errorf("entropy.terms must be positive, got %d", cfg.Entropy.Terms)
	}
	if cfg.Entropy.MinLength < 1 {
		cfg.Entropy.MinLength = 1
	}

	if cfg.Capture.SnapLen == 0 {
		cfg.Capture.SnapLen = pcapfile.DefaultSnapLen
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Textfile == "" {
		return fmt.Errorf("metrics.textfile is required when metrics.enabled=true")
	}

	cfg.Report.Format = strings.ToLower(cfg.Report.Format)
	switch cfg.Report.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid report format: %s (must be text/json/yaml)", cfg.Report.Format)
	}
	return nil
}

// Model returns the expected entropy model described by the config.
func (c EntropyConfig) Model() entropy.Model {
	return entropy.Model{Precision: c.Precision, Terms: c.Terms}
}

// ClassifierOptions converts the config to classifier options.
func (c EntropyConfig) ClassifierOptions() *entropy.ClassifierOptions {
	return &entropy.ClassifierOptions{Epsilon: c.Epsilon, Model: c.Model()}
}
