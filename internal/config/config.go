// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Ops     OpsConfig     `mapstructure:"ops"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the worker pool and seed admission.
type CrawlerConfig struct {
	Workers      int      `mapstructure:"workers"`
	Seeds        []string `mapstructure:"seeds"`
	AllowedHosts []string `mapstructure:"allowed_hosts"`
	UserAgent    string   `mapstructure:"user_agent"`
	DelayMs      int      `mapstructure:"delay_ms"`
	WorkingDir   string   `mapstructure:"working_dir"`
}

// HTTPConfig configures the shared HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// OpsConfig controls the metrics/status endpoint.
type OpsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPINNERET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.workers", 4)
	v.SetDefault("crawler.user_agent", "spinneret/1.0")
	v.SetDefault("crawler.delay_ms", 0)
	v.SetDefault("crawler.working_dir", ".")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("ops.enabled", false)
	v.SetDefault("ops.addr", ":9090")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be > 0")
	}
	if c.Crawler.DelayMs < 0 {
		return fmt.Errorf("crawler.delay_ms must be >= 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Ops.Enabled && c.Ops.Addr == "" {
		return fmt.Errorf("ops.addr must be set when ops is enabled")
	}
	return nil
}

// RequestDelay converts the configured millisecond delay into a duration.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.Crawler.DelayMs) * time.Millisecond
}

// HTTPTimeout converts the configured timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
