// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// DBConfig controls access to the SQLite database file.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// SourcesConfig locates the per-family source descriptor files.
type SourcesConfig struct {
	Dir string `mapstructure:"dir"`
}

// CrawlerConfig governs fetch behavior shared by all strategies.
type CrawlerConfig struct {
	UserAgents []string `mapstructure:"user_agents"`
	Test       bool     `mapstructure:"test"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// ScheduleConfig controls the cron-driven crawl loop.
type ScheduleConfig struct {
	EveryHours int `mapstructure:"every_hours"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBSCRAWLER")
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
	v.SetDefault("db.path", "data/jobs.db")
	v.SetDefault("sources.dir", "sources")
	v.SetDefault("crawler.user_agents", []string{})
	v.SetDefault("crawler.test", false)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.development", false)
	v.SetDefault("schedule.every_hours", 12)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.DB.Path == "" {
		return fmt.Errorf("db.path must be set")
	}
	if c.Sources.Dir == "" {
		return fmt.Errorf("sources.dir must be set")
	}
	if c.Schedule.EveryHours <= 0 {
		return fmt.Errorf("schedule.every_hours must be > 0")
	}
	return nil
}
