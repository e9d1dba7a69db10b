package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/finwatch-app/finwatch/pkg/monitor"
)

// Config holds all FinWatch configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Monitors MonitorsConfig `mapstructure:"monitors"`
	Messages MessagesConfig `mapstructure:"messages"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines status API settings.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// SinkConfig defines notification delivery settings.
type SinkConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig defines webhook sink settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// MonitorsConfig defines per-monitor polling settings.
type MonitorsConfig struct {
	Budget   BudgetMonitorConfig `mapstructure:"budget"`
	Goal     PollConfig          `mapstructure:"goal"`
	Reminder PollConfig          `mapstructure:"reminder"`
}

// PollConfig defines a monitor's poll interval and the minimum spacing
// between consecutive checks.
type PollConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	MinSpacing time.Duration `mapstructure:"min_spacing"`
}

// BudgetMonitorConfig adds the per-budget alert cooldown.
type BudgetMonitorConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	MinSpacing time.Duration `mapstructure:"min_spacing"`
	Cooldown   time.Duration `mapstructure:"cooldown"`
}

// MessagesConfig points at an optional message catalog override file.
type MessagesConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultsConfig defines default values.
type DefaultsConfig struct {
	User string `mapstructure:"user"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".finwatch"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".finwatch", "finwatch.db"))
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("sink.webhook.enabled", false)
	v.SetDefault("monitors.budget.interval", monitor.BudgetPollInterval)
	v.SetDefault("monitors.budget.min_spacing", monitor.BudgetMinSpacing)
	v.SetDefault("monitors.budget.cooldown", monitor.DefaultAlertCooldown)
	v.SetDefault("monitors.goal.interval", monitor.GoalPollInterval)
	v.SetDefault("monitors.goal.min_spacing", monitor.GoalMinSpacing)
	v.SetDefault("monitors.reminder.interval", monitor.ReminderPollInterval)
	v.SetDefault("monitors.reminder.min_spacing", monitor.ReminderMinSpacing)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("defaults.user", "default")

	// Environment variables
	v.SetEnvPrefix("FINWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
