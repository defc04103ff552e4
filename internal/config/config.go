package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/allanpeda/motion-scripts/internal/domain"
)

// Config represents the entire application configuration
type Config struct {
	Video    VideoConfig     `mapstructure:"video"`
	Remote   RemoteConfig    `mapstructure:"remote"`
	Channels []ChannelConfig `mapstructure:"channels"`
	Schedule ScheduleConfig  `mapstructure:"schedule"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Database DatabaseConfig  `mapstructure:"database"`
}

// VideoConfig contains local video directory settings
type VideoConfig struct {
	Dir          string `mapstructure:"dir"`
	MaxDiskBytes int64  `mapstructure:"max_disk_bytes"`
	RecentWindow string `mapstructure:"recent_window"`
	SettleWindow string `mapstructure:"settle_window"`
}

// RemoteConfig contains remote object store settings
type RemoteConfig struct {
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	Region      string `mapstructure:"region"`
	EndpointURL string `mapstructure:"endpoint_url"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	ExpiryAge   string `mapstructure:"expiry_age"`
}

// ChannelConfig maps a filename prefix to a remote sub-path
type ChannelConfig struct {
	Prefix  string `mapstructure:"prefix"`
	SubPath string `mapstructure:"sub_path"`
	Retain  bool   `mapstructure:"retain"`
}

// ScheduleConfig contains run scheduling settings
type ScheduleConfig struct {
	// Interval enables daemon mode when non-empty; otherwise the program
	// runs once and exits, for use under an external scheduler
	Interval string `mapstructure:"interval"`
	LockPath string `mapstructure:"lock_path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains run journal database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from the specified file path.
// A missing file is not an error; the defaults stand in for it.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("video.dir", "/var/lib/motion")
	viper.SetDefault("video.max_disk_bytes", 2*1024*1024*1024)
	viper.SetDefault("video.recent_window", "60m")
	viper.SetDefault("video.settle_window", "5m")
	viper.SetDefault("remote.prefix", "motion")
	viper.SetDefault("remote.region", "us-east-1")
	viper.SetDefault("remote.expiry_age", "336h")
	viper.SetDefault("channels", []map[string]interface{}{
		{"prefix": "CAM01", "sub_path": "cam01"},
		{"prefix": "CAM02", "sub_path": "cam02"},
		{"prefix": "CAM03", "sub_path": "cam03"},
		{"prefix": "CAM04", "sub_path": "cam04", "retain": true},
	})
	viper.SetDefault("schedule.interval", "")
	viper.SetDefault("schedule.lock_path", "/tmp/motion-offload.lock")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("database.path", "")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Video.Dir == "" {
		return fmt.Errorf("video.dir is required")
	}
	if c.Video.MaxDiskBytes <= 0 {
		return fmt.Errorf("video.max_disk_bytes must be positive")
	}
	if _, err := time.ParseDuration(c.Video.RecentWindow); err != nil {
		return fmt.Errorf("invalid video.recent_window: %w", err)
	}
	if _, err := time.ParseDuration(c.Video.SettleWindow); err != nil {
		return fmt.Errorf("invalid video.settle_window: %w", err)
	}
	if c.GetSettleWindow() >= c.GetRecentWindow() {
		return fmt.Errorf("video.settle_window must be shorter than video.recent_window")
	}

	if c.Remote.Bucket == "" {
		return fmt.Errorf("remote.bucket is required")
	}
	if _, err := time.ParseDuration(c.Remote.ExpiryAge); err != nil {
		return fmt.Errorf("invalid remote.expiry_age: %w", err)
	}

	if len(c.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}
	for _, ch := range c.Channels {
		if len(ch.Prefix) != domain.PrefixLen {
			return fmt.Errorf("channel prefix %q must be %d characters", ch.Prefix, domain.PrefixLen)
		}
		if ch.SubPath == "" {
			return fmt.Errorf("channel %s has no sub_path", ch.Prefix)
		}
	}

	if c.Schedule.Interval != "" {
		if _, err := time.ParseDuration(c.Schedule.Interval); err != nil {
			return fmt.Errorf("invalid schedule.interval: %w", err)
		}
	}
	if c.Schedule.LockPath == "" {
		return fmt.Errorf("schedule.lock_path is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// ChannelList returns the configured channels as domain values
func (c *Config) ChannelList() []domain.Channel {
	channels := make([]domain.Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		channels = append(channels, domain.Channel{
			Prefix:  ch.Prefix,
			SubPath: ch.SubPath,
			Retain:  ch.Retain,
		})
	}
	return channels
}

// GetRecentWindow returns the recent window as time.Duration
func (c *Config) GetRecentWindow() time.Duration {
	d, _ := time.ParseDuration(c.Video.RecentWindow)
	if d == 0 {
		return 60 * time.Minute
	}
	return d
}

// GetSettleWindow returns the settle window as time.Duration
func (c *Config) GetSettleWindow() time.Duration {
	d, _ := time.ParseDuration(c.Video.SettleWindow)
	if d == 0 {
		return 5 * time.Minute
	}
	return d
}

// GetExpiryAge returns the remote expiry age as time.Duration
func (c *Config) GetExpiryAge() time.Duration {
	d, _ := time.ParseDuration(c.Remote.ExpiryAge)
	if d == 0 {
		return 14 * 24 * time.Hour
	}
	return d
}

// GetInterval returns the daemon interval, or zero for one-shot mode
func (c *Config) GetInterval() time.Duration {
	d, _ := time.ParseDuration(c.Schedule.Interval)
	return d
}
