package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Source   SourceConfig
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
}

// SourceConfig holds forum connection settings.
type SourceConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	HistoryLimit int           `mapstructure:"history_limit"`
}

// Load reads configuration from file and env. Env var overrides use prefix BAHATERM_.
func Load() (Config, error) {
	v := viper.New()
	home := os.Getenv("HOME")

	// default values
	v.SetDefault("source.base_url", "https://forum.gamer.com.tw/")
	v.SetDefault("source.timeout", "5s")
	v.SetDefault("source.user_agent", "bahaterm/1.0")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "bahaterm", "bahaterm.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "bahaterm", "bahaterm.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.poll_interval", "100ms")
	v.SetDefault("ui.history_limit", 10)

	v.SetConfigType("toml")

	v.SetConfigFile(Path())

	v.SetEnvPrefix("BAHATERM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UI.PollInterval <= 0 {
		return Config{}, fmt.Errorf("ui.poll_interval must be positive, got %s", c.UI.PollInterval)
	}
	return c, nil
}

// Path returns the config file location: $BAHATERM_CONFIG or
// ~/.config/bahaterm/config.toml.
func Path() string {
	if p := os.Getenv("BAHATERM_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "bahaterm", "config.toml")
}

// Exists reports whether a config file is present at Path.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("source.base_url", cfg.Source.BaseURL)
	v.Set("source.timeout", cfg.Source.Timeout.String())
	v.Set("source.user_agent", cfg.Source.UserAgent)
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.poll_interval", cfg.UI.PollInterval.String())
	v.Set("ui.history_limit", cfg.UI.HistoryLimit)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
