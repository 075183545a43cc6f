package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all spendlens configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Alerts     AlertsConfig     `toml:"alerts"`
	Assistant  AssistantConfig  `toml:"assistant"`
	Appearance AppearanceConfig `toml:"appearance"`
	Logging    LoggingConfig    `toml:"logging"`
}

// ServerConfig holds backend connection settings.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token,omitempty"`
	// Addr is the listen address used by `spendlens serve`.
	Addr string `toml:"addr,omitempty"`
	// DBPath overrides the default SQLite database location.
	DBPath string `toml:"db_path,omitempty"`
}

// AlertsConfig holds alert polling settings.
type AlertsConfig struct {
	// PollIntervalSec is the fixed alert polling cadence. Default 300.
	PollIntervalSec int `toml:"poll_interval_sec"`
	// CurrencySymbol prefixes formatted amounts. Default "₹".
	CurrencySymbol string `toml:"currency_symbol,omitempty"`
}

// AssistantConfig holds settings for the optional remote intent engine.
// When APIKey is empty the chatbot uses its built-in pattern matcher only.
type AssistantConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LoggingConfig holds zerolog settings for serve/watch.
type LoggingConfig struct {
	Level  string `toml:"level,omitempty"`
	Format string `toml:"format,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			BaseURL: "http://127.0.0.1:8990",
			Addr:    "127.0.0.1:8990",
		},
		Alerts: AlertsConfig{
			PollIntervalSec: 300,
			CurrencySymbol:  "₹",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spendlens")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spendlens")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DBPath returns the SQLite database path, honoring the config override.
func DBPath(cfg Config) string {
	if cfg.Server.DBPath != "" {
		return cfg.Server.DBPath
	}
	return filepath.Join(ConfigDir(), "spendlens.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetToken returns the API token from env var or config, in that order.
func GetToken(cfg Config) string {
	if tok := os.Getenv("SPENDLENS_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Server.Token
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
