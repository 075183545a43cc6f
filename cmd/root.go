// Package cmd implements the spendlens CLI commands.
package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"spendlens/internal/api"
	"spendlens/internal/config"
)

var (
	flagServerURL string
	flagToken     string
	flagSymbol    string
)

var rootCmd = &cobra.Command{
	Use:   "spendlens",
	Short: "Personal expense tracker CLI",
	Long:  "Track expenses, watch budget alerts, and chat with the assistant.",
	RunE:  runAlerts,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "API token (overrides config and SPENDLENS_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&flagSymbol, "currency", "", "Currency symbol (overrides config)")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagServerURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(flagServerURL, "/")
	}
	if flagToken != "" {
		cfg.Server.Token = flagToken
	}
	if flagSymbol != "" {
		cfg.Alerts.CurrencySymbol = flagSymbol
	}
	return cfg, nil
}

func currencySymbol(cfg config.Config) string {
	if cfg.Alerts.CurrencySymbol != "" {
		return cfg.Alerts.CurrencySymbol
	}
	return "₹"
}

// newAPIClient builds a backend client from config. The token source reads
// the environment on every call so a refreshed SPENDLENS_TOKEN is honored.
func newAPIClient(cfg config.Config) *api.Client {
	return api.NewClient(cfg.Server.BaseURL, func() string {
		if flagToken != "" {
			return flagToken
		}
		return config.GetToken(cfg)
	})
}

// newLogger builds the zerolog logger used by serve and daemon.
func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || cfg.Logging.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Logging.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
