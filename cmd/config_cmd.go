package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendlens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Base URL: %s\n", cfg.Server.BaseURL)
	fmt.Printf("    Database: %s\n", config.DBPath(cfg))
	if tok := config.GetToken(cfg); tok != "" {
		fmt.Printf("    Token:    %s\n", maskToken(tok))
	} else {
		fmt.Println("    Token:    not configured (run `spendlens login`)")
	}
	fmt.Println()

	fmt.Println("  [Alerts]")
	fmt.Printf("    Poll interval: %ds\n", cfg.Alerts.PollIntervalSec)
	fmt.Printf("    Currency:      %s\n", currencySymbol(cfg))
	fmt.Println()

	fmt.Println("  [Assistant]")
	if cfg.Assistant.APIKey != "" {
		fmt.Printf("    API key: %s\n", maskToken(cfg.Assistant.APIKey))
		if cfg.Assistant.Model != "" {
			fmt.Printf("    Model:   %s\n", cfg.Assistant.Model)
		}
	} else {
		fmt.Println("    API key: not configured (pattern matcher only)")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	return nil
}

func maskToken(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
