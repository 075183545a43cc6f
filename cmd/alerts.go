package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendlens/internal/cli"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show current budget alerts",
	RunE:  runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newAPIClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	alerts, err := client.FetchAlerts(ctx)
	if err != nil {
		return fmt.Errorf("fetching alerts: %w", err)
	}

	fmt.Print(cli.RenderAlertList(currencySymbol(cfg), alerts))
	return nil
}
