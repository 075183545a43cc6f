package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendlens/internal/cli"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show this month's income, expenses, and category totals",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	symbol := currencySymbol(cfg)

	client := newAPIClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	summary, err := client.FetchSummary(ctx)
	if err != nil {
		return fmt.Errorf("fetching summary: %w", err)
	}

	fmt.Println(cli.RenderTitle(time.Now().Format("January 2006")))

	table := cli.Table{
		Headers: []string{"", "Amount"},
		Rows: [][]string{
			{"Income", cli.FormatAmount(symbol, summary.Income)},
			{"Expenses", cli.FormatAmount(symbol, summary.Expense)},
			{"---"},
			{"Net", cli.FormatAmount(symbol, summary.Net)},
		},
	}
	fmt.Print(cli.RenderTable(table))

	if len(summary.Categories) > 0 {
		rows := make([][]string, 0, len(summary.Categories))
		for _, c := range summary.Categories {
			rows = append(rows, []string{c.Category, string(c.Type), cli.FormatAmount(symbol, c.Total)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By Category",
			Headers: []string{"Category", "Type", "Total"},
			Rows:    rows,
		}))
	}
	return nil
}
