package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"spendlens/internal/cli"
	"spendlens/internal/model"
)

var flagRecentLimit int

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent transactions",
	RunE:  runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&flagRecentLimit, "limit", "n", 15, "Max transactions to show")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	symbol := currencySymbol(cfg)

	client := newAPIClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	txs, err := client.FetchTransactions(ctx, flagRecentLimit)
	if err != nil {
		return fmt.Errorf("fetching transactions: %w", err)
	}
	if len(txs) == 0 {
		fmt.Println("  No transactions yet.")
		return nil
	}

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		amount := cli.FormatAmount(symbol, tx.Amount)
		if tx.Type == model.TxExpense {
			amount = "-" + amount
		}
		rows = append(rows, []string{
			tx.Date.Format("2006-01-02"),
			tx.Category,
			tx.Description,
			amount,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Category", "Description", "Amount"},
		Rows:    rows,
	}))

	// Expense trend, oldest first.
	var spend []decimal.Decimal
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].Type == model.TxExpense {
			spend = append(spend, txs[i].Amount)
		}
	}
	if len(spend) > 1 {
		fmt.Printf("  trend %s\n", cli.RenderSparkline(spend))
	}
	return nil
}
