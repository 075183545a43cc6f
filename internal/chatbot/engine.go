package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"spendlens/internal/cli"
	"spendlens/internal/forecast"
	"spendlens/internal/model"
)

// DataSource is the persistence surface the engine needs. Implemented by
// the SQLite store.
type DataSource interface {
	Categories(ctx context.Context, userID int64) ([]model.Category, error)
	MonthlyTotal(ctx context.Context, userID int64, txType model.TxType, year int, month time.Month) (decimal.Decimal, error)
	MonthlyHistory(ctx context.Context, userID int64, txType model.TxType, months int) ([]float64, error)
	BudgetUsages(ctx context.Context, userID int64, year int, month time.Month) ([]forecast.BudgetUsage, error)
	CategoryHistories(ctx context.Context, userID int64, year int, month time.Month) ([]forecast.CategoryHistory, error)
	AddTransaction(ctx context.Context, tx *model.Transaction) error
	FindRecentTransaction(ctx context.Context, userID int64, category string, amount *decimal.Decimal) (*model.Transaction, error)
	UpdateTransactionAmount(ctx context.Context, userID, txID int64, amount decimal.Decimal) error
	DeleteTransaction(ctx context.Context, userID, txID int64) error
}

const helpReply = "Sorry, I couldn't understand that. Try asking about your spending, budgets, or forecasts.\n\n" +
	"**Examples:**\n" +
	"• Add 500 for food\n" +
	"• Show my budget status\n" +
	"• Forecast next month expenses\n" +
	"• How much did I spend this month?"

// Engine turns chat messages into replies. The remote intent client is
// optional; the deterministic patterns always back it up.
type Engine struct {
	data     DataSource
	remote   *RemoteIntent
	contexts *ContextStore
	symbol   string
	log      zerolog.Logger
	now      func() time.Time
}

// NewEngine wires an engine. remote may be nil.
func NewEngine(data DataSource, remote *RemoteIntent, symbol string, log zerolog.Logger) *Engine {
	if symbol == "" {
		symbol = cli.DefaultCurrencySymbol
	}
	return &Engine{
		data:     data,
		remote:   remote,
		contexts: NewContextStore(nil),
		symbol:   symbol,
		log:      log.With().Str("component", "chatbot").Logger(),
		now:      time.Now,
	}
}

// ClearContext drops the user's conversation state, e.g. on logout.
func (e *Engine) ClearContext(userID int64) {
	e.contexts.Clear(userID)
}

// Process handles one user message and returns the assistant's reply.
// Errors are folded into the reply text; the chat surface never errors out.
func (e *Engine) Process(ctx context.Context, userID int64, input string) string {
	conv := e.contexts.Get(userID)

	categories, err := e.data.Categories(ctx, userID)
	if err != nil {
		e.log.Error().Err(err).Msg("loading categories")
		return "Something went wrong loading your data. Please try again."
	}

	detection := e.detect(ctx, input, categories)
	if detection == nil {
		conv.AddMessage("user", input, "", nil)
		conv.AddMessage("assistant", helpReply, "", nil)
		return helpReply
	}

	reply, entities := e.respond(ctx, userID, input, detection, categories)

	conv.AddMessage("user", input, detection.Intent, entities)
	conv.AddMessage("assistant", reply, "", nil)
	return reply
}

func (e *Engine) detect(ctx context.Context, input string, categories []model.Category) *Detection {
	if e.remote != nil {
		d, err := e.remote.Detect(ctx, input, categories)
		if err == nil {
			return d
		}
		e.log.Warn().Err(err).Msg("remote intent failed, using patterns")
	}
	return DetectFallback(input, categories)
}

func (e *Engine) respond(ctx context.Context, userID int64, input string, d *Detection, categories []model.Category) (string, map[string]string) {
	entities := map[string]string{}

	switch d.Intent {
	case IntentAddTransaction:
		if !d.Transaction || d.Amount == nil || !d.Amount.IsPositive() {
			return "Please specify a valid amount for the transaction.\n\nExample: 'Add 500 for food'", nil
		}
		if d.Category == "" {
			return "Please specify a category.\n\nAvailable categories: " + categoryNames(categories), nil
		}
		entities["category"] = d.Category
		entities["amount"] = d.Amount.String()
		return e.addTransaction(ctx, userID, d, categories), entities

	case IntentUpdateTransaction:
		if d.NewAmount == nil || !d.NewAmount.IsPositive() {
			return "Please specify the new amount.\n\nExample: 'Update my food expense from 1200 to 500'", nil
		}
		if d.Category != "" {
			entities["category"] = d.Category
		}
		return e.updateTransaction(ctx, userID, d), entities

	case IntentDeleteTransaction:
		if d.Category != "" {
			entities["category"] = d.Category
		}
		return e.deleteTransaction(ctx, userID, d), entities

	case IntentMonthlyIncome:
		return e.monthlyTotal(ctx, userID, model.TxIncome), nil

	case IntentMonthlyExpense:
		return e.monthlyTotal(ctx, userID, model.TxExpense), nil

	case IntentForecastExpense:
		return e.forecastReply(ctx, userID, model.TxExpense, "Expense"), nil

	case IntentForecastIncome:
		return e.forecastReply(ctx, userID, model.TxIncome, "Income"), nil

	case IntentBudgetRisk:
		return e.riskReply(ctx, userID), nil

	case IntentInsights:
		return e.insightsReply(ctx, userID), nil

	case IntentCheckBudget:
		return e.budgetSummary(ctx, userID), nil

	case IntentPredictBudget:
		return e.budgetPrediction(ctx, userID), nil

	case IntentSummary:
		if d.Message != "" {
			return d.Message, nil
		}
		return "Here is your financial summary.", nil

	default:
		if d.Message != "" {
			return d.Message, nil
		}
		return "I'm here to help! Ask me about spending, budgets, or forecasts.", nil
	}
}

func (e *Engine) addTransaction(ctx context.Context, userID int64, d *Detection, categories []model.Category) string {
	txType := d.Type
	if !txType.Valid() {
		txType = model.TxExpense
	}

	var matched *model.Category
	want := strings.ToLower(strings.TrimSpace(d.Category))
	for i := range categories {
		if categories[i].Type == txType && strings.ToLower(categories[i].Name) == want {
			matched = &categories[i]
			break
		}
	}
	if matched == nil {
		return fmt.Sprintf("Category '%s' of type '%s' not found. Transaction not recorded.", d.Category, txType)
	}

	desc := d.Description
	if desc == "" {
		desc = matched.Name
	}

	tx := &model.Transaction{
		UserID:      userID,
		CategoryID:  matched.ID,
		Category:    matched.Name,
		Amount:      *d.Amount,
		Type:        txType,
		Description: desc,
		Date:        e.now(),
	}
	if err := e.data.AddTransaction(ctx, tx); err != nil {
		e.log.Error().Err(err).Msg("adding transaction")
		return "Failed to record the transaction. Please try again."
	}

	return fmt.Sprintf("Recorded %s as %s for '%s' under '%s'.",
		cli.FormatAmount(e.symbol, *d.Amount), txType, desc, matched.Name)
}

func (e *Engine) updateTransaction(ctx context.Context, userID int64, d *Detection) string {
	tx, err := e.data.FindRecentTransaction(ctx, userID, d.Category, d.OldAmount)
	if err != nil {
		e.log.Error().Err(err).Msg("finding transaction to update")
		return "Failed to look up the transaction. Please try again."
	}
	if tx == nil {
		return "Could not find a recent transaction matching your criteria.\n\nTry: 'Show my recent transactions' first."
	}

	if err := e.data.UpdateTransactionAmount(ctx, userID, tx.ID, *d.NewAmount); err != nil {
		e.log.Error().Err(err).Msg("updating transaction")
		return "Failed to update the transaction. Please try again."
	}

	return fmt.Sprintf("Updated transaction in '%s' from %s to %s",
		tx.Category,
		cli.FormatAmount(e.symbol, tx.Amount),
		cli.FormatAmount(e.symbol, *d.NewAmount))
}

func (e *Engine) deleteTransaction(ctx context.Context, userID int64, d *Detection) string {
	tx, err := e.data.FindRecentTransaction(ctx, userID, d.Category, d.Amount)
	if err != nil {
		e.log.Error().Err(err).Msg("finding transaction to delete")
		return "Failed to look up the transaction. Please try again."
	}
	if tx == nil {
		return "Could not find a recent transaction matching your criteria.\n\nTry: 'Show my recent transactions' first."
	}

	if err := e.data.DeleteTransaction(ctx, userID, tx.ID); err != nil {
		e.log.Error().Err(err).Msg("deleting transaction")
		return "Failed to delete the transaction. Please try again."
	}

	return fmt.Sprintf("Deleted transaction: %s for '%s' from '%s'",
		cli.FormatAmount(e.symbol, tx.Amount), tx.Description, tx.Category)
}

func (e *Engine) monthlyTotal(ctx context.Context, userID int64, txType model.TxType) string {
	now := e.now()
	total, err := e.data.MonthlyTotal(ctx, userID, txType, now.Year(), now.Month())
	if err != nil {
		e.log.Error().Err(err).Msg("monthly total")
		return "Failed to compute the monthly total. Please try again."
	}

	if txType == model.TxIncome {
		return fmt.Sprintf("Your total income this month is %s.", cli.FormatAmount(e.symbol, total))
	}
	return fmt.Sprintf("Your total expenditure this month is %s.", cli.FormatAmount(e.symbol, total))
}

func (e *Engine) forecastReply(ctx context.Context, userID int64, txType model.TxType, label string) string {
	history, err := e.data.MonthlyHistory(ctx, userID, txType, 12)
	if err != nil {
		e.log.Error().Err(err).Msg("monthly history")
		return "Failed to load your history. Please try again."
	}

	res := forecast.NextMonth(history, forecast.MethodAuto)
	if res.Method == forecast.MethodNoData {
		return fmt.Sprintf("No historical %s data available yet.", strings.ToLower(label))
	}

	return fmt.Sprintf("**%s Forecast (Next Month):**\n\nPredicted: %s\nConfidence: %s",
		label,
		cli.FormatAmount(e.symbol, decimal.NewFromFloat(res.Value)),
		strings.ToUpper(res.Confidence))
}

func (e *Engine) riskReply(ctx context.Context, userID int64) string {
	now := e.now()
	usages, err := e.data.BudgetUsages(ctx, userID, now.Year(), now.Month())
	if err != nil {
		e.log.Error().Err(err).Msg("budget usages")
		return "Failed to load your budgets. Please try again."
	}
	if len(usages) == 0 {
		return "You don't have any budgets set up yet. Create budgets to track your spending!"
	}

	report := forecast.AssessRisk(usages, now.Day(), daysInMonth(now))

	var b strings.Builder
	fmt.Fprintf(&b, "**Budget Risk Analysis:**\n\nOverall Risk Score: %.1f/100 (%s)\n\n",
		report.Score, strings.ToUpper(report.Level))

	if len(report.HighRiskCategories) > 0 {
		b.WriteString("**High Risk Categories:**\n")
		for _, c := range report.HighRiskCategories {
			fmt.Fprintf(&b, "• %s: %s → %s / %s\n",
				c.Category,
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(c.Spent)),
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(c.Projected)),
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(c.Budget)))
		}
	} else {
		b.WriteString("All budgets are on track!")
	}
	return b.String()
}

func (e *Engine) insightsReply(ctx context.Context, userID int64) string {
	now := e.now()
	histories, err := e.data.CategoryHistories(ctx, userID, now.Year(), now.Month())
	if err != nil {
		e.log.Error().Err(err).Msg("category histories")
		return "Failed to load your spending history. Please try again."
	}

	insights := forecast.Insights(histories)
	if len(insights) == 0 {
		return "No significant spending changes detected this month."
	}

	var b strings.Builder
	b.WriteString("**Spending Insights:**\n\n")
	for _, in := range insights {
		fmt.Fprintf(&b, "**%s**: %s (avg: %s, %+.1f%%)\n",
			in.Category,
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(in.Current)),
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(in.Average)),
			in.ChangePct)
	}
	return b.String()
}

func (e *Engine) budgetSummary(ctx context.Context, userID int64) string {
	now := e.now()
	usages, err := e.data.BudgetUsages(ctx, userID, now.Year(), now.Month())
	if err != nil {
		e.log.Error().Err(err).Msg("budget usages")
		return "Failed to load your budgets. Please try again."
	}
	if len(usages) == 0 {
		return "You don't have any budgets set up yet. Create budgets to track your spending!"
	}

	var exceeded []forecast.BudgetUsage
	for _, u := range usages {
		if u.Spent > u.Budget {
			exceeded = append(exceeded, u)
		}
	}

	var b strings.Builder
	if len(exceeded) > 0 {
		b.WriteString("**Budget Alerts:**\n\n")
		for _, u := range exceeded {
			pct := percentage(u.Spent, u.Budget)
			fmt.Fprintf(&b, "%s: Spent %s / Budget %s (Over by %s, %.1f%%)\n",
				u.Category,
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(u.Spent)),
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(u.Budget)),
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(u.Spent-u.Budget)),
				pct)
		}
		b.WriteString("\n")
	}

	b.WriteString("**All Budgets:**\n\n")
	for _, u := range usages {
		status := "On track"
		if u.Spent > u.Budget {
			status = "Exceeded"
		}
		fmt.Fprintf(&b, "%s: %s / %s (%.1f%%) - %s\n",
			u.Category,
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(u.Spent)),
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(u.Budget)),
			percentage(u.Spent, u.Budget),
			status)
	}
	return b.String()
}

func (e *Engine) budgetPrediction(ctx context.Context, userID int64) string {
	now := e.now()
	usages, err := e.data.BudgetUsages(ctx, userID, now.Year(), now.Month())
	if err != nil {
		e.log.Error().Err(err).Msg("budget usages")
		return "Failed to load your budgets. Please try again."
	}
	if len(usages) == 0 {
		return "You don't have any budgets set up yet. Create budgets to track your spending!"
	}

	day := now.Day()
	totalDays := daysInMonth(now)
	remaining := totalDays - day

	type prediction struct {
		usage     forecast.BudgetUsage
		dailyAvg  float64
		predicted float64
	}

	var preds []prediction
	var willExceed []prediction
	for _, u := range usages {
		var dailyAvg float64
		if day > 0 {
			dailyAvg = u.Spent / float64(day)
		}
		p := prediction{
			usage:     u,
			dailyAvg:  dailyAvg,
			predicted: u.Spent + dailyAvg*float64(remaining),
		}
		preds = append(preds, p)
		if p.predicted > u.Budget {
			willExceed = append(willExceed, p)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Budget Prediction** (Day %d/%d, %d days left):\n\n", day, totalDays, remaining)

	if len(willExceed) > 0 {
		b.WriteString("**Warning - Likely to Exceed:**\n\n")
		for _, p := range willExceed {
			fmt.Fprintf(&b, "%s: Spent %s → Predicted %s / Budget %s\n   (Will exceed by %s if current rate continues)\n",
				p.usage.Category,
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.usage.Spent)),
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.predicted)),
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.usage.Budget)),
				cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.predicted-p.usage.Budget)))
		}
		b.WriteString("\n")
	}

	b.WriteString("**All Predictions:**\n\n")
	for _, p := range preds {
		status := "On track"
		if p.predicted > p.usage.Budget {
			status = "Will exceed"
		}
		fmt.Fprintf(&b, "%s: %s → %s / %s (%s)\n   Daily avg: %s\n",
			p.usage.Category,
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.usage.Spent)),
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.predicted)),
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.usage.Budget)),
			status,
			cli.FormatAmount(e.symbol, decimal.NewFromFloat(p.dailyAvg)))
	}
	return b.String()
}

func percentage(spent, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return spent / budget * 100
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
