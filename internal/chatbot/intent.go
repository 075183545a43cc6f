package chatbot

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

// Intents the engine understands.
const (
	IntentAddTransaction    = "add_transaction"
	IntentUpdateTransaction = "update_transaction"
	IntentDeleteTransaction = "delete_transaction"
	IntentSummary           = "get_summary"
	IntentMonthlyIncome     = "get_monthly_total_income"
	IntentMonthlyExpense    = "get_monthly_total_expense"
	IntentForecastExpense   = "forecast_expense"
	IntentForecastIncome    = "forecast_income"
	IntentCheckBudget       = "check_budget"
	IntentPredictBudget     = "predict_budget"
	IntentBudgetRisk        = "budget_risk"
	IntentInsights          = "spending_insights"
	IntentChat              = "chat"
)

// Detection is the outcome of intent analysis on one message. Amounts are
// nil when absent.
type Detection struct {
	Intent      string
	Transaction bool
	Amount      *decimal.Decimal
	OldAmount   *decimal.Decimal
	NewAmount   *decimal.Decimal
	Category    string
	Description string
	Type        model.TxType
	Message     string
}

var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

func extractAmounts(input string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, m := range amountPattern.FindAllString(input, -1) {
		if d, err := decimal.NewFromString(m); err == nil {
			out = append(out, d)
		}
	}
	return out
}

func matchCategory(input string, categories []model.Category) *model.Category {
	lower := strings.ToLower(input)
	for i := range categories {
		if strings.Contains(lower, strings.ToLower(categories[i].Name)) {
			return &categories[i]
		}
	}
	return nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// DetectFallback is the deterministic pattern matcher used when no remote
// intent engine is configured or it fails. Returns nil when nothing matches.
func DetectFallback(input string, categories []model.Category) *Detection {
	lower := strings.ToLower(input)

	if containsAny(lower, "update", "change", "modify", "edit") {
		amounts := extractAmounts(input)
		cat := matchCategory(input, categories)

		switch {
		case len(amounts) >= 2:
			d := &Detection{
				Intent:    IntentUpdateTransaction,
				OldAmount: &amounts[0],
				NewAmount: &amounts[1],
			}
			if cat != nil {
				d.Category = cat.Name
			}
			return d
		case len(amounts) == 1:
			return &Detection{
				Intent:  IntentChat,
				Message: "To update a transaction, specify both the old and new amounts.\n\nExample: 'Update my food expense from 1200 to 500'",
			}
		}
	}

	if containsAny(lower, "delete", "remove", "cancel") {
		d := &Detection{Intent: IntentDeleteTransaction}
		if amounts := extractAmounts(input); len(amounts) > 0 {
			d.Amount = &amounts[0]
		}
		if cat := matchCategory(input, categories); cat != nil {
			d.Category = cat.Name
		}
		return d
	}

	if containsAny(lower, "add", "spent", "paid", "bought", "transaction") {
		amounts := extractAmounts(input)
		cat := matchCategory(input, categories)

		switch {
		case len(amounts) > 0 && cat != nil:
			return &Detection{
				Intent:      IntentAddTransaction,
				Transaction: true,
				Amount:      &amounts[0],
				Category:    cat.Name,
				Description: input,
				Type:        cat.Type,
			}
		case cat != nil:
			return &Detection{
				Intent:  IntentChat,
				Message: "Please specify the amount.\n\nExample: 'Add 500 for " + cat.Name + "'",
			}
		case len(amounts) > 0:
			return &Detection{
				Intent:  IntentChat,
				Message: "Please specify the category.\n\nAvailable categories: " + categoryNames(categories),
			}
		}
	}

	if containsAny(lower, "summary", "total", "spent", "expenses") {
		switch {
		case strings.Contains(lower, "income"):
			return &Detection{Intent: IntentMonthlyIncome}
		case containsAny(lower, "expense", "spent"):
			return &Detection{Intent: IntentMonthlyExpense}
		default:
			return &Detection{Intent: IntentSummary, Message: "Here is your financial summary."}
		}
	}

	if strings.Contains(lower, "risk") {
		return &Detection{Intent: IntentBudgetRisk}
	}

	if strings.Contains(lower, "insight") {
		return &Detection{Intent: IntentInsights}
	}

	if strings.Contains(lower, "budget") {
		if containsAny(lower, "will", "exceed", "predict", "future") {
			return &Detection{Intent: IntentPredictBudget}
		}
		return &Detection{Intent: IntentCheckBudget}
	}

	if containsAny(lower, "forecast", "predict", "next month") {
		if strings.Contains(lower, "income") {
			return &Detection{Intent: IntentForecastIncome}
		}
		return &Detection{Intent: IntentForecastExpense}
	}

	return nil
}

func categoryNames(categories []model.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
