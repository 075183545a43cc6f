package chatbot

import (
	"testing"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

var testCategories = []model.Category{
	{ID: 1, Name: "Food", Type: model.TxExpense},
	{ID: 2, Name: "Transport", Type: model.TxExpense},
	{ID: 3, Name: "Salary", Type: model.TxIncome},
}

func TestDetectFallbackAddTransaction(t *testing.T) {
	d := DetectFallback("Add 500 for food", testCategories)
	if d == nil {
		t.Fatal("no detection")
	}
	if d.Intent != IntentAddTransaction || !d.Transaction {
		t.Fatalf("detection = %+v", d)
	}
	if d.Amount == nil || !d.Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("amount = %v", d.Amount)
	}
	if d.Category != "Food" || d.Type != model.TxExpense {
		t.Fatalf("category = %q type = %q", d.Category, d.Type)
	}
}

func TestDetectFallbackAddMissingAmount(t *testing.T) {
	d := DetectFallback("add something for transport", testCategories)
	if d == nil || d.Intent != IntentChat {
		t.Fatalf("detection = %+v", d)
	}
}

func TestDetectFallbackAddMissingCategory(t *testing.T) {
	d := DetectFallback("add 300", testCategories)
	if d == nil || d.Intent != IntentChat {
		t.Fatalf("detection = %+v", d)
	}
}

func TestDetectFallbackUpdate(t *testing.T) {
	d := DetectFallback("update my food expense from 1200 to 500", testCategories)
	if d == nil || d.Intent != IntentUpdateTransaction {
		t.Fatalf("detection = %+v", d)
	}
	if d.OldAmount == nil || !d.OldAmount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("old = %v", d.OldAmount)
	}
	if d.NewAmount == nil || !d.NewAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("new = %v", d.NewAmount)
	}
	if d.Category != "Food" {
		t.Fatalf("category = %q", d.Category)
	}
}

func TestDetectFallbackUpdateSingleAmountAsksForBoth(t *testing.T) {
	d := DetectFallback("change it to 500", testCategories)
	if d == nil || d.Intent != IntentChat {
		t.Fatalf("detection = %+v", d)
	}
}

func TestDetectFallbackDelete(t *testing.T) {
	d := DetectFallback("delete my 250 transport expense", testCategories)
	if d == nil || d.Intent != IntentDeleteTransaction {
		t.Fatalf("detection = %+v", d)
	}
	if d.Amount == nil || !d.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("amount = %v", d.Amount)
	}
	if d.Category != "Transport" {
		t.Fatalf("category = %q", d.Category)
	}
}

func TestDetectFallbackTotals(t *testing.T) {
	if d := DetectFallback("what is my total income", testCategories); d == nil || d.Intent != IntentMonthlyIncome {
		t.Fatalf("detection = %+v", d)
	}
	if d := DetectFallback("how much have I spent", testCategories); d == nil || d.Intent != IntentMonthlyExpense {
		t.Fatalf("detection = %+v", d)
	}
}

func TestDetectFallbackBudget(t *testing.T) {
	if d := DetectFallback("show my budget status", testCategories); d == nil || d.Intent != IntentCheckBudget {
		t.Fatalf("detection = %+v", d)
	}
	if d := DetectFallback("will I exceed my budget", testCategories); d == nil || d.Intent != IntentPredictBudget {
		t.Fatalf("detection = %+v", d)
	}
}

func TestDetectFallbackForecast(t *testing.T) {
	if d := DetectFallback("forecast next month", testCategories); d == nil || d.Intent != IntentForecastExpense {
		t.Fatalf("detection = %+v", d)
	}
	if d := DetectFallback("forecast my income", testCategories); d == nil || d.Intent != IntentForecastIncome {
		t.Fatalf("detection = %+v", d)
	}
}

func TestDetectFallbackNoMatch(t *testing.T) {
	if d := DetectFallback("hello there", testCategories); d != nil {
		t.Fatalf("detection = %+v, want nil", d)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"intent":"chat"}`, `{"intent":"chat"}`},
		{"```json\n{\"intent\":\"chat\"}\n```", `{"intent":"chat"}`},
		{"```\n{\"intent\":\"chat\"}\n```", `{"intent":"chat"}`},
		{"Here you go:\n```json\n{\"intent\":\"chat\"}\n```\nDone.", `{"intent":"chat"}`},
	}

	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseIntentJSON(t *testing.T) {
	d, err := parseIntentJSON("```json\n{\"intent\":\"add_transaction\",\"transaction\":true,\"amount\":500,\"category\":\"Food\",\"type\":\"expense\"}\n```")
	if err != nil {
		t.Fatalf("parseIntentJSON: %v", err)
	}
	if d.Intent != IntentAddTransaction || !d.Transaction {
		t.Fatalf("detection = %+v", d)
	}
	if d.Amount == nil || !d.Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("amount = %v", d.Amount)
	}
}

func TestParseIntentJSONRejectsMissingIntent(t *testing.T) {
	if _, err := parseIntentJSON(`{"transaction":false}`); err == nil {
		t.Fatal("expected error for missing intent")
	}
}
