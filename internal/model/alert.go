// Package model holds the shared domain types for spendlens.
package model

import "github.com/shopspring/decimal"

// Severity classifies how critical a budget threshold breach is.
type Severity string

// Known severities. Anything else falls back to the default presentation.
const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Alert is one budget threshold breach reported by the backend.
// Alerts are read-only to clients; the id is stable across polls for the
// same underlying condition.
type Alert struct {
	ID           int64           `json:"id"`
	Level        Severity        `json:"alert_level"`
	Category     string          `json:"category,omitempty"`
	Message      string          `json:"message"`
	SpentAmount  decimal.Decimal `json:"spent_amount"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   float64         `json:"percentage"`
}

// Overspent reports whether the category has gone past its budget.
func (a Alert) Overspent() bool {
	return a.Remaining.IsNegative()
}

// AlertsResponse is the wire shape of GET /api/alerts.
// A missing alerts field decodes as nil and is treated as empty.
type AlertsResponse struct {
	Alerts []Alert `json:"alerts"`
}
