package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType distinguishes money coming in from money going out.
type TxType string

const (
	TxIncome  TxType = "income"
	TxExpense TxType = "expense"
)

// Valid reports whether t is one of the two known transaction types.
func (t TxType) Valid() bool {
	return t == TxIncome || t == TxExpense
}

// Category groups transactions and budgets.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type TxType `json:"type"`
}

// Transaction is a single income or expense record.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"-"`
	CategoryID  int64           `json:"category_id"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TxType          `json:"type"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Budget caps spending for one category in one calendar month.
type Budget struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"category_id"`
	Category   string          `json:"category,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
}

// CategoryTotal is one row of the per-category spending breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Type     TxType          `json:"type"`
	Total    decimal.Decimal `json:"total"`
}

// Summary aggregates the current month's activity.
type Summary struct {
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Net        decimal.Decimal `json:"net"`
	Categories []CategoryTotal `json:"categories"`
}
