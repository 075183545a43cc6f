package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/forecast"
	"spendlens/internal/model"
)

// SetBudget creates or replaces the budget for a category and month, and
// sets b.ID to the row id. RETURNING is used because last_insert_rowid is
// not updated on the conflict-update path.
func (s *Store) SetBudget(ctx context.Context, userID int64, b *model.Budget) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO budgets (user_id, category_id, amount, month, year)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, category_id, month, year)
		 DO UPDATE SET amount = excluded.amount
		 RETURNING id`,
		userID, b.CategoryID, b.Amount.String(), b.Month, b.Year).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("setting budget: %w", err)
	}
	return nil
}

// Budgets returns the user's budgets for a month, joined with their
// category names.
func (s *Store) Budgets(ctx context.Context, userID int64, year int, month time.Month) ([]model.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.category_id, c.name, b.amount, b.month, b.year
		 FROM budgets b JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ? AND b.year = ? AND b.month = ?
		 ORDER BY c.name`,
		userID, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Budget
	for rows.Next() {
		var b model.Budget
		var amountStr string
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Category, &amountStr, &b.Month, &b.Year); err != nil {
			return nil, err
		}
		b.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parsing budget amount %q: %w", amountStr, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func monthArgs(year int, month time.Month) (string, string) {
	return fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", int(month))
}

// CategorySpend sums the user's expense transactions for one category in
// one month, exactly.
func (s *Store) CategorySpend(ctx context.Context, userID, categoryID int64, year int, month time.Month) (decimal.Decimal, error) {
	y, m := monthArgs(year, month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT amount FROM transactions
		 WHERE user_id = ? AND category_id = ? AND type = 'expense'
		   AND strftime('%Y', date) = ? AND strftime('%m', date) = ?`,
		userID, categoryID, y, m)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing category spend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing amount %q: %w", amountStr, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// MonthlyTotal sums one transaction type for a calendar month, exactly.
func (s *Store) MonthlyTotal(ctx context.Context, userID int64, txType model.TxType, year int, month time.Month) (decimal.Decimal, error) {
	y, m := monthArgs(year, month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT amount FROM transactions
		 WHERE user_id = ? AND type = ?
		   AND strftime('%Y', date) = ? AND strftime('%m', date) = ?`,
		userID, txType, y, m)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing monthly total: %w", err)
	}
	defer func() { _ = rows.Close() }()

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing amount %q: %w", amountStr, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// MonthlyHistory returns per-month totals for the last N months that have
// any activity, oldest first. Used by the forecasting engine, so float64
// precision is enough.
func (s *Store) MonthlyHistory(ctx context.Context, userID int64, txType model.TxType, months int) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', date) AS ym, SUM(CAST(amount AS REAL)) AS total
		 FROM transactions
		 WHERE user_id = ? AND type = ?
		 GROUP BY ym ORDER BY ym DESC LIMIT ?`,
		userID, txType, months)
	if err != nil {
		return nil, fmt.Errorf("loading monthly history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var newestFirst []float64
	for rows.Next() {
		var ym string
		var total float64
		if err := rows.Scan(&ym, &total); err != nil {
			return nil, err
		}
		newestFirst = append(newestFirst, total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]float64, len(newestFirst))
	for i, v := range newestFirst {
		out[len(out)-1-i] = v
	}
	return out, nil
}

// BudgetUsages pairs each of the month's budgets with what was actually
// spent against it.
func (s *Store) BudgetUsages(ctx context.Context, userID int64, year int, month time.Month) ([]forecast.BudgetUsage, error) {
	y, m := monthArgs(year, month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.name, CAST(b.amount AS REAL),
		        COALESCE((SELECT SUM(CAST(t.amount AS REAL)) FROM transactions t
		                  WHERE t.user_id = b.user_id AND t.category_id = b.category_id
		                    AND t.type = 'expense'
		                    AND strftime('%Y', t.date) = ? AND strftime('%m', t.date) = ?), 0)
		 FROM budgets b JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ? AND b.year = ? AND b.month = ?
		 ORDER BY c.name`,
		y, m, userID, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("loading budget usages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []forecast.BudgetUsage
	for rows.Next() {
		var u forecast.BudgetUsage
		if err := rows.Scan(&u.Category, &u.Budget, &u.Spent); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CategoryHistories returns the month's top five expense categories with
// their historical monthly averages, for the insights engine.
func (s *Store) CategoryHistories(ctx context.Context, userID int64, year int, month time.Month) ([]forecast.CategoryHistory, error) {
	y, m := monthArgs(year, month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.name, SUM(CAST(t.amount AS REAL)) AS total
		 FROM transactions t JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.type = 'expense'
		   AND strftime('%Y', t.date) = ? AND strftime('%m', t.date) = ?
		 GROUP BY c.name ORDER BY total DESC LIMIT 5`,
		userID, y, m)
	if err != nil {
		return nil, fmt.Errorf("loading category totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []forecast.CategoryHistory
	for rows.Next() {
		var h forecast.CategoryHistory
		if err := rows.Scan(&h.Category, &h.Current); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(AVG(total), 0) FROM (
			   SELECT SUM(CAST(t.amount AS REAL)) AS total
			   FROM transactions t JOIN categories c ON c.id = t.category_id
			   WHERE t.user_id = ? AND t.type = 'expense' AND c.name = ?
			   GROUP BY strftime('%Y-%m', t.date))`,
			userID, out[i].Category).Scan(&out[i].Average)
		if err != nil {
			return nil, fmt.Errorf("loading category average: %w", err)
		}
	}
	return out, nil
}

// Summary aggregates one month: income, expense, net, and the per-category
// breakdown sorted by total descending.
func (s *Store) Summary(ctx context.Context, userID int64, year int, month time.Month) (*model.Summary, error) {
	income, err := s.MonthlyTotal(ctx, userID, model.TxIncome, year, month)
	if err != nil {
		return nil, err
	}
	expense, err := s.MonthlyTotal(ctx, userID, model.TxExpense, year, month)
	if err != nil {
		return nil, err
	}

	y, m := monthArgs(year, month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.name, t.type, t.amount
		 FROM transactions t JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ?
		   AND strftime('%Y', t.date) = ? AND strftime('%m', t.date) = ?`,
		userID, y, m)
	if err != nil {
		return nil, fmt.Errorf("loading summary breakdown: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type key struct {
		name string
		typ  model.TxType
	}
	totals := map[key]decimal.Decimal{}
	var order []key
	for rows.Next() {
		var name, amountStr string
		var typ model.TxType
		if err := rows.Scan(&name, &typ, &amountStr); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parsing amount %q: %w", amountStr, err)
		}

		k := key{name, typ}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] = totals[k].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary := &model.Summary{
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}
	for _, k := range order {
		summary.Categories = append(summary.Categories, model.CategoryTotal{
			Category: k.name,
			Type:     k.typ,
			Total:    totals[k],
		})
	}
	sort.SliceStable(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Total.GreaterThan(summary.Categories[j].Total)
	})
	return summary, nil
}
