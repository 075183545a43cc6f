package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

// CreateCategory adds a category for the user and returns its id.
func (s *Store) CreateCategory(ctx context.Context, userID int64, name string, txType model.TxType) (int64, error) {
	if !txType.Valid() {
		return 0, fmt.Errorf("store: invalid category type %q", txType)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type) VALUES (?, ?, ?)`,
		userID, name, txType)
	if err != nil {
		return 0, fmt.Errorf("creating category: %w", err)
	}
	return res.LastInsertId()
}

// Categories returns all of the user's categories ordered by name.
func (s *Store) Categories(ctx context.Context, userID int64) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddTransaction inserts a transaction and fills in its id. A zero date
// defaults to now.
func (s *Store) AddTransaction(ctx context.Context, tx *model.Transaction) error {
	if !tx.Type.Valid() {
		return fmt.Errorf("store: invalid transaction type %q", tx.Type)
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, amount, type, description, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.CategoryID, tx.Amount.String(), tx.Type, tx.Description,
		tx.Date.UTC().Format(time.RFC3339), now, now)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	tx.ID, err = res.LastInsertId()
	return err
}

// Transactions returns the user's transactions, newest first. limit <= 0
// means no limit.
func (s *Store) Transactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	query := `SELECT t.id, t.category_id, c.name, t.amount, t.type, t.description, t.date
		FROM transactions t JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? ORDER BY t.date DESC, t.id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(r rowScanner, userID int64) (*model.Transaction, error) {
	var tx model.Transaction
	var amountStr, dateStr string
	if err := r.Scan(&tx.ID, &tx.CategoryID, &tx.Category, &amountStr, &tx.Type, &tx.Description, &dateStr); err != nil {
		return nil, err
	}
	tx.UserID = userID

	var err error
	tx.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amountStr, err)
	}
	tx.Date, err = time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", dateStr, err)
	}
	return &tx, nil
}

// FindRecentTransaction returns the newest transaction from the last 30
// days matching the optional category name and amount. Returns (nil, nil)
// when nothing matches.
func (s *Store) FindRecentTransaction(ctx context.Context, userID int64, category string, amount *decimal.Decimal) (*model.Transaction, error) {
	query := `SELECT t.id, t.category_id, c.name, t.amount, t.type, t.description, t.date
		FROM transactions t JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.date >= ?`
	args := []any{userID, time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339)}

	if category != "" {
		query += ` AND c.name = ? COLLATE NOCASE`
		args = append(args, category)
	}
	if amount != nil {
		query += ` AND CAST(t.amount AS REAL) = ?`
		f, _ := amount.Float64()
		args = append(args, f)
	}
	query += ` ORDER BY t.date DESC, t.id DESC LIMIT 1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, args...), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransactionAmount changes a transaction's amount.
func (s *Store) UpdateTransactionAmount(ctx context.Context, userID, txID int64, amount decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET amount = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		amount.String(), time.Now().UTC().Format(time.RFC3339), txID, userID)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, userID, txID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, txID, userID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
