package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "spendlens.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store) int64 {
	t.Helper()
	id, err := s.CreateUser(context.Background(), "dev", "hunter2")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return id
}

func seedCategory(t *testing.T, s *Store, userID int64, name string, typ model.TxType) int64 {
	t.Helper()
	id, err := s.CreateCategory(context.Background(), userID, name, typ)
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", name, err)
	}
	return id
}

func addTx(t *testing.T, s *Store, userID, catID int64, amount string, typ model.TxType, date time.Time) *model.Transaction {
	t.Helper()
	tx := &model.Transaction{
		UserID:      userID,
		CategoryID:  catID,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Description: "test",
		Date:        date,
	}
	if err := s.AddTransaction(context.Background(), tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	return tx
}

func TestAuthenticateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)

	got, err := s.Authenticate(ctx, "dev", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got != userID {
		t.Fatalf("user id = %d, want %d", got, userID)
	}

	if _, err := s.Authenticate(ctx, "dev", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password err = %v, want ErrBadCredentials", err)
	}
	if _, err := s.Authenticate(ctx, "nobody", "x"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown user err = %v, want ErrBadCredentials", err)
	}
}

func TestTokenLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)

	token, err := s.CreateToken(ctx, userID, time.Hour)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	got, err := s.UserForToken(ctx, token)
	if err != nil {
		t.Fatalf("UserForToken: %v", err)
	}
	if got != userID {
		t.Fatalf("user id = %d, want %d", got, userID)
	}

	if _, err := s.UserForToken(ctx, "not-a-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown token err = %v, want ErrNotFound", err)
	}

	expired, err := s.CreateToken(ctx, userID, -time.Minute)
	if err != nil {
		t.Fatalf("CreateToken expired: %v", err)
	}
	if _, err := s.UserForToken(ctx, expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token err = %v, want ErrTokenExpired", err)
	}

	if err := s.DeleteToken(ctx, token); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, err := s.UserForToken(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoked token err = %v, want ErrNotFound", err)
	}
}

func TestTransactionCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)
	food := seedCategory(t, s, userID, "Food", model.TxExpense)

	tx := addTx(t, s, userID, food, "1200", model.TxExpense, time.Now().UTC())
	if tx.ID == 0 {
		t.Fatal("transaction id not set")
	}

	list, err := s.Transactions(ctx, userID, 10)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(list) != 1 || list[0].Category != "Food" {
		t.Fatalf("list = %+v", list)
	}
	if !list[0].Amount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("amount = %s", list[0].Amount)
	}

	if err := s.UpdateTransactionAmount(ctx, userID, tx.ID, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("UpdateTransactionAmount: %v", err)
	}
	list, _ = s.Transactions(ctx, userID, 10)
	if !list[0].Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("amount after update = %s", list[0].Amount)
	}

	if err := s.DeleteTransaction(ctx, userID, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteTransaction(ctx, userID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestFindRecentTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)
	food := seedCategory(t, s, userID, "Food", model.TxExpense)
	transport := seedCategory(t, s, userID, "Transport", model.TxExpense)

	now := time.Now().UTC()
	addTx(t, s, userID, food, "1200", model.TxExpense, now.Add(-48*time.Hour))
	want := addTx(t, s, userID, food, "1200", model.TxExpense, now.Add(-time.Hour))
	addTx(t, s, userID, transport, "300", model.TxExpense, now)
	// Too old to be matched.
	addTx(t, s, userID, food, "1200", model.TxExpense, now.AddDate(0, 0, -40))

	amount := decimal.NewFromInt(1200)
	got, err := s.FindRecentTransaction(ctx, userID, "food", &amount)
	if err != nil {
		t.Fatalf("FindRecentTransaction: %v", err)
	}
	if got == nil || got.ID != want.ID {
		t.Fatalf("got %+v, want id %d", got, want.ID)
	}

	missing, err := s.FindRecentTransaction(ctx, userID, "Rent", nil)
	if err != nil {
		t.Fatalf("FindRecentTransaction(Rent): %v", err)
	}
	if missing != nil {
		t.Fatalf("got %+v, want nil", missing)
	}
}

func TestMonthlyTotalIsExact(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)
	food := seedCategory(t, s, userID, "Food", model.TxExpense)

	now := time.Now().UTC()
	addTx(t, s, userID, food, "0.10", model.TxExpense, now)
	addTx(t, s, userID, food, "0.20", model.TxExpense, now)
	// Previous month is excluded.
	addTx(t, s, userID, food, "99", model.TxExpense, now.AddDate(0, -1, 0))

	total, err := s.MonthlyTotal(ctx, userID, model.TxExpense, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("MonthlyTotal: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("total = %s, want 0.30", total)
	}
}

func TestMonthlyHistoryOldestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)
	food := seedCategory(t, s, userID, "Food", model.TxExpense)

	now := time.Now().UTC()
	addTx(t, s, userID, food, "100", model.TxExpense, now.AddDate(0, -2, 0))
	addTx(t, s, userID, food, "200", model.TxExpense, now.AddDate(0, -1, 0))
	addTx(t, s, userID, food, "300", model.TxExpense, now)

	hist, err := s.MonthlyHistory(ctx, userID, model.TxExpense, 12)
	if err != nil {
		t.Fatalf("MonthlyHistory: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("history = %v, want 3 months", hist)
	}
	if hist[0] != 100 || hist[2] != 300 {
		t.Fatalf("history = %v, want oldest first", hist)
	}
}

func TestBudgetUsages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)
	food := seedCategory(t, s, userID, "Food", model.TxExpense)
	transport := seedCategory(t, s, userID, "Transport", model.TxExpense)

	now := time.Now().UTC()
	if err := s.SetBudget(ctx, userID, &model.Budget{
		CategoryID: food, Amount: decimal.NewFromInt(1000),
		Month: int(now.Month()), Year: now.Year(),
	}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if err := s.SetBudget(ctx, userID, &model.Budget{
		CategoryID: transport, Amount: decimal.NewFromInt(800),
		Month: int(now.Month()), Year: now.Year(),
	}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	addTx(t, s, userID, food, "1200", model.TxExpense, now)

	usages, err := s.BudgetUsages(ctx, userID, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("BudgetUsages: %v", err)
	}
	if len(usages) != 2 {
		t.Fatalf("usages = %+v", usages)
	}
	if usages[0].Category != "Food" || usages[0].Spent != 1200 || usages[0].Budget != 1000 {
		t.Fatalf("food usage = %+v", usages[0])
	}
	if usages[1].Category != "Transport" || usages[1].Spent != 0 {
		t.Fatalf("transport usage = %+v", usages[1])
	}
}

func TestSetBudgetUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)
	food := seedCategory(t, s, userID, "Food", model.TxExpense)

	now := time.Now().UTC()
	b := &model.Budget{CategoryID: food, Amount: decimal.NewFromInt(1000), Month: int(now.Month()), Year: now.Year()}
	if err := s.SetBudget(ctx, userID, b); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("budget id not set on insert")
	}
	firstID := b.ID

	// Other inserts on the same connection must not leak their rowids into
	// the update path.
	addTx(t, s, userID, food, "100", model.TxExpense, now)
	addTx(t, s, userID, food, "200", model.TxExpense, now)
	addTx(t, s, userID, food, "300", model.TxExpense, now)

	b.Amount = decimal.NewFromInt(1500)
	if err := s.SetBudget(ctx, userID, b); err != nil {
		t.Fatalf("SetBudget upsert: %v", err)
	}
	if b.ID != firstID {
		t.Fatalf("budget id after upsert = %d, want %d", b.ID, firstID)
	}

	budgets, err := s.Budgets(ctx, userID, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(budgets) != 1 || !budgets[0].Amount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("budgets = %+v", budgets)
	}
	if budgets[0].ID != firstID {
		t.Fatalf("stored budget id = %d, want %d", budgets[0].ID, firstID)
	}
}

func TestSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := seedUser(t, s)
	food := seedCategory(t, s, userID, "Food", model.TxExpense)
	salary := seedCategory(t, s, userID, "Salary", model.TxIncome)

	now := time.Now().UTC()
	addTx(t, s, userID, salary, "5000", model.TxIncome, now)
	addTx(t, s, userID, food, "1200.50", model.TxExpense, now)

	sum, err := s.Summary(ctx, userID, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !sum.Income.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("income = %s", sum.Income)
	}
	if !sum.Expense.Equal(decimal.RequireFromString("1200.50")) {
		t.Fatalf("expense = %s", sum.Expense)
	}
	if !sum.Net.Equal(decimal.RequireFromString("3799.50")) {
		t.Fatalf("net = %s", sum.Net)
	}
	if len(sum.Categories) != 2 || sum.Categories[0].Category != "Salary" {
		t.Fatalf("categories = %+v", sum.Categories)
	}
}
