// Package storetest holds the behavioural test suite every ledger store
// implementation must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
	"github.com/simaogato/budgetflow/internal/usecase/aggregate"
	"github.com/simaogato/budgetflow/internal/usecase/ledger"
	"github.com/simaogato/budgetflow/internal/usecase/reconciler"
	"github.com/simaogato/budgetflow/internal/usecase/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stores is one set of repositories backed by an empty database
type Stores struct {
	Transactions domain.TransactionRepository
	Goals        domain.GoalRepository
	Settings     domain.SettingsRepository
}

// Factory returns a fresh, empty set of stores for a single subtest
type Factory func(t *testing.T) Stores

// Run executes the full suite against the stores produced by newStores
func Run(t *testing.T, newStores Factory) {
	t.Run("TransactionRoundTrip", func(t *testing.T) { testTransactionRoundTrip(t, newStores(t)) })
	t.Run("TransactionOrdering", func(t *testing.T) { testTransactionOrdering(t, newStores(t)) })
	t.Run("ListBetweenIsHalfOpen", func(t *testing.T) { testListBetween(t, newStores(t)) })
	t.Run("UpdateAndDelete", func(t *testing.T) { testUpdateAndDelete(t, newStores(t)) })
	t.Run("Goals", func(t *testing.T) { testGoals(t, newStores(t)) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, newStores(t)) })
	t.Run("GoalSavingsLifecycle", func(t *testing.T) { testGoalSavingsLifecycle(t, newStores(t)) })
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id
}

func insert(t *testing.T, repo domain.TransactionRepository, typ domain.TransactionType, category, item, amount string, date time.Time) *domain.Transaction {
	t.Helper()
	tx := &domain.Transaction{
		ID:       newID(t),
		Type:     typ,
		Category: category,
		Item:     item,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
	}
	require.NoError(t, repo.Create(context.Background(), tx))
	return tx
}

func items(transactions []*domain.Transaction) []string {
	out := make([]string, len(transactions))
	for i, tx := range transactions {
		out[i] = tx.Item
	}
	return out
}

func testTransactionRoundTrip(t *testing.T, s Stores) {
	ctx := context.Background()
	goal := &domain.SavingsGoal{ID: newID(t), Name: "Holiday", TargetAmount: decimal.NewFromInt(1000), SavedAmount: decimal.Zero}
	require.NoError(t, s.Goals.Create(ctx, goal))

	goalID := goal.ID
	want := &domain.Transaction{
		ID:            newID(t),
		Type:          domain.TransactionTypeExpense,
		Category:      domain.CategoryGoalSavings,
		Item:          "Transfer to holiday fund",
		Amount:        decimal.RequireFromString("1234.5678"),
		Date:          day(2024, 2, 29),
		Description:   "leap day ✈",
		SavingsGoalID: &goalID,
	}
	require.NoError(t, s.Transactions.Create(ctx, want))

	got, err := s.Transactions.GetByID(ctx, want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Type, got.Type)
	assert.Equal(t, want.Category, got.Category)
	assert.Equal(t, want.Item, got.Item)
	assert.True(t, want.Amount.Equal(got.Amount), "amount %s != %s", want.Amount, got.Amount)
	assert.True(t, want.Date.Equal(got.Date), "date %s != %s", want.Date, got.Date)
	assert.Equal(t, want.Description, got.Description)
	require.NotNil(t, got.SavingsGoalID)
	assert.Equal(t, goalID, *got.SavingsGoalID)

	income := insert(t, s.Transactions, domain.TransactionTypeIncome, "Salary", "Salary", "1000", day(2024, 3, 1))
	got, err = s.Transactions.GetByID(ctx, income.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SavingsGoalID)

	_, err = s.Transactions.GetByID(ctx, newID(t))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testTransactionOrdering(t *testing.T, s Stores) {
	ctx := context.Background()
	insert(t, s.Transactions, domain.TransactionTypeExpense, "Food", "a", "1", day(2024, 3, 5))
	insert(t, s.Transactions, domain.TransactionTypeExpense, "Food", "b", "1", day(2024, 3, 5))
	insert(t, s.Transactions, domain.TransactionTypeExpense, "Food", "c", "1", day(2024, 3, 20))
	insert(t, s.Transactions, domain.TransactionTypeExpense, "Food", "d", "1", day(2024, 3, 1))

	all, err := s.Transactions.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a", "d"}, items(all))

	page, err := s.Transactions.List(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, items(page))

	count, err := s.Transactions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func testListBetween(t *testing.T, s Stores) {
	ctx := context.Background()
	insert(t, s.Transactions, domain.TransactionTypeIncome, "Salary", "before", "1", day(2024, 2, 29))
	insert(t, s.Transactions, domain.TransactionTypeIncome, "Salary", "first", "1", day(2024, 3, 1))
	insert(t, s.Transactions, domain.TransactionTypeIncome, "Salary", "last", "1", day(2024, 3, 31))
	insert(t, s.Transactions, domain.TransactionTypeIncome, "Salary", "after", "1", day(2024, 4, 1))

	got, err := s.Transactions.ListBetween(ctx, day(2024, 3, 1), day(2024, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"last", "first"}, items(got))

	empty, err := s.Transactions.ListBetween(ctx, day(2023, 1, 1), day(2023, 2, 1))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testUpdateAndDelete(t *testing.T, s Stores) {
	ctx := context.Background()
	tx := insert(t, s.Transactions, domain.TransactionTypeExpense, "Food", "Groceries", "40", day(2024, 3, 2))

	tx.Item = "Market"
	tx.Amount = decimal.RequireFromString("41.99")
	tx.Date = day(2024, 3, 3)
	require.NoError(t, s.Transactions.Update(ctx, tx))

	got, err := s.Transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Market", got.Item)
	assert.True(t, decimal.RequireFromString("41.99").Equal(got.Amount))
	assert.True(t, day(2024, 3, 3).Equal(got.Date))

	require.NoError(t, s.Transactions.Delete(ctx, tx.ID))
	_, err = s.Transactions.GetByID(ctx, tx.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.Transactions.Delete(ctx, tx.ID), domain.ErrNotFound)
	assert.ErrorIs(t, s.Transactions.Update(ctx, tx), domain.ErrNotFound)
}

func testGoals(t *testing.T, s Stores) {
	ctx := context.Background()
	car := &domain.SavingsGoal{ID: newID(t), Name: "Car", TargetAmount: decimal.NewFromInt(5000), SavedAmount: decimal.Zero}
	bike := &domain.SavingsGoal{ID: newID(t), Name: "Bike", TargetAmount: decimal.NewFromInt(400), SavedAmount: decimal.Zero}
	require.NoError(t, s.Goals.Create(ctx, car))
	require.NoError(t, s.Goals.Create(ctx, bike))

	goals, err := s.Goals.List(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "Bike", goals[0].Name)
	assert.Equal(t, "Car", goals[1].Name)

	require.NoError(t, s.Goals.AddSavedAmount(ctx, car.ID, decimal.RequireFromString("10.10")))
	require.NoError(t, s.Goals.AddSavedAmount(ctx, car.ID, decimal.RequireFromString("0.20")))
	got, err := s.Goals.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.30").Equal(got.SavedAmount), "saved %s", got.SavedAmount)

	require.NoError(t, s.Goals.SetSavedAmount(ctx, car.ID, decimal.NewFromInt(7)))
	got, err = s.Goals.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(got.SavedAmount))

	missing := newID(t)
	_, err = s.Goals.GetByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Goals.SetSavedAmount(ctx, missing, decimal.Zero), domain.ErrNotFound)
	assert.ErrorIs(t, s.Goals.AddSavedAmount(ctx, missing, decimal.NewFromInt(1)), domain.ErrNotFound)
}

func testSettings(t *testing.T, s Stores) {
	ctx := context.Background()

	has, err := s.Settings.HasMonthlySavingsGoal(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	settings, err := s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.True(t, domain.DefaultMonthlySavingsGoal.Equal(settings.MonthlySavingsGoal))
	assert.Empty(t, settings.ExpenseCategories)

	require.NoError(t, s.Settings.SetMonthlySavingsGoal(ctx, decimal.RequireFromString("250.50")))
	require.NoError(t, s.Settings.SetMonthlySavingsGoal(ctx, decimal.RequireFromString("300")))
	has, err = s.Settings.HasMonthlySavingsGoal(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.Settings.AddCategory(ctx, domain.TransactionTypeExpense, "Rent"))
	require.NoError(t, s.Settings.AddCategory(ctx, domain.TransactionTypeExpense, "Food"))
	require.NoError(t, s.Settings.AddCategory(ctx, domain.TransactionTypeExpense, "Food"))
	require.NoError(t, s.Settings.AddCategory(ctx, domain.TransactionTypeIncome, "Other"))
	require.NoError(t, s.Settings.AddCategory(ctx, domain.TransactionTypeExpense, "Other"))

	settings, err = s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(settings.MonthlySavingsGoal))
	assert.Equal(t, []string{"Food", "Other", "Rent"}, settings.ExpenseCategories)
	assert.Equal(t, []string{"Other"}, settings.IncomeCategories)

	require.NoError(t, s.Settings.RenameCategory(ctx, domain.TransactionTypeExpense, "Food", "Groceries"))
	require.NoError(t, s.Settings.DeleteCategory(ctx, domain.TransactionTypeExpense, "Other"))
	assert.ErrorIs(t, s.Settings.DeleteCategory(ctx, domain.TransactionTypeExpense, "Other"), domain.ErrNotFound)
	assert.ErrorIs(t, s.Settings.RenameCategory(ctx, domain.TransactionTypeIncome, "Food", "x"), domain.ErrNotFound)

	settings, err = s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries", "Rent"}, settings.ExpenseCategories)
	assert.Equal(t, []string{"Other"}, settings.IncomeCategories, "income categories are independent of expense ones")
}

// testGoalSavingsLifecycle records a salary and a goal contribution, reports on
// March 2024, reconciles the goal, then deletes the contribution again.
func testGoalSavingsLifecycle(t *testing.T, s Stores) {
	ctx := context.Background()
	rec := reconciler.NewReconciler(s.Transactions, s.Goals, nil)
	svc := ledger.NewService(s.Transactions, s.Goals, rec, nil)
	assembler := report.NewAssembler(aggregate.NewEngine(s.Transactions, nil))

	settings := domain.Settings{
		ExpenseCategories: []string{domain.CategoryGoalSavings, "Food"},
		IncomeCategories:  []string{"Salary"},
	}

	goal := &domain.SavingsGoal{ID: newID(t), Name: "G1", TargetAmount: decimal.NewFromInt(1000), SavedAmount: decimal.Zero}
	require.NoError(t, s.Goals.Create(ctx, goal))

	_, err := svc.AddTransaction(ctx, settings, ledger.TransactionInput{
		Type:     domain.TransactionTypeIncome,
		Category: "Salary",
		Item:     "Salary",
		Amount:   decimal.NewFromInt(1000),
		Date:     day(2024, 3, 1),
	})
	require.NoError(t, err)

	goalID := goal.ID
	saving, err := svc.AddTransaction(ctx, settings, ledger.TransactionInput{
		Type:          domain.TransactionTypeExpense,
		Category:      domain.CategoryGoalSavings,
		Item:          "Transfer",
		Amount:        decimal.NewFromInt(200),
		Date:          day(2024, 3, 5),
		SavingsGoalID: &goalID,
	})
	require.NoError(t, err)

	r, err := assembler.BuildReport(ctx, report.Request{Period: "custom", StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(r.TotalIncome))
	assert.True(t, decimal.NewFromInt(200).Equal(r.TotalExpense))
	assert.True(t, decimal.NewFromInt(200).Equal(r.TotalGoalSavings))
	assert.True(t, decimal.NewFromInt(800).Equal(r.Balance))
	assert.Equal(t, "2024-03-31", r.EndDate)

	saved, err := rec.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(saved[goalID]))

	stored, err := s.Goals.GetByID(ctx, goalID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(stored.SavedAmount))

	// Drift is corrected by a full rescan, repeatedly
	require.NoError(t, s.Goals.SetSavedAmount(ctx, goalID, decimal.NewFromInt(999)))
	for i := 0; i < 2; i++ {
		_, err = rec.ReconcileAll(ctx)
		require.NoError(t, err)
		stored, err = s.Goals.GetByID(ctx, goalID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(200).Equal(stored.SavedAmount))
	}

	require.NoError(t, svc.DeleteTransaction(ctx, saving.ID))
	_, err = rec.ReconcileAll(ctx)
	require.NoError(t, err)

	stored, err = s.Goals.GetByID(ctx, goalID)
	require.NoError(t, err)
	assert.True(t, stored.SavedAmount.IsZero(), "saved %s", stored.SavedAmount)
}
