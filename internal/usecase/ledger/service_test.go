package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
	"github.com/simaogato/budgetflow/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReconciler is a mock implementation of GoalReconciler for testing
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcileOne(ctx context.Context, goalID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, goalID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReconciler) ApplyContribution(ctx context.Context, goalID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, goalID, amount)
	return args.Error(0)
}

type fixture struct {
	service    *Service
	txRepo     *mocks.TransactionRepository
	goalRepo   *mocks.GoalRepository
	reconciler *MockReconciler
}

func newFixture() *fixture {
	f := &fixture{
		txRepo:     new(mocks.TransactionRepository),
		goalRepo:   new(mocks.GoalRepository),
		reconciler: new(MockReconciler),
	}
	f.service = NewService(f.txRepo, f.goalRepo, f.reconciler, nil)
	return f
}

func settings() domain.Settings {
	return domain.Settings{
		ExpenseCategories:  []string{"Food", "Rent", domain.CategoryGoalSavings},
		IncomeCategories:   []string{"Salary", "Freelance"},
		MonthlySavingsGoal: domain.DefaultMonthlySavingsGoal,
	}
}

func march(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestAddTransaction_Income(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	input := TransactionInput{
		Type:     domain.TransactionTypeIncome,
		Category: "Salary",
		Item:     "Salary",
		Amount:   decimal.NewFromInt(1000),
		Date:     time.Date(2024, 3, 1, 18, 45, 0, 0, time.UTC),
	}

	f.txRepo.On("Create", ctx, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.ID != uuid.Nil &&
			tx.Type == domain.TransactionTypeIncome &&
			tx.Date.Equal(march(1)) &&
			tx.SavingsGoalID == nil
	})).Return(nil)

	tx, err := f.service.AddTransaction(ctx, settings(), input)

	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), tx.ID.Version())
	assert.Equal(t, march(1), tx.Date, "time of day is dropped")
	f.txRepo.AssertExpectations(t)
	f.reconciler.AssertNotCalled(t, "ApplyContribution", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddTransaction_GoalSavingsAppliesContribution(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	goalID := uuid.New()

	input := TransactionInput{
		Type:          domain.TransactionTypeExpense,
		Category:      domain.CategoryGoalSavings,
		Item:          "Holiday fund",
		Amount:        decimal.NewFromInt(200),
		Date:          march(5),
		SavingsGoalID: &goalID,
	}

	f.goalRepo.On("GetByID", ctx, goalID).Return(&domain.SavingsGoal{ID: goalID, Name: "Holiday"}, nil)
	f.txRepo.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	f.reconciler.On("ApplyContribution", ctx, goalID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(200))
	})).Return(nil)

	tx, err := f.service.AddTransaction(ctx, settings(), input)

	require.NoError(t, err)
	require.NotNil(t, tx.SavingsGoalID)
	assert.Equal(t, goalID, *tx.SavingsGoalID)
	f.reconciler.AssertExpectations(t)
	f.reconciler.AssertNotCalled(t, "ReconcileOne", mock.Anything, mock.Anything)
}

func TestAddTransaction_ContributionFailureKeepsTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	goalID := uuid.New()

	f.goalRepo.On("GetByID", ctx, goalID).Return(&domain.SavingsGoal{ID: goalID}, nil)
	f.txRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.reconciler.On("ApplyContribution", ctx, goalID, mock.Anything).Return(errors.Join(domain.ErrStore, errors.New("lock timeout")))

	tx, err := f.service.AddTransaction(ctx, settings(), TransactionInput{
		Type:          domain.TransactionTypeExpense,
		Category:      domain.CategoryGoalSavings,
		Item:          "Holiday fund",
		Amount:        decimal.NewFromInt(200),
		Date:          march(5),
		SavingsGoalID: &goalID,
	})

	assert.NoError(t, err, "drift is recoverable by a full reconciliation")
	assert.NotNil(t, tx)
}

func TestAddTransaction_ValidationFailures(t *testing.T) {
	goalID := uuid.New()

	tests := []struct {
		name   string
		input  TransactionInput
		errMsg string
	}{
		{
			name:   "Non-positive amount",
			input:  TransactionInput{Type: domain.TransactionTypeExpense, Category: "Food", Item: "Lunch", Amount: decimal.Zero, Date: march(1)},
			errMsg: "amount must be positive",
		},
		{
			name:   "Category not valid for type",
			input:  TransactionInput{Type: domain.TransactionTypeIncome, Category: "Food", Item: "Lunch", Amount: decimal.NewFromInt(5), Date: march(1)},
			errMsg: "not a configured income category",
		},
		{
			name:   "Goal Savings without goal",
			input:  TransactionInput{Type: domain.TransactionTypeExpense, Category: domain.CategoryGoalSavings, Item: "Save", Amount: decimal.NewFromInt(5), Date: march(1)},
			errMsg: "a savings goal is required",
		},
		{
			name: "Blank item",
			input: TransactionInput{
				Type: domain.TransactionTypeExpense, Category: "Food", Item: "   ", Amount: decimal.NewFromInt(5), Date: march(1), SavingsGoalID: &goalID,
			},
			errMsg: "item cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture()

			tx, err := f.service.AddTransaction(ctx, settings(), tt.input)

			assert.Nil(t, tx)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.errMsg)
			f.txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAddTransaction_UnknownGoal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	goalID := uuid.New()

	f.goalRepo.On("GetByID", ctx, goalID).Return(nil, domain.ErrNotFound)

	_, err := f.service.AddTransaction(ctx, settings(), TransactionInput{
		Type:          domain.TransactionTypeExpense,
		Category:      domain.CategoryGoalSavings,
		Item:          "Save",
		Amount:        decimal.NewFromInt(10),
		Date:          march(1),
		SavingsGoalID: &goalID,
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	f.txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddTransaction_GoalDroppedForOtherCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	goalID := uuid.New()

	f.txRepo.On("Create", ctx, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.SavingsGoalID == nil
	})).Return(nil)

	tx, err := f.service.AddTransaction(ctx, settings(), TransactionInput{
		Type:          domain.TransactionTypeExpense,
		Category:      "Food",
		Item:          "Groceries",
		Amount:        decimal.NewFromInt(30),
		Date:          march(2),
		SavingsGoalID: &goalID,
	})

	require.NoError(t, err)
	assert.Nil(t, tx.SavingsGoalID)
	f.goalRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAddTransaction_StoreError(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.txRepo.On("Create", ctx, mock.Anything).Return(errors.Join(domain.ErrStore, errors.New("disk full")))

	tx, err := f.service.AddTransaction(ctx, settings(), TransactionInput{
		Type: domain.TransactionTypeExpense, Category: "Rent", Item: "Rent", Amount: decimal.NewFromInt(800), Date: march(1),
	})

	assert.Nil(t, tx)
	assert.ErrorIs(t, err, domain.ErrStore)
	f.txRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestUpdateTransaction_MovesContributionBetweenGoals(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	oldGoal := uuid.New()
	newGoal := uuid.New()
	id := uuid.New()

	existing := &domain.Transaction{
		ID: id, Type: domain.TransactionTypeExpense, Category: domain.CategoryGoalSavings,
		Item: "Save", Amount: decimal.NewFromInt(200), Date: march(5), SavingsGoalID: &oldGoal,
	}

	f.txRepo.On("GetByID", ctx, id).Return(existing, nil)
	f.goalRepo.On("GetByID", ctx, newGoal).Return(&domain.SavingsGoal{ID: newGoal}, nil)
	f.txRepo.On("Update", ctx, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.ID == id && tx.SavingsGoalID != nil && *tx.SavingsGoalID == newGoal
	})).Return(nil)
	f.reconciler.On("ReconcileOne", ctx, oldGoal).Return(decimal.Zero, nil)
	f.reconciler.On("ReconcileOne", ctx, newGoal).Return(decimal.NewFromInt(150), nil)

	tx, err := f.service.UpdateTransaction(ctx, settings(), id, TransactionInput{
		Type: domain.TransactionTypeExpense, Category: domain.CategoryGoalSavings,
		Item: "Save", Amount: decimal.NewFromInt(150), Date: march(6), SavingsGoalID: &newGoal,
	})

	require.NoError(t, err)
	assert.Equal(t, id, tx.ID)
	f.reconciler.AssertExpectations(t)
	f.reconciler.AssertNotCalled(t, "ApplyContribution", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTransaction_SameGoalReconciledOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	goalID := uuid.New()
	id := uuid.New()

	existing := &domain.Transaction{
		ID: id, Type: domain.TransactionTypeExpense, Category: domain.CategoryGoalSavings,
		Item: "Save", Amount: decimal.NewFromInt(200), Date: march(5), SavingsGoalID: &goalID,
	}

	f.txRepo.On("GetByID", ctx, id).Return(existing, nil)
	f.goalRepo.On("GetByID", ctx, goalID).Return(&domain.SavingsGoal{ID: goalID}, nil)
	f.txRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.reconciler.On("ReconcileOne", ctx, goalID).Return(decimal.NewFromInt(250), nil)

	_, err := f.service.UpdateTransaction(ctx, settings(), id, TransactionInput{
		Type: domain.TransactionTypeExpense, Category: domain.CategoryGoalSavings,
		Item: "Save", Amount: decimal.NewFromInt(250), Date: march(5), SavingsGoalID: &goalID,
	})

	require.NoError(t, err)
	f.reconciler.AssertNumberOfCalls(t, "ReconcileOne", 1)
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := uuid.New()

	f.txRepo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

	_, err := f.service.UpdateTransaction(ctx, settings(), id, TransactionInput{
		Type: domain.TransactionTypeExpense, Category: "Food", Item: "Lunch", Amount: decimal.NewFromInt(5), Date: march(1),
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.txRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateTransaction_InvalidLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := uuid.New()

	f.txRepo.On("GetByID", ctx, id).Return(&domain.Transaction{ID: id, Type: domain.TransactionTypeExpense, Category: "Food"}, nil)

	_, err := f.service.UpdateTransaction(ctx, settings(), id, TransactionInput{
		Type: domain.TransactionTypeExpense, Category: "Food", Item: "Lunch", Amount: decimal.NewFromInt(-5), Date: march(1),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	f.txRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteTransaction_RescansGoal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	goalID := uuid.New()
	id := uuid.New()

	f.txRepo.On("GetByID", ctx, id).Return(&domain.Transaction{
		ID: id, Type: domain.TransactionTypeExpense, Category: domain.CategoryGoalSavings,
		Amount: decimal.NewFromInt(200), SavingsGoalID: &goalID,
	}, nil)
	f.txRepo.On("Delete", ctx, id).Return(nil)
	f.reconciler.On("ReconcileOne", ctx, goalID).Return(decimal.Zero, nil)

	err := f.service.DeleteTransaction(ctx, id)

	require.NoError(t, err)
	f.txRepo.AssertExpectations(t)
	f.reconciler.AssertExpectations(t)
}

func TestDeleteTransaction_PlainExpense(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := uuid.New()

	f.txRepo.On("GetByID", ctx, id).Return(&domain.Transaction{ID: id, Type: domain.TransactionTypeExpense, Category: "Food"}, nil)
	f.txRepo.On("Delete", ctx, id).Return(nil)

	require.NoError(t, f.service.DeleteTransaction(ctx, id))
	f.reconciler.AssertNotCalled(t, "ReconcileOne", mock.Anything, mock.Anything)
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := uuid.New()

	f.txRepo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

	err := f.service.DeleteTransaction(ctx, id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.txRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListTransactions_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	rows := []*domain.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}
	f.txRepo.On("Count", ctx).Return(25, nil)
	f.txRepo.On("List", ctx, 10, 10).Return(rows, nil)

	page, err := f.service.ListTransactions(ctx, 2, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Transactions, 2)
}

func TestListTransactions_Defaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.txRepo.On("Count", ctx).Return(0, nil)
	f.txRepo.On("List", ctx, DefaultPerPage, 0).Return([]*domain.Transaction{}, nil)

	page, err := f.service.ListTransactions(ctx, 0, -3)

	require.NoError(t, err)
	assert.Equal(t, DefaultPage, page.Page)
	assert.Equal(t, DefaultPerPage, page.PerPage)
	assert.Equal(t, 0, page.TotalPages)
}
