package reconciler

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

func goalSaving(goalID uuid.UUID, amount string) *domain.Transaction {
	id := goalID
	return &domain.Transaction{
		ID:            uuid.New(),
		Type:          domain.TransactionTypeExpense,
		Category:      domain.CategoryGoalSavings,
		Item:          "Transfer to goal",
		Amount:        decimal.RequireFromString(amount),
		Date:          time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		SavingsGoalID: &id,
	}
}

func decimalEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString(want))
	})
}

func TestCompute(t *testing.T) {
	g1 := uuid.New()
	g2 := uuid.New()
	unknown := uuid.New()

	transactions := []*domain.Transaction{
		goalSaving(g1, "200"),
		goalSaving(g1, "50.5"),
		goalSaving(unknown, "10"),
		{Type: domain.TransactionTypeExpense, Category: domain.CategoryGeneralSavings, Amount: decimal.NewFromInt(999)},
		{Type: domain.TransactionTypeIncome, Category: "Salary", Amount: decimal.NewFromInt(1000)},
	}
	goals := []*domain.SavingsGoal{{ID: g1}, {ID: g2}}

	saved := Compute(transactions, goals)

	assert.True(t, decimal.RequireFromString("250.5").Equal(saved[g1]))
	require.Contains(t, saved, g2)
	assert.True(t, saved[g2].IsZero(), "goals without contributions reconcile to zero")
	assert.True(t, decimal.NewFromInt(10).Equal(saved[unknown]))
}

func TestReconcileAll(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(mocks.TransactionRepository)
	mockGoalRepo := new(mocks.GoalRepository)
	r := NewReconciler(mockTxRepo, mockGoalRepo, nil)

	g1 := uuid.New()
	g2 := uuid.New()
	goals := []*domain.SavingsGoal{
		{ID: g1, Name: "Holiday", TargetAmount: decimal.NewFromInt(1000), SavedAmount: decimal.NewFromInt(350)}, // drifted
		{ID: g2, Name: "Car", TargetAmount: decimal.NewFromInt(5000), SavedAmount: decimal.NewFromInt(25)},
	}

	mockGoalRepo.On("List", ctx).Return(goals, nil)
	mockTxRepo.On("List", ctx, 0, 0).Return([]*domain.Transaction{goalSaving(g1, "200")}, nil)
	mockGoalRepo.On("SetSavedAmount", ctx, g1, decimalEq("200")).Return(nil)
	mockGoalRepo.On("SetSavedAmount", ctx, g2, decimalEq("0")).Return(nil)

	result, err := r.ReconcileAll(ctx)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(result[g1]))
	assert.True(t, result[g2].IsZero())
	mockGoalRepo.AssertExpectations(t)
	mockTxRepo.AssertExpectations(t)
}

func TestReconcileAll_Idempotent(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(mocks.TransactionRepository)
	mockGoalRepo := new(mocks.GoalRepository)
	r := NewReconciler(mockTxRepo, mockGoalRepo, nil)

	g1 := uuid.New()
	mockGoalRepo.On("List", ctx).Return([]*domain.SavingsGoal{{ID: g1, SavedAmount: decimal.NewFromInt(75)}}, nil)
	mockTxRepo.On("List", ctx, 0, 0).Return([]*domain.Transaction{goalSaving(g1, "25"), goalSaving(g1, "50")}, nil)
	mockGoalRepo.On("SetSavedAmount", ctx, g1, decimalEq("75")).Return(nil)

	first, err := r.ReconcileAll(ctx)
	require.NoError(t, err)
	second, err := r.ReconcileAll(ctx)
	require.NoError(t, err)

	assert.True(t, first[g1].Equal(second[g1]))
	mockGoalRepo.AssertNumberOfCalls(t, "SetSavedAmount", 2)
}

func TestReconcileAll_StoreErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.Join(domain.ErrStore, errors.New("boom"))

	t.Run("goal listing fails", func(t *testing.T) {
		mockTxRepo := new(mocks.TransactionRepository)
		mockGoalRepo := new(mocks.GoalRepository)
		r := NewReconciler(mockTxRepo, mockGoalRepo, nil)

		mockGoalRepo.On("List", ctx).Return(nil, storeErr)

		_, err := r.ReconcileAll(ctx)
		assert.ErrorIs(t, err, domain.ErrStore)
		mockTxRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("write fails", func(t *testing.T) {
		mockTxRepo := new(mocks.TransactionRepository)
		mockGoalRepo := new(mocks.GoalRepository)
		r := NewReconciler(mockTxRepo, mockGoalRepo, nil)

		g1 := uuid.New()
		mockGoalRepo.On("List", ctx).Return([]*domain.SavingsGoal{{ID: g1}}, nil)
		mockTxRepo.On("List", ctx, 0, 0).Return([]*domain.Transaction{}, nil)
		mockGoalRepo.On("SetSavedAmount", ctx, g1, mock.Anything).Return(storeErr)

		_, err := r.ReconcileAll(ctx)
		assert.ErrorIs(t, err, domain.ErrStore)
	})
}

func TestReconcileOne(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(mocks.TransactionRepository)
	mockGoalRepo := new(mocks.GoalRepository)
	r := NewReconciler(mockTxRepo, mockGoalRepo, nil)

	g1 := uuid.New()
	mockGoalRepo.On("GetByID", ctx, g1).Return(&domain.SavingsGoal{ID: g1}, nil)
	mockTxRepo.On("ListByGoal", ctx, g1).Return([]*domain.Transaction{goalSaving(g1, "120"), goalSaving(g1, "30")}, nil)
	mockGoalRepo.On("SetSavedAmount", ctx, g1, decimalEq("150")).Return(nil)

	amount, err := r.ReconcileOne(ctx, g1)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(amount))
	mockGoalRepo.AssertExpectations(t)
}

func TestReconcileOne_GoalNotFound(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(mocks.TransactionRepository)
	mockGoalRepo := new(mocks.GoalRepository)
	r := NewReconciler(mockTxRepo, mockGoalRepo, nil)

	g1 := uuid.New()
	mockGoalRepo.On("GetByID", ctx, g1).Return(nil, domain.ErrNotFound)

	_, err := r.ReconcileOne(ctx, g1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockTxRepo.AssertNotCalled(t, "ListByGoal", mock.Anything, mock.Anything)
	mockGoalRepo.AssertNotCalled(t, "SetSavedAmount", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyContribution(t *testing.T) {
	ctx := context.Background()
	mockTxRepo := new(mocks.TransactionRepository)
	mockGoalRepo := new(mocks.GoalRepository)
	r := NewReconciler(mockTxRepo, mockGoalRepo, nil)

	g1 := uuid.New()
	mockGoalRepo.On("AddSavedAmount", ctx, g1, decimalEq("42.5")).Return(nil)

	err := r.ApplyContribution(ctx, g1, decimal.RequireFromString("42.5"))

	assert.NoError(t, err)
	mockGoalRepo.AssertExpectations(t)
	mockTxRepo.AssertNotCalled(t, "ListByGoal", mock.Anything, mock.Anything)
}
