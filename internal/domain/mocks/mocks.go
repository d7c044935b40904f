// Package mocks provides testify mocks of the domain repositories.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
	"github.com/stretchr/testify/mock"
)

// TransactionRepository is a mock implementation of domain.TransactionRepository
type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *TransactionRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *TransactionRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *TransactionRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*domain.Transaction, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GoalRepository is a mock implementation of domain.GoalRepository
type GoalRepository struct {
	mock.Mock
}

func (m *GoalRepository) Create(ctx context.Context, goal *domain.SavingsGoal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *GoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingsGoal), args.Error(1)
}

func (m *GoalRepository) List(ctx context.Context) ([]*domain.SavingsGoal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SavingsGoal), args.Error(1)
}

func (m *GoalRepository) SetSavedAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *GoalRepository) AddSavedAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// SettingsRepository is a mock implementation of domain.SettingsRepository
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *SettingsRepository) HasMonthlySavingsGoal(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *SettingsRepository) SetMonthlySavingsGoal(ctx context.Context, amount decimal.Decimal) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *SettingsRepository) AddCategory(ctx context.Context, t domain.TransactionType, name string) error {
	args := m.Called(ctx, t, name)
	return args.Error(0)
}

func (m *SettingsRepository) DeleteCategory(ctx context.Context, t domain.TransactionType, name string) error {
	args := m.Called(ctx, t, name)
	return args.Error(0)
}

func (m *SettingsRepository) RenameCategory(ctx context.Context, t domain.TransactionType, oldName, newName string) error {
	args := m.Called(ctx, t, oldName, newName)
	return args.Error(0)
}
