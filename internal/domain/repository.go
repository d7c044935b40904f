package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for ledger persistence operations.
// Every method is atomic; store failures wrap ErrStore.
type TransactionRepository interface {
	// Create inserts a new transaction. The caller assigns the ID.
	Create(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction by its ID
	// Returns an error wrapping ErrNotFound if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// List retrieves transactions ordered by date desc, id desc
	// If limit <= 0, all transactions from offset onwards are returned
	List(ctx context.Context, limit, offset int) ([]*Transaction, error)

	// Count returns the total number of transactions
	Count(ctx context.Context) (int, error)

	// ListBetween retrieves transactions with start <= date < end, newest first
	ListBetween(ctx context.Context, start, end time.Time) ([]*Transaction, error)

	// ListByGoal retrieves every transaction referencing the given savings goal
	ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*Transaction, error)

	// Update replaces every mutable field of an existing transaction
	// Returns an error wrapping ErrNotFound if it does not exist
	Update(ctx context.Context, tx *Transaction) error

	// Delete removes a transaction by its ID
	// Returns an error wrapping ErrNotFound if it does not exist
	Delete(ctx context.Context, id uuid.UUID) error
}

// GoalRepository defines the interface for savings goal persistence operations
type GoalRepository interface {
	// Create creates a new savings goal
	Create(ctx context.Context, goal *SavingsGoal) error

	// GetByID retrieves a savings goal by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*SavingsGoal, error)

	// List retrieves all savings goals ordered by name
	List(ctx context.Context) ([]*SavingsGoal, error)

	// SetSavedAmount overwrites the cached saved amount of a goal
	SetSavedAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// AddSavedAmount atomically adds delta to the cached saved amount of a goal
	AddSavedAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

// SettingsRepository defines the interface for the persisted settings
type SettingsRepository interface {
	// Get returns a snapshot of the current settings, categories ordered by name
	Get(ctx context.Context) (*Settings, error)

	// HasMonthlySavingsGoal reports whether a savings target has been stored
	HasMonthlySavingsGoal(ctx context.Context) (bool, error)

	// SetMonthlySavingsGoal stores the monthly savings target
	SetMonthlySavingsGoal(ctx context.Context, amount decimal.Decimal) error

	// AddCategory adds a category for the given type; existing names are left untouched
	AddCategory(ctx context.Context, t TransactionType, name string) error

	// DeleteCategory removes a category for the given type
	DeleteCategory(ctx context.Context, t TransactionType, name string) error

	// RenameCategory renames a category for the given type
	RenameCategory(ctx context.Context, t TransactionType, oldName, newName string) error
}
