// Package reconciler keeps each savings goal's saved amount equal to its
// ledger contribution.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

// Reconciler recomputes SavingsGoal.SavedAmount from the ledger.
// It writes only the saved amount and never mutates the ledger.
type Reconciler struct {
	TransactionRepo domain.TransactionRepository
	GoalRepo        domain.GoalRepository
	Logger          *slog.Logger
}

// NewReconciler creates a new Reconciler instance
func NewReconciler(transactionRepo domain.TransactionRepository, goalRepo domain.GoalRepository, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		TransactionRepo: transactionRepo,
		GoalRepo:        goalRepo,
		Logger:          logger,
	}
}

// Compute sums the Goal Savings contributions of transactions per goal.
// Every goal in goals gets an entry, zero when nothing references it.
// Contributions to goals not in goals are still returned.
func Compute(transactions []*domain.Transaction, goals []*domain.SavingsGoal) map[uuid.UUID]decimal.Decimal {
	saved := make(map[uuid.UUID]decimal.Decimal, len(goals))
	for _, goal := range goals {
		saved[goal.ID] = decimal.Zero
	}

	for _, tx := range transactions {
		goalID, ok := tx.GoalContribution()
		if !ok {
			continue
		}
		saved[goalID] = saved[goalID].Add(tx.Amount)
	}

	return saved
}

// ReconcileAll rescans the whole ledger and overwrites every goal's saved
// amount. It is idempotent and is the recovery path for drift.
func (r *Reconciler) ReconcileAll(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	goals, err := r.GoalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings goals: %w", err)
	}

	transactions, err := r.TransactionRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	saved := Compute(transactions, goals)

	result := make(map[uuid.UUID]decimal.Decimal, len(goals))
	for _, goal := range goals {
		amount := saved[goal.ID]
		if !goal.SavedAmount.Equal(amount) {
			r.Logger.InfoContext(ctx, "correcting savings goal drift",
				"goal_id", goal.ID,
				"cached", goal.SavedAmount.String(),
				"ledger", amount.String(),
			)
		}
		if err := r.GoalRepo.SetSavedAmount(ctx, goal.ID, amount); err != nil {
			return nil, fmt.Errorf("failed to set saved amount for goal %s: %w", goal.ID, err)
		}
		result[goal.ID] = amount
	}

	return result, nil
}

// ReconcileOne rescans the ledger contribution of a single goal and
// overwrites its saved amount
func (r *Reconciler) ReconcileOne(ctx context.Context, goalID uuid.UUID) (decimal.Decimal, error) {
	if _, err := r.GoalRepo.GetByID(ctx, goalID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get savings goal: %w", err)
	}

	transactions, err := r.TransactionRepo.ListByGoal(ctx, goalID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list goal transactions: %w", err)
	}

	amount := decimal.Zero
	for _, tx := range transactions {
		if id, ok := tx.GoalContribution(); ok && id == goalID {
			amount = amount.Add(tx.Amount)
		}
	}

	if err := r.GoalRepo.SetSavedAmount(ctx, goalID, amount); err != nil {
		return decimal.Zero, fmt.Errorf("failed to set saved amount for goal %s: %w", goalID, err)
	}

	r.Logger.DebugContext(ctx, "reconciled savings goal", "goal_id", goalID, "saved", amount.String())

	return amount, nil
}

// ApplyContribution adds a newly inserted contribution without rescanning.
// Only safe for inserts; edits and deletes go through ReconcileOne.
func (r *Reconciler) ApplyContribution(ctx context.Context, goalID uuid.UUID, amount decimal.Decimal) error {
	if err := r.GoalRepo.AddSavedAmount(ctx, goalID, amount); err != nil {
		return fmt.Errorf("failed to add contribution to goal %s: %w", goalID, err)
	}
	return nil
}
