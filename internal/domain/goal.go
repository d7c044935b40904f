package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingsGoal represents a named savings target.
// SavedAmount is derived from the ledger and only written by the reconciler.
type SavingsGoal struct {
	ID           uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
}

// Validate ensures the goal definition adheres to domain rules
func (g *SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: savings goal name cannot be empty", ErrValidation)
	}

	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: savings goal target must be positive", ErrValidation)
	}

	if g.SavedAmount.IsNegative() {
		return fmt.Errorf("%w: saved amount cannot be negative", ErrValidation)
	}

	return nil
}

// Progress returns SavedAmount as a fraction of TargetAmount
func (g *SavingsGoal) Progress() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	return g.SavedAmount.Div(g.TargetAmount)
}
