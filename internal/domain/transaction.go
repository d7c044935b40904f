package domain

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Reserved category names the core gives meaning to
const (
	// CategoryGoalSavings is an expense category whose rows must reference a SavingsGoal
	CategoryGoalSavings = "Goal Savings"
	// CategoryGeneralSavings is an expense category for savings not linked to a goal
	CategoryGeneralSavings = "General Savings"
)

// DateLayout is the calendar date format used for storage and display
const DateLayout = "2006-01-02"

// Transaction represents a single income or expense record in the ledger
type Transaction struct {
	ID            uuid.UUID
	Type          TransactionType
	Category      string
	Item          string
	Amount        decimal.Decimal // Always positive
	Date          time.Time       // Calendar date at UTC midnight
	Description   string
	SavingsGoalID *uuid.UUID // Set only for the Goal Savings category
}

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// DateOf truncates t to its calendar date, expressed at UTC midnight.
// The calendar date is read in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Normalize trims free-text fields, truncates the date and drops the goal
// reference from rows that are not Goal Savings
func (t *Transaction) Normalize() {
	t.Category = strings.TrimSpace(t.Category)
	t.Item = strings.TrimSpace(t.Item)
	t.Description = strings.TrimSpace(t.Description)
	if !t.Date.IsZero() {
		t.Date = DateOf(t.Date)
	}
	if t.Category != CategoryGoalSavings {
		t.SavingsGoalID = nil
	}
}

// Validate ensures the transaction adheres to domain rules against the given
// settings snapshot. Returns an error wrapping ErrValidation if it fails.
func (t *Transaction) Validate(settings Settings) error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: transaction type must be income or expense", ErrValidation)
	}

	if t.Item == "" {
		return fmt.Errorf("%w: item cannot be empty", ErrValidation)
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}

	if !settings.HasCategory(t.Type, t.Category) {
		return fmt.Errorf("%w: category %q is not a configured %s category", ErrValidation, t.Category, t.Type)
	}

	if t.Category == CategoryGoalSavings {
		if t.Type != TransactionTypeExpense {
			return fmt.Errorf("%w: %s category is only valid for expenses", ErrValidation, CategoryGoalSavings)
		}
		if t.SavingsGoalID == nil {
			return fmt.Errorf("%w: a savings goal is required for the %s category", ErrValidation, CategoryGoalSavings)
		}
	} else if t.SavingsGoalID != nil {
		return fmt.Errorf("%w: only %s transactions may reference a savings goal", ErrValidation, CategoryGoalSavings)
	}

	return nil
}

// GoalContribution returns the goal this transaction counts towards, if any
func (t *Transaction) GoalContribution() (uuid.UUID, bool) {
	if t.Type != TransactionTypeExpense || t.Category != CategoryGoalSavings || t.SavingsGoalID == nil {
		return uuid.Nil, false
	}
	return *t.SavingsGoalID, true
}

// NewerThan orders transactions newest-first: date descending, then id descending
func (t *Transaction) NewerThan(other *Transaction) bool {
	if !t.Date.Equal(other.Date) {
		return t.Date.After(other.Date)
	}
	return bytes.Compare(t.ID[:], other.ID[:]) > 0
}
