package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMonthlySavingsGoal is used when no target has been stored
var DefaultMonthlySavingsGoal = decimal.NewFromInt(100)

// Settings is a snapshot of the user-configured settings.
// It is read once per request and passed explicitly into validation.
type Settings struct {
	ExpenseCategories  []string
	IncomeCategories   []string
	MonthlySavingsGoal decimal.Decimal
}

// CategoriesFor returns the category set valid for the given transaction type
func (s Settings) CategoriesFor(t TransactionType) []string {
	switch t {
	case TransactionTypeIncome:
		return s.IncomeCategories
	case TransactionTypeExpense:
		return s.ExpenseCategories
	default:
		return nil
	}
}

// HasCategory reports whether name is configured for the given type (exact match)
func (s Settings) HasCategory(t TransactionType, name string) bool {
	for _, c := range s.CategoriesFor(t) {
		if c == name {
			return true
		}
	}
	return false
}

// HasCategoryFold is HasCategory with case-insensitive matching
func (s Settings) HasCategoryFold(t TransactionType, name string) bool {
	for _, c := range s.CategoriesFor(t) {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// IsReservedCategory reports whether name carries meaning for the core
func IsReservedCategory(name string) bool {
	return name == CategoryGoalSavings || name == CategoryGeneralSavings
}
