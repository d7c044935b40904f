package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simaogato/budgetflow/internal/domain"
)

// DefaultExpenseCategories are installed on a fresh store
var DefaultExpenseCategories = []string{
	"Food", "Drink", "Coffee", "Transportation", "Rent", "Utilities",
	"Shopping", "Entertainment", "Gym", "Event", "Petroleum", "Family",
	domain.CategoryGoalSavings, "Annual Trip", "Haircut", "Other",
}

// DefaultIncomeCategories are installed on a fresh store
var DefaultIncomeCategories = []string{"Salary", "Bonus", "Freelance", "Other"}

// DefaultsSeeder installs the initial settings of a new ledger
type DefaultsSeeder struct {
	repo   domain.SettingsRepository
	logger *slog.Logger
}

// NewDefaultsSeeder creates a new DefaultsSeeder instance
func NewDefaultsSeeder(repo domain.SettingsRepository, logger *slog.Logger) *DefaultsSeeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultsSeeder{
		repo:   repo,
		logger: logger,
	}
}

// Seed ensures the store holds a usable configuration.
// Logic:
// 1. Store the default monthly savings goal if none has been stored yet
// 2. For each transaction type whose category set is empty, add the defaults
//
// A type that already has categories is left alone, so categories removed by
// the user are not brought back on the next start.
func (s *DefaultsSeeder) Seed(ctx context.Context) error {
	hasGoal, err := s.repo.HasMonthlySavingsGoal(ctx)
	if err != nil {
		return fmt.Errorf("failed to check monthly savings goal: %w", err)
	}
	if !hasGoal {
		if err := s.repo.SetMonthlySavingsGoal(ctx, domain.DefaultMonthlySavingsGoal); err != nil {
			return fmt.Errorf("failed to seed monthly savings goal: %w", err)
		}
		s.logger.InfoContext(ctx, "seeded monthly savings goal", "amount", domain.DefaultMonthlySavingsGoal.String())
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	defaults := map[domain.TransactionType][]string{
		domain.TransactionTypeExpense: DefaultExpenseCategories,
		domain.TransactionTypeIncome:  DefaultIncomeCategories,
	}
	for _, t := range []domain.TransactionType{domain.TransactionTypeExpense, domain.TransactionTypeIncome} {
		if len(current.CategoriesFor(t)) > 0 {
			continue
		}
		for _, name := range defaults[t] {
			if err := s.repo.AddCategory(ctx, t, name); err != nil {
				return fmt.Errorf("failed to seed %s category %q: %w", t, name, err)
			}
		}
		s.logger.InfoContext(ctx, "seeded default categories", "type", t, "count", len(defaults[t]))
	}

	return nil
}
