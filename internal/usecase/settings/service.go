// Package settings manages the configured category lists and the monthly
// savings target.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

// Service handles settings operations
type Service struct {
	SettingsRepo domain.SettingsRepository
	Logger       *slog.Logger
}

// NewService creates a new Service instance
func NewService(settingsRepo domain.SettingsRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		SettingsRepo: settingsRepo,
		Logger:       logger,
	}
}

// Get returns a snapshot of the current settings
func (s *Service) Get(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// UpdateMonthlySavingsGoal stores a new monthly savings target
func (s *Service) UpdateMonthlySavingsGoal(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: monthly savings goal cannot be negative", domain.ErrValidation)
	}

	if err := s.SettingsRepo.SetMonthlySavingsGoal(ctx, amount); err != nil {
		return err
	}

	s.Logger.InfoContext(ctx, "monthly savings goal updated", "amount", amount.String())
	return nil
}

// AddCategory adds a category to the set of the given type.
// Names are compared case-insensitively against existing ones. Reserved
// names may only be added as expense categories.
func (s *Service) AddCategory(ctx context.Context, t domain.TransactionType, name string) error {
	name = strings.TrimSpace(name)
	if err := checkName(t, name); err != nil {
		return err
	}
	if domain.IsReservedCategory(name) && t != domain.TransactionTypeExpense {
		return fmt.Errorf("%w: %q is reserved for expenses", domain.ErrValidation, name)
	}

	current, err := s.Get(ctx)
	if err != nil {
		return err
	}

	if current.HasCategoryFold(t, name) {
		return fmt.Errorf("%w: %s category %q already exists", domain.ErrValidation, t, name)
	}

	if err := s.SettingsRepo.AddCategory(ctx, t, name); err != nil {
		return err
	}

	s.Logger.InfoContext(ctx, "category added", "type", t, "name", name)
	return nil
}

// DeleteCategory removes a category. Existing transactions keep their label.
func (s *Service) DeleteCategory(ctx context.Context, t domain.TransactionType, name string) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, t)
	}
	if domain.IsReservedCategory(name) {
		return fmt.Errorf("%w: category %q is reserved", domain.ErrValidation, name)
	}

	current, err := s.Get(ctx)
	if err != nil {
		return err
	}

	if !current.HasCategory(t, name) {
		return fmt.Errorf("%w: %s category %q", domain.ErrNotFound, t, name)
	}

	if err := s.SettingsRepo.DeleteCategory(ctx, t, name); err != nil {
		return err
	}

	s.Logger.InfoContext(ctx, "category deleted", "type", t, "name", name)
	return nil
}

// RenameCategory renames a category. A rename that only changes letter case
// is allowed; a rename onto another existing category is not.
func (s *Service) RenameCategory(ctx context.Context, t domain.TransactionType, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if err := checkName(t, newName); err != nil {
		return err
	}
	if domain.IsReservedCategory(oldName) || domain.IsReservedCategory(newName) {
		return fmt.Errorf("%w: reserved categories cannot be renamed", domain.ErrValidation)
	}

	current, err := s.Get(ctx)
	if err != nil {
		return err
	}

	if !current.HasCategory(t, oldName) {
		return fmt.Errorf("%w: %s category %q", domain.ErrNotFound, t, oldName)
	}

	if !strings.EqualFold(oldName, newName) && current.HasCategoryFold(t, newName) {
		return fmt.Errorf("%w: %s category %q already exists", domain.ErrValidation, t, newName)
	}

	if err := s.SettingsRepo.RenameCategory(ctx, t, oldName, newName); err != nil {
		return err
	}

	s.Logger.InfoContext(ctx, "category renamed", "type", t, "from", oldName, "to", newName)
	return nil
}

func checkName(t domain.TransactionType, name string) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, t)
	}
	if name == "" {
		return fmt.Errorf("%w: category name cannot be empty", domain.ErrValidation)
	}
	return nil
}
