package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

const monthlySavingsGoalKey = "monthly_savings_goal"

// settingsRepository implements domain.SettingsRepository
type settingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) domain.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get loads the settings snapshot. A missing savings target reads as the default.
func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	settings := &domain.Settings{
		ExpenseCategories:  []string{},
		IncomeCategories:   []string{},
		MonthlySavingsGoal: domain.DefaultMonthlySavingsGoal,
	}

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, monthlySavingsGoalKey).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("%w: failed to read monthly savings goal: %w", domain.ErrStore, err)
	default:
		goal, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse monthly savings goal: %w", domain.ErrStore, err)
		}
		settings.MonthlySavingsGoal = goal
	}

	rows, err := r.db.QueryContext(ctx, `SELECT type, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query categories: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t, name string
		if err := rows.Scan(&t, &name); err != nil {
			return nil, fmt.Errorf("%w: failed to scan category: %w", domain.ErrStore, err)
		}
		switch domain.TransactionType(t) {
		case domain.TransactionTypeExpense:
			settings.ExpenseCategories = append(settings.ExpenseCategories, name)
		case domain.TransactionTypeIncome:
			settings.IncomeCategories = append(settings.IncomeCategories, name)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating categories: %w", domain.ErrStore, err)
	}

	return settings, nil
}

// HasMonthlySavingsGoal reports whether a savings target row exists
func (r *settingsRepository) HasMonthlySavingsGoal(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM settings WHERE key = $1)`, monthlySavingsGoalKey).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check monthly savings goal: %w", domain.ErrStore, err)
	}
	return exists, nil
}

// SetMonthlySavingsGoal upserts the savings target
func (r *settingsRepository) SetMonthlySavingsGoal(ctx context.Context, amount decimal.Decimal) error {
	query := `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, monthlySavingsGoalKey, amount.String()); err != nil {
		return fmt.Errorf("%w: failed to store monthly savings goal: %w", domain.ErrStore, err)
	}
	return nil
}

// AddCategory inserts a category, leaving an existing one untouched
func (r *settingsRepository) AddCategory(ctx context.Context, t domain.TransactionType, name string) error {
	query := `INSERT INTO categories (type, name) VALUES ($1, $2) ON CONFLICT (type, name) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, string(t), name); err != nil {
		return fmt.Errorf("%w: failed to add category: %w", domain.ErrStore, err)
	}
	return nil
}

// DeleteCategory removes a category
func (r *settingsRepository) DeleteCategory(ctx context.Context, t domain.TransactionType, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE type = $1 AND name = $2`, string(t), name)
	if err != nil {
		return fmt.Errorf("%w: failed to delete category: %w", domain.ErrStore, err)
	}
	return expectCategoryRow(result, t, name)
}

// RenameCategory renames a category in place
func (r *settingsRepository) RenameCategory(ctx context.Context, t domain.TransactionType, oldName, newName string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $3 WHERE type = $1 AND name = $2`, string(t), oldName, newName)
	if err != nil {
		return fmt.Errorf("%w: failed to rename category: %w", domain.ErrStore, err)
	}
	return expectCategoryRow(result, t, oldName)
}

func expectCategoryRow(result sql.Result, t domain.TransactionType, name string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read affected rows: %w", domain.ErrStore, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s category %q", domain.ErrNotFound, t, name)
	}
	return nil
}
