package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

const monthlySavingsGoalKey = "monthly_savings_goal"

// SettingsRepository implements domain.SettingsRepository
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	settings := &domain.Settings{
		ExpenseCategories:  []string{},
		IncomeCategories:   []string{},
		MonthlySavingsGoal: domain.DefaultMonthlySavingsGoal,
	}

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, monthlySavingsGoalKey).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("%w: read monthly savings goal: %w", domain.ErrStore, err)
	default:
		goal, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: parse monthly savings goal: %w", domain.ErrStore, err)
		}
		settings.MonthlySavingsGoal = goal
	}

	rows, err := r.db.QueryContext(ctx, `SELECT type, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: query categories: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t, name string
		if err := rows.Scan(&t, &name); err != nil {
			return nil, fmt.Errorf("%w: scan category: %w", domain.ErrStore, err)
		}
		switch domain.TransactionType(t) {
		case domain.TransactionTypeExpense:
			settings.ExpenseCategories = append(settings.ExpenseCategories, name)
		case domain.TransactionTypeIncome:
			settings.IncomeCategories = append(settings.IncomeCategories, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate categories: %w", domain.ErrStore, err)
	}

	return settings, nil
}

func (r *SettingsRepository) HasMonthlySavingsGoal(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings WHERE key = ?`, monthlySavingsGoalKey).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: check monthly savings goal: %w", domain.ErrStore, err)
	}
	return count > 0, nil
}

func (r *SettingsRepository) SetMonthlySavingsGoal(ctx context.Context, amount decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		monthlySavingsGoalKey, amount.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: store monthly savings goal: %w", domain.ErrStore, err)
	}
	return nil
}

func (r *SettingsRepository) AddCategory(ctx context.Context, t domain.TransactionType, name string) error {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (type, name) VALUES (?, ?)`, string(t), name); err != nil {
		return fmt.Errorf("%w: add category: %w", domain.ErrStore, err)
	}
	return nil
}

func (r *SettingsRepository) DeleteCategory(ctx context.Context, t domain.TransactionType, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE type = ? AND name = ?`, string(t), name)
	if err != nil {
		return fmt.Errorf("%w: delete category: %w", domain.ErrStore, err)
	}
	return expectCategoryRow(result, t, name)
}

func (r *SettingsRepository) RenameCategory(ctx context.Context, t domain.TransactionType, oldName, newName string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE type = ? AND name = ?`, newName, string(t), oldName)
	if err != nil {
		return fmt.Errorf("%w: rename category: %w", domain.ErrStore, err)
	}
	return expectCategoryRow(result, t, oldName)
}

func expectCategoryRow(result sql.Result, t domain.TransactionType, name string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", domain.ErrStore, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s category %q", domain.ErrNotFound, t, name)
	}
	return nil
}
