package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

// goalRepository implements domain.GoalRepository
type goalRepository struct {
	db *DB
}

// NewGoalRepository creates a new savings goal repository
func NewGoalRepository(db *DB) domain.GoalRepository {
	return &goalRepository{db: db}
}

// Create creates a new savings goal
func (r *goalRepository) Create(ctx context.Context, goal *domain.SavingsGoal) error {
	query := `
		INSERT INTO savings_goals (id, name, target_amount, saved_amount)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.Name,
		goal.TargetAmount.String(),
		goal.SavedAmount.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create savings goal: %w", domain.ErrStore, err)
	}

	return nil
}

// GetByID retrieves a savings goal by its ID
func (r *goalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	query := `SELECT id, name, target_amount, saved_amount FROM savings_goals WHERE id = $1`

	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: savings goal %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get savings goal by ID: %w", domain.ErrStore, err)
	}

	return goal, nil
}

// List retrieves all savings goals ordered by name
func (r *goalRepository) List(ctx context.Context) ([]*domain.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, target_amount, saved_amount FROM savings_goals ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query savings goals: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	goals := []*domain.SavingsGoal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan savings goal: %w", domain.ErrStore, err)
		}
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating savings goals: %w", domain.ErrStore, err)
	}

	return goals, nil
}

// SetSavedAmount overwrites the cached saved amount
func (r *goalRepository) SetSavedAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `UPDATE savings_goals SET saved_amount = $2 WHERE id = $1`, id, amount.String())
	if err != nil {
		return fmt.Errorf("%w: failed to set saved amount: %w", domain.ErrStore, err)
	}
	return expectOneRow(result, "savings goal", id)
}

// AddSavedAmount adds delta to the cached saved amount in a single statement
func (r *goalRepository) AddSavedAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `UPDATE savings_goals SET saved_amount = saved_amount + $2 WHERE id = $1`, id, delta.String())
	if err != nil {
		return fmt.Errorf("%w: failed to add saved amount: %w", domain.ErrStore, err)
	}
	return expectOneRow(result, "savings goal", id)
}

func scanGoal(row rowScanner) (*domain.SavingsGoal, error) {
	var goal domain.SavingsGoal
	var targetStr, savedStr string

	if err := row.Scan(&goal.ID, &goal.Name, &targetStr, &savedStr); err != nil {
		return nil, err
	}

	var err error
	if goal.TargetAmount, err = decimal.NewFromString(targetStr); err != nil {
		return nil, fmt.Errorf("failed to parse target_amount: %w", err)
	}
	if goal.SavedAmount, err = decimal.NewFromString(savedStr); err != nil {
		return nil, fmt.Errorf("failed to parse saved_amount: %w", err)
	}

	return &goal, nil
}
