package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

// GoalRepository implements domain.GoalRepository
type GoalRepository struct {
	db *DB
}

// NewGoalRepository creates a new savings goal repository
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Create(ctx context.Context, goal *domain.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, name, target_amount, saved_amount) VALUES (?, ?, ?, ?)`,
		goal.ID.String(), goal.Name, goal.TargetAmount.String(), goal.SavedAmount.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert savings goal: %w", domain.ErrStore, err)
	}
	return nil
}

func (r *GoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	return getGoal(ctx, r.db, id)
}

func (r *GoalRepository) List(ctx context.Context) ([]*domain.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, target_amount, saved_amount FROM savings_goals ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query savings goals: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	goals := []*domain.SavingsGoal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan savings goal: %w", domain.ErrStore, err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate savings goals: %w", domain.ErrStore, err)
	}
	return goals, nil
}

func (r *GoalRepository) SetSavedAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `UPDATE savings_goals SET saved_amount = ? WHERE id = ?`, amount.String(), id.String())
	if err != nil {
		return fmt.Errorf("%w: set saved amount: %w", domain.ErrStore, err)
	}
	return expectOneRow(result, "savings goal", id)
}

// AddSavedAmount adds delta inside a transaction. Amounts are TEXT, so the
// sum is computed with decimal arithmetic rather than by SQLite.
func (r *GoalRepository) AddSavedAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStore, err)
	}
	defer tx.Rollback()

	goal, err := getGoal(ctx, tx, id)
	if err != nil {
		return err
	}

	saved := goal.SavedAmount.Add(delta)
	if _, err := tx.ExecContext(ctx, `UPDATE savings_goals SET saved_amount = ? WHERE id = ?`, saved.String(), id.String()); err != nil {
		return fmt.Errorf("%w: add saved amount: %w", domain.ErrStore, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit transaction: %w", domain.ErrStore, err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getGoal(ctx context.Context, q queryRower, id uuid.UUID) (*domain.SavingsGoal, error) {
	row := q.QueryRowContext(ctx, `SELECT id, name, target_amount, saved_amount FROM savings_goals WHERE id = ?`, id.String())

	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: savings goal %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get savings goal: %w", domain.ErrStore, err)
	}
	return goal, nil
}

func scanGoal(row rowScanner) (*domain.SavingsGoal, error) {
	var goal domain.SavingsGoal
	var id, target, saved string

	if err := row.Scan(&id, &goal.Name, &target, &saved); err != nil {
		return nil, err
	}

	var err error
	if goal.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if goal.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return nil, fmt.Errorf("parse target_amount: %w", err)
	}
	if goal.SavedAmount, err = decimal.NewFromString(saved); err != nil {
		return nil, fmt.Errorf("parse saved_amount: %w", err)
	}
	return &goal, nil
}
