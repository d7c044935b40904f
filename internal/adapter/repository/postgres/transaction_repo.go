package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

const transactionColumns = `id, type, category, item, amount, date, description, savings_goal_id`

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create inserts a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		string(tx.Type),
		tx.Category,
		tx.Item,
		tx.Amount.String(),
		domain.FormatDate(tx.Date),
		tx.Description,
		nullableUUID(tx.SavingsGoalID),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert transaction: %w", domain.ErrStore, err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get transaction by ID: %w", domain.ErrStore, err)
	}

	return tx, nil
}

// List retrieves a page of transactions, newest first
func (r *transactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date DESC, id DESC`
	args := []interface{}{}

	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` OFFSET $1`
		args = append(args, offset)
	}

	return r.query(ctx, query, args...)
}

// Count returns the number of stored transactions
func (r *transactionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count transactions: %w", domain.ErrStore, err)
	}
	return count, nil
}

// ListBetween retrieves transactions dated in [start, end), newest first
func (r *transactionRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE date >= $1 AND date < $2
		ORDER BY date DESC, id DESC
	`
	return r.query(ctx, query, domain.FormatDate(start), domain.FormatDate(end))
}

// ListByGoal retrieves every transaction that references the given goal
func (r *transactionRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE savings_goal_id = $1
		ORDER BY date DESC, id DESC
	`
	return r.query(ctx, query, goalID)
}

// Update replaces every mutable field of a transaction
func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $2, category = $3, item = $4, amount = $5, date = $6, description = $7, savings_goal_id = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.ID,
		string(tx.Type),
		tx.Category,
		tx.Item,
		tx.Amount.String(),
		domain.FormatDate(tx.Date),
		tx.Description,
		nullableUUID(tx.SavingsGoalID),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update transaction: %w", domain.ErrStore, err)
	}

	return expectOneRow(result, "transaction", tx.ID)
}

// Delete removes a transaction by its ID
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete transaction: %w", domain.ErrStore, err)
	}

	return expectOneRow(result, "transaction", id)
}

func (r *transactionRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query transactions: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan transaction: %w", domain.ErrStore, err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating transactions: %w", domain.ErrStore, err)
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var txType, amountStr string
	var date time.Time
	var goalID sql.NullString

	err := row.Scan(
		&tx.ID,
		&txType,
		&tx.Category,
		&tx.Item,
		&amountStr,
		&date,
		&tx.Description,
		&goalID,
	)
	if err != nil {
		return nil, err
	}

	tx.Type = domain.TransactionType(txType)
	tx.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	// Parse amount (NUMERIC)
	tx.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}

	// Parse savings_goal_id (nullable)
	if goalID.Valid {
		id, err := uuid.Parse(goalID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse savings_goal_id: %w", err)
		}
		tx.SavingsGoalID = &id
	}

	return &tx, nil
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func expectOneRow(result sql.Result, kind string, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read affected rows: %w", domain.ErrStore, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return nil
}
