package sqlite

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

// TransactionRepository implements domain.TransactionRepository
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID.String(),
		string(tx.Type),
		tx.Category,
		tx.Item,
		tx.Amount.String(),
		domain.FormatDate(tx.Date),
		tx.Description,
		nullableUUID(tx.SavingsGoalID),
	)
	if err != nil {
		return fmt.Errorf("%w: insert transaction: %w", domain.ErrStore, err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id.String())

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get transaction: %w", domain.ErrStore, err)
	}
	return tx, nil
}

func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		// SQLite needs a LIMIT before OFFSET; -1 means unbounded
		limit = -1
	}
	return r.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
}

func (r *TransactionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count transactions: %w", domain.ErrStore, err)
	}
	return count, nil
}

func (r *TransactionRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	return r.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE date >= ? AND date < ?
		ORDER BY date DESC, id DESC`,
		domain.FormatDate(start), domain.FormatDate(end),
	)
}

func (r *TransactionRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*domain.Transaction, error) {
	return r.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE savings_goal_id = ?
		ORDER BY date DESC, id DESC`,
		goalID.String(),
	)
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		SET type = ?, category = ?, item = ?, amount = ?, date = ?, description = ?, savings_goal_id = ?
		WHERE id = ?`,
		string(tx.Type),
		tx.Category,
		tx.Item,
		tx.Amount.String(),
		domain.FormatDate(tx.Date),
		tx.Description,
		nullableUUID(tx.SavingsGoalID),
		tx.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: update transaction: %w", domain.ErrStore, err)
	}
	return expectOneRow(result, "transaction", tx.ID)
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("%w: delete transaction: %w", domain.ErrStore, err)
	}
	return expectOneRow(result, "transaction", id)
}

func (r *TransactionRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %w", domain.ErrStore, err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %w", domain.ErrStore, err)
	}
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx                       domain.Transaction
		id, txType, amount, date string
		goalID                   sql.NullString
	)

	if err := row.Scan(&id, &txType, &tx.Category, &tx.Item, &amount, &date, &tx.Description, &goalID); err != nil {
		return nil, err
	}

	var err error
	if tx.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	tx.Type = domain.TransactionType(txType)
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if tx.Date, err = domain.ParseDate(date); err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	if goalID.Valid {
		g, err := uuid.Parse(goalID.String)
		if err != nil {
			return nil, fmt.Errorf("parse savings_goal_id: %w", err)
		}
		tx.SavingsGoalID = &g
	}

	return &tx, nil
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func expectOneRow(result sql.Result, kind string, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", domain.ErrStore, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return nil
}
