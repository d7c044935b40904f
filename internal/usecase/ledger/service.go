// Package ledger validates and applies ledger mutations and keeps savings
// goals in step with them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

// Pagination defaults for ListTransactions
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// TransactionInput represents the full set of caller-supplied transaction fields
type TransactionInput struct {
	Type          domain.TransactionType
	Category      string
	Item          string
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	SavingsGoalID *uuid.UUID // Required for Goal Savings, ignored otherwise
}

// Page is one page of the ledger, newest first
type Page struct {
	Transactions []*domain.Transaction
	Page         int
	PerPage      int
	Total        int
	TotalPages   int
}

// GoalReconciler is the part of the reconciler the ledger drives on mutation
type GoalReconciler interface {
	ReconcileOne(ctx context.Context, goalID uuid.UUID) (decimal.Decimal, error)
	ApplyContribution(ctx context.Context, goalID uuid.UUID, amount decimal.Decimal) error
}

// Service handles ledger mutations
type Service struct {
	TransactionRepo domain.TransactionRepository
	GoalRepo        domain.GoalRepository
	Reconciler      GoalReconciler
	Logger          *slog.Logger
	NewID           func() (uuid.UUID, error)
}

// NewService creates a new Service instance
func NewService(
	transactionRepo domain.TransactionRepository,
	goalRepo domain.GoalRepository,
	reconciler GoalReconciler,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		TransactionRepo: transactionRepo,
		GoalRepo:        goalRepo,
		Reconciler:      reconciler,
		Logger:          logger,
		NewID:           uuid.NewV7,
	}
}

// AddTransaction validates and inserts a new transaction.
// Logic:
//  1. Normalize and validate against the settings snapshot
//  2. For Goal Savings, check the referenced goal exists
//  3. Assign a time-ordered ID and insert
//  4. Add the amount to the goal's saved total incrementally
//
// Nothing is persisted when validation fails.
func (s *Service) AddTransaction(ctx context.Context, settings domain.Settings, input TransactionInput) (*domain.Transaction, error) {
	tx := input.transaction()
	if err := s.validate(ctx, settings, tx); err != nil {
		return nil, err
	}

	id, err := s.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction ID: %w", err)
	}
	tx.ID = id

	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "transaction added",
		"transaction_id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount.String(),
		"date", domain.FormatDate(tx.Date),
	)

	if goalID, ok := tx.GoalContribution(); ok {
		if err := s.Reconciler.ApplyContribution(ctx, goalID, tx.Amount); err != nil {
			s.logDrift(ctx, goalID, err)
		}
	}

	return tx, nil
}

// GetTransaction retrieves a transaction by its ID
func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return s.TransactionRepo.GetByID(ctx, id)
}

// ListTransactions returns one page of the ledger, newest first.
// page and perPage below 1 fall back to the defaults.
func (s *Service) ListTransactions(ctx context.Context, page, perPage int) (*Page, error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total, err := s.TransactionRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	transactions, err := s.TransactionRepo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &Page{
		Transactions: transactions,
		Page:         page,
		PerPage:      perPage,
		Total:        total,
		TotalPages:   (total + perPage - 1) / perPage,
	}, nil
}

// UpdateTransaction replaces every mutable field of an existing transaction,
// then rescans the goals it used to and now contributes to
func (s *Service) UpdateTransaction(ctx context.Context, settings domain.Settings, id uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	existing, err := s.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := input.transaction()
	tx.ID = existing.ID
	if err := s.validate(ctx, settings, tx); err != nil {
		return nil, err
	}

	if err := s.TransactionRepo.Update(ctx, tx); err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "transaction updated", "transaction_id", tx.ID)

	s.reconcileGoals(ctx, existing, tx)

	return tx, nil
}

// DeleteTransaction removes a transaction and rescans the goal it contributed to
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	existing, err := s.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.TransactionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.InfoContext(ctx, "transaction deleted", "transaction_id", id)

	s.reconcileGoals(ctx, existing)

	return nil
}

func (s *Service) validate(ctx context.Context, settings domain.Settings, tx *domain.Transaction) error {
	tx.Normalize()
	if err := tx.Validate(settings); err != nil {
		return err
	}

	if tx.SavingsGoalID == nil {
		return nil
	}

	if _, err := s.GoalRepo.GetByID(ctx, *tx.SavingsGoalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: savings goal %s does not exist", domain.ErrValidation, *tx.SavingsGoalID)
		}
		return fmt.Errorf("failed to get savings goal: %w", err)
	}

	return nil
}

// reconcileGoals rescans every goal any of the given versions contributes to.
// Incremental subtraction is never attempted for edits and deletes.
func (s *Service) reconcileGoals(ctx context.Context, versions ...*domain.Transaction) {
	seen := make(map[uuid.UUID]bool)
	for _, tx := range versions {
		goalID, ok := tx.GoalContribution()
		if !ok || seen[goalID] {
			continue
		}
		seen[goalID] = true

		if _, err := s.Reconciler.ReconcileOne(ctx, goalID); err != nil {
			s.logDrift(ctx, goalID, err)
		}
	}
}

// logDrift records a failed goal refresh. The ledger write already succeeded,
// so the goal is left drifted until the next full reconciliation.
func (s *Service) logDrift(ctx context.Context, goalID uuid.UUID, err error) {
	s.Logger.WarnContext(ctx, "savings goal left out of date",
		"goal_id", goalID,
		"error", err,
	)
}

func (in TransactionInput) transaction() *domain.Transaction {
	tx := &domain.Transaction{
		Type:        in.Type,
		Category:    in.Category,
		Item:        in.Item,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: in.Description,
	}
	if in.SavingsGoalID != nil {
		id := *in.SavingsGoalID
		tx.SavingsGoalID = &id
	}
	return tx
}
