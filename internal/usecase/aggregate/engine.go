// Package aggregate computes period summaries over the ledger.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simaogato/budgetflow/internal/domain"
)

// Engine aggregates ledger transactions over report periods.
// It is read-only against the store.
type Engine struct {
	TransactionRepo domain.TransactionRepository
	Logger          *slog.Logger
}

// NewEngine creates a new Engine instance
func NewEngine(transactionRepo domain.TransactionRepository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		TransactionRepo: transactionRepo,
		Logger:          logger,
	}
}

// Aggregate fetches the transactions inside p and summarizes them.
// An interval without transactions (including an inverted one) returns zero
// totals, never an error.
func (e *Engine) Aggregate(ctx context.Context, p domain.ReportPeriod) (*domain.Summary, error) {
	var transactions []*domain.Transaction
	if p.Start.Before(p.End) {
		var err error
		transactions, err = e.TransactionRepo.ListBetween(ctx, p.Start, p.End)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions for period: %w", err)
		}
	}

	summary := Summarize(transactions, p)

	e.Logger.DebugContext(ctx, "aggregated period",
		"kind", p.Kind,
		"start", domain.FormatDate(p.Start),
		"end", domain.FormatDate(p.End),
		"transactions", len(summary.Transactions),
	)

	return &summary, nil
}
