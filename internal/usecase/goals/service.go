// Package goals manages savings goal definitions.
package goals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

// Reconciler rebuilds cached saved amounts from the ledger
type Reconciler interface {
	ReconcileAll(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
}

// Service handles savings goal operations
type Service struct {
	GoalRepo   domain.GoalRepository
	Reconciler Reconciler
	Logger     *slog.Logger
	NewID      func() (uuid.UUID, error)
}

// NewService creates a new Service instance
func NewService(goalRepo domain.GoalRepository, reconciler Reconciler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		GoalRepo:   goalRepo,
		Reconciler: reconciler,
		Logger:     logger,
		NewID:      uuid.NewV7,
	}
}

// CreateGoal defines a new savings goal with nothing saved yet
func (s *Service) CreateGoal(ctx context.Context, name string, target decimal.Decimal) (*domain.SavingsGoal, error) {
	goal := &domain.SavingsGoal{
		Name:         strings.TrimSpace(name),
		TargetAmount: target,
		SavedAmount:  decimal.Zero,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	id, err := s.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate goal ID: %w", err)
	}
	goal.ID = id

	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "savings goal created", "goal_id", goal.ID, "name", goal.Name, "target", target.String())
	return goal, nil
}

// GetGoal retrieves a savings goal by its ID
func (s *Service) GetGoal(ctx context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	return s.GoalRepo.GetByID(ctx, id)
}

// ListGoals reconciles every goal against the ledger and returns them ordered
// by name, so the saved amounts shown always match the ledger.
func (s *Service) ListGoals(ctx context.Context) ([]*domain.SavingsGoal, error) {
	if _, err := s.Reconciler.ReconcileAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to reconcile savings goals: %w", err)
	}

	goals, err := s.GoalRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return goals, nil
}
