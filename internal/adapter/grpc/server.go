package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/budgetflow/internal/domain"
	"github.com/simaogato/budgetflow/internal/usecase/goals"
	"github.com/simaogato/budgetflow/internal/usecase/ledger"
	"github.com/simaogato/budgetflow/internal/usecase/report"
	"github.com/simaogato/budgetflow/internal/usecase/settings"
)

// Server implements the LedgerService gRPC server
type Server struct {
	LedgerService   *ledger.Service
	ReportAssembler *report.Assembler
	GoalsService    *goals.Service
	SettingsService *settings.Service
}

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService *ledger.Service,
	reportAssembler *report.Assembler,
	goalsService *goals.Service,
	settingsService *settings.Service,
) *Server {
	return &Server{
		LedgerService:   ledgerService,
		ReportAssembler: reportAssembler,
		GoalsService:    goalsService,
		SettingsService: settingsService,
	}
}

// AddTransaction handles the AddTransaction RPC
func (s *Server) AddTransaction(ctx context.Context, req *AddTransactionRequest) (*TransactionResponse, error) {
	input, err := parseTransactionFields(req.TransactionFields)
	if err != nil {
		return nil, err
	}

	// Validation runs against a snapshot of the current settings
	current, err := s.SettingsService.Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	tx, err := s.LedgerService.AddTransaction(ctx, *current, input)
	if err != nil {
		return nil, mapError(err)
	}

	return &TransactionResponse{Transaction: transactionToMessage(tx)}, nil
}

// GetTransaction handles the GetTransaction RPC
func (s *Server) GetTransaction(ctx context.Context, req *GetTransactionRequest) (*TransactionResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	tx, err := s.LedgerService.GetTransaction(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	return &TransactionResponse{Transaction: transactionToMessage(tx)}, nil
}

// UpdateTransaction handles the UpdateTransaction RPC
func (s *Server) UpdateTransaction(ctx context.Context, req *UpdateTransactionRequest) (*TransactionResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	input, err := parseTransactionFields(req.TransactionFields)
	if err != nil {
		return nil, err
	}

	current, err := s.SettingsService.Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	tx, err := s.LedgerService.UpdateTransaction(ctx, *current, id, input)
	if err != nil {
		return nil, mapError(err)
	}

	return &TransactionResponse{Transaction: transactionToMessage(tx)}, nil
}

// DeleteTransaction handles the DeleteTransaction RPC
func (s *Server) DeleteTransaction(ctx context.Context, req *DeleteTransactionRequest) (*DeleteTransactionResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	if err := s.LedgerService.DeleteTransaction(ctx, id); err != nil {
		return nil, mapError(err)
	}

	return &DeleteTransactionResponse{}, nil
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	if req.Page < 0 || req.PerPage < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "page and per_page must be non-negative")
	}

	page, err := s.LedgerService.ListTransactions(ctx, req.Page, req.PerPage)
	if err != nil {
		return nil, mapError(err)
	}

	return &ListTransactionsResponse{
		Transactions: transactionsToMessages(page.Transactions),
		Page:         page.Page,
		PerPage:      page.PerPage,
		Total:        page.Total,
		TotalPages:   page.TotalPages,
	}, nil
}

// GetReport handles the GetReport RPC.
// Goals are reconciled before the report is returned so the saved amounts
// shown next to it match the ledger.
func (s *Server) GetReport(ctx context.Context, req *GetReportRequest) (*ReportResponse, error) {
	r, err := s.ReportAssembler.BuildReport(ctx, report.Request{
		Period:    req.Period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return nil, mapError(err)
	}

	savingsGoals, err := s.GoalsService.ListGoals(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	current, err := s.SettingsService.Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ReportResponse{
		Period:                string(r.Period),
		StartDate:             r.StartDate,
		EndDate:               r.EndDate,
		TotalIncome:           r.TotalIncome.String(),
		TotalExpense:          r.TotalExpense.String(),
		TotalGoalSavings:      r.TotalGoalSavings.String(),
		TotalGeneralSavings:   r.TotalGeneralSavings.String(),
		TotalSavings:          r.TotalSavings.String(),
		Balance:               r.Balance.String(),
		Transactions:          transactionsToMessages(r.Transactions),
		IncomeBreakdownByItem: make([]ItemTotal, 0, len(r.IncomeBreakdownByItem)),
		MonthlySavingsGoal:    current.MonthlySavingsGoal.String(),
		SavingsGoals:          goalsToMessages(savingsGoals),
	}

	for _, it := range r.IncomeBreakdownByItem {
		resp.IncomeBreakdownByItem = append(resp.IncomeBreakdownByItem, ItemTotal{Item: it.Item, Total: it.Total.String()})
	}

	for _, m := range r.MonthlySummaries {
		resp.MonthlySummaries = append(resp.MonthlySummaries, MonthlySummary{
			Month:        m.Month,
			TotalIncome:  m.TotalIncome.String(),
			TotalExpense: m.TotalExpense.String(),
			Balance:      m.Balance.String(),
		})
	}

	return resp, nil
}

// CreateSavingsGoal handles the CreateSavingsGoal RPC
func (s *Server) CreateSavingsGoal(ctx context.Context, req *CreateSavingsGoalRequest) (*SavingsGoalResponse, error) {
	target, err := parseAmount("target_amount", req.TargetAmount)
	if err != nil {
		return nil, err
	}

	goal, err := s.GoalsService.CreateGoal(ctx, req.Name, target)
	if err != nil {
		return nil, mapError(err)
	}

	return &SavingsGoalResponse{Goal: goalToMessage(goal)}, nil
}

// ListSavingsGoals handles the ListSavingsGoals RPC
func (s *Server) ListSavingsGoals(ctx context.Context, req *ListSavingsGoalsRequest) (*ListSavingsGoalsResponse, error) {
	savingsGoals, err := s.GoalsService.ListGoals(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return &ListSavingsGoalsResponse{Goals: goalsToMessages(savingsGoals)}, nil
}

// ReconcileSavingsGoals handles the ReconcileSavingsGoals RPC
func (s *Server) ReconcileSavingsGoals(ctx context.Context, req *ReconcileSavingsGoalsRequest) (*ReconcileSavingsGoalsResponse, error) {
	saved, err := s.GoalsService.Reconciler.ReconcileAll(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ReconcileSavingsGoalsResponse{SavedAmounts: make(map[string]string, len(saved))}
	for id, amount := range saved {
		resp.SavedAmounts[id.String()] = amount.String()
	}
	return resp, nil
}

// GetSettings handles the GetSettings RPC
func (s *Server) GetSettings(ctx context.Context, req *GetSettingsRequest) (*SettingsResponse, error) {
	return s.settingsResponse(ctx)
}

// UpdateMonthlySavingsGoal handles the UpdateMonthlySavingsGoal RPC
func (s *Server) UpdateMonthlySavingsGoal(ctx context.Context, req *UpdateMonthlySavingsGoalRequest) (*SettingsResponse, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}

	if err := s.SettingsService.UpdateMonthlySavingsGoal(ctx, amount); err != nil {
		return nil, mapError(err)
	}
	return s.settingsResponse(ctx)
}

// AddCategory handles the AddCategory RPC
func (s *Server) AddCategory(ctx context.Context, req *CategoryRequest) (*SettingsResponse, error) {
	if err := s.SettingsService.AddCategory(ctx, domain.TransactionType(req.Type), req.Name); err != nil {
		return nil, mapError(err)
	}
	return s.settingsResponse(ctx)
}

// DeleteCategory handles the DeleteCategory RPC
func (s *Server) DeleteCategory(ctx context.Context, req *CategoryRequest) (*SettingsResponse, error) {
	if err := s.SettingsService.DeleteCategory(ctx, domain.TransactionType(req.Type), req.Name); err != nil {
		return nil, mapError(err)
	}
	return s.settingsResponse(ctx)
}

// RenameCategory handles the RenameCategory RPC
func (s *Server) RenameCategory(ctx context.Context, req *RenameCategoryRequest) (*SettingsResponse, error) {
	if err := s.SettingsService.RenameCategory(ctx, domain.TransactionType(req.Type), req.OldName, req.NewName); err != nil {
		return nil, mapError(err)
	}
	return s.settingsResponse(ctx)
}

func (s *Server) settingsResponse(ctx context.Context) (*SettingsResponse, error) {
	current, err := s.SettingsService.Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return &SettingsResponse{
		ExpenseCategories:  nonNil(current.ExpenseCategories),
		IncomeCategories:   nonNil(current.IncomeCategories),
		MonthlySavingsGoal: current.MonthlySavingsGoal.String(),
	}, nil
}

// parseTransactionFields converts wire fields into a ledger input.
// Only format errors are reported here; business rules are checked by the ledger.
func parseTransactionFields(f TransactionFields) (ledger.TransactionInput, error) {
	input := ledger.TransactionInput{
		Type:        domain.TransactionType(strings.TrimSpace(f.Type)),
		Category:    f.Category,
		Item:        f.Item,
		Description: f.Description,
	}

	amount, err := parseAmount("amount", f.Amount)
	if err != nil {
		return input, err
	}
	input.Amount = amount

	if f.Date != "" {
		date, err := domain.ParseDate(strings.TrimSpace(f.Date))
		if err != nil {
			return input, status.Errorf(codes.InvalidArgument, "invalid date format, expected YYYY-MM-DD: %v", err)
		}
		input.Date = date
	}

	if f.SavingsGoalID != "" {
		goalID, err := parseID("savings_goal_id", f.SavingsGoalID)
		if err != nil {
			return input, err
		}
		input.SavingsGoalID = &goalID
	}

	return input, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return amount, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return id, nil
}

// transactionToMessage converts a domain Transaction to its wire form
func transactionToMessage(tx *domain.Transaction) Transaction {
	msg := Transaction{
		ID: tx.ID.String(),
		TransactionFields: TransactionFields{
			Type:        string(tx.Type),
			Category:    tx.Category,
			Item:        tx.Item,
			Amount:      tx.Amount.String(),
			Date:        domain.FormatDate(tx.Date),
			Description: tx.Description,
		},
	}

	if tx.SavingsGoalID != nil {
		msg.SavingsGoalID = tx.SavingsGoalID.String()
	}

	return msg
}

func transactionsToMessages(transactions []*domain.Transaction) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, transactionToMessage(tx))
	}
	return out
}

// goalToMessage converts a domain SavingsGoal to its wire form
func goalToMessage(goal *domain.SavingsGoal) SavingsGoal {
	return SavingsGoal{
		ID:           goal.ID.String(),
		Name:         goal.Name,
		TargetAmount: goal.TargetAmount.String(),
		SavedAmount:  goal.SavedAmount.String(),
		Progress:     goal.Progress().StringFixed(4),
	}
}

func goalsToMessages(savingsGoals []*domain.SavingsGoal) []SavingsGoal {
	out := make([]SavingsGoal, 0, len(savingsGoals))
	for _, g := range savingsGoals {
		out = append(out, goalToMessage(g))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInterval):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, domain.ErrStore):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
