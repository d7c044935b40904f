package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages travel as google.protobuf.Struct. Amounts are decimal strings so
// they survive the JSON number representation exactly; dates are YYYY-MM-DD.

// TransactionFields are the caller-supplied fields of a transaction
type TransactionFields struct {
	Type          string `json:"type"`
	Category      string `json:"category"`
	Item          string `json:"item"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Description   string `json:"description,omitempty"`
	SavingsGoalID string `json:"savings_goal_id,omitempty"`
}

// Transaction is a stored transaction
type Transaction struct {
	ID string `json:"id"`
	TransactionFields
}

type AddTransactionRequest struct {
	TransactionFields
}

type UpdateTransactionRequest struct {
	ID string `json:"id"`
	TransactionFields
}

type GetTransactionRequest struct {
	ID string `json:"id"`
}

type DeleteTransactionRequest struct {
	ID string `json:"id"`
}

type DeleteTransactionResponse struct{}

type TransactionResponse struct {
	Transaction Transaction `json:"transaction"`
}

type ListTransactionsRequest struct {
	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	Total        int           `json:"total"`
	TotalPages   int           `json:"total_pages"`
}

type GetReportRequest struct {
	Period    string `json:"period,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type ItemTotal struct {
	Item  string `json:"item"`
	Total string `json:"total"`
}

type MonthlySummary struct {
	Month        string `json:"month"`
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Balance      string `json:"balance"`
}

// ReportResponse is a report together with the reconciled goals and the
// monthly savings target, everything a dashboard needs in one call.
type ReportResponse struct {
	Period                string           `json:"period"`
	StartDate             string           `json:"start_date"`
	EndDate               string           `json:"end_date"`
	TotalIncome           string           `json:"total_income"`
	TotalExpense          string           `json:"total_expense"`
	TotalGoalSavings      string           `json:"total_goal_savings"`
	TotalGeneralSavings   string           `json:"total_general_savings"`
	TotalSavings          string           `json:"total_savings"`
	Balance               string           `json:"balance"`
	Transactions          []Transaction    `json:"transactions"`
	IncomeBreakdownByItem []ItemTotal      `json:"income_breakdown_by_item"`
	MonthlySummaries      []MonthlySummary `json:"monthly_summaries,omitempty"`
	MonthlySavingsGoal    string           `json:"monthly_savings_goal"`
	SavingsGoals          []SavingsGoal    `json:"savings_goals"`
}

type SavingsGoal struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	SavedAmount  string `json:"saved_amount"`
	Progress     string `json:"progress"`
}

type CreateSavingsGoalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
}

type SavingsGoalResponse struct {
	Goal SavingsGoal `json:"goal"`
}

type ListSavingsGoalsRequest struct{}

type ListSavingsGoalsResponse struct {
	Goals []SavingsGoal `json:"goals"`
}

type ReconcileSavingsGoalsRequest struct{}

type ReconcileSavingsGoalsResponse struct {
	SavedAmounts map[string]string `json:"saved_amounts"`
}

type GetSettingsRequest struct{}

type SettingsResponse struct {
	ExpenseCategories  []string `json:"expense_categories"`
	IncomeCategories   []string `json:"income_categories"`
	MonthlySavingsGoal string   `json:"monthly_savings_goal"`
}

type UpdateMonthlySavingsGoalRequest struct {
	Amount string `json:"amount"`
}

type CategoryRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type RenameCategoryRequest struct {
	Type    string `json:"type"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// toStruct converts a message into its wire form
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return out, nil
}

// fromStruct decodes a wire message into v
func fromStruct(in *structpb.Struct, v interface{}) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
