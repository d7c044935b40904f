package grpc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/simaogato/budgetflow/internal/adapter/repository/sqlite"
	"github.com/simaogato/budgetflow/internal/domain"
	"github.com/simaogato/budgetflow/internal/usecase/aggregate"
	"github.com/simaogato/budgetflow/internal/usecase/goals"
	"github.com/simaogato/budgetflow/internal/usecase/ledger"
	"github.com/simaogato/budgetflow/internal/usecase/reconciler"
	"github.com/simaogato/budgetflow/internal/usecase/report"
	"github.com/simaogato/budgetflow/internal/usecase/seeder"
	"github.com/simaogato/budgetflow/internal/usecase/settings"
)

// newTestClient serves LedgerService over an in-memory listener backed by a
// freshly seeded SQLite database. Reports resolve periods relative to now.
func newTestClient(t *testing.T, now time.Time) *Client {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	txRepo := sqlite.NewTransactionRepository(db)
	goalRepo := sqlite.NewGoalRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db)
	require.NoError(t, seeder.NewDefaultsSeeder(settingsRepo, logger).Seed(ctx))

	rec := reconciler.NewReconciler(txRepo, goalRepo, logger)
	assembler := report.NewAssembler(aggregate.NewEngine(txRepo, logger))
	assembler.Now = func() time.Time { return now }

	srv := NewServer(
		ledger.NewService(txRepo, goalRepo, rec, logger),
		assembler,
		goals.NewService(goalRepo, rec, logger),
		settings.NewService(settingsRepo, logger),
	)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger)))
	RegisterLedgerServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn)
}

func march15() time.Time {
	return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
}

func assertCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "error should be a gRPC status")
	assert.Equal(t, code, st.Code(), st.Message())
}

func TestGoalSavingsEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())

	goal, err := client.CreateSavingsGoal(ctx, &CreateSavingsGoalRequest{Name: "G1", TargetAmount: "1000"})
	require.NoError(t, err)

	_, err = client.AddTransaction(ctx, &AddTransactionRequest{TransactionFields{
		Type: "income", Category: "Salary", Item: "Salary", Amount: "1000", Date: "2024-03-01",
	}})
	require.NoError(t, err)

	saving, err := client.AddTransaction(ctx, &AddTransactionRequest{TransactionFields{
		Type: "expense", Category: domain.CategoryGoalSavings, Item: "Transfer", Amount: "200", Date: "2024-03-05",
		SavingsGoalID: goal.Goal.ID,
	}})
	require.NoError(t, err)
	assert.Equal(t, goal.Goal.ID, saving.Transaction.SavingsGoalID)

	r, err := client.GetReport(ctx, &GetReportRequest{Period: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, "monthly", r.Period)
	assert.Equal(t, "2024-03-01", r.StartDate)
	assert.Equal(t, "2024-03-31", r.EndDate)
	assert.Equal(t, "1000", r.TotalIncome)
	assert.Equal(t, "200", r.TotalExpense)
	assert.Equal(t, "200", r.TotalGoalSavings)
	assert.Equal(t, "800", r.Balance)
	assert.Equal(t, "100", r.MonthlySavingsGoal)
	require.Len(t, r.Transactions, 2)
	assert.Equal(t, "Transfer", r.Transactions[0].Item, "newest first")
	require.Len(t, r.SavingsGoals, 1)
	assert.Equal(t, "200", r.SavingsGoals[0].SavedAmount)
	assert.Equal(t, "0.2000", r.SavingsGoals[0].Progress)

	_, err = client.DeleteTransaction(ctx, &DeleteTransactionRequest{ID: saving.Transaction.ID})
	require.NoError(t, err)

	reconciled, err := client.ReconcileSavingsGoals(ctx, &ReconcileSavingsGoalsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "0", reconciled.SavedAmounts[goal.Goal.ID])

	list, err := client.ListSavingsGoals(ctx, &ListSavingsGoalsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Goals, 1)
	assert.Equal(t, "0", list.Goals[0].SavedAmount)
}

func TestUpdateTransactionMovesContribution(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())

	g1, err := client.CreateSavingsGoal(ctx, &CreateSavingsGoalRequest{Name: "Car", TargetAmount: "5000"})
	require.NoError(t, err)
	g2, err := client.CreateSavingsGoal(ctx, &CreateSavingsGoalRequest{Name: "Bike", TargetAmount: "400"})
	require.NoError(t, err)

	fields := TransactionFields{
		Type: "expense", Category: domain.CategoryGoalSavings, Item: "Transfer", Amount: "75.50", Date: "2024-03-02",
		SavingsGoalID: g1.Goal.ID,
	}
	added, err := client.AddTransaction(ctx, &AddTransactionRequest{fields})
	require.NoError(t, err)

	fields.SavingsGoalID = g2.Goal.ID
	fields.Amount = "80"
	updated, err := client.UpdateTransaction(ctx, &UpdateTransactionRequest{ID: added.Transaction.ID, TransactionFields: fields})
	require.NoError(t, err)
	assert.Equal(t, "80", updated.Transaction.Amount)

	got, err := client.GetTransaction(ctx, &GetTransactionRequest{ID: added.Transaction.ID})
	require.NoError(t, err)
	assert.Equal(t, g2.Goal.ID, got.Transaction.SavingsGoalID)

	list, err := client.ListSavingsGoals(ctx, &ListSavingsGoalsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Goals, 2)
	saved := map[string]string{}
	for _, g := range list.Goals {
		saved[g.Name] = g.SavedAmount
	}
	assert.Equal(t, "0", saved["Car"])
	assert.Equal(t, "80", saved["Bike"])
}

func TestAddTransaction_Errors(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())

	valid := TransactionFields{Type: "expense", Category: "Food", Item: "Lunch", Amount: "12.5", Date: "2024-03-02"}

	tests := []struct {
		name   string
		mutate func(f *TransactionFields)
		code   codes.Code
	}{
		{name: "Malformed amount", mutate: func(f *TransactionFields) { f.Amount = "twelve" }, code: codes.InvalidArgument},
		{name: "Negative amount", mutate: func(f *TransactionFields) { f.Amount = "-1" }, code: codes.InvalidArgument},
		{name: "Zero amount", mutate: func(f *TransactionFields) { f.Amount = "0" }, code: codes.InvalidArgument},
		{name: "Malformed date", mutate: func(f *TransactionFields) { f.Date = "02/03/2024" }, code: codes.InvalidArgument},
		{name: "Missing date", mutate: func(f *TransactionFields) { f.Date = "" }, code: codes.InvalidArgument},
		{name: "Unknown type", mutate: func(f *TransactionFields) { f.Type = "transfer" }, code: codes.InvalidArgument},
		{name: "Income category on expense", mutate: func(f *TransactionFields) { f.Category = "Salary" }, code: codes.InvalidArgument},
		{name: "Goal Savings without goal", mutate: func(f *TransactionFields) { f.Category = domain.CategoryGoalSavings }, code: codes.InvalidArgument},
		{name: "Goal Savings with unknown goal", mutate: func(f *TransactionFields) {
			f.Category = domain.CategoryGoalSavings
			f.SavingsGoalID = uuid.NewString()
		}, code: codes.InvalidArgument},
		{name: "Malformed goal id", mutate: func(f *TransactionFields) { f.SavingsGoalID = "not-a-uuid" }, code: codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			_, err := client.AddTransaction(ctx, &AddTransactionRequest{f})
			assertCode(t, err, tt.code)
		})
	}

	// Nothing was persisted by the rejected calls
	page, err := client.ListTransactions(ctx, &ListTransactionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Transactions)
}

func TestTransactionNotFound(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())
	missing := uuid.NewString()

	_, err := client.GetTransaction(ctx, &GetTransactionRequest{ID: missing})
	assertCode(t, err, codes.NotFound)

	_, err = client.DeleteTransaction(ctx, &DeleteTransactionRequest{ID: missing})
	assertCode(t, err, codes.NotFound)

	_, err = client.UpdateTransaction(ctx, &UpdateTransactionRequest{ID: missing, TransactionFields: TransactionFields{
		Type: "income", Category: "Salary", Item: "Salary", Amount: "1", Date: "2024-03-01",
	}})
	assertCode(t, err, codes.NotFound)

	_, err = client.GetTransaction(ctx, &GetTransactionRequest{ID: "42"})
	assertCode(t, err, codes.InvalidArgument)
}

func TestListTransactions_Pagination(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())

	for i := 1; i <= 12; i++ {
		_, err := client.AddTransaction(ctx, &AddTransactionRequest{TransactionFields{
			Type: "expense", Category: "Coffee", Item: fmt.Sprintf("Coffee %02d", i), Amount: "3.20",
			Date: fmt.Sprintf("2024-03-%02d", i),
		}})
		require.NoError(t, err)
	}

	first, err := client.ListTransactions(ctx, &ListTransactionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 10, first.PerPage)
	assert.Equal(t, 12, first.Total)
	assert.Equal(t, 2, first.TotalPages)
	require.Len(t, first.Transactions, 10)
	assert.Equal(t, "Coffee 12", first.Transactions[0].Item)

	second, err := client.ListTransactions(ctx, &ListTransactionsRequest{Page: 2, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, second.Transactions, 2)
	assert.Equal(t, "Coffee 01", second.Transactions[1].Item)

	_, err = client.ListTransactions(ctx, &ListTransactionsRequest{Page: -1})
	assertCode(t, err, codes.InvalidArgument)
}

func TestGetReport_Periods(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())

	for _, f := range []TransactionFields{
		{Type: "income", Category: "Salary", Item: "Salary", Amount: "1000", Date: "2024-01-31"},
		{Type: "income", Category: "Freelance", Item: "Client A", Amount: "300", Date: "2024-03-04"},
		{Type: "income", Category: "Bonus", Item: "Bonus", Amount: "250.75", Date: "2024-03-10"},
		{Type: "expense", Category: "Rent", Item: "Rent", Amount: "800", Date: "2024-03-11"},
	} {
		_, err := client.AddTransaction(ctx, &AddTransactionRequest{f})
		require.NoError(t, err)
	}

	yearly, err := client.GetReport(ctx, &GetReportRequest{Period: "yearly"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", yearly.StartDate)
	assert.Equal(t, "2024-12-31", yearly.EndDate)
	assert.Equal(t, "1550.75", yearly.TotalIncome)
	require.Len(t, yearly.MonthlySummaries, 2)
	assert.Equal(t, "2024-01", yearly.MonthlySummaries[0].Month)
	assert.Equal(t, "2024-03", yearly.MonthlySummaries[1].Month)
	assert.Equal(t, "550.75", yearly.MonthlySummaries[1].TotalIncome)
	assert.Equal(t, "-249.25", yearly.MonthlySummaries[1].Balance)
	require.Len(t, yearly.IncomeBreakdownByItem, 3)
	assert.Equal(t, "Salary", yearly.IncomeBreakdownByItem[0].Item)

	weekly, err := client.GetReport(ctx, &GetReportRequest{Period: "weekly"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", weekly.StartDate)
	assert.Equal(t, "2024-03-17", weekly.EndDate)
	assert.Equal(t, "800", weekly.TotalExpense)
	assert.Empty(t, weekly.MonthlySummaries)

	custom, err := client.GetReport(ctx, &GetReportRequest{Period: "custom", StartDate: "2024-03-04", EndDate: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, "550.75", custom.TotalIncome)
	assert.Equal(t, "0", custom.TotalExpense)

	inverted, err := client.GetReport(ctx, &GetReportRequest{StartDate: "2024-03-10", EndDate: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "0", inverted.Balance)
	assert.Empty(t, inverted.Transactions)

	_, err = client.GetReport(ctx, &GetReportRequest{StartDate: "2024-13-01", EndDate: "2024-03-01"})
	assertCode(t, err, codes.InvalidArgument)
}

func TestSettingsRPCs(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())

	s, err := client.GetSettings(ctx, &GetSettingsRequest{})
	require.NoError(t, err)
	assert.Contains(t, s.ExpenseCategories, domain.CategoryGoalSavings)
	assert.ElementsMatch(t, []string{"Bonus", "Freelance", "Other", "Salary"}, s.IncomeCategories)
	assert.Equal(t, "100", s.MonthlySavingsGoal)

	s, err = client.UpdateMonthlySavingsGoal(ctx, &UpdateMonthlySavingsGoalRequest{Amount: "250.50"})
	require.NoError(t, err)
	assert.Equal(t, "250.5", s.MonthlySavingsGoal)

	s, err = client.AddCategory(ctx, &CategoryRequest{Type: "expense", Name: "Books"})
	require.NoError(t, err)
	assert.Contains(t, s.ExpenseCategories, "Books")

	_, err = client.AddCategory(ctx, &CategoryRequest{Type: "expense", Name: "books"})
	assertCode(t, err, codes.InvalidArgument)

	s, err = client.RenameCategory(ctx, &RenameCategoryRequest{Type: "expense", OldName: "Books", NewName: "Reading"})
	require.NoError(t, err)
	assert.Contains(t, s.ExpenseCategories, "Reading")
	assert.NotContains(t, s.ExpenseCategories, "Books")

	s, err = client.DeleteCategory(ctx, &CategoryRequest{Type: "expense", Name: "Reading"})
	require.NoError(t, err)
	assert.NotContains(t, s.ExpenseCategories, "Reading")

	_, err = client.DeleteCategory(ctx, &CategoryRequest{Type: "expense", Name: domain.CategoryGoalSavings})
	assertCode(t, err, codes.InvalidArgument)

	_, err = client.DeleteCategory(ctx, &CategoryRequest{Type: "income", Name: "Rent"})
	assertCode(t, err, codes.NotFound)

	_, err = client.UpdateMonthlySavingsGoal(ctx, &UpdateMonthlySavingsGoalRequest{Amount: "-5"})
	assertCode(t, err, codes.InvalidArgument)

	// A deleted category no longer validates new transactions
	_, err = client.DeleteCategory(ctx, &CategoryRequest{Type: "expense", Name: "Gym"})
	require.NoError(t, err)
	_, err = client.AddTransaction(ctx, &AddTransactionRequest{TransactionFields{
		Type: "expense", Category: "Gym", Item: "Membership", Amount: "30", Date: "2024-03-01",
	}})
	assertCode(t, err, codes.InvalidArgument)
}

func TestCreateSavingsGoal_Validation(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, march15())

	_, err := client.CreateSavingsGoal(ctx, &CreateSavingsGoalRequest{Name: "", TargetAmount: "100"})
	assertCode(t, err, codes.InvalidArgument)

	_, err = client.CreateSavingsGoal(ctx, &CreateSavingsGoalRequest{Name: "Car", TargetAmount: "0"})
	assertCode(t, err, codes.InvalidArgument)

	_, err = client.CreateSavingsGoal(ctx, &CreateSavingsGoalRequest{Name: "Car", TargetAmount: "lots"})
	assertCode(t, err, codes.InvalidArgument)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "Validation", err: fmt.Errorf("%w: amount must be positive", domain.ErrValidation), code: codes.InvalidArgument},
		{name: "Invalid interval", err: fmt.Errorf("wrapped: %w", domain.ErrInvalidInterval), code: codes.InvalidArgument},
		{name: "Not found", err: fmt.Errorf("%w: transaction", domain.ErrNotFound), code: codes.NotFound},
		{name: "Store", err: fmt.Errorf("%w: connection refused", domain.ErrStore), code: codes.Unavailable},
		{name: "Deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), code: codes.DeadlineExceeded},
		{name: "Status passes through", err: status.Error(codes.PermissionDenied, "nope"), code: codes.PermissionDenied},
		{name: "Unknown", err: fmt.Errorf("something else"), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(mapError(tt.err)))
		})
	}
	assert.NoError(t, mapError(nil))
}
