package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a typed LedgerService client
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a client on an established connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Req, Resp any](ctx context.Context, c *Client, method string, req *Req, opts ...grpc.CallOption) (*Resp, error) {
	in, err := toStruct(req)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}

	resp := new(Resp)
	if err := fromStruct(out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) AddTransaction(ctx context.Context, req *AddTransactionRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[AddTransactionRequest, TransactionResponse](ctx, c, "AddTransaction", req, opts...)
}

func (c *Client) GetTransaction(ctx context.Context, req *GetTransactionRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[GetTransactionRequest, TransactionResponse](ctx, c, "GetTransaction", req, opts...)
}

func (c *Client) UpdateTransaction(ctx context.Context, req *UpdateTransactionRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[UpdateTransactionRequest, TransactionResponse](ctx, c, "UpdateTransaction", req, opts...)
}

func (c *Client) DeleteTransaction(ctx context.Context, req *DeleteTransactionRequest, opts ...grpc.CallOption) (*DeleteTransactionResponse, error) {
	return invoke[DeleteTransactionRequest, DeleteTransactionResponse](ctx, c, "DeleteTransaction", req, opts...)
}

func (c *Client) ListTransactions(ctx context.Context, req *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	return invoke[ListTransactionsRequest, ListTransactionsResponse](ctx, c, "ListTransactions", req, opts...)
}

func (c *Client) GetReport(ctx context.Context, req *GetReportRequest, opts ...grpc.CallOption) (*ReportResponse, error) {
	return invoke[GetReportRequest, ReportResponse](ctx, c, "GetReport", req, opts...)
}

func (c *Client) CreateSavingsGoal(ctx context.Context, req *CreateSavingsGoalRequest, opts ...grpc.CallOption) (*SavingsGoalResponse, error) {
	return invoke[CreateSavingsGoalRequest, SavingsGoalResponse](ctx, c, "CreateSavingsGoal", req, opts...)
}

func (c *Client) ListSavingsGoals(ctx context.Context, req *ListSavingsGoalsRequest, opts ...grpc.CallOption) (*ListSavingsGoalsResponse, error) {
	return invoke[ListSavingsGoalsRequest, ListSavingsGoalsResponse](ctx, c, "ListSavingsGoals", req, opts...)
}

func (c *Client) ReconcileSavingsGoals(ctx context.Context, req *ReconcileSavingsGoalsRequest, opts ...grpc.CallOption) (*ReconcileSavingsGoalsResponse, error) {
	return invoke[ReconcileSavingsGoalsRequest, ReconcileSavingsGoalsResponse](ctx, c, "ReconcileSavingsGoals", req, opts...)
}

func (c *Client) GetSettings(ctx context.Context, req *GetSettingsRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[GetSettingsRequest, SettingsResponse](ctx, c, "GetSettings", req, opts...)
}

func (c *Client) UpdateMonthlySavingsGoal(ctx context.Context, req *UpdateMonthlySavingsGoalRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[UpdateMonthlySavingsGoalRequest, SettingsResponse](ctx, c, "UpdateMonthlySavingsGoal", req, opts...)
}

func (c *Client) AddCategory(ctx context.Context, req *CategoryRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[CategoryRequest, SettingsResponse](ctx, c, "AddCategory", req, opts...)
}

func (c *Client) DeleteCategory(ctx context.Context, req *CategoryRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[CategoryRequest, SettingsResponse](ctx, c, "DeleteCategory", req, opts...)
}

func (c *Client) RenameCategory(ctx context.Context, req *RenameCategoryRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[RenameCategoryRequest, SettingsResponse](ctx, c, "RenameCategory", req, opts...)
}
