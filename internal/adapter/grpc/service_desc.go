package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "budgetflow.v1.LedgerService"

// LedgerServiceServer is the server API for LedgerService
type LedgerServiceServer interface {
	AddTransaction(context.Context, *AddTransactionRequest) (*TransactionResponse, error)
	GetTransaction(context.Context, *GetTransactionRequest) (*TransactionResponse, error)
	UpdateTransaction(context.Context, *UpdateTransactionRequest) (*TransactionResponse, error)
	DeleteTransaction(context.Context, *DeleteTransactionRequest) (*DeleteTransactionResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	GetReport(context.Context, *GetReportRequest) (*ReportResponse, error)
	CreateSavingsGoal(context.Context, *CreateSavingsGoalRequest) (*SavingsGoalResponse, error)
	ListSavingsGoals(context.Context, *ListSavingsGoalsRequest) (*ListSavingsGoalsResponse, error)
	ReconcileSavingsGoals(context.Context, *ReconcileSavingsGoalsRequest) (*ReconcileSavingsGoalsResponse, error)
	GetSettings(context.Context, *GetSettingsRequest) (*SettingsResponse, error)
	UpdateMonthlySavingsGoal(context.Context, *UpdateMonthlySavingsGoalRequest) (*SettingsResponse, error)
	AddCategory(context.Context, *CategoryRequest) (*SettingsResponse, error)
	DeleteCategory(context.Context, *CategoryRequest) (*SettingsResponse, error)
	RenameCategory(context.Context, *RenameCategoryRequest) (*SettingsResponse, error)
}

// ServiceDesc describes LedgerService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddTransaction", LedgerServiceServer.AddTransaction),
		unary("GetTransaction", LedgerServiceServer.GetTransaction),
		unary("UpdateTransaction", LedgerServiceServer.UpdateTransaction),
		unary("DeleteTransaction", LedgerServiceServer.DeleteTransaction),
		unary("ListTransactions", LedgerServiceServer.ListTransactions),
		unary("GetReport", LedgerServiceServer.GetReport),
		unary("CreateSavingsGoal", LedgerServiceServer.CreateSavingsGoal),
		unary("ListSavingsGoals", LedgerServiceServer.ListSavingsGoals),
		unary("ReconcileSavingsGoals", LedgerServiceServer.ReconcileSavingsGoals),
		unary("GetSettings", LedgerServiceServer.GetSettings),
		unary("UpdateMonthlySavingsGoal", LedgerServiceServer.UpdateMonthlySavingsGoal),
		unary("AddCategory", LedgerServiceServer.AddCategory),
		unary("DeleteCategory", LedgerServiceServer.DeleteCategory),
		unary("RenameCategory", LedgerServiceServer.RenameCategory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "budgetflow/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv with s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary adapts a typed method to a grpc.MethodDesc. The interceptor sees the
// raw Struct request; decoding into Req happens inside the handler.
func unary[Req, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				var typed Req
				if err := fromStruct(req.(*structpb.Struct), &typed); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
				}
				resp, err := call(srv.(LedgerServiceServer), ctx, &typed)
				if err != nil {
					return nil, err
				}
				out, err := toStruct(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "%v", err)
				}
				return out, nil
			}

			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
