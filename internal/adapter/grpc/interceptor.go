package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor returns a gRPC unary server interceptor that logs every
// call with its method, status code and duration.
// Client errors are logged at Warn, server errors at Error. A panicking
// handler is recovered and reported as codes.Internal.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "grpc handler panicked", "method", info.FullMethod, "panic", r)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}

			code := status.Code(err)
			attrs := []any{
				"method", info.FullMethod,
				"code", code.String(),
				"duration", time.Since(start),
			}
			if err != nil {
				attrs = append(attrs, "error", status.Convert(err).Message())
			}

			logger.Log(ctx, levelFor(code), "grpc call", attrs...)
		}()

		return handler(ctx, req)
	}
}

func levelFor(code codes.Code) slog.Level {
	switch code {
	case codes.OK:
		return slog.LevelInfo
	case codes.InvalidArgument, codes.NotFound, codes.Canceled, codes.DeadlineExceeded:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
