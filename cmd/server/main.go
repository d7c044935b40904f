package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/budgetflow/internal/adapter/grpc"
	"github.com/simaogato/budgetflow/internal/adapter/repository/postgres"
	"github.com/simaogato/budgetflow/internal/adapter/repository/sqlite"
	"github.com/simaogato/budgetflow/internal/config"
	"github.com/simaogato/budgetflow/internal/domain"
	"github.com/simaogato/budgetflow/internal/logging"
	"github.com/simaogato/budgetflow/internal/usecase/aggregate"
	"github.com/simaogato/budgetflow/internal/usecase/goals"
	"github.com/simaogato/budgetflow/internal/usecase/ledger"
	"github.com/simaogato/budgetflow/internal/usecase/reconciler"
	"github.com/simaogato/budgetflow/internal/usecase/report"
	"github.com/simaogato/budgetflow/internal/usecase/seeder"
	"github.com/simaogato/budgetflow/internal/usecase/settings"
)

// stores bundles the repositories of whichever backend BUDGET_STORE selects
type stores struct {
	transactions domain.TransactionRepository
	goals        domain.GoalRepository
	settings     domain.SettingsRepository
	closer       io.Closer
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.Setup(cfg.Logging())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 2. Open the store
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.closer.Close()

	// Seed the default categories and monthly goal
	if err := seeder.NewDefaultsSeeder(st.settings, logger).Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}
	logger.Info("default settings seeded")

	// 3. Initialize Services (Use Cases)
	rec := reconciler.NewReconciler(st.transactions, st.goals, logger)
	ledgerService := ledger.NewService(st.transactions, st.goals, rec, logger)
	assembler := report.NewAssembler(aggregate.NewEngine(st.transactions, logger))
	goalsService := goals.NewService(st.goals, rec, logger)
	settingsService := settings.NewService(st.settings, logger)

	// Bring saved totals in line with the ledger before serving
	if _, err := rec.ReconcileAll(ctx); err != nil {
		logger.Warn("startup reconciliation failed", "error", err)
	}

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.LoggingInterceptor(logger)),
	)
	grpcadapter.RegisterLedgerServiceServer(grpcServer,
		grpcadapter.NewServer(ledgerService, assembler, goalsService, settingsService))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", lis.Addr().String(), "store", cfg.Store)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpclib.ErrServerStopped) {
			return fmt.Errorf("failed to serve gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.NewDB(ctx, cfg.PostgresDSN(), postgres.Options{
			ConnectAttempts: cfg.DBConnectAttempts,
			ConnectDelay:    cfg.DBConnectDelay,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &stores{
			transactions: postgres.NewTransactionRepository(db),
			goals:        postgres.NewGoalRepository(db),
			settings:     postgres.NewSettingsRepository(db),
			closer:       db,
		}, nil
	default:
		db, err := sqlite.NewDB(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &stores{
			transactions: sqlite.NewTransactionRepository(db),
			goals:        sqlite.NewGoalRepository(db),
			settings:     sqlite.NewSettingsRepository(db),
			closer:       db,
		}, nil
	}
}
