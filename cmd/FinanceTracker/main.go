package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	database "github.com/sebuszqo/FinanceTracker/internal/db"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/logging"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

const sessionCleanupInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", logging.FieldError, err)
		os.Exit(1)
	}
}

func databaseOptions(cfg *config.Config) (database.Options, error) {
	if cfg.DBDriver == config.DriverSQLite {
		dsn, err := database.SQLiteDSN(cfg.SQLiteDBPath)
		if err != nil {
			return database.Options{}, err
		}
		return database.Options{Driver: database.DriverSQLite, DSN: dsn}, nil
	}
	return database.Options{Driver: database.DriverPostgres, DSN: cfg.DBConnectionString}, nil
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("missing configuration, update to start server: %w", err)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	// Amounts are sent as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbOptions, err := databaseOptions(cfg)
	if err != nil {
		return err
	}
	dbService, err := database.NewDBService(ctx, dbOptions, logger)
	if err != nil {
		return fmt.Errorf("could not initialize database: %w", err)
	}
	defer dbService.Close()

	userRepo := user.NewUserRepository(dbService.DB)
	twoFactorRepo := auth.NewTwoFactorRepository(dbService.DB)

	sessionManager := auth.NewSessionManager(cfg.SessionTTL)
	sessionManager.StartSessionTokenCleanup(ctx, sessionCleanupInterval)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	userService := user.NewUserService(userRepo, logger)
	userHandler := user.NewHandler(userService)
	authService := auth.NewAuthService(twoFactorRepo, userService, sessionManager, jwtManager, &auth.Authenticator{}, logger)
	authHandler := auth.NewHandler(authService, cfg.IsProduction())

	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	statisticsService := application.NewStatisticsService(transactionRepo)
	finance := interfaces.Handlers{
		Transactions: interfaces.NewTransactionHandler(
			application.NewTransactionService(transactionRepo, logger),
			interfaces.RespondJSON,
			interfaces.RespondError,
		),
		Categories: interfaces.NewCategoryHandler(
			application.NewCategoryService(infrastructure.NewCategoryRepository(dbService.DB)),
			interfaces.RespondJSON,
			interfaces.RespondError,
		),
		Statistics: interfaces.NewStatisticsHandler(statisticsService, interfaces.RespondJSON, interfaces.RespondError),
		Budgets: interfaces.NewBudgetHandler(
			application.NewBudgetService(infrastructure.NewBudgetRepository(dbService.DB), statisticsService),
			interfaces.RespondJSON,
			interfaces.RespondError,
		),
	}

	server := NewServer(authHandler, authService, userHandler, finance, dbService)
	server.RegisterRoutes()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           logging.Middleware(logger)(server.router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", httpServer.Addr, "environment", cfg.Environment, "db_driver", dbService.Driver())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
