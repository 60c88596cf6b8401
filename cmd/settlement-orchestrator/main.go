package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/authorization"
	"github.com/feral-file/ff-bounty-ledger/internal/config"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/orchestrator"
	"github.com/feral-file/ff-bounty-ledger/internal/providers/bridge"
	"github.com/feral-file/ff-bounty-ledger/internal/providers/evm"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadOrchestratorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "settlement-orchestrator",
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Settlement Orchestrator")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.Settlement.CallTimeout)

	// Initialize the minter on the treasury chain
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Gateway.MinterRPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial treasury chain RPC", zap.Error(err), zap.String("chain", string(cfg.Settlement.TreasuryChain)))
	}
	defer ethClient.Close()

	minter, err := evm.NewMinter(evm.MinterConfig{
		Chain:          cfg.Settlement.TreasuryChain,
		MinterAddress:  cfg.Gateway.MinterAddress,
		PrivateKey:     cfg.Gateway.MinterKey,
		ReceiptTimeout: cfg.Gateway.ReceiptTimeout,
	}, ethClient)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create minter", zap.Error(err))
	}

	// Initialize the bridge client
	bridger := bridge.NewClient(bridge.Config{
		APIURL:       cfg.Bridge.APIURL,
		APIKey:       cfg.Bridge.APIKey,
		Token:        cfg.Bridge.Token,
		PollInterval: cfg.Bridge.PollInterval,
	}, httpClient, jsonAdapter, clockAdapter)

	settlement := orchestrator.New(orchestrator.Config{
		TreasuryChain:        cfg.Settlement.TreasuryChain,
		Interval:             cfg.Settlement.Interval,
		FundingBatchSize:     cfg.Settlement.FundingBatchSize,
		PayoutBatchSize:      cfg.Settlement.PayoutBatchSize,
		CallTimeout:          cfg.Settlement.CallTimeout,
		MaxRetries:           cfg.Settlement.MaxRetries,
		RetryInitialInterval: cfg.Settlement.RetryInitialInterval,
		RetryMaxElapsed:      cfg.Settlement.RetryMaxElapsed,
		StuckAfter:           cfg.Settlement.StuckAfter,
	}, dataStore, minter, bridger, clockAdapter)

	// Pending authorizations are swept in the redis store they are shared through.
	// A memory store lives and dies with the treasury command that issued it.
	if cfg.Authorization.Backend != "redis" {
		logger.FatalCtx(ctx, "Settlement orchestrator sweeps pending authorizations in redis, set authorization.backend=redis",
			zap.String("backend", cfg.Authorization.Backend))
	}
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() {
		_ = redisClient.Close()
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.FatalCtx(ctx, "Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}
	authzSweeper := sweeper.NewAuthorizationSweeper(&sweeper.AuthorizationSweeperConfig{
		Interval: cfg.Authorization.SweepInterval,
	}, authorization.NewRedisStore(redisClient, jsonAdapter, clockAdapter), clockAdapter)

	// Metrics endpoint
	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("component", "metrics"))
		}
	}()

	// Start the loops
	loops := []sweeper.Sweeper{settlement, authzSweeper}
	errChan := make(chan error, len(loops))
	for _, loop := range loops {
		go func() {
			if err := loop.Start(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", loop.Name(), err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Stop the loops before canceling so an in-flight tick can commit its transitions
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Settlement.CallTimeout+5*time.Second)
	defer shutdownCancel()

	for _, loop := range loops {
		if err := loop.Stop(shutdownCtx); err != nil {
			logger.Error(err, zap.String("component", loop.Name()))
		}
	}
	cancel()

	logger.Info("Settlement Orchestrator stopped")
}
