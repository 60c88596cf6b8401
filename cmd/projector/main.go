package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/authorization"
	"github.com/feral-file/ff-bounty-ledger/internal/block"
	"github.com/feral-file/ff-bounty-ledger/internal/config"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/messaging"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/projector"
	"github.com/feral-file/ff-bounty-ledger/internal/providers/evm"
	"github.com/feral-file/ff-bounty-ledger/internal/providers/jetstream"
	"github.com/feral-file/ff-bounty-ledger/internal/providers/sui"
	"github.com/feral-file/ff-bounty-ledger/internal/source"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/webhook"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadProjectorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "projector",
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Projector")

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
	httpClient := adapter.NewHTTPClient(30 * time.Second)

	// Build the sources
	var sources []source.Source

	if cfg.EVM.Enabled {
		ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.EVM.RPCURL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to dial EVM RPC", zap.Error(err), zap.String("chain", string(cfg.EVM.ChainID)))
		}
		defer ethClient.Close()

		blocks := block.NewProvider(block.NewEthFetcher(ethClient), block.Config{
			TTL:           cfg.EVM.BlockHeadTTL,
			StaleWindow:   cfg.EVM.BlockHeadStaleWindow,
			Confirmations: cfg.EVM.Confirmations,
		}, clockAdapter)

		evmSource, err := evm.NewSource(evm.Config{
			Chain:         cfg.EVM.ChainID,
			EscrowAddress: cfg.EVM.EscrowAddress,
			StartBlock:    cfg.EVM.StartBlock,
		}, ethClient, blocks)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create EVM source", zap.Error(err))
		}
		sources = append(sources, evmSource)
		logger.InfoCtx(ctx, "EVM source enabled", zap.String("source", string(evmSource.Key())))
	}

	if cfg.Sui.Enabled {
		suiClient, err := adapter.NewSuiClient(ctx, cfg.Sui.RPCURL, cfg.Sui.WebSocketURL, httpClient)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create Sui client", zap.Error(err), zap.String("rpc_url", cfg.Sui.RPCURL))
		}

		suiSource, err := sui.NewSource(sui.Config{
			Chain:       cfg.Sui.ChainID,
			PackageID:   cfg.Sui.PackageID,
			Module:      cfg.Sui.Module,
			IdleTimeout: cfg.Sui.IdleTimeout,
		}, suiClient, clockAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create Sui source", zap.Error(err))
		}
		sources = append(sources, suiSource)
		logger.InfoCtx(ctx, "Sui source enabled", zap.String("source", string(suiSource.Key())))
	}

	if len(sources) == 0 {
		logger.FatalCtx(ctx, "No source enabled, set evm.enabled or sui.enabled")
	}

	// Build the notifiers
	var notifiers []messaging.Notifier

	if cfg.NATS.URL != "" {
		natsPublisher, err := jetstream.NewPublisher(jetstream.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			SubjectPrefix:   cfg.NATS.SubjectPrefix,
			DuplicateWindow: cfg.NATS.DuplicateWindow,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
		}, adapter.NewNatsDialer(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer natsPublisher.Close()
		notifiers = append(notifiers, natsPublisher)
		logger.InfoCtx(ctx, "Connected to NATS JetStream")
	}

	if len(cfg.Webhook.URLs) > 0 {
		webhookNotifier := webhook.NewNotifier(webhook.Config{
			URLs:       cfg.Webhook.URLs,
			Secret:     cfg.Webhook.Secret,
			EventTypes: cfg.Webhook.EventTypes,
		}, adapter.NewHTTPClient(cfg.Webhook.Timeout), jsonAdapter, clockAdapter)
		notifiers = append(notifiers, webhookNotifier)
		logger.InfoCtx(ctx, "Delivering ledger changes to webhooks", zap.Int("endpoints", len(cfg.Webhook.URLs)))
	}

	// Pending authorizations only outlive this process in redis, so only then does a
	// projected payout have anything to clear
	if cfg.Authorization.Backend == "redis" {
		redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() {
			_ = redisClient.Close()
		}()
		pending := authorization.NewRedisStore(redisClient, jsonAdapter, clockAdapter)
		notifiers = append(notifiers, authorization.New(authorization.Config{}, dataStore, pending, nil, clockAdapter))
		logger.InfoCtx(ctx, "Clearing pending authorizations on payout", zap.String("redis", cfg.Redis.Addr))
	}

	notifierPool := pond.NewPool(4)
	defer notifierPool.StopAndWait()
	notifier := messaging.NewFanOut(notifierPool, notifiers...)

	// Metrics endpoint
	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("component", "metrics"))
		}
	}()

	// One projector per source
	projectorCfg := projector.Config{
		PageSize:     cfg.Projection.PageSize,
		SafetyWindow: cfg.Projection.SafetyWindow,
		PollInterval: cfg.Projection.PollInterval,
	}

	projectorPool := pond.NewPool(len(sources), pond.WithContext(ctx))
	group := projectorPool.NewGroup()
	for _, src := range sources {
		p := projector.New(projectorCfg, src, dataStore, notifier, clockAdapter)
		group.SubmitErr(func() error {
			logger.InfoCtx(ctx, "Starting projection", zap.String("projector", p.Name()))
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", p.Name(), err)
			}
			return nil
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- group.Wait()
	}()

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("component", "projector"))
		}
	}

	cancel()
	projectorPool.StopAndWait()

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Projector stopped")
}
