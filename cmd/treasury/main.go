package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/authorization"
	"github.com/feral-file/ff-bounty-ledger/internal/config"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/providers/gateway"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/treasury"
	"github.com/feral-file/ff-bounty-ledger/internal/typeddata"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

const usage = `Usage: treasury [flags] COMMAND [command flags]

Commands:
  create-funding     -bounty -sender -chain -amount
  prepare-funding    -intent -spec <transfer spec json file>
  submit-funding     -intent -signature
  request-payout     -bounty -recipient -chain -amount
  authorize-payout   -bounty -token -recipient -amount -identity`

// app holds what every command needs
type app struct {
	cfg        *config.OrchestratorConfig
	store      store.Store
	json       adapter.JSON
	httpClient adapter.HTTPClient
	clock      adapter.Clock
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	// Treasury operations share the orchestrator's configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadOrchestratorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		Service:   "treasury",
		SentryDSN: cfg.SentryDSN,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	a := &app{
		cfg:        cfg,
		store:      store.NewPGStore(db),
		json:       adapter.NewJSON(),
		httpClient: adapter.NewHTTPClient(cfg.Settlement.CallTimeout),
		clock:      adapter.NewClock(),
	}

	commands := map[string]func(ctx context.Context, args []string) (interface{}, error){
		"create-funding":   a.createFunding,
		"prepare-funding":  a.prepareFunding,
		"submit-funding":   a.submitFunding,
		"request-payout":   a.requestPayout,
		"authorize-payout": a.authorizePayout,
	}

	command, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s\n", flag.Arg(0), usage)
		os.Exit(2)
	}

	result, err := command(ctx, flag.Args()[1:])
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("command", flag.Arg(0)))
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}

	out, err := a.json.Marshal(result)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to encode result", zap.Error(err))
	}
	fmt.Println(string(out))
}

func (a *app) service() *treasury.Service {
	burns := gateway.NewClient(a.httpClient, a.cfg.Gateway.APIURL, a.cfg.Gateway.APIKey, a.json)
	return treasury.NewService(a.store, burns)
}

func (a *app) createFunding(ctx context.Context, args []string) (interface{}, error) {
	fs := flag.NewFlagSet("create-funding", flag.ExitOnError)
	bountyID := fs.String("bounty", "", "Bounty id")
	sender := fs.String("sender", "", "Depositor address on the source chain")
	chain := fs.String("chain", "", "Source chain, e.g. eip155:11155111")
	amount := fs.String("amount", "", "Amount in token base units")
	_ = fs.Parse(args)

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", *amount, err)
	}
	return a.service().CreateFundingIntent(ctx, *bountyID, *sender, domain.Chain(*chain), value)
}

func (a *app) prepareFunding(ctx context.Context, args []string) (interface{}, error) {
	fs := flag.NewFlagSet("prepare-funding", flag.ExitOnError)
	intentID := fs.String("intent", "", "Funding intent id")
	specFile := fs.String("spec", "", "Path to the transfer spec JSON")
	_ = fs.Parse(args)

	raw, err := os.ReadFile(*specFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read transfer spec: %w", err)
	}
	var spec typeddata.TransferSpec
	if err := a.json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse transfer spec: %w", err)
	}

	burnIntent, err := a.service().PrepareFundingTransfer(ctx, *intentID, spec)
	if err != nil {
		return nil, err
	}
	typedData, err := burnIntent.TypedData()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"burnIntent": burnIntent,
		"typedData":  typedData,
	}, nil
}

func (a *app) submitFunding(ctx context.Context, args []string) (interface{}, error) {
	fs := flag.NewFlagSet("submit-funding", flag.ExitOnError)
	intentID := fs.String("intent", "", "Funding intent id")
	signature := fs.String("signature", "", "Sender signature over the burn intent")
	_ = fs.Parse(args)

	return a.service().SubmitFundingTransfer(ctx, *intentID, *signature)
}

func (a *app) requestPayout(ctx context.Context, args []string) (interface{}, error) {
	fs := flag.NewFlagSet("request-payout", flag.ExitOnError)
	bountyID := fs.String("bounty", "", "Bounty id")
	recipient := fs.String("recipient", "", "Recipient address on the destination chain")
	chain := fs.String("chain", "", "Destination chain, e.g. eip155:8453")
	amount := fs.String("amount", "", "Amount in token base units")
	_ = fs.Parse(args)

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", *amount, err)
	}
	return a.service().RequestPayout(ctx, *bountyID, *recipient, domain.Chain(*chain), value)
}

func (a *app) authorizePayout(ctx context.Context, args []string) (interface{}, error) {
	fs := flag.NewFlagSet("authorize-payout", flag.ExitOnError)
	bountyID := fs.String("bounty", "", "Bounty id (bytes32)")
	token := fs.String("token", "", "Escrowed token address")
	recipient := fs.String("recipient", "", "Recipient address")
	amount := fs.String("amount", "", "Amount in token base units")
	identity := fs.String("identity", "", "Issue tracker account of the recipient")
	_ = fs.Parse(args)

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", *amount, err)
	}

	authz := a.cfg.Authorization
	key, err := crypto.HexToECDSA(strings.TrimPrefix(authz.SignerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse authorization signer key: %w", err)
	}
	if !common.IsHexAddress(authz.VerifyingContract) {
		return nil, fmt.Errorf("invalid verifying contract %q", authz.VerifyingContract)
	}

	var pending authorization.PendingStore
	switch authz.Backend {
	case "redis":
		redisClient := adapter.NewRedisClient(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		defer func() {
			_ = redisClient.Close()
		}()
		pending = authorization.NewRedisStore(redisClient, a.json, a.clock)
	default:
		logger.WarnCtx(ctx, "Authorization backend is not shared, the pending entry ends with this process",
			zap.String("backend", authz.Backend))
		pending = authorization.NewMemoryStore(a.clock)
	}

	authorizer := authorization.New(authorization.Config{
		TTL: authz.TTL,
		Domain: typeddata.Domain{
			Name:              authz.DomainName,
			Version:           authz.DomainVersion,
			ChainID:           authz.ChainID,
			VerifyingContract: common.HexToAddress(authz.VerifyingContract),
		},
		SignerKey: key,
	}, a.store, pending, authorization.NewHTTPIdentityVerifier(a.httpClient, authz.IdentityAPIURL, authz.IdentityAPIKey), a.clock)

	return authorizer.Authorize(ctx, authorization.Request{
		BountyID:  *bountyID,
		Token:     *token,
		Recipient: *recipient,
		Amount:    value,
		Identity:  *identity,
	})
}
