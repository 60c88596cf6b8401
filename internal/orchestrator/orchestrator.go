package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/ledger"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

// Minter submits an attested mint on the treasury chain and returns the mint tx id
//
//go:generate mockgen -source=orchestrator.go -destination=../mocks/orchestrator.go -package=mocks -mock_names=Minter=MockMinter,Bridger=MockBridger
type Minter interface {
	Mint(ctx context.Context, destinationChain domain.Chain, attestation, signature string) (string, error)
}

// BridgeRequest describes one payout leg through the bridging intermediary.
// IntentID doubles as the idempotency key of the request.
type BridgeRequest struct {
	IntentID         string
	SourceChain      domain.Chain
	DestinationChain domain.Chain
	Recipient        string
	Amount           decimal.Decimal
}

// BridgeResult carries the tx ids of a completed bridge transfer
type BridgeResult struct {
	BridgeTxID string
	FinalTxID  string
}

// Bridger moves treasury funds to a recipient on another chain
type Bridger interface {
	Bridge(ctx context.Context, req BridgeRequest) (*BridgeResult, error)
}

// Config holds the orchestrator loop settings
type Config struct {
	TreasuryChain        domain.Chain
	Interval             time.Duration
	FundingBatchSize     int
	PayoutBatchSize      int
	CallTimeout          time.Duration // per external call attempt
	MaxRetries           uint64        // retries of a transient failure, on top of the first attempt
	RetryInitialInterval time.Duration
	RetryMaxElapsed      time.Duration
	StuckAfter           time.Duration // executing payouts older than this are reported
}

// Orchestrator advances the funding and payout sagas on a timer.
// Progress lives entirely in intent statuses, so a restarted orchestrator resumes where
// the previous one stopped. Only one instance may run against a database.
type Orchestrator struct {
	config    Config
	store     store.Store
	ledger    *ledger.Ledger
	minter    Minter
	bridger   Bridger
	clock     adapter.Clock
	running   atomic.Bool
	ticking   atomic.Bool
	inflight  sync.WaitGroup
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// New creates a settlement orchestrator
func New(config Config, st store.Store, minter Minter, bridger Bridger, clock adapter.Clock) *Orchestrator {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.FundingBatchSize <= 0 {
		config.FundingBatchSize = 10
	}
	if config.PayoutBatchSize <= 0 {
		config.PayoutBatchSize = 10
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = 45 * time.Second
	}
	if config.RetryInitialInterval <= 0 {
		config.RetryInitialInterval = 2 * time.Second
	}

	return &Orchestrator{
		config:    config,
		store:     st,
		ledger:    ledger.New(st),
		minter:    minter,
		bridger:   bridger,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the orchestrator's name for logging and identification
func (o *Orchestrator) Name() string {
	return "settlement-orchestrator"
}

// Start runs a tick every interval until ctx is canceled or Stop is called.
// A firing that lands while the previous tick still runs is skipped.
func (o *Orchestrator) Start(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return fmt.Errorf("orchestrator already running")
	}
	defer func() {
		o.inflight.Wait()
		o.running.Store(false)
		close(o.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting settlement orchestrator",
		zap.String("treasuryChain", string(o.config.TreasuryChain)),
		zap.Duration("interval", o.config.Interval),
		zap.Int("fundingBatchSize", o.config.FundingBatchSize),
		zap.Int("payoutBatchSize", o.config.PayoutBatchSize))

	ticks, stop := o.clock.NewTicker(o.config.Interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Settlement orchestrator stopping due to context cancellation")
			return nil
		case <-o.stopChan:
			logger.InfoCtx(ctx, "Settlement orchestrator stop requested")
			return nil
		case <-ticks:
			o.inflight.Add(1)
			go func() {
				defer o.inflight.Done()
				err := o.Tick(ctx)
				if err != nil && !errors.Is(err, domain.ErrTickInProgress) {
					logger.ErrorCtx(ctx, err, zap.String("component", o.Name()))
				}
			}()
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight tick
func (o *Orchestrator) Stop(ctx context.Context) error {
	if !o.running.Load() {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping settlement orchestrator")
	select {
	case <-o.stopChan:
	default:
		close(o.stopChan)
	}

	select {
	case <-o.stoppedCh:
		logger.InfoCtx(ctx, "Settlement orchestrator stopped gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for orchestrator to stop: %w", ctx.Err())
	}
}

// Tick advances one batch of funding intents and one batch of payout intents.
// It returns ErrTickInProgress without doing anything when another tick is running.
func (o *Orchestrator) Tick(ctx context.Context) (err error) {
	if !o.ticking.CompareAndSwap(false, true) {
		metrics.TicksSkipped.Inc()
		return domain.ErrTickInProgress
	}
	defer o.ticking.Store(false)

	tickID := ulid.MustNewDefault(o.clock.Now()).String()
	started := o.clock.Now()
	defer func() {
		metrics.TickDuration.Observe(o.clock.Since(started).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick %s panicked: %v", tickID, r)
			logger.ErrorCtx(ctx, err, zap.String("tickID", tickID), zap.ByteString("stack", debug.Stack()))
		}
	}()

	logger.DebugCtx(ctx, "Settlement tick", zap.String("tickID", tickID))

	fundingErr := o.advanceFunding(ctx, tickID)
	payoutErr := o.advancePayouts(ctx, tickID)
	o.reportStuck(ctx, tickID)

	return errors.Join(fundingErr, payoutErr)
}

// advanceFunding mints every attested funding intent of the batch
func (o *Orchestrator) advanceFunding(ctx context.Context, tickID string) error {
	intents, err := o.store.ListFundingIntents(ctx, schema.FundingIntentStatusTransferSubmitted, o.config.FundingBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list submitted funding intents: %w", err)
	}

	for i := range intents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.advanceFundingIntent(ctx, tickID, &intents[i])
	}
	return nil
}

func (o *Orchestrator) advanceFundingIntent(ctx context.Context, tickID string, intent *schema.TreasuryFundingIntent) {
	fields := []zap.Field{
		zap.String("tickID", tickID),
		zap.String("intentID", intent.ID),
		zap.String("bountyID", intent.BountyID),
	}

	if intent.Attestation == "" {
		logger.WarnCtx(ctx, "Submitted funding intent has no attestation, leaving it for an operator", fields...)
		return
	}

	var mintTxID string
	err := o.call(ctx, "mint", func(callCtx context.Context) error {
		var err error
		mintTxID, err = o.minter.Mint(callCtx, o.config.TreasuryChain, intent.Attestation, intent.AttestationSignature)
		return err
	})
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to mint funding intent: %w", err), fields...)
		if err := o.ledger.FailFunding(ctx, intent.ID, err.Error()); err != nil {
			logger.ErrorCtx(ctx, err, fields...)
			return
		}
		metrics.IntentTransitions.WithLabelValues("funding", string(schema.FundingIntentStatusFailed)).Inc()
		return
	}

	balance, err := o.ledger.CreditFunding(ctx, intent.ID, mintTxID)
	if err != nil {
		// the mint landed but the credit did not commit; the intent stays transfer_submitted
		logger.ErrorCtx(ctx, err, append(fields, zap.String("mintTxID", mintTxID))...)
		return
	}
	metrics.IntentTransitions.WithLabelValues("funding", string(schema.FundingIntentStatusCredited)).Inc()

	logger.InfoCtx(ctx, "Funding intent credited", append(fields,
		zap.String("mintTxID", mintTxID),
		zap.String("amount", intent.Amount.String()),
		zap.String("available", balance.Available.String()))...)
}

// advancePayouts bridges every reserved payout intent of the batch
func (o *Orchestrator) advancePayouts(ctx context.Context, tickID string) error {
	intents, err := o.store.ListPayoutIntents(ctx, schema.PayoutIntentStatusCreated, o.config.PayoutBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list created payout intents: %w", err)
	}

	for i := range intents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.advancePayoutIntent(ctx, tickID, intents[i].ID)
	}
	return nil
}

func (o *Orchestrator) advancePayoutIntent(ctx context.Context, tickID string, intentID string) {
	fields := []zap.Field{
		zap.String("tickID", tickID),
		zap.String("intentID", intentID),
	}

	intent, err := o.ledger.StartPayout(ctx, intentID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			logger.DebugCtx(ctx, "Payout intent already taken", fields...)
			return
		}
		logger.ErrorCtx(ctx, err, fields...)
		return
	}
	metrics.IntentTransitions.WithLabelValues("payout", string(schema.PayoutIntentStatusExecuting)).Inc()
	fields = append(fields, zap.String("bountyID", intent.BountyID))

	req := BridgeRequest{
		IntentID:         intent.ID,
		SourceChain:      o.config.TreasuryChain,
		DestinationChain: domain.Chain(intent.DestinationChain),
		Recipient:        intent.Recipient,
		Amount:           intent.Amount,
	}

	var result *BridgeResult
	err = o.call(ctx, "bridge", func(callCtx context.Context) error {
		var err error
		result, err = o.bridger.Bridge(callCtx, req)
		if err == nil && result == nil {
			return fmt.Errorf("bridge returned no result")
		}
		return err
	})
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to bridge payout intent: %w", err), fields...)
		if err := o.ledger.CompensatePayout(ctx, intent.ID, err.Error()); err != nil {
			logger.ErrorCtx(ctx, err, fields...)
			return
		}
		metrics.IntentTransitions.WithLabelValues("payout", string(schema.PayoutIntentStatusFailed)).Inc()
		return
	}

	if err := o.ledger.ConfirmPayout(ctx, intent.ID, result.BridgeTxID, result.FinalTxID); err != nil {
		// the transfer went out but the confirmation did not commit; the intent stays executing
		logger.ErrorCtx(ctx, err, append(fields,
			zap.String("bridgeTxID", result.BridgeTxID),
			zap.String("finalTxID", result.FinalTxID))...)
		return
	}
	metrics.IntentTransitions.WithLabelValues("payout", string(schema.PayoutIntentStatusConfirmed)).Inc()

	logger.InfoCtx(ctx, "Payout intent confirmed", append(fields,
		zap.String("bridgeTxID", result.BridgeTxID),
		zap.String("finalTxID", result.FinalTxID),
		zap.String("amount", intent.Amount.String()))...)
}

// reportStuck warns about executing payouts that outlived the stuck threshold.
// They are never re-driven: the bridge may or may not have moved the funds.
func (o *Orchestrator) reportStuck(ctx context.Context, tickID string) {
	if o.config.StuckAfter <= 0 {
		return
	}

	intents, err := o.store.ListPayoutIntents(ctx, schema.PayoutIntentStatusExecuting, 0)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to list executing payout intents: %w", err), zap.String("tickID", tickID))
		return
	}

	stuck := 0
	now := o.clock.Now()
	for _, intent := range intents {
		age := now.Sub(intent.UpdatedAt)
		if age < o.config.StuckAfter {
			continue
		}
		stuck++
		logger.WarnCtx(ctx, "Payout intent stuck in executing, needs operator resolution",
			zap.String("tickID", tickID),
			zap.String("intentID", intent.ID),
			zap.String("bountyID", intent.BountyID),
			zap.Duration("age", age))
	}
	metrics.StuckIntents.WithLabelValues("payout").Set(float64(stuck))
}

// call runs fn with a per-attempt timeout, retrying transient failures with exponential backoff.
// Any other failure ends the retries immediately.
func (o *Orchestrator) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.config.RetryInitialInterval
	b.MaxElapsedTime = o.config.RetryMaxElapsed

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s timed out: %w", domain.ErrTransient, name, err)
		}
		if !domain.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var attempts int
	notify := func(err error, next time.Duration) {
		attempts++
		metrics.ExternalCallRetries.WithLabelValues(name).Inc()
		logger.WarnCtx(ctx, "Settlement call failed, retrying",
			zap.String("call", name),
			zap.Error(err),
			zap.Int("attempt", attempts),
			zap.Duration("next_retry_in", next))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, o.config.MaxRetries), ctx)
	return backoff.RetryNotify(operation, policy, notify)
}
