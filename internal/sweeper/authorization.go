package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/authorization"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
)

const (
	DEFAULT_AUTHORIZATION_SWEEP_INTERVAL = time.Minute
)

// AuthorizationSweeperConfig holds configuration for the authorization sweeper
type AuthorizationSweeperConfig struct {
	Interval time.Duration // Time to sleep between sweep cycles
}

// authorizationSweeper drops expired pending payout authorizations
type authorizationSweeper struct {
	config    *AuthorizationSweeperConfig
	pending   authorization.PendingStore
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewAuthorizationSweeper creates a new authorization sweeper
func NewAuthorizationSweeper(config *AuthorizationSweeperConfig, pending authorization.PendingStore, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_AUTHORIZATION_SWEEP_INTERVAL
	}
	return &authorizationSweeper{
		config:    config,
		pending:   pending,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *authorizationSweeper) Name() string {
	return "authorization-sweeper"
}

// Start sweeps every interval until the context is canceled or stop is requested
func (s *authorizationSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting authorization sweeper", zap.Duration("interval", s.config.Interval))

	for {
		s.runSweepCycle(ctx)

		if !s.sleep(ctx, s.config.Interval) {
			logger.InfoCtx(ctx, "Authorization sweeper stopping")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *authorizationSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping authorization sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Authorization sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Authorization sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single sweep cycle
func (s *authorizationSweeper) runSweepCycle(ctx context.Context) {
	dropped, err := s.pending.Sweep(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to sweep pending authorizations: %w", err))
		return
	}
	if dropped == 0 {
		return
	}

	metrics.PendingAuthorizations.WithLabelValues("expired").Add(float64(dropped))
	logger.InfoCtx(ctx, "Dropped expired payout authorizations", zap.Int("count", dropped))
}

// sleep waits for duration and reports false when interrupted
func (s *authorizationSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
