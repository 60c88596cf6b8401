package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
)

// Notifier receives committed ledger changes. Notifications are best-effort side calls:
// they run after the mutation committed and their failure never rolls anything back.
//
//go:generate mockgen -source=notifier.go -destination=../mocks/notifier.go -package=mocks -mock_names=Notifier=MockNotifier
type Notifier interface {
	// Name identifies the notifier in logs and metrics
	Name() string
	// Notify delivers one committed change
	Notify(ctx context.Context, change domain.LedgerChange) error
}

// FanOut delivers every change to a set of notifiers concurrently on a shared worker pool
type FanOut struct {
	pool      pond.Pool
	notifiers []Notifier
}

var _ Notifier = (*FanOut)(nil)

// NewFanOut creates a notifier broadcasting to notifiers on pool
func NewFanOut(pool pond.Pool, notifiers ...Notifier) *FanOut {
	return &FanOut{pool: pool, notifiers: notifiers}
}

func (f *FanOut) Name() string {
	return "fanout"
}

// Notify waits for every notifier and returns the failures joined.
// A failing notifier does not prevent the others from receiving the change.
func (f *FanOut) Notify(ctx context.Context, change domain.LedgerChange) error {
	if len(f.notifiers) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	group := f.pool.NewGroup()
	for _, n := range f.notifiers {
		group.Submit(func() {
			if err := n.Notify(ctx, change); err != nil {
				metrics.SideCallFailures.WithLabelValues(n.Name()).Inc()
				logger.WarnCtx(ctx, "Notifier failed",
					zap.String("notifier", n.Name()),
					zap.String("dedupKey", change.DedupKey),
					zap.String("type", string(change.Type)),
					zap.Error(err))

				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
				mu.Unlock()
			}
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	return errors.Join(errs...)
}
