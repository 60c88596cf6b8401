// Package projector folds the events of one ledger source into the read model.
// It backfills from the persisted cursor, then tails the source, persisting the cursor after every page.
package projector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/ledger"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/messaging"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/source"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
)

const (
	phaseBackfill = "backfill"
	phaseTail     = "tail"
)

// Config holds the configuration for a projector
type Config struct {
	PageSize     int
	SafetyWindow uint64
	PollInterval time.Duration // pull sources are re-queried, push sources re-subscribed, after this long
}

// handler applies one event and returns the change to announce when it mutated the read model
type handler func(ctx context.Context, event domain.LedgerEvent) (*domain.LedgerChange, error)

// Projector reconciles one source into the store
type Projector struct {
	config   Config
	source   source.Source
	store    store.Store
	ledger   *ledger.Ledger
	notifier messaging.Notifier
	clock    adapter.Clock
	handlers map[domain.EventType]handler
}

// New creates a projector for src. notifier may be nil.
func New(config Config, src source.Source, st store.Store, notifier messaging.Notifier, clock adapter.Clock) *Projector {
	if config.PageSize <= 0 {
		config.PageSize = domain.DEFAULT_PAGE_SIZE
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 15 * time.Second
	}

	p := &Projector{
		config:   config,
		source:   src,
		store:    st,
		ledger:   ledger.New(st),
		notifier: notifier,
		clock:    clock,
	}
	p.handlers = map[domain.EventType]handler{
		domain.EventTypeBountyCreated:  p.bountyCreated,
		domain.EventTypeBountyFunded:   p.bountyFunded,
		domain.EventTypeClaimSubmitted: p.claimSubmitted,
		domain.EventTypeBountyPaid:     p.bountyPaid,
		domain.EventTypeBountyRefunded: p.bountyRefunded,
		domain.EventTypeBountyClosed:   p.bountyClosed,
	}
	return p
}

// Name returns the projector name, one per source
func (p *Projector) Name() string {
	return "projector:" + string(p.source.Key())
}

// Run projects the source until ctx is canceled.
// It resumes from StartCursor(persisted, SafetyWindow), backfills until the source reports no more pages,
// then tails: push sources through Subscribe, pull sources by re-querying every PollInterval.
// A failed subscription falls back to a backfill from the last persisted position before re-subscribing.
func (p *Projector) Run(ctx context.Context) error {
	key := p.source.Key()

	persisted, cursor, err := p.start(ctx)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Starting projector",
		zap.String("source", string(key)),
		zap.String("persisted", string(persisted)),
		zap.String("from", string(cursor)))

	push, isPush := p.source.(source.PushSource)
	phase := phaseBackfill

	for {
		cursor, err = p.backfill(ctx, cursor, phase)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ErrorCtx(ctx, fmt.Errorf("projection of %s interrupted: %w", key, err),
				zap.String("phase", phase),
				zap.String("cursor", string(cursor)))
		} else {
			phase = phaseTail
			if isPush {
				err = push.Subscribe(ctx, cursor, func(ctx context.Context, page source.Page) error {
					if err := p.ProcessPage(ctx, page, phaseTail); err != nil {
						return err
					}
					if page.Next != "" {
						cursor = page.Next
					}
					return nil
				})
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.WarnCtx(ctx, "Subscription ended, catching up before re-subscribing",
					zap.String("source", string(key)),
					zap.String("cursor", string(cursor)),
					zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(p.config.PollInterval):
		}
	}
}

// start resolves the cursor to resume from, retrying every PollInterval until ctx is canceled
func (p *Projector) start(ctx context.Context) (domain.Cursor, domain.Cursor, error) {
	key := p.source.Key()
	for {
		persisted, err := p.store.GetCursor(ctx, key)
		if err != nil {
			err = fmt.Errorf("failed to get cursor for %s: %w", key, err)
		} else {
			var cursor domain.Cursor
			cursor, err = p.source.StartCursor(ctx, persisted, p.config.SafetyWindow)
			if err == nil {
				return persisted, cursor, nil
			}
			err = fmt.Errorf("failed to compute start cursor for %s: %w", key, err)
		}

		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		logger.ErrorCtx(ctx, err, zap.Duration("retryIn", p.config.PollInterval))

		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-p.clock.After(p.config.PollInterval):
		}
	}
}

// backfill queries pages from cursor until the source reports it reached its head.
// It returns the cursor to continue from.
func (p *Projector) backfill(ctx context.Context, cursor domain.Cursor, phase string) (domain.Cursor, error) {
	for {
		if err := ctx.Err(); err != nil {
			return cursor, err
		}

		page, err := p.source.QueryEvents(ctx, cursor, p.config.PageSize)
		if err != nil {
			return cursor, fmt.Errorf("failed to query events after %q: %w", cursor, err)
		}
		if err := p.ProcessPage(ctx, page, phase); err != nil {
			return cursor, err
		}
		if page.Next != "" {
			cursor = page.Next
		}
		if !page.HasMore {
			return cursor, nil
		}
	}
}

// ProcessPage applies a page and persists its cursor.
// The cursor is held back when an event failed for a reason a replay could fix, so the page is replayed.
func (p *Projector) ProcessPage(ctx context.Context, page source.Page, phase string) error {
	if err := p.ProcessBatch(ctx, page.Events); err != nil {
		return err
	}
	if page.Next == "" {
		return nil
	}
	if err := p.saveCursor(ctx, page.Next); err != nil {
		return err
	}
	metrics.PagesProcessed.WithLabelValues(string(p.source.Key()), phase).Inc()
	return nil
}

// ProcessBatch applies every event in order. Events that can never apply are logged, counted and
// skipped: undecodable or unknown events, overdrawn escrow, panics and values the store refuses.
// Other failures are logged and returned joined once the rest of the batch was applied.
func (p *Projector) ProcessBatch(ctx context.Context, events []domain.LedgerEvent) error {
	var errs []error
	for _, event := range events {
		change, err := p.apply(ctx, event)
		if err != nil {
			if skippable(err) {
				metrics.EventsSkipped.WithLabelValues(string(p.source.Key()), skipReason(err)).Inc()
				logger.WarnCtx(ctx, "Skipped ledger event",
					zap.String("source", string(event.Source)),
					zap.String("cursor", string(event.Cursor)),
					zap.String("dedupKey", event.DedupKey),
					zap.String("type", string(event.Type)),
					zap.Error(err))
				continue
			}

			logger.ErrorCtx(ctx, fmt.Errorf("failed to apply ledger event: %w", err),
				zap.String("source", string(event.Source)),
				zap.String("cursor", string(event.Cursor)),
				zap.String("dedupKey", event.DedupKey),
				zap.String("type", string(event.Type)))
			errs = append(errs, err)
			continue
		}
		if change == nil {
			continue
		}

		metrics.EventsApplied.WithLabelValues(string(p.source.Key()), string(event.Type)).Inc()
		p.notify(ctx, *change)
	}
	return errors.Join(errs...)
}

// apply dispatches one event, turning a panic into an error
func (p *Projector) apply(ctx context.Context, event domain.LedgerEvent) (change *domain.LedgerChange, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic while applying event: %v", errPanicked, r)
		}
	}()

	h, ok := p.handlers[event.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEventType, event.Type)
	}
	if event.Source == "" {
		event.Source = p.source.Key()
	}
	if err := checkText(event); err != nil {
		return nil, err
	}
	return h(ctx, event)
}

// checkText rejects strings the store cannot hold: invalid UTF-8 or NUL bytes
func checkText(event domain.LedgerEvent) error {
	bad := func(s string) bool {
		return !utf8.ValidString(s) || strings.IndexByte(s, 0) >= 0
	}

	if bad(event.DedupKey) || bad(event.TxID) {
		return fmt.Errorf("%w: malformed text in %q", domain.ErrInvalidEvent, event.DedupKey)
	}
	for k, v := range event.Fields {
		if bad(k) || bad(v) {
			return fmt.Errorf("%w: malformed text in field %q of %q", domain.ErrInvalidEvent, k, event.DedupKey)
		}
	}
	return nil
}

// notify runs the side calls of a committed change. Failures are logged and dropped.
func (p *Projector) notify(ctx context.Context, change domain.LedgerChange) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, change); err != nil {
		logger.WarnCtx(ctx, "Side call failed after commit",
			zap.String("dedupKey", change.DedupKey),
			zap.String("type", string(change.Type)),
			zap.Error(err))
	}
}

// saveCursor persists next unless the source can tell it is behind the stored cursor
func (p *Projector) saveCursor(ctx context.Context, next domain.Cursor) error {
	key := p.source.Key()
	comparer, ordered := p.source.(source.CursorComparer)

	return p.store.Transaction(ctx, func(tx store.Tx) error {
		if ordered {
			current, err := tx.GetCursor(ctx, key)
			if err != nil {
				return fmt.Errorf("failed to get cursor for %s: %w", key, err)
			}
			if current != "" {
				cmp, err := comparer.CompareCursors(next, current)
				if err != nil {
					return fmt.Errorf("failed to compare cursors of %s: %w", key, err)
				}
				if cmp < 0 {
					logger.WarnCtx(ctx, "Refusing to move cursor backwards",
						zap.String("source", string(key)),
						zap.String("current", string(current)),
						zap.String("next", string(next)))
					return nil
				}
			}
		}

		if err := tx.SaveCursor(ctx, key, next); err != nil {
			return fmt.Errorf("failed to save cursor for %s: %w", key, err)
		}
		return nil
	})
}

func (p *Projector) bountyCreated(ctx context.Context, event domain.LedgerEvent) (*domain.LedgerChange, error) {
	bountyID := event.Field(domain.FieldBountyID)
	if bountyID == "" {
		return nil, fmt.Errorf("%w: %s has no bounty id", domain.ErrInvalidEvent, event.DedupKey)
	}

	changed, err := p.ledger.CreateBounty(ctx, bountyID, event.Field(domain.FieldCreator), event.Field(domain.FieldIssueURL), event.Source)
	if err != nil || !changed {
		return nil, err
	}
	return changeOf(event, bountyID, "", decimal.Zero, event.Field(domain.FieldCreator)), nil
}

func (p *Projector) bountyClosed(ctx context.Context, event domain.LedgerEvent) (*domain.LedgerChange, error) {
	bountyID := event.Field(domain.FieldBountyID)
	if bountyID == "" {
		return nil, fmt.Errorf("%w: %s has no bounty id", domain.ErrInvalidEvent, event.DedupKey)
	}

	changed, err := p.ledger.CloseBounty(ctx, bountyID, event.Source)
	if err != nil || !changed {
		return nil, err
	}
	return changeOf(event, bountyID, "", decimal.Zero, ""), nil
}

func (p *Projector) claimSubmitted(ctx context.Context, event domain.LedgerEvent) (*domain.LedgerChange, error) {
	entry := entryOf(event, domain.FieldClaimant)
	entry.URL = event.Field(domain.FieldClaimURL)
	return p.record(ctx, event, entry, p.ledger.ApplyClaim)
}

func (p *Projector) bountyFunded(ctx context.Context, event domain.LedgerEvent) (*domain.LedgerChange, error) {
	return p.amountRecord(ctx, event, domain.FieldFunder, p.ledger.ApplyFunding)
}

func (p *Projector) bountyPaid(ctx context.Context, event domain.LedgerEvent) (*domain.LedgerChange, error) {
	return p.amountRecord(ctx, event, domain.FieldRecipient, p.ledger.ApplyPayout)
}

func (p *Projector) bountyRefunded(ctx context.Context, event domain.LedgerEvent) (*domain.LedgerChange, error) {
	return p.amountRecord(ctx, event, domain.FieldFunder, p.ledger.ApplyRefund)
}

func (p *Projector) amountRecord(ctx context.Context, event domain.LedgerEvent, actorField string, apply func(context.Context, ledger.Entry) (bool, error)) (*domain.LedgerChange, error) {
	amount, err := domain.ParseAmount(event.Field(domain.FieldAmount))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", event.DedupKey, err)
	}
	entry := entryOf(event, actorField)
	entry.Amount = amount
	return p.record(ctx, event, entry, apply)
}

func (p *Projector) record(ctx context.Context, event domain.LedgerEvent, entry ledger.Entry, apply func(context.Context, ledger.Entry) (bool, error)) (*domain.LedgerChange, error) {
	if entry.BountyID == "" {
		return nil, fmt.Errorf("%w: %s has no bounty id", domain.ErrInvalidEvent, event.DedupKey)
	}
	if entry.DedupKey == "" {
		return nil, fmt.Errorf("%w: event without dedup key", domain.ErrInvalidEvent)
	}

	inserted, err := apply(ctx, entry)
	if err != nil || !inserted {
		return nil, err
	}
	return changeOf(event, entry.BountyID, entry.Token, entry.Amount, entry.Actor), nil
}

func entryOf(event domain.LedgerEvent, actorField string) ledger.Entry {
	return ledger.Entry{
		Source:   event.Source,
		DedupKey: event.DedupKey,
		BountyID: event.Field(domain.FieldBountyID),
		Token:    event.Field(domain.FieldToken),
		Actor:    event.Field(actorField),
		TxID:     event.TxID,
		Fields:   event.Fields,
	}
}

func changeOf(event domain.LedgerEvent, bountyID, token string, amount decimal.Decimal, actor string) *domain.LedgerChange {
	change := &domain.LedgerChange{
		Type:      event.Type,
		Source:    event.Source,
		DedupKey:  event.DedupKey,
		BountyID:  bountyID,
		Token:     token,
		Actor:     actor,
		Fields:    event.Fields,
		Timestamp: event.Timestamp,
	}
	if !amount.IsZero() {
		change.Amount = amount.String()
	}
	return change
}

var errPanicked = errors.New("event handler panicked")

// skippable reports errors a replay of the same event would hit again.
// Connectivity, lock and serialization failures are not, so they hold the cursor.
func skippable(err error) bool {
	return errors.Is(err, domain.ErrInvalidEvent) ||
		errors.Is(err, domain.ErrUnknownEventType) ||
		errors.Is(err, domain.ErrInsufficientEscrow) ||
		errors.Is(err, errPanicked) ||
		store.IsDataError(err)
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownEventType):
		return "unknown_type"
	case errors.Is(err, domain.ErrInsufficientEscrow):
		return "insufficient_escrow"
	case errors.Is(err, errPanicked):
		return "panic"
	case store.IsDataError(err):
		return "rejected"
	default:
		return "invalid"
	}
}
