// Package ledger implements every multi-row read-model and treasury mutation.
// Each exported method runs as exactly one store transaction.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

// Entry is one decoded ledger event ready to be applied
type Entry struct {
	Source   domain.SourceKey
	DedupKey string
	BountyID string
	Token    string
	Actor    string
	Amount   decimal.Decimal
	URL      string
	TxID     string
	Fields   map[string]string
}

// Ledger applies projected events and treasury transitions to a store
type Ledger struct {
	store store.Store
}

// New creates a ledger over a store
func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// CreateBounty upserts a bounty with the descriptive fields of a bounty_created event.
// It reports whether anything changed.
func (l *Ledger) CreateBounty(ctx context.Context, bountyID, creator, issueURL string, source domain.SourceKey) (bool, error) {
	var changed bool
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		bounty, created, err := ensureBounty(ctx, tx, bountyID, source)
		if err != nil {
			return err
		}
		if !created && bounty.Creator == creator && bounty.IssueURL == issueURL {
			return nil
		}

		bounty.Creator = creator
		bounty.IssueURL = issueURL
		if bounty.SourceKey == "" {
			bounty.SourceKey = string(source)
		}
		changed = true
		return tx.SaveBounty(ctx, bounty)
	})
	if err != nil {
		return false, fmt.Errorf("failed to create bounty %s: %w", bountyID, err)
	}
	return changed, nil
}

// CloseBounty marks a bounty closed, creating an empty one first when it was never seen.
// It reports whether the status changed.
func (l *Ledger) CloseBounty(ctx context.Context, bountyID string, source domain.SourceKey) (bool, error) {
	var changed bool
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		bounty, _, err := ensureBounty(ctx, tx, bountyID, source)
		if err != nil {
			return err
		}
		if bounty.Status == schema.BountyStatusClosed {
			return nil
		}
		bounty.Status = schema.BountyStatusClosed
		changed = true
		return tx.SaveBounty(ctx, bounty)
	})
	if err != nil {
		return false, fmt.Errorf("failed to close bounty %s: %w", bountyID, err)
	}
	return changed, nil
}

// ApplyFunding records a funding and, the first time its dedup key is seen,
// adds the amount to funded and escrowed
func (l *Ledger) ApplyFunding(ctx context.Context, e Entry) (bool, error) {
	return l.applyRecord(ctx, schema.RecordKindFunding, e, func(a *schema.BountyAsset) {
		a.Funded = a.Funded.Add(e.Amount)
		a.Escrowed = a.Escrowed.Add(e.Amount)
	})
}

// ApplyClaim records a claim. Claims never move counters.
func (l *Ledger) ApplyClaim(ctx context.Context, e Entry) (bool, error) {
	return l.applyRecord(ctx, schema.RecordKindClaim, e, nil)
}

// ApplyPayout records a payout and, the first time its dedup key is seen,
// moves the amount from escrowed to paid. It fails with ErrInsufficientEscrow
// when escrowed would become negative.
func (l *Ledger) ApplyPayout(ctx context.Context, e Entry) (bool, error) {
	return l.applyRecord(ctx, schema.RecordKindPayout, e, func(a *schema.BountyAsset) {
		a.Paid = a.Paid.Add(e.Amount)
		a.Escrowed = a.Escrowed.Sub(e.Amount)
	})
}

// ApplyRefund records a refund and, the first time its dedup key is seen,
// moves the amount from escrowed to refunded
func (l *Ledger) ApplyRefund(ctx context.Context, e Entry) (bool, error) {
	return l.applyRecord(ctx, schema.RecordKindRefund, e, func(a *schema.BountyAsset) {
		a.Refunded = a.Refunded.Add(e.Amount)
		a.Escrowed = a.Escrowed.Sub(e.Amount)
	})
}

// applyRecord upserts the parents, then the record, then applies delta to the asset
// counters only when the record was inserted by this call
func (l *Ledger) applyRecord(ctx context.Context, kind schema.RecordKind, e Entry, delta func(*schema.BountyAsset)) (bool, error) {
	if e.BountyID == "" {
		return false, fmt.Errorf("%s record %s has no bounty id: %w", kind, e.DedupKey, domain.ErrInvalidEvent)
	}
	if e.Amount.IsNegative() {
		return false, fmt.Errorf("%s record %s has a negative amount: %w", kind, e.DedupKey, domain.ErrInvalidEvent)
	}

	raw, err := json.Marshal(e.Fields)
	if err != nil {
		return false, fmt.Errorf("failed to marshal %s record fields: %w", kind, err)
	}

	var inserted bool
	err = l.store.Transaction(ctx, func(tx store.Tx) error {
		if _, _, err := ensureBounty(ctx, tx, e.BountyID, e.Source); err != nil {
			return err
		}

		var asset *schema.BountyAsset
		if delta != nil {
			if asset, err = ensureAsset(ctx, tx, e.BountyID, e.Token); err != nil {
				return err
			}
		}

		inserted, err = tx.UpsertRecord(ctx, &schema.LedgerRecord{
			Kind:      kind,
			DedupKey:  e.DedupKey,
			BountyID:  e.BountyID,
			Token:     e.Token,
			Actor:     e.Actor,
			Amount:    e.Amount,
			URL:       e.URL,
			SourceKey: string(e.Source),
			TxID:      e.TxID,
			Raw:       raw,
		})
		if err != nil {
			return err
		}
		if !inserted || delta == nil {
			return nil
		}

		delta(asset)
		if asset.Escrowed.IsNegative() {
			return fmt.Errorf("bounty %s token %s escrowed would become %s: %w",
				e.BountyID, e.Token, asset.Escrowed, domain.ErrInsufficientEscrow)
		}
		return tx.SaveBountyAsset(ctx, asset)
	})
	if err != nil {
		return false, fmt.Errorf("failed to apply %s record %s: %w", kind, e.DedupKey, err)
	}

	return inserted, nil
}

// ensureBounty returns the bounty, inserting an empty open one when missing.
// The second return value reports whether it was inserted.
func ensureBounty(ctx context.Context, tx store.Tx, bountyID string, source domain.SourceKey) (*schema.Bounty, bool, error) {
	bounty, err := tx.GetBounty(ctx, bountyID)
	if err != nil {
		return nil, false, err
	}
	if bounty != nil {
		return bounty, false, nil
	}

	bounty = &schema.Bounty{
		ID:        bountyID,
		SourceKey: string(source),
		Status:    schema.BountyStatusOpen,
	}
	if err := tx.SaveBounty(ctx, bounty); err != nil {
		return nil, false, err
	}
	return bounty, true, nil
}

// ensureAsset returns the asset counters, inserting a zeroed row when missing
func ensureAsset(ctx context.Context, tx store.Tx, bountyID, token string) (*schema.BountyAsset, error) {
	asset, err := tx.GetBountyAsset(ctx, bountyID, token)
	if err != nil {
		return nil, err
	}
	if asset != nil {
		return asset, nil
	}

	asset = &schema.BountyAsset{BountyID: bountyID, Token: token}
	if err := tx.SaveBountyAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}
