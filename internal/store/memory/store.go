package memory

import (
	"context"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

var _ store.Store = (*Store)(nil)

// The methods below run each call as its own transaction

func (s *Store) GetBounty(ctx context.Context, id string) (b *schema.Bounty, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		b, err = tx.GetBounty(ctx, id)
		return err
	})
	return b, err
}

func (s *Store) SaveBounty(ctx context.Context, bounty *schema.Bounty) error {
	return s.view(ctx, func(tx *memTx) error { return tx.SaveBounty(ctx, bounty) })
}

func (s *Store) GetBountyAsset(ctx context.Context, bountyID, token string) (a *schema.BountyAsset, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		a, err = tx.GetBountyAsset(ctx, bountyID, token)
		return err
	})
	return a, err
}

func (s *Store) ListBountyAssets(ctx context.Context, bountyID string) (assets []schema.BountyAsset, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		assets, err = tx.ListBountyAssets(ctx, bountyID)
		return err
	})
	return assets, err
}

func (s *Store) SaveBountyAsset(ctx context.Context, asset *schema.BountyAsset) error {
	return s.view(ctx, func(tx *memTx) error { return tx.SaveBountyAsset(ctx, asset) })
}

func (s *Store) GetRecord(ctx context.Context, kind schema.RecordKind, dedupKey string) (r *schema.LedgerRecord, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		r, err = tx.GetRecord(ctx, kind, dedupKey)
		return err
	})
	return r, err
}

func (s *Store) ListRecords(ctx context.Context, kind schema.RecordKind, bountyID string) (records []schema.LedgerRecord, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		records, err = tx.ListRecords(ctx, kind, bountyID)
		return err
	})
	return records, err
}

func (s *Store) UpsertRecord(ctx context.Context, record *schema.LedgerRecord) (inserted bool, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		inserted, err = tx.UpsertRecord(ctx, record)
		return err
	})
	return inserted, err
}

func (s *Store) GetCursor(ctx context.Context, source domain.SourceKey) (c domain.Cursor, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		c, err = tx.GetCursor(ctx, source)
		return err
	})
	return c, err
}

func (s *Store) SaveCursor(ctx context.Context, source domain.SourceKey, cursor domain.Cursor) error {
	return s.view(ctx, func(tx *memTx) error { return tx.SaveCursor(ctx, source, cursor) })
}

func (s *Store) GetFundingIntent(ctx context.Context, id string) (i *schema.TreasuryFundingIntent, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		i, err = tx.GetFundingIntent(ctx, id)
		return err
	})
	return i, err
}

func (s *Store) SaveFundingIntent(ctx context.Context, intent *schema.TreasuryFundingIntent) error {
	return s.view(ctx, func(tx *memTx) error { return tx.SaveFundingIntent(ctx, intent) })
}

func (s *Store) ListFundingIntents(ctx context.Context, status schema.FundingIntentStatus, limit int) (intents []schema.TreasuryFundingIntent, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		intents, err = tx.ListFundingIntents(ctx, status, limit)
		return err
	})
	return intents, err
}

func (s *Store) GetPayoutIntent(ctx context.Context, id string) (i *schema.TreasuryPayoutIntent, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		i, err = tx.GetPayoutIntent(ctx, id)
		return err
	})
	return i, err
}

func (s *Store) SavePayoutIntent(ctx context.Context, intent *schema.TreasuryPayoutIntent) error {
	return s.view(ctx, func(tx *memTx) error { return tx.SavePayoutIntent(ctx, intent) })
}

func (s *Store) ListPayoutIntents(ctx context.Context, status schema.PayoutIntentStatus, limit int) (intents []schema.TreasuryPayoutIntent, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		intents, err = tx.ListPayoutIntents(ctx, status, limit)
		return err
	})
	return intents, err
}

func (s *Store) GetTreasuryLedger(ctx context.Context, bountyID string) (l *schema.TreasuryBountyLedger, err error) {
	err = s.view(ctx, func(tx *memTx) error {
		l, err = tx.GetTreasuryLedger(ctx, bountyID)
		return err
	})
	return l, err
}

func (s *Store) SaveTreasuryLedger(ctx context.Context, ledger *schema.TreasuryBountyLedger) error {
	return s.view(ctx, func(tx *memTx) error { return tx.SaveTreasuryLedger(ctx, ledger) })
}
