// Package storetest holds the behaviour every store.Store implementation must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

// Factory returns a fresh, empty store for one test
type Factory func(t *testing.T) store.Store

// Run runs the shared store tests against the stores produced by newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("Bounty", func(t *testing.T) { testBounty(t, newStore(t)) })
	t.Run("BountyAsset", func(t *testing.T) { testBountyAsset(t, newStore(t)) })
	t.Run("BountyAssetRejectsInconsistentEscrow", func(t *testing.T) { testBountyAssetInvariant(t, newStore(t)) })
	t.Run("UpsertRecordIsIdempotent", func(t *testing.T) { testUpsertRecord(t, newStore(t)) })
	t.Run("RecordKindsAreSeparate", func(t *testing.T) { testRecordKinds(t, newStore(t)) })
	t.Run("Cursor", func(t *testing.T) { testCursor(t, newStore(t)) })
	t.Run("FundingIntents", func(t *testing.T) { testFundingIntents(t, newStore(t)) })
	t.Run("PayoutIntents", func(t *testing.T) { testPayoutIntents(t, newStore(t)) })
	t.Run("TreasuryLedger", func(t *testing.T) { testTreasuryLedger(t, newStore(t)) })
	t.Run("TransactionRollsBackOnError", func(t *testing.T) { testTransactionRollback(t, newStore(t)) })
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func saveBounty(t *testing.T, s store.Store, id string) {
	t.Helper()
	require.NoError(t, s.SaveBounty(context.Background(), &schema.Bounty{
		ID:     id,
		Status: schema.BountyStatusOpen,
	}))
}

func testBounty(t *testing.T, s store.Store) {
	ctx := context.Background()

	got, err := s.GetBounty(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SaveBounty(ctx, &schema.Bounty{
		ID:        "bounty-1",
		SourceKey: "eip155:8453:0xescrow",
		Creator:   "0xcreator",
		IssueURL:  "https://github.com/acme/app/issues/1",
		Status:    schema.BountyStatusOpen,
	}))

	got, err = s.GetBounty(ctx, "bounty-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0xcreator", got.Creator)
	assert.Equal(t, schema.BountyStatusOpen, got.Status)

	got.Status = schema.BountyStatusClosed
	require.NoError(t, s.SaveBounty(ctx, got))

	got, err = s.GetBounty(ctx, "bounty-1")
	require.NoError(t, err)
	assert.Equal(t, schema.BountyStatusClosed, got.Status)
	assert.Equal(t, "https://github.com/acme/app/issues/1", got.IssueURL)
}

func testBountyAsset(t *testing.T, s store.Store) {
	ctx := context.Background()
	saveBounty(t, s, "bounty-1")

	got, err := s.GetBountyAsset(ctx, "bounty-1", "0xusdc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SaveBountyAsset(ctx, &schema.BountyAsset{
		BountyID: "bounty-1",
		Token:    "0xusdc",
		Funded:   amount(100),
		Escrowed: amount(60),
		Paid:     amount(40),
		Refunded: amount(0),
	}))
	require.NoError(t, s.SaveBountyAsset(ctx, &schema.BountyAsset{
		BountyID: "bounty-1",
		Token:    "0xdai",
		Funded:   amount(5),
		Escrowed: amount(5),
	}))

	got, err = s.GetBountyAsset(ctx, "bounty-1", "0xusdc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Escrowed.Equal(amount(60)))
	assert.True(t, got.Paid.Equal(amount(40)))

	assets, err := s.ListBountyAssets(ctx, "bounty-1")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "0xdai", assets[0].Token)
	assert.Equal(t, "0xusdc", assets[1].Token)
}

func testBountyAssetInvariant(t *testing.T, s store.Store) {
	ctx := context.Background()
	saveBounty(t, s, "bounty-1")

	err := s.Transaction(ctx, func(tx store.Tx) error {
		return tx.SaveBountyAsset(ctx, &schema.BountyAsset{
			BountyID: "bounty-1",
			Token:    "0xusdc",
			Funded:   amount(10),
			Escrowed: amount(-5),
			Paid:     amount(15),
		})
	})
	assert.Error(t, err)

	got, err := s.GetBountyAsset(ctx, "bounty-1", "0xusdc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testUpsertRecord(t *testing.T, s store.Store) {
	ctx := context.Background()
	saveBounty(t, s, "bounty-1")

	record := &schema.LedgerRecord{
		Kind:      schema.RecordKindFunding,
		DedupKey:  "0xtx:1",
		BountyID:  "bounty-1",
		Token:     "0xusdc",
		Actor:     "0xfunder",
		Amount:    amount(100),
		SourceKey: "eip155:8453:0xescrow",
		TxID:      "0xtx",
		Raw:       []byte(`{"amount":"100"}`),
	}
	inserted, err := s.UpsertRecord(ctx, record)
	require.NoError(t, err)
	assert.True(t, inserted)

	again := &schema.LedgerRecord{
		Kind:      schema.RecordKindFunding,
		DedupKey:  "0xtx:1",
		BountyID:  "bounty-1",
		Token:     "0xusdc",
		Actor:     "0xfunder-renamed",
		Amount:    amount(999),
		SourceKey: "eip155:8453:0xescrow",
		TxID:      "0xtx",
	}
	inserted, err = s.UpsertRecord(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := s.ListRecords(ctx, schema.RecordKindFunding, "bounty-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0xfunder-renamed", records[0].Actor)
	assert.True(t, records[0].Amount.Equal(amount(100)), "amount of an existing record must not change")

	got, err := s.GetRecord(ctx, schema.RecordKindFunding, "0xtx:1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schema.RecordKindFunding, got.Kind)
}

func testRecordKinds(t *testing.T, s store.Store) {
	ctx := context.Background()
	saveBounty(t, s, "bounty-1")

	for _, kind := range []schema.RecordKind{schema.RecordKindClaim, schema.RecordKindPayout} {
		inserted, err := s.UpsertRecord(ctx, &schema.LedgerRecord{
			Kind:      kind,
			DedupKey:  "0xtx:7",
			BountyID:  "bounty-1",
			SourceKey: "eip155:8453:0xescrow",
			TxID:      "0xtx",
		})
		require.NoError(t, err)
		assert.True(t, inserted, "kind %s", kind)
	}

	got, err := s.GetRecord(ctx, schema.RecordKindRefund, "0xtx:7")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testCursor(t *testing.T, s store.Store) {
	ctx := context.Background()
	source := domain.NewSourceKey(domain.ChainBaseMainnet, "0xEscrow")

	cursor, err := s.GetCursor(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, cursor)

	require.NoError(t, s.SaveCursor(ctx, source, "100"))
	require.NoError(t, s.SaveCursor(ctx, source, "250"))

	cursor, err = s.GetCursor(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, domain.Cursor("250"), cursor)

	other, err := s.GetCursor(ctx, domain.NewSourceKey(domain.ChainSuiMainnet, "0xpkg"))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testFundingIntents(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"f-3", "f-1", "f-2"} {
		offset := map[string]time.Duration{"f-1": 0, "f-2": time.Second, "f-3": 2 * time.Second}[id]
		status := schema.FundingIntentStatusTransferSubmitted
		if i == 0 {
			status = schema.FundingIntentStatusCreated
		}
		require.NoError(t, s.SaveFundingIntent(ctx, &schema.TreasuryFundingIntent{
			ID:          id,
			BountyID:    "bounty-1",
			Sender:      "0xsender",
			SourceChain: string(domain.ChainEthereumMainnet),
			Amount:      amount(50),
			Status:      status,
			CreatedAt:   base.Add(offset),
		}))
	}

	intents, err := s.ListFundingIntents(ctx, schema.FundingIntentStatusTransferSubmitted, 0)
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, "f-1", intents[0].ID)
	assert.Equal(t, "f-2", intents[1].ID)

	intents, err = s.ListFundingIntents(ctx, schema.FundingIntentStatusTransferSubmitted, 1)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, "f-1", intents[0].ID)

	got, err := s.GetFundingIntent(ctx, "f-3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schema.FundingIntentStatusCreated, got.Status)
	assert.True(t, got.Amount.Equal(amount(50)))

	got.Status = schema.FundingIntentStatusFailed
	got.Error = "mint reverted"
	require.NoError(t, s.SaveFundingIntent(ctx, got))

	got, err = s.GetFundingIntent(ctx, "f-3")
	require.NoError(t, err)
	assert.Equal(t, schema.FundingIntentStatusFailed, got.Status)
	assert.Equal(t, "mint reverted", got.Error)

	missing, err := s.GetFundingIntent(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testPayoutIntents(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SavePayoutIntent(ctx, &schema.TreasuryPayoutIntent{
		ID:               "p-2",
		BountyID:         "bounty-1",
		Recipient:        "0xrecipient",
		DestinationChain: "solana:mainnet",
		Amount:           amount(40),
		Status:           schema.PayoutIntentStatusCreated,
		CreatedAt:        base.Add(time.Minute),
	}))
	require.NoError(t, s.SavePayoutIntent(ctx, &schema.TreasuryPayoutIntent{
		ID:               "p-1",
		BountyID:         "bounty-1",
		Recipient:        "0xrecipient",
		DestinationChain: "solana:mainnet",
		Amount:           amount(10),
		Status:           schema.PayoutIntentStatusCreated,
		CreatedAt:        base,
	}))

	intents, err := s.ListPayoutIntents(ctx, schema.PayoutIntentStatusCreated, 10)
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, "p-1", intents[0].ID)
	assert.Equal(t, "p-2", intents[1].ID)

	executing, err := s.ListPayoutIntents(ctx, schema.PayoutIntentStatusExecuting, 10)
	require.NoError(t, err)
	assert.Empty(t, executing)
}

func testTreasuryLedger(t *testing.T, s store.Store) {
	ctx := context.Background()

	got, err := s.GetTreasuryLedger(ctx, "bounty-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SaveTreasuryLedger(ctx, &schema.TreasuryBountyLedger{
		BountyID:    "bounty-1",
		TotalFunded: amount(100),
		Available:   amount(100),
	}))

	got, err = s.GetTreasuryLedger(ctx, "bounty-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Available.Equal(amount(100)))

	err = s.Transaction(ctx, func(tx store.Tx) error {
		return tx.SaveTreasuryLedger(ctx, &schema.TreasuryBountyLedger{
			BountyID:    "bounty-1",
			TotalFunded: amount(100),
			Available:   amount(-1),
		})
	})
	assert.Error(t, err)

	got, err = s.GetTreasuryLedger(ctx, "bounty-1")
	require.NoError(t, err)
	assert.True(t, got.Available.Equal(amount(100)))
}

func testTransactionRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := s.Transaction(ctx, func(tx store.Tx) error {
		if err := tx.SaveBounty(ctx, &schema.Bounty{ID: "bounty-rollback", Status: schema.BountyStatusOpen}); err != nil {
			return err
		}
		if err := tx.SaveCursor(ctx, "eip155:8453:0xescrow", "42"); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := s.GetBounty(ctx, "bounty-rollback")
	require.NoError(t, err)
	assert.Nil(t, got)

	cursor, err := s.GetCursor(ctx, "eip155:8453:0xescrow")
	require.NoError(t, err)
	assert.Empty(t, cursor)

	err = s.Transaction(ctx, func(tx store.Tx) error {
		b, err := tx.GetBounty(ctx, "bounty-rollback")
		if err != nil {
			return err
		}
		assert.Nil(t, b)
		return tx.SaveBounty(ctx, &schema.Bounty{ID: "bounty-commit", Status: schema.BountyStatusOpen})
	})
	require.NoError(t, err)

	got, err = s.GetBounty(ctx, "bounty-commit")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
