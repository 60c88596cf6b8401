package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/memory"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
	"github.com/feral-file/ff-bounty-ledger/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.New()
	})
}

func TestTransaction_RecoversPanic(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx store.Tx) error {
		_ = tx.SaveBounty(ctx, &schema.Bounty{ID: "bounty-1"})
		panic("unexpected")
	})
	require.Error(t, err)

	got, err := s.GetBounty(ctx, "bounty-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransaction_CanceledContext(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Transaction(ctx, func(tx store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTransaction_Serialized(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.SaveTreasuryLedger(ctx, &schema.TreasuryBountyLedger{BountyID: "bounty-1"}))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Transaction(ctx, func(tx store.Tx) error {
				l, err := tx.GetTreasuryLedger(ctx, "bounty-1")
				if err != nil {
					return err
				}
				l.TotalFunded = l.TotalFunded.Add(decimal.NewFromInt(1))
				l.Available = l.Available.Add(decimal.NewFromInt(1))
				return tx.SaveTreasuryLedger(ctx, l)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	l, err := s.GetTreasuryLedger(ctx, "bounty-1")
	require.NoError(t, err)
	assert.True(t, l.Available.Equal(decimal.NewFromInt(50)))
	assert.True(t, l.TotalFunded.Equal(decimal.NewFromInt(50)))
}

func TestUpsertRecord_RequiresBounty(t *testing.T) {
	s := memory.New()
	_, err := s.UpsertRecord(context.Background(), &schema.LedgerRecord{
		Kind:     schema.RecordKindFunding,
		DedupKey: "0xtx:0",
		BountyID: "missing",
	})
	assert.Error(t, err)
}
