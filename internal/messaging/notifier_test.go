package messaging_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/alitto/pond/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/messaging"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func change() domain.LedgerChange {
	return domain.LedgerChange{
		Type:     domain.EventTypeBountyFunded,
		Source:   "eip155:8453:0xescrow",
		DedupKey: "0xtx:1",
		BountyID: "0xb1",
		Amount:   "100",
	}
}

func TestFanOut_DeliversToEveryNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := pond.NewPool(4)
	defer pool.StopAndWait()

	first := mocks.NewMockNotifier(ctrl)
	second := mocks.NewMockNotifier(ctrl)
	ctx := context.Background()

	first.EXPECT().Notify(ctx, change()).Return(nil)
	second.EXPECT().Notify(ctx, change()).Return(nil)

	fanOut := messaging.NewFanOut(pool, first, second)
	assert.Equal(t, "fanout", fanOut.Name())
	require.NoError(t, fanOut.Notify(ctx, change()))
}

func TestFanOut_FailureDoesNotStopOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := pond.NewPool(4)
	defer pool.StopAndWait()

	failing := mocks.NewMockNotifier(ctrl)
	healthy := mocks.NewMockNotifier(ctrl)
	ctx := context.Background()

	failing.EXPECT().Name().Return("jetstream").AnyTimes()
	failing.EXPECT().Notify(ctx, gomock.Any()).Return(errors.New("nats: timeout"))
	healthy.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	err := messaging.NewFanOut(pool, failing, healthy).Notify(ctx, change())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jetstream: nats: timeout")
}

func TestFanOut_Empty(t *testing.T) {
	pool := pond.NewPool(1)
	defer pool.StopAndWait()

	assert.NoError(t, messaging.NewFanOut(pool).Notify(context.Background(), change()))
}
