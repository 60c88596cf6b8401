package block_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/block"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type testBlockProviderMocks struct {
	ctrl     *gomock.Controller
	fetcher  *mocks.MockBlockFetcher
	clock    *mocks.MockClock
	provider block.Provider
}

func setupTest(t *testing.T, confirmations uint64) *testBlockProviderMocks {
	ctrl := gomock.NewController(t)

	mockFetcher := mocks.NewMockBlockFetcher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)

	provider := block.NewProvider(mockFetcher, block.Config{
		TTL:           10 * time.Second,
		StaleWindow:   2 * time.Minute,
		Confirmations: confirmations,
	}, mockClock)

	return &testBlockProviderMocks{
		ctrl:     ctrl,
		fetcher:  mockFetcher,
		clock:    mockClock,
		provider: provider,
	}
}

func TestProvider_FinalizedHead_SubtractsConfirmations(t *testing.T) {
	tm := setupTest(t, 5)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	head, err := tm.provider.FinalizedHead(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(995), head)
}

func TestProvider_FinalizedHead_YoungChain(t *testing.T) {
	tm := setupTest(t, 5)
	ctx := context.Background()

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(3), nil)

	head, err := tm.provider.FinalizedHead(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), head)
}

func TestProvider_FinalizedHead_UsesCacheWithinTTL(t *testing.T) {
	tm := setupTest(t, 0)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	head, err := tm.provider.FinalizedHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), head)

	// fetcher is called only once
	tm.clock.EXPECT().Now().Return(now.Add(5 * time.Second))
	head, err = tm.provider.FinalizedHead(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), head)
}

func TestProvider_FinalizedHead_RefreshesAfterTTL(t *testing.T) {
	tm := setupTest(t, 0)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)
	_, err := tm.provider.FinalizedHead(ctx)
	require.NoError(t, err)

	tm.clock.EXPECT().Now().Return(now.Add(15 * time.Second))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1100), nil)

	head, err := tm.provider.FinalizedHead(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1100), head)
}

func TestProvider_FinalizedHead_StaleFallback(t *testing.T) {
	tm := setupTest(t, 0)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fetchError := errors.New("network error")

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)
	_, err := tm.provider.FinalizedHead(ctx)
	require.NoError(t, err)

	// within the stale window the cached head is served
	tm.clock.EXPECT().Now().Return(now.Add(30 * time.Second))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), fetchError)
	head, err := tm.provider.FinalizedHead(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), head)

	// beyond it the error surfaces
	tm.clock.EXPECT().Now().Return(now.Add(5 * time.Minute))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), fetchError)
	_, err = tm.provider.FinalizedHead(ctx)
	assert.ErrorIs(t, err, fetchError)
	assert.Contains(t, err.Error(), "no valid cache available")
}

func TestProvider_BlockTimestamp_Cached(t *testing.T) {
	tm := setupTest(t, 0)
	ctx := context.Background()
	blockTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(42)).Return(blockTime, nil).Times(1)

	for range 3 {
		ts, err := tm.provider.BlockTimestamp(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, blockTime, ts)
	}
}

func TestProvider_BlockTimestamp_Error(t *testing.T) {
	tm := setupTest(t, 0)
	ctx := context.Background()

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(42)).Return(time.Time{}, errors.New("boom"))

	_, err := tm.provider.BlockTimestamp(ctx, 42)
	assert.Error(t, err)
}

func TestEthFetcher(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockEthClient(ctrl)
	ctx := context.Background()

	client.EXPECT().BlockNumber(ctx).Return(uint64(77), nil)
	client.EXPECT().HeaderByNumber(ctx, big.NewInt(77)).Return(&types.Header{Time: 1767225600}, nil)

	fetcher := block.NewEthFetcher(client)

	latest, err := fetcher.FetchLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), latest)

	ts, err := fetcher.FetchBlockTimestamp(ctx, latest)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), ts)
}
