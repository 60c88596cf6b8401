package evm_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/mocks"
	"github.com/feral-file/ff-bounty-ledger/internal/providers/evm"
)

const escrowAddress = "0x00000000000000000000000000000000000e5c40"

var (
	bountyID = common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000b01")
	funder   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	token    = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func mustType(t *testing.T, name string) abi.Type {
	typ, err := abi.NewType(name, "", nil)
	require.NoError(t, err)
	return typ
}

func fundedLog(t *testing.T, blockNumber uint64, txHash common.Hash, index uint, amount int64) types.Log {
	data, err := abi.Arguments{
		{Type: mustType(t, "address")},
		{Type: mustType(t, "uint256")},
	}.Pack(token, big.NewInt(amount))
	require.NoError(t, err)

	return types.Log{
		Address: common.HexToAddress(escrowAddress),
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("BountyFunded(bytes32,address,address,uint256)")),
			bountyID,
			common.BytesToHash(funder.Bytes()),
		},
		Data:        data,
		BlockNumber: blockNumber,
		TxHash:      txHash,
		Index:       index,
	}
}

func createdLog(t *testing.T, blockNumber uint64, txHash common.Hash, index uint, issueURL string) types.Log {
	data, err := abi.Arguments{{Type: mustType(t, "string")}}.Pack(issueURL)
	require.NoError(t, err)

	return types.Log{
		Address: common.HexToAddress(escrowAddress),
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("BountyCreated(bytes32,address,string)")),
			bountyID,
			common.BytesToHash(funder.Bytes()),
		},
		Data:        data,
		BlockNumber: blockNumber,
		TxHash:      txHash,
		Index:       index,
	}
}

func newSource(t *testing.T, ctrl *gomock.Controller, startBlock uint64) (*evm.Source, *mocks.MockEthClient, *mocks.MockBlockProvider) {
	client := mocks.NewMockEthClient(ctrl)
	blocks := mocks.NewMockBlockProvider(ctrl)

	src, err := evm.NewSource(evm.Config{
		Chain:         domain.ChainBaseSepolia,
		EscrowAddress: escrowAddress,
		StartBlock:    startBlock,
	}, client, blocks)
	require.NoError(t, err)

	return src, client, blocks
}

func TestNewSource_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := evm.NewSource(evm.Config{Chain: domain.ChainBaseSepolia, EscrowAddress: "nope"}, mocks.NewMockEthClient(ctrl), mocks.NewMockBlockProvider(ctrl))
	assert.Error(t, err)

	_, err = evm.NewSource(evm.Config{Chain: domain.ChainSuiTestnet, EscrowAddress: escrowAddress}, mocks.NewMockEthClient(ctrl), mocks.NewMockBlockProvider(ctrl))
	assert.Error(t, err)
}

func TestSource_Key(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, _, _ := newSource(t, ctrl, 0)

	assert.Equal(t, domain.SourceKey("eip155:84532:"+escrowAddress), src.Key())
}

func TestSource_QueryEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, client, blocks := newSource(t, ctrl, 0)
	ctx := context.Background()

	txA := common.HexToHash("0xaa")
	txB := common.HexToHash("0xbb")
	removed := fundedLog(t, 120, common.HexToHash("0xcc"), 0, 7)
	removed.Removed = true
	unknown := types.Log{
		Topics:      []common.Hash{crypto.Keccak256Hash([]byte("Unrelated(uint256)"))},
		BlockNumber: 121,
		TxHash:      common.HexToHash("0xdd"),
	}
	blockTime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	blocks.EXPECT().FinalizedHead(ctx).Return(uint64(200), nil)
	blocks.EXPECT().BlockTimestamp(ctx, gomock.Any()).Return(blockTime, nil).AnyTimes()
	client.EXPECT().FilterLogs(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			assert.Equal(t, uint64(101), q.FromBlock.Uint64())
			assert.Equal(t, uint64(150), q.ToBlock.Uint64())
			assert.Equal(t, []common.Address{common.HexToAddress(escrowAddress)}, q.Addresses)
			require.Len(t, q.Topics, 1)
			assert.Len(t, q.Topics[0], 6)
			return []types.Log{
				createdLog(t, 110, txA, 0, "https://github.com/org/repo/issues/1"),
				fundedLog(t, 110, txA, 1, 1000),
				removed,
				unknown,
				fundedLog(t, 140, txB, 3, 500),
			}, nil
		})

	page, err := src.QueryEvents(ctx, "100", 50)
	require.NoError(t, err)

	assert.Equal(t, domain.Cursor("150"), page.Next)
	assert.True(t, page.HasMore)
	require.Len(t, page.Events, 3)

	created := page.Events[0]
	assert.Equal(t, domain.EventTypeBountyCreated, created.Type)
	assert.Equal(t, "https://github.com/org/repo/issues/1", created.Field(domain.FieldIssueURL))
	assert.Equal(t, bountyID.Hex(), created.Field(domain.FieldBountyID))

	funded := page.Events[1]
	assert.Equal(t, domain.EventTypeBountyFunded, funded.Type)
	assert.Equal(t, txA.Hex()+":1", funded.DedupKey)
	assert.Equal(t, txA.Hex(), funded.TxID)
	assert.Equal(t, "1000", funded.Field(domain.FieldAmount))
	assert.Equal(t, "0x2222222222222222222222222222222222222222", funded.Field(domain.FieldToken))
	assert.Equal(t, "0x1111111111111111111111111111111111111111", funded.Field(domain.FieldFunder))
	assert.Equal(t, domain.Cursor("110"), funded.Cursor)
	assert.Equal(t, src.Key(), funded.Source)
	assert.Equal(t, blockTime, funded.Timestamp)

	assert.Equal(t, txB.Hex()+":3", page.Events[2].DedupKey)
}

func TestSource_QueryEvents_LastPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, client, blocks := newSource(t, ctrl, 0)
	ctx := context.Background()

	blocks.EXPECT().FinalizedHead(ctx).Return(uint64(120), nil)
	client.EXPECT().FilterLogs(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			assert.Equal(t, uint64(101), q.FromBlock.Uint64())
			assert.Equal(t, uint64(120), q.ToBlock.Uint64())
			return nil, nil
		})

	page, err := src.QueryEvents(ctx, "100", 50)
	require.NoError(t, err)
	assert.Empty(t, page.Events)
	assert.Equal(t, domain.Cursor("120"), page.Next)
	assert.False(t, page.HasMore)
}

func TestSource_QueryEvents_AtHead(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, _, blocks := newSource(t, ctrl, 0)
	ctx := context.Background()

	blocks.EXPECT().FinalizedHead(ctx).Return(uint64(200), nil)

	page, err := src.QueryEvents(ctx, "200", 50)
	require.NoError(t, err)
	assert.Empty(t, page.Events)
	assert.Equal(t, domain.Cursor("200"), page.Next)
	assert.False(t, page.HasMore)
}

func TestSource_QueryEvents_HalvesRangeOnTooManyResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, client, blocks := newSource(t, ctrl, 0)
	ctx := context.Background()

	blocks.EXPECT().FinalizedHead(ctx).Return(uint64(110), nil)
	blocks.EXPECT().BlockTimestamp(ctx, gomock.Any()).Return(time.Time{}, nil).AnyTimes()

	var ranges [][2]uint64
	client.EXPECT().FilterLogs(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
			ranges = append(ranges, [2]uint64{from, to})
			if to-from+1 > 5 {
				return nil, errors.New("query returned more than 10000 results")
			}
			return []types.Log{fundedLog(t, from, common.BigToHash(big.NewInt(int64(from))), 0, 1)}, nil
		}).Times(3)

	page, err := src.QueryEvents(ctx, "100", 10)
	require.NoError(t, err)

	assert.Equal(t, [][2]uint64{{101, 110}, {101, 105}, {106, 110}}, ranges)
	assert.Len(t, page.Events, 2)
	assert.Equal(t, domain.Cursor("110"), page.Next)
	assert.False(t, page.HasMore)
}

func TestSource_QueryEvents_TooManyResultsInOneBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, client, blocks := newSource(t, ctrl, 0)
	ctx := context.Background()

	blocks.EXPECT().FinalizedHead(ctx).Return(uint64(101), nil)
	client.EXPECT().FilterLogs(ctx, gomock.Any()).Return(nil, errors.New("too many results")).Times(1)

	_, err := src.QueryEvents(ctx, "100", 10)
	assert.Error(t, err)
}

func TestSource_QueryEvents_RPCError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, client, blocks := newSource(t, ctrl, 0)
	ctx := context.Background()

	blocks.EXPECT().FinalizedHead(ctx).Return(uint64(300), nil)
	client.EXPECT().FilterLogs(ctx, gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := src.QueryEvents(ctx, "100", 10)
	assert.Error(t, err)
}

func TestSource_QueryEvents_InvalidCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, _, _ := newSource(t, ctrl, 0)

	_, err := src.QueryEvents(context.Background(), "not-a-height", 10)
	assert.Error(t, err)
}

func TestSource_StartCursor(t *testing.T) {
	tests := []struct {
		name       string
		startBlock uint64
		persisted  domain.Cursor
		head       uint64
		window     uint64
		want       domain.Cursor
	}{
		{name: "fresh source starts one window behind head", persisted: "", head: 10_000, window: 5_000, want: "5000"},
		{name: "persisted cursor ahead of window", persisted: "9000", head: 10_000, window: 5_000, want: "9000"},
		{name: "persisted cursor behind window", persisted: "10", head: 10_000, window: 5_000, want: "5000"},
		{name: "window larger than chain", persisted: "", head: 100, window: 5_000, want: "0"},
		{name: "never before deployment", startBlock: 7_000, persisted: "", head: 6_000, window: 5_000, want: "6999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			src, _, blocks := newSource(t, ctrl, tt.startBlock)
			ctx := context.Background()

			blocks.EXPECT().FinalizedHead(ctx).Return(tt.head, nil)

			got, err := src.StartCursor(ctx, tt.persisted, tt.window)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSource_StartCursor_HeadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, _, blocks := newSource(t, ctrl, 0)
	ctx := context.Background()

	blocks.EXPECT().FinalizedHead(ctx).Return(uint64(0), errors.New("rpc down"))

	_, err := src.StartCursor(ctx, "1", 10)
	assert.Error(t, err)
}

func TestSource_CompareCursors(t *testing.T) {
	ctrl := gomock.NewController(t)
	src, _, _ := newSource(t, ctrl, 0)

	cmp, err := src.CompareCursors("9", "10")
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = src.CompareCursors("10", "10")
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	cmp, err = src.CompareCursors("11", "")
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	_, err = src.CompareCursors("x", "1")
	assert.Error(t, err)
}
