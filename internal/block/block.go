package block

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
)

// maxCachedTimestamps bounds the timestamp cache; it is reset once full
const maxCachedTimestamps = 10_000

// BlockInfo represents cached block information
type BlockInfo struct {
	Number    uint64
	Timestamp time.Time
}

// Provider provides cached access to the finalized chain head and block timestamps.
// The head is only refreshed once per TTL so paging a backfill does not hit the RPC for every page.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=Provider=MockBlockProvider,Fetcher=MockBlockFetcher
type Provider interface {
	// FinalizedHead returns the latest block number minus the configured confirmations
	FinalizedHead(ctx context.Context) (uint64, error)

	// BlockTimestamp returns the timestamp of a block, potentially from cache
	BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Fetcher fetches block information from the chain
type Fetcher interface {
	// FetchLatestBlock fetches the latest block number
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTimestamp fetches the timestamp of a block
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Config holds configuration for the Provider
type Config struct {
	// TTL is how long to cache the head
	TTL time.Duration

	// StaleWindow is how long to keep serving a cached head when fetching fails
	StaleWindow time.Duration

	// Confirmations is subtracted from the latest block to get the finalized head
	Confirmations uint64
}

type provider struct {
	fetcher Fetcher
	config  Config
	clock   adapter.Clock

	mu         sync.RWMutex
	head       *BlockInfo
	timestamps map[uint64]time.Time
}

// NewProvider creates a new Provider with caching
func NewProvider(fetcher Fetcher, config Config, clock adapter.Clock) Provider {
	return &provider{
		fetcher:    fetcher,
		config:     config,
		clock:      clock,
		timestamps: make(map[uint64]time.Time),
	}
}

// FinalizedHead returns the latest block minus confirmations, using the cache if valid
func (p *provider) FinalizedHead(ctx context.Context) (uint64, error) {
	latest, err := p.latestBlock(ctx)
	if err != nil {
		return 0, err
	}
	if latest < p.config.Confirmations {
		return 0, nil
	}
	return latest - p.config.Confirmations, nil
}

func (p *provider) latestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()

	if cached != nil && now.Sub(cached.Timestamp) < p.config.TTL {
		return cached.Number, nil
	}

	logger.DebugCtx(ctx, "Fetching latest block number")
	blockNumber, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.Timestamp) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Using stale block number", zap.Uint64("block_number", cached.Number), zap.Error(err))
			return cached.Number, nil
		}
		return 0, fmt.Errorf("failed to fetch latest block and no valid cache available: %w", err)
	}

	p.mu.Lock()
	p.head = &BlockInfo{
		Number:    blockNumber,
		Timestamp: now,
	}
	p.mu.Unlock()

	return blockNumber, nil
}

// BlockTimestamp returns the timestamp of a block. Finalized timestamps never change, so they are cached without expiry.
func (p *provider) BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	p.mu.RLock()
	ts, ok := p.timestamps[blockNumber]
	p.mu.RUnlock()
	if ok {
		return ts, nil
	}

	ts, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch timestamp of block %d: %w", blockNumber, err)
	}

	p.mu.Lock()
	if len(p.timestamps) >= maxCachedTimestamps {
		p.timestamps = make(map[uint64]time.Time)
	}
	p.timestamps[blockNumber] = ts
	p.mu.Unlock()

	return ts, nil
}

type ethFetcher struct {
	client adapter.EthClient
}

// NewEthFetcher creates a Fetcher backed by an Ethereum JSON-RPC client
func NewEthFetcher(client adapter.EthClient) Fetcher {
	return &ethFetcher{client: client}
}

func (f *ethFetcher) FetchLatestBlock(ctx context.Context) (uint64, error) {
	return f.client.BlockNumber(ctx)
}

func (f *ethFetcher) FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	header, err := f.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil //nolint:gosec,G115
}
