package evm

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/block"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/source"
)

// Config holds the settings of an escrow contract source
type Config struct {
	Chain         domain.Chain
	EscrowAddress string
	// StartBlock is the deployment block of the escrow contract; nothing before it is scanned
	StartBlock uint64
}

// Source reads escrow events from an EVM contract by paging eth_getLogs over finalized block ranges.
// Cursors are decimal block heights: the last block whose logs were returned.
type Source struct {
	key     domain.SourceKey
	config  Config
	address common.Address
	client  adapter.EthClient
	blocks  block.Provider
	decoder *Decoder
	topics  []common.Hash
}

var (
	_ source.Source         = (*Source)(nil)
	_ source.CursorComparer = (*Source)(nil)
)

// NewSource creates an EVM escrow source
func NewSource(config Config, client adapter.EthClient, blocks block.Provider) (*Source, error) {
	if !common.IsHexAddress(config.EscrowAddress) {
		return nil, fmt.Errorf("invalid escrow address %q", config.EscrowAddress)
	}
	if config.Chain.Family() != domain.ChainFamilyEVM {
		return nil, fmt.Errorf("chain %s is not an EVM chain", config.Chain)
	}

	decoder, err := NewDecoder()
	if err != nil {
		return nil, err
	}

	return &Source{
		key:     domain.NewSourceKey(config.Chain, config.EscrowAddress),
		config:  config,
		address: common.HexToAddress(config.EscrowAddress),
		client:  client,
		blocks:  blocks,
		decoder: decoder,
		topics:  decoder.Topics(),
	}, nil
}

// Key returns the source key of the escrow contract
func (s *Source) Key() domain.SourceKey {
	return s.key
}

// StartCursor returns max(persisted, head - safetyWindow), never earlier than the block before deployment
func (s *Source) StartCursor(ctx context.Context, persisted domain.Cursor, safetyWindow uint64) (domain.Cursor, error) {
	position, err := parseCursor(persisted)
	if err != nil {
		return "", err
	}

	head, err := s.blocks.FinalizedHead(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get finalized head: %w", err)
	}

	if head > safetyWindow && head-safetyWindow > position {
		position = head - safetyWindow
	}
	if s.config.StartBlock > 0 && position < s.config.StartBlock-1 {
		position = s.config.StartBlock - 1
	}

	return formatCursor(position), nil
}

// QueryEvents returns the escrow events in blocks (cursor, min(cursor+pageSize, head)]
func (s *Source) QueryEvents(ctx context.Context, cursor domain.Cursor, pageSize int) (source.Page, error) {
	position, err := parseCursor(cursor)
	if err != nil {
		return source.Page{}, err
	}
	if pageSize <= 0 {
		pageSize = domain.DEFAULT_PAGE_SIZE
	}

	head, err := s.blocks.FinalizedHead(ctx)
	if err != nil {
		return source.Page{}, fmt.Errorf("failed to get finalized head: %w", err)
	}

	from := position + 1
	if from > head {
		return source.Page{Next: formatCursor(position), HasMore: false}, nil
	}

	to := from + uint64(pageSize) - 1 //nolint:gosec,G115
	if to > head {
		to = head
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{s.address},
		Topics:    [][]common.Hash{s.topics},
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
	}

	logs, err := s.getLogsWithRetry(ctx, query, to-from+1)
	if err != nil {
		return source.Page{}, fmt.Errorf("failed to get logs for range %d-%d: %w", from, to, err)
	}

	events := make([]domain.LedgerEvent, 0, len(logs))
	for _, vLog := range logs {
		if vLog.Removed {
			continue
		}

		event, err := s.toLedgerEvent(ctx, vLog)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping undecodable escrow log",
				zap.String("source", string(s.key)),
				zap.String("txHash", vLog.TxHash.Hex()),
				zap.Uint("logIndex", vLog.Index),
				zap.Error(err))
			metrics.EventsSkipped.WithLabelValues(string(s.key), "undecodable").Inc()
			continue
		}
		events = append(events, event)
	}

	return source.Page{
		Events:  events,
		Next:    formatCursor(to),
		HasMore: to < head,
	}, nil
}

// CompareCursors compares two block height cursors
func (s *Source) CompareCursors(a, b domain.Cursor) (int, error) {
	x, err := parseCursor(a)
	if err != nil {
		return 0, err
	}
	y, err := parseCursor(b)
	if err != nil {
		return 0, err
	}

	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

func (s *Source) toLedgerEvent(ctx context.Context, vLog types.Log) (domain.LedgerEvent, error) {
	eventType, fields, err := s.decoder.Decode(vLog)
	if err != nil {
		return domain.LedgerEvent{}, err
	}

	event := domain.LedgerEvent{
		Source:   s.key,
		DedupKey: fmt.Sprintf("%s:%d", strings.ToLower(vLog.TxHash.Hex()), vLog.Index),
		Type:     eventType,
		Fields:   fields,
		TxID:     strings.ToLower(vLog.TxHash.Hex()),
		Cursor:   formatCursor(vLog.BlockNumber),
	}

	ts, err := s.blocks.BlockTimestamp(ctx, vLog.BlockNumber)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to get block timestamp", zap.Uint64("blockNumber", vLog.BlockNumber), zap.Error(err))
	} else {
		event.Timestamp = ts
	}

	return event, nil
}

// getLogsWithRetry fetches the logs of the query range in chunks, halving the chunk size while the node
// reports too many results
func (s *Source) getLogsWithRetry(ctx context.Context, query ethereum.FilterQuery, stepSize uint64) ([]types.Log, error) {
	currentStepSize := stepSize

	var allLogs []types.Log
	currentFrom := query.FromBlock.Uint64()
	end := query.ToBlock.Uint64()

	for currentFrom <= end {
		currentTo := currentFrom + currentStepSize - 1
		if currentTo > end {
			currentTo = end
		}

		chunk := query
		chunk.FromBlock = new(big.Int).SetUint64(currentFrom)
		chunk.ToBlock = new(big.Int).SetUint64(currentTo)

		logs, err := s.client.FilterLogs(ctx, chunk)
		if err == nil {
			allLogs = append(allLogs, logs...)
			currentFrom = currentTo + 1
			continue
		}

		if !isTooManyResultsError(err) {
			return nil, err
		}
		if currentStepSize == 1 {
			return nil, fmt.Errorf("too many results in a single block %d: %w", currentFrom, err)
		}

		currentStepSize /= 2
		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("oldStepSize", currentStepSize*2),
			zap.Uint64("newStepSize", currentStepSize),
			zap.Uint64("fromBlock", currentFrom),
			zap.Uint64("toBlock", currentTo))
	}

	return allLogs, nil
}

func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum") ||
		strings.Contains(errStr, "block range is too wide")
}

func parseCursor(cursor domain.Cursor) (uint64, error) {
	if cursor == "" {
		return 0, nil
	}
	position, err := strconv.ParseUint(string(cursor), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block cursor %q: %w", cursor, err)
	}
	return position, nil
}

func formatCursor(position uint64) domain.Cursor {
	return domain.Cursor(strconv.FormatUint(position, 10))
}
