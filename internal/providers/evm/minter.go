package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
)

const (
	// gasPriceBumpPercent is applied on top of the suggested gas price
	gasPriceBumpPercent = 120
	// gasLimitBumpPercent is applied on top of the estimated gas
	gasLimitBumpPercent = 130
)

// MinterConfig holds the settings of the gateway minter on the treasury chain
type MinterConfig struct {
	Chain          domain.Chain
	MinterAddress  string
	PrivateKey     string
	ReceiptTimeout time.Duration
}

// Minter submits gateway attestations to the minter contract of the treasury chain
type Minter struct {
	config  MinterConfig
	client  adapter.EthClient
	abi     abi.ABI
	address common.Address
	key     *ecdsa.PrivateKey
	from    common.Address
}

// NewMinter creates a gateway minter
func NewMinter(config MinterConfig, client adapter.EthClient) (*Minter, error) {
	if !common.IsHexAddress(config.MinterAddress) {
		return nil, fmt.Errorf("invalid minter address %q", config.MinterAddress)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(config.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse minter key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(gatewayMinterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse minter ABI: %w", err)
	}

	if config.ReceiptTimeout == 0 {
		config.ReceiptTimeout = 2 * time.Minute
	}

	return &Minter{
		config:  config,
		client:  client,
		abi:     parsed,
		address: common.HexToAddress(config.MinterAddress),
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Mint calls gatewayMint with the attestation and waits for the receipt.
// It returns the mint transaction hash.
func (m *Minter) Mint(ctx context.Context, destinationChain domain.Chain, attestation, signature string) (string, error) {
	if destinationChain != m.config.Chain {
		return "", fmt.Errorf("minter serves %s, not %s", m.config.Chain, destinationChain)
	}

	attestationBytes, err := hexutil.Decode(attestation)
	if err != nil {
		return "", fmt.Errorf("failed to decode attestation: %w", err)
	}
	signatureBytes, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode attestation signature: %w", err)
	}

	data, err := m.abi.Pack("gatewayMint", attestationBytes, signatureBytes)
	if err != nil {
		return "", fmt.Errorf("failed to pack gatewayMint call: %w", err)
	}

	tx, err := m.buildTransaction(ctx, data)
	if err != nil {
		return "", err
	}

	if err := m.client.SendTransaction(ctx, tx); err != nil {
		return "", classifyRPCError(fmt.Errorf("failed to send mint transaction: %w", err))
	}

	logger.InfoCtx(ctx, "Submitted mint transaction",
		zap.String("chain", string(destinationChain)),
		zap.String("txHash", tx.Hash().Hex()))

	waitCtx, cancel := context.WithTimeout(ctx, m.config.ReceiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, m.client, tx)
	if err != nil {
		// Not transient: a resubmission would race the pending transaction
		return "", fmt.Errorf("failed to wait for mint transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("mint transaction %s reverted", tx.Hash().Hex())
	}

	return strings.ToLower(tx.Hash().Hex()), nil
}

func (m *Minter) buildTransaction(ctx context.Context, data []byte) (*types.Transaction, error) {
	chainID, err := m.client.ChainID(ctx)
	if err != nil {
		return nil, classifyRPCError(fmt.Errorf("failed to get chain id: %w", err))
	}

	nonce, err := m.client.PendingNonceAt(ctx, m.from)
	if err != nil {
		return nil, classifyRPCError(fmt.Errorf("failed to get nonce: %w", err))
	}

	suggested, err := m.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classifyRPCError(fmt.Errorf("failed to suggest gas price: %w", err))
	}
	gasPrice := new(big.Int).Mul(suggested, big.NewInt(gasPriceBumpPercent))
	gasPrice.Div(gasPrice, big.NewInt(100))

	gas, err := m.client.EstimateGas(ctx, ethereum.CallMsg{
		From: m.from,
		To:   &m.address,
		Data: data,
	})
	if err != nil {
		// A revert during estimation means the attestation is rejected by the contract
		return nil, fmt.Errorf("failed to estimate mint gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &m.address,
		Value:    big.NewInt(0),
		Gas:      gas * gasLimitBumpPercent / 100,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), m.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign mint transaction: %w", err)
	}

	return signed, nil
}

// classifyRPCError marks transport failures as transient
func classifyRPCError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return err
}
