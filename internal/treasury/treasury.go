// Package treasury implements the operations that open treasury intents: funding requests,
// burn intent preparation and submission, and payout requests. The settlement orchestrator
// drives the intents they create.
package treasury

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/ledger"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
	"github.com/feral-file/ff-bounty-ledger/internal/typeddata"
)

// BurnService prices and attests gateway transfers
//
//go:generate mockgen -source=treasury.go -destination=../mocks/burn_service.go -package=mocks -mock_names=BurnService=MockBurnService
type BurnService interface {
	// EstimateBurn returns the burn intent the depositor has to sign for a transfer
	EstimateBurn(ctx context.Context, spec typeddata.TransferSpec) (*typeddata.BurnIntent, error)
	// SubmitBurn sends a signed burn intent and returns the attestation to mint with
	SubmitBurn(ctx context.Context, intent *typeddata.BurnIntent, signature string) (*typeddata.Attestation, error)
}

// Service creates and prepares treasury intents
type Service struct {
	store  store.Store
	ledger *ledger.Ledger
	burns  BurnService
}

// NewService creates a treasury service
func NewService(st store.Store, burns BurnService) *Service {
	return &Service{
		store:  st,
		ledger: ledger.New(st),
		burns:  burns,
	}
}

// CreateFundingIntent opens a funding intent for a bounty in status created
func (s *Service) CreateFundingIntent(ctx context.Context, bountyID, sender string, sourceChain domain.Chain, amount decimal.Decimal) (*schema.TreasuryFundingIntent, error) {
	if bountyID == "" {
		return nil, fmt.Errorf("bounty id is required")
	}
	if !domain.IsValidChain(sourceChain) {
		return nil, fmt.Errorf("invalid source chain %q", sourceChain)
	}
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(0)) {
		return nil, fmt.Errorf("funding amount must be a positive integer, got %s", amount)
	}
	senderAddress, err := typeddata.ParseAddress(sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}

	intent := &schema.TreasuryFundingIntent{
		ID:          uuid.NewString(),
		BountyID:    bountyID,
		Sender:      strings.ToLower(senderAddress.Hex()),
		SourceChain: string(sourceChain),
		Amount:      amount,
	}
	if err := s.ledger.CreateFundingIntent(ctx, intent); err != nil {
		return nil, err
	}
	metrics.IntentTransitions.WithLabelValues("funding", string(schema.FundingIntentStatusCreated)).Inc()

	logger.InfoCtx(ctx, "Funding intent created",
		zap.String("intentID", intent.ID),
		zap.String("bountyID", bountyID),
		zap.String("amount", amount.String()))

	return intent, nil
}

// PrepareFundingTransfer prices the transfer of a created funding intent and stores the burn intent
// the sender has to sign. The spec must move exactly the intent amount and be signed by the intent sender.
func (s *Service) PrepareFundingTransfer(ctx context.Context, intentID string, spec typeddata.TransferSpec) (*typeddata.BurnIntent, error) {
	intent, err := s.fundingIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != schema.FundingIntentStatusCreated {
		return nil, fmt.Errorf("funding intent %s is %s: %w", intentID, intent.Status, domain.ErrInvalidTransition)
	}

	signer, err := spec.SourceSignerAddress()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(signer.Hex(), intent.Sender) {
		return nil, fmt.Errorf("transfer signer %s is not the intent sender %s: %w", signer.Hex(), intent.Sender, domain.ErrSignerMismatch)
	}
	value, err := decimal.NewFromString(spec.Value)
	if err != nil || !value.Equal(intent.Amount) {
		return nil, fmt.Errorf("transfer value %q does not match intent amount %s", spec.Value, intent.Amount)
	}

	burnIntent, err := s.burns.EstimateBurn(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate burn for funding intent %s: %w", intentID, err)
	}

	canonical, err := burnIntent.Canonical()
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.PrepareFunding(ctx, intentID, canonical); err != nil {
		return nil, err
	}

	return burnIntent, nil
}

// SubmitFundingTransfer verifies the sender's signature over the stored burn intent, submits it for
// attestation and moves the intent to transfer_submitted. A signature recovering to anyone but the
// sender is rejected with ErrSignerMismatch before anything is sent or written.
func (s *Service) SubmitFundingTransfer(ctx context.Context, intentID, signature string) (*schema.TreasuryFundingIntent, error) {
	intent, err := s.fundingIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != schema.FundingIntentStatusCreated {
		return nil, fmt.Errorf("funding intent %s is %s: %w", intentID, intent.Status, domain.ErrInvalidTransition)
	}
	if len(intent.BurnIntent) == 0 {
		return nil, fmt.Errorf("funding intent %s has no prepared transfer: %w", intentID, domain.ErrInvalidTransition)
	}

	burnIntent, err := typeddata.ParseBurnIntent(intent.BurnIntent)
	if err != nil {
		return nil, err
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("signature is not hex: %w", domain.ErrInvalidSignature)
	}
	if err := typeddata.Verify(burnIntent, sig, common.HexToAddress(intent.Sender)); err != nil {
		logger.WarnCtx(ctx, "Rejected funding transfer signature",
			zap.String("intentID", intentID),
			zap.String("sender", intent.Sender),
			zap.Error(err))
		return nil, fmt.Errorf("funding intent %s: %w", intentID, err)
	}

	attestation, err := s.burns.SubmitBurn(ctx, burnIntent, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to submit burn for funding intent %s: %w", intentID, err)
	}

	updated, err := s.ledger.MarkFundingSubmitted(ctx, intentID, signature, attestation.Attestation, attestation.Signature)
	if err != nil {
		return nil, err
	}
	metrics.IntentTransitions.WithLabelValues("funding", string(schema.FundingIntentStatusTransferSubmitted)).Inc()

	logger.InfoCtx(ctx, "Funding transfer submitted",
		zap.String("intentID", intentID),
		zap.String("transferID", attestation.TransferID))

	return updated, nil
}

// RequestPayout reserves amount from the bounty's available treasury balance and opens a payout
// intent for the orchestrator to bridge. An uncovered amount fails with ErrInsufficientBalance
// and writes nothing.
func (s *Service) RequestPayout(ctx context.Context, bountyID, recipient string, destinationChain domain.Chain, amount decimal.Decimal) (*schema.TreasuryPayoutIntent, error) {
	if bountyID == "" || recipient == "" {
		return nil, fmt.Errorf("bounty id and recipient are required")
	}
	if !domain.IsValidChain(destinationChain) {
		return nil, fmt.Errorf("invalid destination chain %q", destinationChain)
	}
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(0)) {
		return nil, fmt.Errorf("payout amount must be a positive integer, got %s", amount)
	}

	intent := &schema.TreasuryPayoutIntent{
		ID:               uuid.NewString(),
		BountyID:         bountyID,
		Recipient:        recipient,
		DestinationChain: string(destinationChain),
		Amount:           amount,
	}
	if err := s.ledger.ReservePayout(ctx, intent); err != nil {
		return nil, err
	}
	metrics.IntentTransitions.WithLabelValues("payout", string(schema.PayoutIntentStatusCreated)).Inc()

	logger.InfoCtx(ctx, "Payout requested",
		zap.String("intentID", intent.ID),
		zap.String("bountyID", bountyID),
		zap.String("destinationChain", string(destinationChain)),
		zap.String("amount", amount.String()))

	return intent, nil
}

func (s *Service) fundingIntent(ctx context.Context, intentID string) (*schema.TreasuryFundingIntent, error) {
	intent, err := s.store.GetFundingIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get funding intent %s: %w", intentID, err)
	}
	if intent == nil {
		return nil, fmt.Errorf("funding intent %s: %w", intentID, domain.ErrNotFound)
	}
	return intent, nil
}
