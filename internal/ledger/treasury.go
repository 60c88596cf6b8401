package ledger

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

// CreateFundingIntent stores a new funding intent in status created
func (l *Ledger) CreateFundingIntent(ctx context.Context, intent *schema.TreasuryFundingIntent) error {
	intent.Status = schema.FundingIntentStatusCreated
	if err := l.store.SaveFundingIntent(ctx, intent); err != nil {
		return fmt.Errorf("failed to create funding intent %s: %w", intent.ID, err)
	}
	return nil
}

// PrepareFunding attaches the canonical burn intent to a created funding intent
func (l *Ledger) PrepareFunding(ctx context.Context, intentID string, burnIntent []byte) (*schema.TreasuryFundingIntent, error) {
	var out *schema.TreasuryFundingIntent
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		intent, err := getFundingIntent(ctx, tx, intentID, schema.FundingIntentStatusCreated)
		if err != nil {
			return err
		}
		intent.BurnIntent = datatypes.JSON(burnIntent)
		out = intent
		return tx.SaveFundingIntent(ctx, intent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare funding intent %s: %w", intentID, err)
	}
	return out, nil
}

// MarkFundingSubmitted moves a funding intent from created to transfer_submitted,
// storing the sender signature and the attestation the minter consumes
func (l *Ledger) MarkFundingSubmitted(ctx context.Context, intentID, signature, attestation, attestationSignature string) (*schema.TreasuryFundingIntent, error) {
	var out *schema.TreasuryFundingIntent
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		intent, err := getFundingIntent(ctx, tx, intentID, schema.FundingIntentStatusCreated)
		if err != nil {
			return err
		}
		intent.Status = schema.FundingIntentStatusTransferSubmitted
		intent.Signature = signature
		intent.Attestation = attestation
		intent.AttestationSignature = attestationSignature
		intent.Error = ""
		out = intent
		return tx.SaveFundingIntent(ctx, intent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit funding intent %s: %w", intentID, err)
	}
	return out, nil
}

// CreditFunding marks a submitted funding intent credited and adds its amount to the
// treasury ledger of the bounty, creating the ledger row when missing
func (l *Ledger) CreditFunding(ctx context.Context, intentID, mintTxID string) (*schema.TreasuryBountyLedger, error) {
	var out *schema.TreasuryBountyLedger
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		intent, err := getFundingIntent(ctx, tx, intentID, schema.FundingIntentStatusTransferSubmitted)
		if err != nil {
			return err
		}

		ledger, err := ensureTreasuryLedger(ctx, tx, intent.BountyID)
		if err != nil {
			return err
		}
		ledger.TotalFunded = ledger.TotalFunded.Add(intent.Amount)
		ledger.Available = ledger.Available.Add(intent.Amount)
		if err := tx.SaveTreasuryLedger(ctx, ledger); err != nil {
			return err
		}

		intent.Status = schema.FundingIntentStatusCredited
		intent.MintTxID = mintTxID
		intent.Error = ""
		out = ledger
		return tx.SaveFundingIntent(ctx, intent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to credit funding intent %s: %w", intentID, err)
	}
	return out, nil
}

// FailFunding marks a non-terminal funding intent failed. The treasury ledger is untouched.
func (l *Ledger) FailFunding(ctx context.Context, intentID, reason string) error {
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		intent, err := getFundingIntent(ctx, tx, intentID,
			schema.FundingIntentStatusCreated, schema.FundingIntentStatusTransferSubmitted)
		if err != nil {
			return err
		}
		intent.Status = schema.FundingIntentStatusFailed
		intent.Error = reason
		return tx.SaveFundingIntent(ctx, intent)
	})
	if err != nil {
		return fmt.Errorf("failed to fail funding intent %s: %w", intentID, err)
	}
	return nil
}

// ReservePayout stores a new payout intent in status created and takes its amount out
// of the available treasury balance. It fails with ErrInsufficientBalance before any write
// when the balance does not cover the amount.
func (l *Ledger) ReservePayout(ctx context.Context, intent *schema.TreasuryPayoutIntent) error {
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		ledger, err := tx.GetTreasuryLedger(ctx, intent.BountyID)
		if err != nil {
			return err
		}
		if ledger == nil || ledger.Available.LessThan(intent.Amount) {
			return fmt.Errorf("bounty %s cannot cover %s: %w", intent.BountyID, intent.Amount, domain.ErrInsufficientBalance)
		}

		ledger.Available = ledger.Available.Sub(intent.Amount)
		if err := tx.SaveTreasuryLedger(ctx, ledger); err != nil {
			return err
		}

		intent.Status = schema.PayoutIntentStatusCreated
		return tx.SavePayoutIntent(ctx, intent)
	})
	if err != nil {
		return fmt.Errorf("failed to reserve payout %s: %w", intent.ID, err)
	}
	return nil
}

// StartPayout moves a payout intent from created to executing. Only one caller wins:
// every other caller gets ErrInvalidTransition.
func (l *Ledger) StartPayout(ctx context.Context, intentID string) (*schema.TreasuryPayoutIntent, error) {
	var out *schema.TreasuryPayoutIntent
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		intent, err := getPayoutIntent(ctx, tx, intentID, schema.PayoutIntentStatusCreated)
		if err != nil {
			return err
		}
		intent.Status = schema.PayoutIntentStatusExecuting
		out = intent
		return tx.SavePayoutIntent(ctx, intent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start payout %s: %w", intentID, err)
	}
	return out, nil
}

// ConfirmPayout marks an executing payout confirmed and adds its amount to the total paid
func (l *Ledger) ConfirmPayout(ctx context.Context, intentID, bridgeTxID, finalTxID string) error {
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		intent, err := getPayoutIntent(ctx, tx, intentID, schema.PayoutIntentStatusExecuting)
		if err != nil {
			return err
		}

		ledger, err := ensureTreasuryLedger(ctx, tx, intent.BountyID)
		if err != nil {
			return err
		}
		ledger.TotalPaid = ledger.TotalPaid.Add(intent.Amount)
		if err := tx.SaveTreasuryLedger(ctx, ledger); err != nil {
			return err
		}

		intent.Status = schema.PayoutIntentStatusConfirmed
		intent.BridgeTxID = bridgeTxID
		intent.FinalTxID = finalTxID
		intent.Error = ""
		return tx.SavePayoutIntent(ctx, intent)
	})
	if err != nil {
		return fmt.Errorf("failed to confirm payout %s: %w", intentID, err)
	}
	return nil
}

// CompensatePayout marks a non-terminal payout failed and returns its amount to the
// available treasury balance
func (l *Ledger) CompensatePayout(ctx context.Context, intentID, reason string) error {
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		intent, err := getPayoutIntent(ctx, tx, intentID,
			schema.PayoutIntentStatusCreated, schema.PayoutIntentStatusExecuting)
		if err != nil {
			return err
		}

		ledger, err := ensureTreasuryLedger(ctx, tx, intent.BountyID)
		if err != nil {
			return err
		}
		ledger.Available = ledger.Available.Add(intent.Amount)
		if err := tx.SaveTreasuryLedger(ctx, ledger); err != nil {
			return err
		}

		intent.Status = schema.PayoutIntentStatusFailed
		intent.Error = reason
		return tx.SavePayoutIntent(ctx, intent)
	})
	if err != nil {
		return fmt.Errorf("failed to compensate payout %s: %w", intentID, err)
	}
	return nil
}

func getFundingIntent(ctx context.Context, tx store.Tx, id string, allowed ...schema.FundingIntentStatus) (*schema.TreasuryFundingIntent, error) {
	intent, err := tx.GetFundingIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return nil, domain.ErrNotFound
	}
	for _, status := range allowed {
		if intent.Status == status {
			return intent, nil
		}
	}
	return nil, fmt.Errorf("funding intent is %s: %w", intent.Status, domain.ErrInvalidTransition)
}

func getPayoutIntent(ctx context.Context, tx store.Tx, id string, allowed ...schema.PayoutIntentStatus) (*schema.TreasuryPayoutIntent, error) {
	intent, err := tx.GetPayoutIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return nil, domain.ErrNotFound
	}
	for _, status := range allowed {
		if intent.Status == status {
			return intent, nil
		}
	}
	return nil, fmt.Errorf("payout intent is %s: %w", intent.Status, domain.ErrInvalidTransition)
}

func ensureTreasuryLedger(ctx context.Context, tx store.Tx, bountyID string) (*schema.TreasuryBountyLedger, error) {
	ledger, err := tx.GetTreasuryLedger(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = &schema.TreasuryBountyLedger{BountyID: bountyID}
	}
	return ledger, nil
}
