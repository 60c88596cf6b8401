package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FundingIntentStatus represents the funding saga state
type FundingIntentStatus string

const (
	// FundingIntentStatusCreated is a freshly requested funding, not yet signed
	FundingIntentStatusCreated FundingIntentStatus = "created"
	// FundingIntentStatusTransferSubmitted means the signed burn intent was accepted and an attestation is stored
	FundingIntentStatusTransferSubmitted FundingIntentStatus = "transfer_submitted"
	// FundingIntentStatusCredited means the mint landed and the treasury ledger was credited
	FundingIntentStatusCredited FundingIntentStatus = "credited"
	// FundingIntentStatusFailed is terminal
	FundingIntentStatusFailed FundingIntentStatus = "failed"
)

// PayoutIntentStatus represents the payout saga state
type PayoutIntentStatus string

const (
	// PayoutIntentStatusCreated means the amount is reserved and waiting to be bridged
	PayoutIntentStatusCreated PayoutIntentStatus = "created"
	// PayoutIntentStatusExecuting means the bridge call was started
	PayoutIntentStatusExecuting PayoutIntentStatus = "executing"
	// PayoutIntentStatusConfirmed is terminal, the payout reached the recipient
	PayoutIntentStatusConfirmed PayoutIntentStatus = "confirmed"
	// PayoutIntentStatusFailed is terminal, the reservation was released
	PayoutIntentStatusFailed PayoutIntentStatus = "failed"
)

// TreasuryFundingIntent represents the treasury_funding_intents table
type TreasuryFundingIntent struct {
	ID          string              `gorm:"column:id;primaryKey;type:text"`
	BountyID    string              `gorm:"column:bounty_id;not null;index;type:text"`
	Sender      string              `gorm:"column:sender;not null;type:text"`
	SourceChain string              `gorm:"column:source_chain;not null;type:text"`
	Amount      decimal.Decimal     `gorm:"column:amount;not null;type:numeric(78,0)"`
	Status      FundingIntentStatus `gorm:"column:status;not null;type:text;index:idx_funding_intents_status_created,priority:1"`
	// BurnIntent is the canonical JSON of the typed burn intent
	BurnIntent datatypes.JSON `gorm:"column:burn_intent;type:jsonb"`
	// Signature is the sender's signature over the burn intent digest
	Signature string `gorm:"column:signature;not null;type:text;default:''"`
	// Attestation and AttestationSignature are returned by the burn service and consumed by the minter
	Attestation          string    `gorm:"column:attestation;not null;type:text;default:''"`
	AttestationSignature string    `gorm:"column:attestation_signature;not null;type:text;default:''"`
	MintTxID             string    `gorm:"column:mint_tx_id;not null;type:text;default:''"`
	Error                string    `gorm:"column:error;not null;type:text;default:''"`
	CreatedAt            time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_funding_intents_status_created,priority:2"`
	UpdatedAt            time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TreasuryFundingIntent model
func (TreasuryFundingIntent) TableName() string {
	return "treasury_funding_intents"
}

// TreasuryPayoutIntent represents the treasury_payout_intents table
type TreasuryPayoutIntent struct {
	ID               string             `gorm:"column:id;primaryKey;type:text"`
	BountyID         string             `gorm:"column:bounty_id;not null;index;type:text"`
	Recipient        string             `gorm:"column:recipient;not null;type:text"`
	DestinationChain string             `gorm:"column:destination_chain;not null;type:text"`
	Amount           decimal.Decimal    `gorm:"column:amount;not null;type:numeric(78,0)"`
	Status           PayoutIntentStatus `gorm:"column:status;not null;type:text;index:idx_payout_intents_status_created,priority:1"`
	BridgeTxID       string             `gorm:"column:bridge_tx_id;not null;type:text;default:''"`
	FinalTxID        string             `gorm:"column:final_tx_id;not null;type:text;default:''"`
	Error            string             `gorm:"column:error;not null;type:text;default:''"`
	CreatedAt        time.Time          `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_payout_intents_status_created,priority:2"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TreasuryPayoutIntent model
func (TreasuryPayoutIntent) TableName() string {
	return "treasury_payout_intents"
}

// TreasuryBountyLedger represents the treasury_bounty_ledgers table.
// Available equals TotalFunded - TotalPaid minus every reserved but unconfirmed payout.
type TreasuryBountyLedger struct {
	BountyID    string          `gorm:"column:bounty_id;primaryKey;type:text"`
	TotalFunded decimal.Decimal `gorm:"column:total_funded;not null;type:numeric(78,0);default:0"`
	TotalPaid   decimal.Decimal `gorm:"column:total_paid;not null;type:numeric(78,0);default:0"`
	Available   decimal.Decimal `gorm:"column:available;not null;type:numeric(78,0);default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TreasuryBountyLedger model
func (TreasuryBountyLedger) TableName() string {
	return "treasury_bounty_ledgers"
}
