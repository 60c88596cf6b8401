package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RecordKind selects which record table a LedgerRecord lives in
type RecordKind string

const (
	RecordKindFunding RecordKind = "funding"
	RecordKindClaim   RecordKind = "claim"
	RecordKindPayout  RecordKind = "payout"
	RecordKindRefund  RecordKind = "refund"
)

// TableName returns the table holding records of this kind
func (k RecordKind) TableName() string {
	return string(k) + "_records"
}

// LedgerRecord represents a row of funding_records, claim_records, payout_records or refund_records.
// Rows are keyed by the event dedup key: re-projecting the same event refreshes the
// descriptive columns and never creates a second row.
type LedgerRecord struct {
	// Kind selects the table, it is not stored
	Kind RecordKind `gorm:"-"`
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// DedupKey is the event dedup key (tx id + log index / event sequence)
	DedupKey string `gorm:"column:dedup_key;not null;uniqueIndex;type:text"`
	// BountyID references the bounty this record belongs to
	BountyID string `gorm:"column:bounty_id;not null;index;type:text"`
	// Token is the asset address, empty for claims
	Token string `gorm:"column:token;not null;type:text;default:''"`
	// Actor is the funder, claimant, recipient or refund receiver
	Actor string `gorm:"column:actor;not null;type:text;default:''"`
	// Amount in base units, zero for claims
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(78,0);default:0"`
	// URL is the claim link for claims, empty otherwise
	URL string `gorm:"column:url;not null;type:text;default:''"`
	// SourceKey identifies the ledger source that emitted the event
	SourceKey string `gorm:"column:source_key;not null;type:text"`
	// TxID is the transaction hash / digest
	TxID string `gorm:"column:tx_id;not null;type:text"`
	// Raw holds the decoded event fields
	Raw       datatypes.JSON `gorm:"column:raw;not null;type:jsonb"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}
