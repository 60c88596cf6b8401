package store

import (
	"context"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

// Tx defines the row-level operations available inside a transaction.
// Getters return (nil, nil) when the row does not exist.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Tx=MockTx,Store=MockStore
type Tx interface {
	// GetBounty retrieves a bounty by its on-chain id
	GetBounty(ctx context.Context, id string) (*schema.Bounty, error)
	// SaveBounty inserts or overwrites a bounty
	SaveBounty(ctx context.Context, bounty *schema.Bounty) error

	// GetBountyAsset retrieves the counters of one token of a bounty
	GetBountyAsset(ctx context.Context, bountyID, token string) (*schema.BountyAsset, error)
	// ListBountyAssets retrieves every token of a bounty
	ListBountyAssets(ctx context.Context, bountyID string) ([]schema.BountyAsset, error)
	// SaveBountyAsset inserts or overwrites the counters of one token of a bounty
	SaveBountyAsset(ctx context.Context, asset *schema.BountyAsset) error

	// GetRecord retrieves a funding/claim/payout/refund record by dedup key
	GetRecord(ctx context.Context, kind schema.RecordKind, dedupKey string) (*schema.LedgerRecord, error)
	// ListRecords retrieves the records of a bounty, oldest first
	ListRecords(ctx context.Context, kind schema.RecordKind, bountyID string) ([]schema.LedgerRecord, error)
	// UpsertRecord inserts a record, or refreshes the descriptive columns of the row with the same dedup key.
	// It reports whether the row was inserted by this call.
	UpsertRecord(ctx context.Context, record *schema.LedgerRecord) (bool, error)

	// GetCursor retrieves the persisted position of a source, empty when none exists
	GetCursor(ctx context.Context, source domain.SourceKey) (domain.Cursor, error)
	// SaveCursor stores the position of a source
	SaveCursor(ctx context.Context, source domain.SourceKey, cursor domain.Cursor) error

	// GetFundingIntent retrieves a funding intent, locking it for the rest of the transaction
	GetFundingIntent(ctx context.Context, id string) (*schema.TreasuryFundingIntent, error)
	// SaveFundingIntent inserts or overwrites a funding intent
	SaveFundingIntent(ctx context.Context, intent *schema.TreasuryFundingIntent) error
	// ListFundingIntents retrieves funding intents in a status, oldest first. A limit <= 0 means no limit.
	ListFundingIntents(ctx context.Context, status schema.FundingIntentStatus, limit int) ([]schema.TreasuryFundingIntent, error)

	// GetPayoutIntent retrieves a payout intent, locking it for the rest of the transaction
	GetPayoutIntent(ctx context.Context, id string) (*schema.TreasuryPayoutIntent, error)
	// SavePayoutIntent inserts or overwrites a payout intent
	SavePayoutIntent(ctx context.Context, intent *schema.TreasuryPayoutIntent) error
	// ListPayoutIntents retrieves payout intents in a status, oldest first. A limit <= 0 means no limit.
	ListPayoutIntents(ctx context.Context, status schema.PayoutIntentStatus, limit int) ([]schema.TreasuryPayoutIntent, error)

	// GetTreasuryLedger retrieves the treasury balance row of a bounty, locking it for the rest of the transaction
	GetTreasuryLedger(ctx context.Context, bountyID string) (*schema.TreasuryBountyLedger, error)
	// SaveTreasuryLedger inserts or overwrites the treasury balance row of a bounty
	SaveTreasuryLedger(ctx context.Context, ledger *schema.TreasuryBountyLedger) error
}

// Store defines the interface for database operations.
// Outside Transaction every call is its own implicit transaction.
type Store interface {
	Tx
	// Transaction runs fn atomically: every write made through tx is committed when fn
	// returns nil and discarded when it returns an error or panics
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
