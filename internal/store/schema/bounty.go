package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// BountyStatus represents the lifecycle state of a bounty
type BountyStatus string

const (
	// BountyStatusOpen is the default status; a bounty created by a child event starts open
	BountyStatusOpen BountyStatus = "open"
	// BountyStatusClosed is set by a bounty_closed event
	BountyStatusClosed BountyStatus = "closed"
)

// Bounty represents the bounties table - one row per escrowed issue
type Bounty struct {
	// ID is the on-chain bounty identifier
	ID string `gorm:"column:id;primaryKey;type:text"`
	// SourceKey identifies the ledger source (chain + contract) that first reported the bounty
	SourceKey string `gorm:"column:source_key;not null;type:text;default:''"`
	// Creator is the address that opened the bounty, empty until bounty_created is projected
	Creator string `gorm:"column:creator;not null;type:text;default:''"`
	// IssueURL links the bounty to the external issue tracker
	IssueURL string `gorm:"column:issue_url;not null;type:text;default:''"`
	// Status is open or closed
	Status BountyStatus `gorm:"column:status;not null;type:text;default:'open'"`
	// CreatedAt is the timestamp when this row was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this row was last written
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Bounty model
func (Bounty) TableName() string {
	return "bounties"
}

// BountyAsset represents the bounty_assets table - per-token counters of a bounty.
// Escrowed always equals Funded - Paid - Refunded and is never negative.
type BountyAsset struct {
	BountyID  string          `gorm:"column:bounty_id;primaryKey;type:text"`
	Token     string          `gorm:"column:token;primaryKey;type:text"`
	Funded    decimal.Decimal `gorm:"column:funded;not null;type:numeric(78,0);default:0"`
	Escrowed  decimal.Decimal `gorm:"column:escrowed;not null;type:numeric(78,0);default:0"`
	Paid      decimal.Decimal `gorm:"column:paid;not null;type:numeric(78,0);default:0"`
	Refunded  decimal.Decimal `gorm:"column:refunded;not null;type:numeric(78,0);default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BountyAsset model
func (BountyAsset) TableName() string {
	return "bounty_assets"
}

// Consistent reports whether the escrow invariant holds
func (a BountyAsset) Consistent() bool {
	return !a.Escrowed.IsNegative() && a.Escrowed.Equal(a.Funded.Sub(a.Paid).Sub(a.Refunded))
}
