package domain

import (
	"fmt"
	"strings"
	"time"
)

// ChainFamily represents how a chain delivers its events
type ChainFamily string

const (
	ChainFamilyEVM ChainFamily = "eip155"
	ChainFamilySui ChainFamily = "sui"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainBaseMainnet     Chain = "eip155:8453"
	ChainBaseSepolia     Chain = "eip155:84532"
	ChainSuiMainnet      Chain = "sui:mainnet"
	ChainSuiTestnet      Chain = "sui:testnet"
)

// Family returns the chain family derived from the CAIP-2 namespace
func (c Chain) Family() ChainFamily {
	namespace, _, _ := strings.Cut(string(c), ":")
	return ChainFamily(namespace)
}

// IsValidChain checks if a chain is a well-formed CAIP-2 identifier of a supported family
func IsValidChain(chain Chain) bool {
	namespace, reference, ok := strings.Cut(string(chain), ":")
	if !ok || reference == "" {
		return false
	}
	switch ChainFamily(namespace) {
	case ChainFamilyEVM, ChainFamilySui:
		return true
	default:
		return false
	}
}

// SourceKey identifies a single ledger source: one contract (or Move package) on one chain
type SourceKey string

// NewSourceKey builds the source key for a chain and contract address
func NewSourceKey(chain Chain, contract string) SourceKey {
	return SourceKey(fmt.Sprintf("%s:%s", chain, strings.ToLower(contract)))
}

// Cursor is an opaque position marker inside a ledger source.
// EVM sources use the decimal block height, object-chain sources use an encoded event id.
type Cursor string

// EventType represents the type of an escrow ledger event
type EventType string

const (
	EventTypeBountyCreated  EventType = "bounty_created"
	EventTypeBountyFunded   EventType = "bounty_funded"
	EventTypeClaimSubmitted EventType = "claim_submitted"
	EventTypeBountyPaid     EventType = "bounty_paid"
	EventTypeBountyRefunded EventType = "bounty_refunded"
	EventTypeBountyClosed   EventType = "bounty_closed"
)

// Field names every source must normalize its decoded events to
const (
	FieldBountyID  = "bounty_id"
	FieldToken     = "token"
	FieldAmount    = "amount"
	FieldFunder    = "funder"
	FieldRecipient = "recipient"
	FieldClaimant  = "claimant"
	FieldCreator   = "creator"
	FieldIssueURL  = "issue_url"
	FieldClaimURL  = "claim_url"
)

// LedgerEvent represents a decoded escrow event emitted by a ledger source
type LedgerEvent struct {
	Source    SourceKey         `json:"source"`
	DedupKey  string            `json:"dedup_key"`           // tx id + log index / event sequence
	Type      EventType         `json:"type"`                // normalized event tag
	Fields    map[string]string `json:"fields"`              // decoded field map, values normalized to strings
	TxID      string            `json:"tx_id"`               // transaction hash / digest
	Cursor    Cursor            `json:"cursor"`              // position of the page or stream element carrying this event
	Timestamp time.Time         `json:"timestamp,omitempty"` // block / checkpoint time when known
}

// Field returns a decoded field value
func (e LedgerEvent) Field(name string) string {
	if e.Fields == nil {
		return ""
	}
	return e.Fields[name]
}

// LedgerChange describes a committed read-model mutation. It is what side calls receive.
type LedgerChange struct {
	Type      EventType         `json:"type"`
	Source    SourceKey         `json:"source"`
	DedupKey  string            `json:"dedup_key"`
	BountyID  string            `json:"bounty_id"`
	Token     string            `json:"token,omitempty"`
	Amount    string            `json:"amount,omitempty"`
	Actor     string            `json:"actor,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
