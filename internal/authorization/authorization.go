// Package authorization issues signed payout authorizations for recipients whose identity was
// verified off-chain, and keeps them pending until the payout shows up on-chain or they expire.
package authorization

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
	"github.com/feral-file/ff-bounty-ledger/internal/messaging"
	"github.com/feral-file/ff-bounty-ledger/internal/metrics"
	"github.com/feral-file/ff-bounty-ledger/internal/store"
	"github.com/feral-file/ff-bounty-ledger/internal/typeddata"
)

// Pending is a signed authorization waiting for its payout to be executed on-chain
type Pending struct {
	Nonce     string    `json:"nonce"`
	BountyID  string    `json:"bountyId"`
	Token     string    `json:"token"`
	Recipient string    `json:"recipient"`
	Amount    string    `json:"amount"`
	Signature string    `json:"signature"`
	Deadline  int64     `json:"deadline"` // unix seconds, also signed
	CreatedAt time.Time `json:"createdAt"`
}

// PendingStore keeps pending authorizations with an explicit expiry.
// A new authorization for the same bounty and recipient replaces the previous one.
//
//go:generate mockgen -source=authorization.go -destination=../mocks/authorization.go -package=mocks -mock_names=PendingStore=MockPendingStore,IdentityVerifier=MockIdentityVerifier
type PendingStore interface {
	// Put stores p for ttl
	Put(ctx context.Context, p *Pending, ttl time.Duration) error
	// Get returns the authorization with nonce, domain.ErrNotFound when unknown
	// and domain.ErrAuthorizationExpired when its ttl elapsed
	Get(ctx context.Context, nonce string) (*Pending, error)
	// Take removes and returns the live authorization of a bounty and recipient, nil when none
	Take(ctx context.Context, bountyID, recipient string) (*Pending, error)
	// Sweep drops expired authorizations and returns how many were dropped
	Sweep(ctx context.Context) (int, error)
}

// IdentityVerifier checks that a wallet belongs to a verified identity
type IdentityVerifier interface {
	IsVerified(ctx context.Context, identity, recipient string) (bool, error)
}

// Request asks for a payout authorization
type Request struct {
	BountyID  string
	Token     string
	Recipient string
	Amount    decimal.Decimal
	Identity  string // issue tracker account the recipient claims to be
}

// Config holds the configuration for an authorizer
type Config struct {
	TTL       time.Duration
	Domain    typeddata.Domain
	SignerKey *ecdsa.PrivateKey
}

// Authorizer signs payout authorizations and tracks them until they are used
type Authorizer struct {
	config   Config
	store    store.Store
	pending  PendingStore
	verifier IdentityVerifier
	clock    adapter.Clock
}

var _ messaging.Notifier = (*Authorizer)(nil)

// New creates an authorizer. verifier may be nil only when the authorizer is used to clear entries.
func New(config Config, st store.Store, pending PendingStore, verifier IdentityVerifier, clock adapter.Clock) *Authorizer {
	if config.TTL <= 0 {
		config.TTL = 15 * time.Minute
	}
	return &Authorizer{
		config:   config,
		store:    st,
		pending:  pending,
		verifier: verifier,
		clock:    clock,
	}
}

// Authorize verifies the recipient's identity and the bounty's escrow, then signs and stores
// a payout authorization. Rejections happen before anything is stored.
func (a *Authorizer) Authorize(ctx context.Context, req Request) (*Pending, error) {
	if a.config.SignerKey == nil || a.verifier == nil {
		return nil, errors.New("authorizer has no signer key or identity verifier")
	}

	bountyID, err := typeddata.ParseBytes32(req.BountyID)
	if err != nil {
		return nil, fmt.Errorf("invalid bounty id: %w", err)
	}
	token, err := typeddata.ParseAddress(req.Token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	recipient, err := typeddata.ParseAddress(req.Recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Truncate(0)) {
		return nil, fmt.Errorf("payout amount must be a positive integer, got %s", req.Amount)
	}

	verified, err := a.verifier.IsVerified(ctx, req.Identity, recipient.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to verify identity %s: %w", req.Identity, err)
	}
	if !verified {
		metrics.PendingAuthorizations.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%s for %s: %w", req.Identity, recipient.Hex(), domain.ErrIdentityNotVerified)
	}

	bountyKey := strings.ToLower(bountyID.Hex())
	tokenKey := strings.ToLower(token.Hex())
	asset, err := a.store.GetBountyAsset(ctx, bountyKey, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get bounty asset: %w", err)
	}
	if asset == nil || asset.Escrowed.LessThan(req.Amount) {
		escrowed := decimal.Zero
		if asset != nil {
			escrowed = asset.Escrowed
		}
		metrics.PendingAuthorizations.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("bounty %s escrows %s of %s, requested %s: %w",
			bountyKey, escrowed, tokenKey, req.Amount, domain.ErrInsufficientEscrow)
	}

	now := a.clock.Now()
	nonce := newNonce()
	deadline := now.Add(a.config.TTL).Unix()

	auth := &typeddata.PayoutAuthorization{
		Domain:    a.config.Domain,
		BountyID:  bountyID,
		Token:     token,
		Recipient: recipient,
		Amount:    req.Amount.BigInt(),
		Nonce:     nonce,
		Deadline:  big.NewInt(deadline),
	}
	sig, err := typeddata.Sign(auth, a.config.SignerKey)
	if err != nil {
		return nil, err
	}

	p := &Pending{
		Nonce:     nonce.String(),
		BountyID:  bountyKey,
		Token:     tokenKey,
		Recipient: strings.ToLower(recipient.Hex()),
		Amount:    req.Amount.String(),
		Signature: hexutil.Encode(sig),
		Deadline:  deadline,
		CreatedAt: now,
	}
	if err := a.pending.Put(ctx, p, a.config.TTL); err != nil {
		return nil, fmt.Errorf("failed to store pending authorization: %w", err)
	}
	metrics.PendingAuthorizations.WithLabelValues("issued").Inc()

	logger.InfoCtx(ctx, "Payout authorized",
		zap.String("bountyID", p.BountyID),
		zap.String("recipient", p.Recipient),
		zap.String("amount", p.Amount),
		zap.String("nonce", p.Nonce))

	return p, nil
}

// Get returns a live pending authorization by nonce
func (a *Authorizer) Get(ctx context.Context, nonce string) (*Pending, error) {
	return a.pending.Get(ctx, nonce)
}

func (a *Authorizer) Name() string {
	return "authorization"
}

// Notify clears the pending authorization a projected payout consumed
func (a *Authorizer) Notify(ctx context.Context, change domain.LedgerChange) error {
	if change.Type != domain.EventTypeBountyPaid || change.Actor == "" {
		return nil
	}

	p, err := a.pending.Take(ctx, strings.ToLower(change.BountyID), strings.ToLower(change.Actor))
	if err != nil {
		return fmt.Errorf("failed to clear pending authorization: %w", err)
	}
	if p == nil {
		return nil
	}
	metrics.PendingAuthorizations.WithLabelValues("used").Inc()

	logger.InfoCtx(ctx, "Pending authorization used",
		zap.String("bountyID", p.BountyID),
		zap.String("recipient", p.Recipient),
		zap.String("nonce", p.Nonce),
		zap.String("dedupKey", change.DedupKey))
	return nil
}

// newNonce draws a 128-bit random nonce
func newNonce() *big.Int {
	id := uuid.New()
	return new(big.Int).SetBytes(id[:])
}

func matchKey(bountyID, recipient string) string {
	return bountyID + ":" + recipient
}
